/*
Lrdrive is a minimal demonstration of the generator pipeline end to end: it
builds the classic left-recursive arithmetic grammar in-process, compiles a
matching lexer spec, and drives both a clean input and a syntactically
broken one through driver.Run, printing the resulting trace and verdict.

File discovery and CLI flag parsing are intentionally absent; this is a
fixed demonstration, not a general-purpose tool.
*/
package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/halvardct/lrforge/internal/config"
	"github.com/halvardct/lrforge/internal/driver"
	"github.com/halvardct/lrforge/internal/grammar"
	lex "github.com/halvardct/lrforge/internal/lexspec"
	"github.com/halvardct/lrforge/internal/parse"
	"github.com/halvardct/lrforge/internal/types"
)

// optionsFile is the optional TOML file of generator options this
// demonstration looks for in the working directory. Its absence is not an
// error; lrdrive falls back to the hard-coded defaults.
const optionsFile = "lrdrive.toml"

// arithGrammar writes its productions the way a lexer-spec author commonly
// does, with punctuation given as literal quoted characters ("+", "*", "(",
// ")") rather than the declared token names those characters lex to. It is
// still a valid grammar, provided the caller runs it through
// grammar.NormalizeTerminals (spec.md §4.8's terminal normalisation) before
// table construction, which is what main does below.
func arithGrammar(opts grammar.Options) grammar.Grammar {
	var g grammar.Grammar
	g.Options = opts

	g.AddRule("E", grammar.Production{"E", "+", "T"})
	g.AddRule("E", grammar.Production{"T"})
	g.AddRule("T", grammar.Production{"T", "*", "F"})
	g.AddRule("T", grammar.Production{"F"})
	g.AddRule("F", grammar.Production{"(", "E", ")"})
	g.AddRule("F", grammar.Production{"id"})

	g.AddTerm("plus", types.MakeDefaultClass("plus"))
	g.AddTerm("star", types.MakeDefaultClass("star"))
	g.AddTerm("lparen", types.MakeDefaultClass("lparen"))
	g.AddTerm("rparen", types.MakeDefaultClass("rparen"))
	g.AddTerm("id", types.MakeDefaultClass("id"))

	return g
}

func arithLexer() (lex.DFA, error) {
	rules := []lex.TokenRule{
		{Regex: `[a-z]`, Action: "id"},
		{Regex: `'+'`, Action: "plus", Literal: "+"},
		{Regex: `'*'`, Action: "star", Literal: "*"},
		{Regex: `'('`, Action: "lparen", Literal: "("},
		{Regex: `')'`, Action: "rparen", Literal: ")"},
		{Regex: `[ ]`, Action: ""},
	}
	return lex.Compile(lex.Definitions{}, rules)
}

func run(name, input string, table parse.LRParseTable, prods []grammar.EnumeratedProduction, dfa lex.DFA, parserOpts parse.ParserOptions) {
	log.Printf("INFO  running scenario %q on input %q", name, input)

	driverOpts := driver.Options{RecoveryMode: parserOpts.RecoveryMode, FixedSyncSet: parserOpts.FixedSyncSet}
	verdict, records, err := driver.Run(dfa, table, prods, strings.NewReader(input), driverOpts)

	for _, rec := range records {
		fmt.Printf("  [%3d] state=%-4s lookahead=%-10s kind=%-7s %s\n",
			rec.Step, rec.State, rec.Lookahead, rec.Kind, rec.Detail)
	}

	fmt.Printf("run %s: accepted=%v tokens=%d reductions=%d recovered=%d\n",
		verdict.RunID, verdict.Accepted, verdict.TokensConsumed, verdict.Reductions, verdict.RecoveredErrors)
	if err != nil {
		fmt.Printf("  ended with: %s\n", err.Error())
	}
	fmt.Println()
}

func main() {
	genOpts, err := config.Load(optionsFile)
	if err != nil {
		log.Printf("INFO  no usable %s found, using default generator options: %s", optionsFile, err.Error())
		genOpts = config.GeneratorOptions{}
	}

	dfa, err := arithLexer()
	if err != nil {
		log.Fatalf("FATAL could not compile lexer: %s", err.Error())
	}

	raw := arithGrammar(genOpts.GrammarOptions())
	literalMap := lex.ReverseLiteralMap(dfa, raw.Terminals())
	g := raw.NormalizeTerminals(literalMap)

	table, warns, err := parse.NewSimpleLRParseTable(g, genOpts.AllowAmbiguousGrammar)
	if err != nil {
		log.Fatalf("FATAL could not construct SLR(1) table: %s", err.Error())
	}
	for _, w := range warns {
		log.Printf("WARN  %s", w)
	}

	prods := g.Augmented().Enumerate()
	parserOpts := genOpts.ParserOptions()

	run("scenario 1: accept", "a + b * c", table, prods, dfa, parserOpts)
	run("scenario 5: panic-mode recovery", "a + + b", table, prods, dfa, parserOpts)

	os.Exit(0)
}
