package driver

import (
	"strings"
	"testing"

	"github.com/halvardct/lrforge/internal/grammar"
	lex "github.com/halvardct/lrforge/internal/lexspec"
	"github.com/halvardct/lrforge/internal/parse"
	"github.com/halvardct/lrforge/internal/types"
	"github.com/stretchr/testify/assert"
)

// arithGrammar returns the textbook left-recursive expression grammar
// (E -> E + T | T, T -> T * F | F, F -> ( E ) | id), SLR(1) by construction.
func arithGrammar() grammar.Grammar {
	var g grammar.Grammar

	g.AddRule("E", grammar.Production{"E", "plus", "T"})
	g.AddRule("E", grammar.Production{"T"})
	g.AddRule("T", grammar.Production{"T", "star", "F"})
	g.AddRule("T", grammar.Production{"F"})
	g.AddRule("F", grammar.Production{"lparen", "E", "rparen"})
	g.AddRule("F", grammar.Production{"id"})

	g.AddTerm("plus", types.MakeDefaultClass("plus"))
	g.AddTerm("star", types.MakeDefaultClass("star"))
	g.AddTerm("lparen", types.MakeDefaultClass("lparen"))
	g.AddTerm("rparen", types.MakeDefaultClass("rparen"))
	g.AddTerm("id", types.MakeDefaultClass("id"))

	return g
}

func arithLexer(t *testing.T) lex.DFA {
	t.Helper()
	rules := []lex.TokenRule{
		{Regex: `[a-z]`, Action: "id"},
		{Regex: `'+'`, Action: "plus", Literal: "+"},
		{Regex: `'*'`, Action: "star", Literal: "*"},
		{Regex: `'('`, Action: "lparen", Literal: "("},
		{Regex: `')'`, Action: "rparen", Literal: ")"},
		{Regex: `[ ]`, Action: ""},
	}
	dfa, err := lex.Compile(lex.Definitions{}, rules)
	if !assert.NoError(t, err) {
		t.FailNow()
	}
	return dfa
}

func Test_Run_acceptsArithmeticExpression(t *testing.T) {
	assert := assert.New(t)

	g := arithGrammar()
	table, warns, err := parse.NewSimpleLRParseTable(g, false)
	if !assert.NoError(err) {
		return
	}
	assert.Empty(warns)

	dfa := arithLexer(t)
	prods := g.Enumerate()

	verdict, records, err := Run(dfa, table, prods, strings.NewReader("a + b * c"), Options{})
	assert.NoError(err)
	assert.True(verdict.Accepted)
	assert.Equal(0, verdict.RecoveredErrors)
	assert.Equal(5, verdict.TokensConsumed) // a + b * c, not counting $
	assert.Greater(verdict.Reductions, 0)
	assert.NotEmpty(records)

	last := records[len(records)-1]
	assert.Equal(StepAccept, last.Kind)
}

func Test_Run_recoversFromSyntaxError(t *testing.T) {
	assert := assert.New(t)

	g := arithGrammar()
	table, _, err := parse.NewSimpleLRParseTable(g, false)
	if !assert.NoError(err) {
		return
	}

	dfa := arithLexer(t)
	prods := g.Enumerate()

	// "a + ( + b )" has a spurious "+" right after "(" where an expression
	// was expected. Panic-mode recovery discards it, resynchronizes on "b"
	// ("id" is in the default fixed sync set, and the state after "(" can
	// shift it), and the parse then runs to acceptance.
	verdict, records, err := Run(dfa, table, prods, strings.NewReader("a + ( + b )"), Options{})

	var sawError bool
	for _, r := range records {
		if r.Kind == StepError {
			sawError = true
		}
	}
	assert.True(sawError, "expected at least one StepError record")
	assert.NoError(err)
	assert.True(verdict.Accepted)
	assert.Equal(1, verdict.RecoveredErrors)
}

func Test_SyncSet_followDerivedDiffersFromFixedSet(t *testing.T) {
	assert := assert.New(t)

	g := arithGrammar()
	table, _, err := parse.NewSimpleLRParseTable(g, false)
	if !assert.NoError(err) {
		return
	}

	// the initial state has goto edges for E, T, and F (the closure items
	// with the dot at the start of each), so FOLLOW-derived mode unions in
	// FOLLOW(E)/FOLLOW(T)/FOLLOW(F) -- which includes "plus"/"star", unlike
	// the fixed set configured below. Confirms Options.RecoveryMode actually
	// changes what syncSet computes, rather than being silently ignored.
	initial := table.Initial()

	fixed := syncSet(initial, table, g, Options{RecoveryMode: parse.RecoverFixedSet, FixedSyncSet: []string{"rparen"}})
	assert.True(fixed["rparen"], "fixed-set mode should use the configured sync set")
	assert.True(fixed["$"])

	followDerived := syncSet(initial, table, g, Options{RecoveryMode: parse.RecoverFollowDerived})
	assert.True(followDerived["$"])
	// the FOLLOW-derived set is computed independently of FixedSyncSet, so
	// it need not agree with the fixed-mode set's membership of "rparen".
	assert.NotEqual(fixed, followDerived)
}

func Test_Run_reportsLexicalErrorsAsParseErrors(t *testing.T) {
	assert := assert.New(t)

	g := arithGrammar()
	table, _, err := parse.NewSimpleLRParseTable(g, false)
	if !assert.NoError(err) {
		return
	}

	dfa := arithLexer(t)
	prods := g.Enumerate()

	// '#' matches no rule in arithLexer, so the lexer itself reports a
	// lexical error token, which the parser then rejects as an unexpected
	// symbol (since "lexical_error" has no grammar action anywhere).
	_, records, _ := Run(dfa, table, prods, strings.NewReader("a # b"), Options{})

	var sawError bool
	for _, r := range records {
		if r.Kind == StepError {
			sawError = true
		}
	}
	assert.True(sawError)
}
