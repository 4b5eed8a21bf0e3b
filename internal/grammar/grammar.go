package grammar

import (
	"fmt"
	"strings"

	"github.com/halvardct/lrforge/internal/types"
	"github.com/halvardct/lrforge/internal/util"
)

// Production is the right-hand side of a rule, a sequence of grammar symbols.
// A production of exactly one element equal to the empty string denotes an
// epsilon (λ) production; see Epsilon.
type Production []string

// Epsilon is the canonical empty production. Use Epsilon (not a literal
// []string{""}) so that reduce actions and FIRST/FOLLOW computation can
// recognize it by identity of content.
var Epsilon = Production{""}

func (p Production) String() string {
	if len(p) == 1 && p[0] == "" {
		return "ε"
	}
	return strings.Join(p, " ")
}

func (p Production) Equal(o any) bool {
	other, ok := o.(Production)
	if !ok {
		otherPtr, ok := o.(*Production)
		if !ok {
			return false
		}
		if otherPtr == nil {
			return false
		}
		other = *otherPtr
	}

	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

func (p Production) Copy() Production {
	cp := make(Production, len(p))
	copy(cp, p)
	return cp
}

// Rule is all of the alternative productions for a single non-terminal.
type Rule struct {
	NonTerminal string
	Productions []Production
}

func (r Rule) String() string {
	alts := make([]string, len(r.Productions))
	for i := range r.Productions {
		alts[i] = r.Productions[i].String()
	}
	return fmt.Sprintf("%s -> %s", r.NonTerminal, strings.Join(alts, " | "))
}

// Options controls optional, non-default behaviors of grammar construction.
type Options struct {
	// WrapGeneralStart, when true, causes Augmented to inject a wrapper
	// production around a declared start symbol literally named "general"
	// or "p" before augmenting with the canonical S' -> S production. Some
	// hand-authored grammars use "general"/"p" as a placeholder name for
	// the true start production; this option reproduces that convention
	// instead of silently treating the symbol as an ordinary non-terminal.
	WrapGeneralStart bool
}

// Grammar is a context-free grammar: a set of terminals (backed by the
// lexer's token classes), a set of non-terminal rules, and a designated
// start symbol (the non-terminal of the first rule added).
type Grammar struct {
	rules     map[string]Rule
	ruleOrder []string

	terminals map[string]types.TokenClass
	termOrder []string

	Options Options
}

// AddTerm registers a terminal symbol under id, associated with cls. id is
// typically the lowercased token class ID, since by convention terminals are
// lowercase grammar symbols and non-terminals are uppercase/mixed-case ones.
func (g *Grammar) AddTerm(id string, cls types.TokenClass) {
	if g.terminals == nil {
		g.terminals = map[string]types.TokenClass{}
	}
	if _, ok := g.terminals[id]; !ok {
		g.termOrder = append(g.termOrder, id)
	}
	g.terminals[id] = cls
}

// AddRule adds prod as one of the alternative productions for nonTerminal. If
// nonTerminal has no existing rule, it becomes the new rule; the very first
// non-terminal ever added to the grammar becomes its start symbol.
func (g *Grammar) AddRule(nonTerminal string, prod Production) {
	if g.rules == nil {
		g.rules = map[string]Rule{}
	}

	r, ok := g.rules[nonTerminal]
	if !ok {
		r = Rule{NonTerminal: nonTerminal}
		g.ruleOrder = append(g.ruleOrder, nonTerminal)
	}
	r.Productions = append(r.Productions, prod)
	g.rules[nonTerminal] = r
}

// RemoveRule deletes the rule for nonTerminal entirely, if present.
func (g *Grammar) RemoveRule(nonTerminal string) {
	if g.rules == nil {
		return
	}
	if _, ok := g.rules[nonTerminal]; !ok {
		return
	}
	delete(g.rules, nonTerminal)
	for i := range g.ruleOrder {
		if g.ruleOrder[i] == nonTerminal {
			g.ruleOrder = append(g.ruleOrder[:i], g.ruleOrder[i+1:]...)
			break
		}
	}
}

// Rule returns the Rule registered for nonTerminal, or the zero Rule if none
// exists.
func (g Grammar) Rule(nonTerminal string) Rule {
	return g.rules[nonTerminal]
}

// Term returns the TokenClass registered for terminal id, or nil if none
// exists.
func (g Grammar) Term(id string) types.TokenClass {
	return g.terminals[id]
}

// Terminals returns all terminal symbol IDs, in the order they were added.
func (g Grammar) Terminals() []string {
	out := make([]string, len(g.termOrder))
	copy(out, g.termOrder)
	return out
}

// NonTerminals returns all non-terminal symbols with a registered rule, in
// the order they were added.
func (g Grammar) NonTerminals() []string {
	out := make([]string, len(g.ruleOrder))
	copy(out, g.ruleOrder)
	return out
}

// IsTerminal returns whether sym names a registered terminal.
func (g Grammar) IsTerminal(sym string) bool {
	_, ok := g.terminals[sym]
	return ok
}

// IsNonTerminal returns whether sym names a non-terminal with a registered
// rule.
func (g Grammar) IsNonTerminal(sym string) bool {
	_, ok := g.rules[sym]
	return ok
}

// StartSymbol returns the non-terminal of the first rule added to g.
func (g Grammar) StartSymbol() string {
	if len(g.ruleOrder) == 0 {
		return ""
	}
	return g.ruleOrder[0]
}

// Copy returns a deep copy of g.
func (g Grammar) Copy() Grammar {
	cp := Grammar{
		rules:     make(map[string]Rule, len(g.rules)),
		ruleOrder: make([]string, len(g.ruleOrder)),
		terminals: make(map[string]types.TokenClass, len(g.terminals)),
		termOrder: make([]string, len(g.termOrder)),
		Options:   g.Options,
	}
	copy(cp.ruleOrder, g.ruleOrder)
	copy(cp.termOrder, g.termOrder)
	for k, r := range g.rules {
		prods := make([]Production, len(r.Productions))
		for i := range r.Productions {
			prods[i] = r.Productions[i].Copy()
		}
		cp.rules[k] = Rule{NonTerminal: r.NonTerminal, Productions: prods}
	}
	for k, v := range g.terminals {
		cp.terminals[k] = v
	}
	return cp
}

// Validate checks that g has at least one rule, at least one terminal, and
// that every symbol referenced on the right-hand side of a production is
// either a known terminal, a known non-terminal, or the epsilon marker.
func (g Grammar) Validate() error {
	if len(g.ruleOrder) == 0 {
		return fmt.Errorf("grammar has no rules defined")
	}
	if len(g.termOrder) == 0 {
		return fmt.Errorf("grammar has no terminals defined")
	}

	for _, nt := range g.ruleOrder {
		r := g.rules[nt]
		for _, prod := range r.Productions {
			if prod.Equal(Epsilon) {
				continue
			}
			for _, sym := range prod {
				if sym == "" {
					continue
				}
				if !g.IsTerminal(sym) && !g.IsNonTerminal(sym) {
					return fmt.Errorf("rule %q references undefined symbol %q", nt, sym)
				}
			}
		}
	}

	return nil
}

// NormalizeTerminals implements spec.md §4.8's terminal normalisation: for
// every production body symbol that names a literal character rather than a
// token name, literalMap (a char -> token_name map restricted to g's
// declared terminals, as built by lexspec.ReverseLiteralMap) supplies the
// token name to substitute in its place. Symbols already naming a declared
// terminal or non-terminal are left untouched, so a grammar that was already
// written in terms of token names normalizes to itself.
//
// The returned grammar is otherwise an unmodified copy of g; any cell
// conflict the substitution introduces (two productions now disagreeing on
// the same ACTION table cell) surfaces the normal way, as an SLR(1) conflict
// reported by the table builder with the offending state, terminal, and
// actions, once the normalized grammar is handed to
// constructSimpleLRParseTable.
func (g Grammar) NormalizeTerminals(literalMap map[string]string) Grammar {
	cp := g.Copy()

	for _, nt := range cp.ruleOrder {
		r := cp.rules[nt]
		for i, prod := range r.Productions {
			for j, sym := range prod {
				if g.IsTerminal(sym) || g.IsNonTerminal(sym) {
					continue
				}
				if tokenName, ok := literalMap[sym]; ok {
					prod[j] = tokenName
				}
			}
			r.Productions[i] = prod
		}
		cp.rules[nt] = r
	}

	return cp
}

// String renders every rule of g, one per line.
func (g Grammar) String() string {
	var sb strings.Builder
	for i, nt := range g.ruleOrder {
		sb.WriteString(g.rules[nt].String())
		if i+1 < len(g.ruleOrder) {
			sb.WriteRune('\n')
		}
	}
	return sb.String()
}

// wrappedNames are the conventional placeholder start-symbol names that
// Options.WrapGeneralStart recognizes.
var wrappedNames = map[string]bool{"general": true, "p": true}

// Augmented returns a copy of g with a new start symbol S' and production
// S' -> S added, where S is g's existing start symbol, exactly as step 1 of
// Algorithm 4.46 (Dragon Book) requires to build the canonical collection.
//
// If Options.WrapGeneralStart is set and g's start symbol is literally named
// "general" or "p", an intermediate production S -> S general | general (or
// the "p" variant) is injected first, so that the new start symbol isn't
// itself the placeholder name.
func (g Grammar) Augmented() Grammar {
	gPrime := g.Copy()

	start := gPrime.StartSymbol()

	if gPrime.Options.WrapGeneralStart && wrappedNames[start] {
		wrapped := gPrime.GenerateUniqueName(strings.ToUpper(start) + "-WRAPPED")
		gPrime.AddRule(wrapped, Production{wrapped, start})
		gPrime.AddRule(wrapped, Production{start})
		// move the new wrapper to the front so it becomes the start symbol
		for i := range gPrime.ruleOrder {
			if gPrime.ruleOrder[i] == wrapped {
				gPrime.ruleOrder = append(gPrime.ruleOrder[:i], gPrime.ruleOrder[i+1:]...)
				break
			}
		}
		gPrime.ruleOrder = append([]string{wrapped}, gPrime.ruleOrder...)
		start = wrapped
	}

	newStart := gPrime.GenerateUniqueName(strings.ToUpper(start) + "-P")
	gPrime.AddRule(newStart, Production{start})
	// move newStart to the front so StartSymbol() picks it up
	for i := range gPrime.ruleOrder {
		if gPrime.ruleOrder[i] == newStart {
			gPrime.ruleOrder = append(gPrime.ruleOrder[:i], gPrime.ruleOrder[i+1:]...)
			break
		}
	}
	gPrime.ruleOrder = append([]string{newStart}, gPrime.ruleOrder...)

	return gPrime
}

// GenerateUniqueName returns base if it is not already a symbol of g, or
// otherwise base suffixed with an increasing numeric tiebreaker until the
// result is unique.
func (g Grammar) GenerateUniqueName(base string) string {
	if !g.IsTerminal(base) && !g.IsNonTerminal(base) {
		return base
	}
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s-%d", base, i)
		if !g.IsTerminal(candidate) && !g.IsNonTerminal(candidate) {
			return candidate
		}
	}
}

// LR0Items returns the LR(0) item for every dot position of every
// production of every rule in g, i.e. the full set of "core" items the
// canonical LR(0) automaton is built from (Algorithm 4.46 starts from this
// set). The result is not deduplicated across rules since item identity
// already includes NonTerminal.
func (g Grammar) LR0Items() []LR0Item {
	var items []LR0Item

	for _, nt := range g.ruleOrder {
		r := g.rules[nt]
		for _, prod := range r.Productions {
			body := []string(prod)
			if len(body) == 1 && body[0] == "" {
				// epsilon production: the only item is the dot at the end
				items = append(items, LR0Item{NonTerminal: nt, Left: nil, Right: nil})
				continue
			}
			for dot := 0; dot <= len(body); dot++ {
				left := append([]string{}, body[:dot]...)
				right := append([]string{}, body[dot:]...)
				items = append(items, LR0Item{NonTerminal: nt, Left: left, Right: right})
			}
		}
	}

	return items
}

// EnumeratedProduction is one production of a grammar tagged with the
// production number a parse's reduce actions refer to and the rule table's
// driver.Run report renders: idx 0 is reserved for the augmented grammar's
// S' -> S production, and every other production is numbered in the order
// Enumerate discovers it (rule declaration order, then alternative order
// within a rule), matching the numbering the Dragon Book's own worked
// examples use for its parse tables.
type EnumeratedProduction struct {
	Idx         int
	NonTerminal string
	Production  Production
}

func (ep EnumeratedProduction) String() string {
	return fmt.Sprintf("(%d) %s -> %s", ep.Idx, ep.NonTerminal, ep.Production.String())
}

// Enumerate returns every production of g (g is expected to already be
// Augmented) numbered per EnumeratedProduction's convention: the first rule
// in declaration order (the augmented start rule, if g.Augmented produced
// this grammar) contributes idx 0, and every subsequent production is
// numbered in increasing order from there.
func (g Grammar) Enumerate() []EnumeratedProduction {
	var out []EnumeratedProduction
	idx := 0
	for _, nt := range g.ruleOrder {
		r := g.rules[nt]
		for _, prod := range r.Productions {
			out = append(out, EnumeratedProduction{Idx: idx, NonTerminal: nt, Production: prod})
			idx++
		}
	}
	return out
}

// FIRST computes FIRST(sym) per the standard definition (Dragon Book
// Algorithm 4.28): the set of terminals (plus, where sym is nullable,
// Epsilon's marker) that can begin some string derived from sym.
func (g Grammar) FIRST(sym string) util.ISet[string] {
	return g.first(sym, util.NewStringSet())
}

func (g Grammar) first(sym string, visiting util.StringSet) util.ISet[string] {
	result := util.NewStringSet()

	if g.IsTerminal(sym) {
		result.Add(sym)
		return result
	}

	if sym == "" {
		result.Add(Epsilon[0])
		return result
	}

	if visiting.Has(sym) {
		return result
	}
	visiting.Add(sym)
	defer visiting.Remove(sym)

	r, ok := g.rules[sym]
	if !ok {
		return result
	}

	for _, prod := range r.Productions {
		if prod.Equal(Epsilon) {
			result.Add(Epsilon[0])
			continue
		}

		allNullableSoFar := true
		for _, s := range prod {
			firstS := g.first(s, visiting)
			for _, f := range firstS.Elements() {
				if f != Epsilon[0] {
					result.Add(f)
				}
			}
			if !firstS.Has(Epsilon[0]) {
				allNullableSoFar = false
				break
			}
		}
		if allNullableSoFar {
			result.Add(Epsilon[0])
		}
	}

	return result
}

// firstOfSequence computes FIRST of a full symbol sequence, as used when
// computing FOLLOW across a production's trailing symbols.
func (g Grammar) firstOfSequence(seq []string) util.ISet[string] {
	result := util.NewStringSet()

	if len(seq) == 0 {
		result.Add(Epsilon[0])
		return result
	}

	allNullableSoFar := true
	for _, s := range seq {
		firstS := g.FIRST(s)
		for _, f := range firstS.Elements() {
			if f != Epsilon[0] {
				result.Add(f)
			}
		}
		if !firstS.Has(Epsilon[0]) {
			allNullableSoFar = false
			break
		}
	}
	if allNullableSoFar {
		result.Add(Epsilon[0])
	}

	return result
}

// FOLLOW computes FOLLOW(nonTerminal) per Dragon Book Algorithm 4.28: the set
// of terminals that can appear immediately to the right of nonTerminal in
// some derivation, plus "$" if nonTerminal can be the rightmost symbol of a
// derivation from the start symbol.
func (g Grammar) FOLLOW(nonTerminal string) util.ISet[string] {
	return g.followClosure(nonTerminal, util.NewStringSet())
}

func (g Grammar) followClosure(nonTerminal string, visiting util.StringSet) util.ISet[string] {
	result := util.NewStringSet()

	if visiting.Has(nonTerminal) {
		return result
	}
	visiting.Add(nonTerminal)

	if nonTerminal == g.StartSymbol() {
		result.Add("$")
	}

	for _, nt := range g.ruleOrder {
		r := g.rules[nt]
		for _, prod := range r.Productions {
			for i, sym := range prod {
				if sym != nonTerminal {
					continue
				}

				beta := prod[i+1:]
				firstBeta := g.firstOfSequence(beta)

				for _, f := range firstBeta.Elements() {
					if f != Epsilon[0] {
						result.Add(f)
					}
				}

				if firstBeta.Has(Epsilon[0]) {
					// β is nullable (or empty): FOLLOW(A) also contributes,
					// where A -> αBβ is the production under inspection.
					followNT := g.followClosure(nt, visiting)
					result.AddAll(followNT)
				}
			}
		}
	}

	return result
}
