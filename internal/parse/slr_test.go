package parse

import (
	"testing"

	"github.com/halvardct/lrforge/internal/grammar"
	"github.com/halvardct/lrforge/internal/types"
	"github.com/stretchr/testify/assert"
)

// arithGrammar is the textbook left-recursive expression grammar:
//
//	E -> E + T | T
//	T -> T * F | F
//	F -> ( E ) | id
func arithGrammar() grammar.Grammar {
	var g grammar.Grammar

	g.AddRule("E", grammar.Production{"E", "plus", "T"})
	g.AddRule("E", grammar.Production{"T"})
	g.AddRule("T", grammar.Production{"T", "star", "F"})
	g.AddRule("T", grammar.Production{"F"})
	g.AddRule("F", grammar.Production{"lparen", "E", "rparen"})
	g.AddRule("F", grammar.Production{"id"})

	for _, t := range []string{"plus", "star", "lparen", "rparen", "id"} {
		g.AddTerm(t, types.MakeDefaultClass(t))
	}

	return g
}

func Test_ConstructSimpleLRParseTable_acceptsSLR1Grammar(t *testing.T) {
	assert := assert.New(t)

	g := arithGrammar()
	table, warns, err := NewSimpleLRParseTable(g, false)

	assert.NoError(err)
	assert.Empty(warns)
	assert.NotEmpty(table.Initial())
}

func Test_ConstructSimpleLRParseTable_rejectsAmbiguousGrammarUnlessAllowed(t *testing.T) {
	assert := assert.New(t)

	// S -> S S | id is ambiguous: after "S S" with lookahead id, the parser
	// can either reduce S S to S or shift id to start another S, a
	// shift/reduce conflict on the same lookahead.
	var g grammar.Grammar
	g.AddRule("S", grammar.Production{"S", "S"})
	g.AddRule("S", grammar.Production{"id"})
	g.AddTerm("id", types.MakeDefaultClass("id"))

	_, _, err := NewSimpleLRParseTable(g, false)
	assert.Error(err)

	_, warns, err := NewSimpleLRParseTable(g, true)
	assert.NoError(err)
	assert.NotEmpty(warns)
}

func Test_SLRTable_GetDFA_isNonEmpty(t *testing.T) {
	assert := assert.New(t)

	g := arithGrammar()
	table, _, err := NewSimpleLRParseTable(g, false)
	assert.NoError(err)

	dfa := table.GetDFA()
	assert.NotEmpty(dfa.States())
}

func Test_SLRTable_String_isDeterministic(t *testing.T) {
	assert := assert.New(t)

	g := arithGrammar()
	table1, _, err := NewSimpleLRParseTable(g, false)
	assert.NoError(err)
	table2, _, err := NewSimpleLRParseTable(g, false)
	assert.NoError(err)

	assert.Equal(table1.String(), table2.String())
}
