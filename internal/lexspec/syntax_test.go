package lex

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Tokenize_basic(t *testing.T) {
	assert := assert.New(t)
	toks, err := Tokenize("(97|98)* 1000")
	assert.NoError(err)
	assert.Equal([]string{"(", "97", "|", "98", ")", "*", "1000"}, toks)
}

func Test_Tokenize_opaqueIslandIsOneToken(t *testing.T) {
	assert := assert.New(t)
	toks, err := Tokenize("$97|98|99$")
	assert.NoError(err)
	assert.Equal([]string{"$97|98|99$"}, toks)
}

func Test_Tokenize_epsilon(t *testing.T) {
	assert := assert.New(t)
	toks, err := Tokenize("λ")
	assert.NoError(err)
	assert.Equal([]string{"λ"}, toks)
}

func Test_Tokenize_metaUnderscoreExpandsToOpaqueUnion(t *testing.T) {
	assert := assert.New(t)
	toks, err := Tokenize("_")
	assert.NoError(err)
	if !assert.Len(toks, 1) {
		return
	}

	sym, err := ParseSymbolToken(toks[0])
	assert.NoError(err)
	assert.Equal(SymUnion, sym.Kind)
	// 33..255 inclusive is 223 distinct bytes: all printable ASCII minus the
	// space character 32, per spec.md §4.2.
	assert.Len(sym.Union, 223)
	assert.Contains(sym.Union, byte(33))
	assert.Contains(sym.Union, byte(255))
	assert.NotContains(sym.Union, byte(32))
}

func Test_Tokenize_metaUnderscoreAlongsideOtherTokens(t *testing.T) {
	assert := assert.New(t)
	toks, err := Tokenize("(_)* 1000")
	assert.NoError(err)
	if !assert.Len(toks, 5) {
		return
	}
	assert.Equal("(", toks[0])
	assert.True(strings.HasPrefix(toks[1], "$") && strings.HasSuffix(toks[1], "$"))
	assert.Equal(")", toks[2])
	assert.Equal("*", toks[3])
}

func Test_InsertConcatenation(t *testing.T) {
	assert := assert.New(t)
	toks := []string{"97", "98"}
	out := InsertConcatenation(toks)
	assert.Equal([]string{"97", ".", "98"}, out)
}

func Test_InsertConcatenation_noOpBetweenOperatorAndOperand(t *testing.T) {
	assert := assert.New(t)
	toks := []string{"(", "97", ")", "*", "98"}
	out := InsertConcatenation(toks)
	assert.Equal([]string{"(", "97", ")", "*", ".", "98"}, out)
}

func Test_ToPostfix_concatenationAndAlternation(t *testing.T) {
	assert := assert.New(t)
	toks, err := Tokenize("97|98")
	assert.NoError(err)
	toks = InsertConcatenation(toks)
	postfix, err := ToPostfix(toks)
	assert.NoError(err)
	assert.Equal([]string{"97", "98", "|"}, postfix)
}

func Test_ToPostfix_starBindsTighterThanConcat(t *testing.T) {
	assert := assert.New(t)
	toks, err := Tokenize("(97)*98")
	assert.NoError(err)
	toks = InsertConcatenation(toks)
	postfix, err := ToPostfix(toks)
	assert.NoError(err)
	assert.Equal([]string{"97", "*", "98", "."}, postfix)
}

func Test_BuildSyntaxTree_leafPositionsAndNullability(t *testing.T) {
	assert := assert.New(t)

	// (97|98)*98 1000 : zero-or-more of 'a'|'b' followed by 'b', marked 1000
	toks, err := Tokenize("(97|98)*98 1000")
	assert.NoError(err)
	toks = InsertConcatenation(toks)
	postfix, err := ToPostfix(toks)
	assert.NoError(err)

	root, leaves, err := BuildSyntaxTree(postfix)
	assert.NoError(err)
	assert.NotNil(root)

	// 3 leaves: 97, 98, 98-after-star, plus marker 1000 = 4 positions (index 0 unused)
	assert.Len(leaves, 5)

	assert.False(root.Nullable, "top-level concatenation with a required trailing 98 cannot be nullable")
}

func Test_BuildSyntaxTree_rejectsMalformedPostfix(t *testing.T) {
	assert := assert.New(t)
	_, _, err := BuildSyntaxTree([]string{"97", "|"})
	assert.Error(err)
}
