package lex

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_bracketCodes_rangesAndSingles(t *testing.T) {
	testCases := []struct {
		name  string
		body  string
		count int
	}{
		{name: "simple range", body: "a-z", count: 26},
		{name: "digits", body: "0-9", count: 10},
		{name: "mixed singles and range", body: "xyz0-9", count: 13},
		{name: "escaped newline single", body: `\n`, count: 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			codes := bracketCodes(tc.body)
			assert.Len(codes, tc.count)
		})
	}
}

func Test_expandBrackets_complementIsOpaque(t *testing.T) {
	assert := assert.New(t)
	out := expandBrackets(`[^a-z]`)
	assert.True(len(out) > 0)
	assert.Equal(byte('$'), out[0])
	assert.Equal(byte('$'), out[len(out)-1])
}

func Test_expandBrackets_ordinarySetIsParenUnion(t *testing.T) {
	assert := assert.New(t)
	out := expandBrackets(`[ab]`)
	assert.Equal("(97|98)", out)
}

func Test_expandBrackets_wildcardIsOpaque(t *testing.T) {
	assert := assert.New(t)
	out := expandBrackets(`.`)
	assert.Equal(byte('$'), out[0])
}

func Test_expandBrackets_setDifference(t *testing.T) {
	assert := assert.New(t)
	out := expandBrackets(`[abc]#[b]`)
	assert.Equal("$97|99$", out)
}

func Test_convertQuotedLiterals(t *testing.T) {
	assert := assert.New(t)
	assert.Equal("(97)", convertQuotedLiterals(`'a'`))
	assert.Equal("(10)", convertQuotedLiterals(`'\n'`))
	assert.Equal("(97)(98)", convertQuotedLiterals(`'a''b'`))
}

func Test_rewritePlusQuestion_plus(t *testing.T) {
	assert := assert.New(t)
	out := rewritePlusQuestion("(97)+")
	assert.Equal("(97)((97))*", out)
}

func Test_rewritePlusQuestion_question(t *testing.T) {
	assert := assert.New(t)
	out := rewritePlusQuestion("(97)?")
	assert.Equal("((97)|λ)", out)
}

func Test_removeRedundantOuterParens(t *testing.T) {
	testCases := []struct {
		name   string
		in     string
		expect string
	}{
		{name: "fully wrapped", in: "((97)(98))", expect: "(97)(98)"},
		{name: "not fully wrapped", in: "(97)(98)", expect: "(97)(98)"},
		{name: "already bare", in: "97", expect: "97"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			assert.Equal(tc.expect, removeRedundantOuterParens(tc.in))
		})
	}
}

func Test_splitTopLevel_ignoresOpaqueAndParens(t *testing.T) {
	assert := assert.New(t)
	parts := splitTopLevel("(97|98)|$97|98$|(99)", '|')
	assert.Equal([]string{"(97|98)", "$97|98$", "(99)"}, parts)
}

func Test_Normalize_singleCharRulesProduceDistinctMarkers(t *testing.T) {
	assert := assert.New(t)

	rules := []TokenRule{
		{Regex: `'+'`, Action: "plus", Literal: "+"},
		{Regex: `'*'`, Action: "mult", Literal: "*"},
	}

	combined, markers, err := Normalize(Definitions{}, rules)
	assert.NoError(err)
	assert.Len(markers, 2)
	assert.Equal("plus", markers[1000].TokenName)
	assert.Equal("mult", markers[1001].TokenName)
	assert.Contains(combined, "1000")
	assert.Contains(combined, "1001")
}

func Test_Normalize_expandsNamedDefinitions(t *testing.T) {
	assert := assert.New(t)

	defs := Definitions{
		"digit": `[0-9]`,
	}
	rules := []TokenRule{
		{Regex: `digit+`, Action: "int"},
	}

	combined, markers, err := Normalize(defs, rules)
	assert.NoError(err)
	assert.Len(markers, 1)
	assert.NotContains(combined, "digit")
}

func Test_expandDefinitions_leavesBareUnderscoreMetaTokenAlone(t *testing.T) {
	assert := assert.New(t)

	defs := Definitions{
		"digit_or_letter": `([0-9]|[a-z])`,
	}
	// a bare `_` is spec.md §4.2's meta-token, not a one-character
	// definition reference; it must survive expandDefinitions untouched so
	// Tokenize (stage C) is the one that expands it, per the pipeline split
	// expandBrackets already uses for `.` and bracket forms.
	out := expandDefinitions(`_*`, defs)
	assert.Equal(`_*`, out)
}

func Test_Normalize_emptyActionResolvesToWhitespace(t *testing.T) {
	assert := assert.New(t)

	rules := []TokenRule{
		{Regex: `[ ]`, Action: ""},
	}

	_, markers, err := Normalize(Definitions{}, rules)
	assert.NoError(err)
	assert.Equal(WhitespaceToken, markers[1000].TokenName)
}
