package lex

import (
	"strings"
	"testing"

	"github.com/halvardct/lrforge/internal/types"
	"github.com/stretchr/testify/assert"
)

func Test_Compile_and_DFALex_endToEnd(t *testing.T) {
	assert := assert.New(t)

	rules := []TokenRule{
		{Regex: `[a-z]('a'|'b'|'c'|[a-z]|[0-9])*`, Action: "id"},
		{Regex: `[0-9]('0'|'1'|'2'|'3'|'4'|'5'|'6'|'7'|'8'|'9')*`, Action: "int"},
		{Regex: `'+'`, Action: "plus", Literal: "+"},
		{Regex: `[ ](' ')*`, Action: ""},
	}

	dfa, err := Compile(Definitions{}, rules)
	if !assert.NoError(err) {
		return
	}

	stream, err := NewDFALexer(dfa, strings.NewReader("x1 + 22"))
	if !assert.NoError(err) {
		return
	}

	var got []string
	for stream.HasNext() {
		tok := stream.Next()
		if tok.Class().ID() == types.TokenEndOfText.ID() {
			break
		}
		if !assert.NotEqual(types.TokenError.ID(), tok.Class().ID(), "unexpected lexical error: %s", tok.Lexeme()) {
			return
		}
		got = append(got, tok.Lexeme())
	}

	assert.Equal([]string{"x1", "+", "22"}, got)
}

func Test_DFALex_reportsLexicalErrorAndResumes(t *testing.T) {
	assert := assert.New(t)

	rules := []TokenRule{
		{Regex: `'a'`, Action: "a"},
	}

	dfa, err := Compile(Definitions{}, rules)
	if !assert.NoError(err) {
		return
	}

	stream, err := NewDFALexer(dfa, strings.NewReader("ab"))
	if !assert.NoError(err) {
		return
	}

	first := stream.Next()
	assert.Equal("a", first.Class().ID())

	second := stream.Next()
	assert.Equal(types.TokenError.ID(), second.Class().ID())

	third := stream.Next()
	assert.Equal(types.TokenEndOfText.ID(), third.Class().ID())
}
