package parse

import "github.com/halvardct/lrforge/internal/types"

// mockStream is a minimal fixed token stream for driving a parser in tests,
// grounded on the teacher's own internal/ictiobus/parse/test_fixtures.go
// mockStream/mockToken pair.
type mockStream struct {
	tokens []types.Token
	cur    int
}

func (ts *mockStream) Next() types.Token {
	if ts.cur >= len(ts.tokens) {
		return mockToken{c: types.TokenEndOfText}
	}
	n := ts.tokens[ts.cur]
	ts.cur++
	return n
}

func (ts *mockStream) Peek() types.Token {
	if ts.cur >= len(ts.tokens) {
		return mockToken{c: types.TokenEndOfText}
	}
	return ts.tokens[ts.cur]
}

func (ts *mockStream) HasNext() bool {
	return len(ts.tokens)-ts.cur > 0
}

type mockToken struct {
	c      types.TokenClass
	l      int
	lp     int
	lexeme string
	f      string
}

func (tok mockToken) FullLine() string        { return tok.f }
func (tok mockToken) Class() types.TokenClass { return tok.c }
func (tok mockToken) Line() int               { return tok.l }
func (tok mockToken) LinePos() int            { return tok.lp }
func (tok mockToken) Lexeme() string          { return tok.lexeme }
func (tok mockToken) String() string          { return tok.lexeme }

// mockTokens builds a token stream of one mockToken per terminal ID in
// ofTerm, laid out on a single fake line, terminated implicitly by $ once
// the stream is exhausted (see mockStream.Next).
func mockTokens(ofTerm ...string) types.TokenStream {
	var mocked []types.Token
	pos := 1
	line := ""
	for _, id := range ofTerm {
		tc := types.MakeDefaultClass(id)
		mocked = append(mocked, mockToken{c: tc, l: 1, lp: pos, lexeme: tc.ID()})
		line += tc.ID() + " "
		pos += len(tc.ID()) + 1
	}
	for i := range mocked {
		mocked[i] = mockToken{
			c:      mocked[i].Class(),
			l:      1,
			lp:     mocked[i].LinePos(),
			lexeme: mocked[i].Lexeme(),
			f:      line,
		}
	}
	return &mockStream{tokens: mocked}
}
