package lex

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// buildTestDFA runs stages C-E over a single already-normalized regex text
// (skipping Normalize itself) for tests that want to exercise the
// construction/minimization pipeline directly rather than through a full
// lexer specification.
func buildTestDFA(t *testing.T, regex string) (dfa DFA) {
	t.Helper()
	assert := assert.New(t)

	toks, err := Tokenize(regex)
	if !assert.NoError(err) {
		t.FailNow()
	}
	toks = InsertConcatenation(toks)
	postfix, err := ToPostfix(toks)
	if !assert.NoError(err) {
		t.FailNow()
	}
	tree, leaves, err := BuildSyntaxTree(postfix)
	if !assert.NoError(err) {
		t.FailNow()
	}

	raw := ConstructDFA(tree, leaves)
	min := MinimizeDFA(raw)
	return DFA{Automaton: min, Markers: map[int]MarkerInfo{1000: {TokenName: "tok"}}}
}

func Test_ConstructDFA_acceptsExpectedStrings(t *testing.T) {
	assert := assert.New(t)

	// (97|98)*98 1000 : zero-or-more of 'a'|'b', then a required 'b'
	dfa := buildTestDFA(t, "(97|98)*98 1000")

	walk := func(s string) bool {
		state := dfa.Automaton.Start
		for i := 0; i < len(s); i++ {
			state = dfa.Automaton.Next(state, itoa(int(s[i])))
			if state == "" {
				return false
			}
		}
		return dfa.Automaton.IsAccepting(state)
	}

	assert.True(walk("b"))
	assert.True(walk("ab"))
	assert.True(walk("aabbab"))
	assert.False(walk("a"))
	assert.False(walk(""))
	assert.False(walk("ba"))
}

func Test_MinimizeDFA_preservesMarkerIdentity(t *testing.T) {
	assert := assert.New(t)

	// two alternatives that both accept the single char 'a', but are
	// distinct rules (97 marked 1000, and 97 again marked 1001). Subset
	// construction puts both markers in the one state reached on 'a'; that
	// state must still resolve to a single marker after minimization.
	toks, err := Tokenize("97 1000|97 1001")
	assert.NoError(err)
	toks = InsertConcatenation(toks)
	postfix, err := ToPostfix(toks)
	assert.NoError(err)
	tree, leaves, err := BuildSyntaxTree(postfix)
	assert.NoError(err)

	raw := ConstructDFA(tree, leaves)
	min := MinimizeDFA(raw)

	// walk "a" in the minimized DFA; whichever accepting state results
	// must resolve to the lowest of the two tied markers (1000), per the
	// earliest-declared-rule-wins tie-break.
	state := min.Start
	state = min.Next(state, itoa(int('a')))
	assert.True(min.IsAccepting(state))
	assert.Equal(1000, min.GetValue(state).Marker)
}

func itoa(n int) string {
	// local helper purely to keep test bodies free of the strconv import
	// noise; mirrors symMatchesByte's own byte<->string convention.
	digits := "0123456789"
	if n == 0 {
		return "0"
	}
	var out []byte
	for n > 0 {
		out = append([]byte{digits[n%10]}, out...)
		n /= 10
	}
	return string(out)
}
