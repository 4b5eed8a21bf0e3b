package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_LRParser_Parse_acceptsValidSentence(t *testing.T) {
	assert := assert.New(t)

	g := arithGrammar()
	p, warns, err := GenerateSimpleLRParser(g, false)
	assert.NoError(err)
	assert.Empty(warns)

	stream := mockTokens("id", "plus", "id", "star", "id", "$")

	tree, err := p.Parse(stream)
	assert.NoError(err)
	assert.Equal("E", tree.Value)
	assert.Empty(p.Recovered())
}

func Test_LRParser_Parse_rejectsMalformedSentenceWithoutRecovery(t *testing.T) {
	assert := assert.New(t)

	g := arithGrammar()
	p, _, err := GenerateSimpleLRParser(g, false)
	assert.NoError(err)

	// "star" can never start a sentence in this grammar (E starts only
	// with "id" or "lparen"), so the very first ACTION lookup errors.
	// Discarding "star" leaves only "$", which the initial state also has
	// no action for, so panic-mode recovery has nothing left to
	// resynchronize on and Parse must give up.
	stream := mockTokens("star", "$")

	_, err = p.Parse(stream)
	assert.Error(err)
}

func Test_LRParser_Parse_recoversPastSyntaxError(t *testing.T) {
	assert := assert.New(t)

	g := arithGrammar()
	p, _, err := GenerateSimpleLRParser(g, false)
	assert.NoError(err)

	// "id + * id" has a spurious "star" where a term was expected; "id" is
	// in the default fixed sync set, so panic-mode recovery should discard
	// "star" and resume once it reaches the next "id".
	stream := mockTokens("id", "plus", "star", "id", "$")

	_, err = p.Parse(stream)
	assert.NoError(err)
	assert.NotEmpty(p.Recovered())
}

func Test_LRParser_Parse_followDerivedRecoveryAttemptsResync(t *testing.T) {
	assert := assert.New(t)

	g := arithGrammar()
	p, _, err := GenerateSimpleLRParser(g, false, ParserOptions{RecoveryMode: RecoverFollowDerived})
	assert.NoError(err)

	stream := mockTokens("id", "plus", "star", "id", "$")

	// FOLLOW-derived sync sets differ from the fixed set; here the set at
	// the error contains the offending star itself, so nothing is discarded
	// and recovery fails, since no state on the stack has an action on star.
	// What must hold is that the error was detected and a recovery was
	// attempted rather than Parse returning immediately on the first LRError.
	_, _ = p.Parse(stream)
	assert.NotEmpty(p.Recovered())
}
