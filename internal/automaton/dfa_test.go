package automaton

import (
	"testing"

	"github.com/halvardct/lrforge/internal/util"
	"github.com/stretchr/testify/assert"
)

func buildDFA(from map[string][]string, start string, acceptingStates []string) *DFA[string] {
	dfa := &DFA[string]{}

	acceptSet := util.StringSetOf(acceptingStates)

	for k := range from {
		dfa.AddState(k, acceptSet.Has(k))
		dfa.SetValue(k, k)
	}

	// add transitions AFTER all states are already in or it will cause a panic
	for k := range from {
		for i := range from[k] {
			transition := mustParseFATransition(from[k][i])
			dfa.AddTransition(k, transition.input, transition.next)
		}
	}

	dfa.Start = start

	return dfa
}

func Test_DFA_Next(t *testing.T) {
	assert := assert.New(t)

	dfa := buildDFA(map[string][]string{
		"A": {"=(a)=> B"},
		"B": {"=(b)=> A"},
	}, "A", []string{"B"})

	assert.Equal("B", dfa.Next("A", "a"))
	assert.Equal("", dfa.Next("A", "b"))
	assert.True(dfa.IsAccepting("B"))
	assert.False(dfa.IsAccepting("A"))
}

func Test_DFA_NumberStates(t *testing.T) {
	assert := assert.New(t)

	dfa := buildDFA(map[string][]string{
		"gamma": {"=(a)=> alpha"},
		"alpha": {"=(b)=> beta"},
		"beta":  {},
	}, "gamma", []string{"beta"})

	dfa.NumberStates()

	assert.Equal("0", dfa.Start)
	assert.NoError(dfa.Validate())
}

func Test_DFA_Validate(t *testing.T) {
	assert := assert.New(t)

	dfa := buildDFA(map[string][]string{
		"A": {"=(a)=> B"},
		"B": {},
	}, "A", []string{"B"})

	assert.NoError(dfa.Validate())
}

func Test_TransformDFA(t *testing.T) {
	assert := assert.New(t)

	dfa := buildDFA(map[string][]string{
		"A": {"=(a)=> B"},
		"B": {},
	}, "A", []string{"B"})

	transformed := TransformDFA(dfa, func(old string) int { return len(old) })

	assert.Equal(1, transformed.GetValue("A"))
	assert.Equal("B", transformed.Next("A", "a"))
}
