package grammar

import (
	"testing"

	"github.com/halvardct/lrforge/internal/types"
	"github.com/halvardct/lrforge/internal/util"
	"github.com/stretchr/testify/assert"
)

// buildFirstFollowExample builds the textbook grammar used throughout the
// FIRST/FOLLOW literature:
//
//	S -> K L p | g Q K
//	K -> b L Q T | ε
//	L -> Q a K | Q K | q a
//	Q -> d s | ε
//	T -> g S f | m
func buildFirstFollowExample() Grammar {
	g := Grammar{}

	for _, t := range []string{"p", "g", "b", "a", "q", "s", "d", "f", "m"} {
		g.AddTerm(t, types.MakeDefaultClass(t))
	}

	g.AddRule("S", Production{"K", "L", "p"})
	g.AddRule("S", Production{"g", "Q", "K"})

	g.AddRule("K", Production{"b", "L", "Q", "T"})
	g.AddRule("K", Epsilon)

	g.AddRule("L", Production{"Q", "a", "K"})
	g.AddRule("L", Production{"Q", "K"})
	g.AddRule("L", Production{"q", "a"})

	g.AddRule("Q", Production{"d", "s"})
	g.AddRule("Q", Epsilon)

	g.AddRule("T", Production{"g", "S", "f"})
	g.AddRule("T", Production{"m"})

	return g
}

func Test_Grammar_Validate(t *testing.T) {
	testCases := []struct {
		name      string
		build     func() Grammar
		expectErr bool
	}{
		{
			name:      "empty grammar",
			build:     func() Grammar { return Grammar{} },
			expectErr: true,
		},
		{
			name: "no rules in grammar",
			build: func() Grammar {
				g := Grammar{}
				g.AddTerm("int", types.MakeDefaultClass("int"))
				return g
			},
			expectErr: true,
		},
		{
			name: "no terms in grammar",
			build: func() Grammar {
				g := Grammar{}
				g.AddRule("S", Production{"S"})
				return g
			},
			expectErr: true,
		},
		{
			name: "rule references undefined symbol",
			build: func() Grammar {
				g := Grammar{}
				g.AddTerm("int", types.MakeDefaultClass("int"))
				g.AddRule("S", Production{"int", "T"})
				return g
			},
			expectErr: true,
		},
		{
			name: "single rule grammar",
			build: func() Grammar {
				g := Grammar{}
				g.AddTerm("int", types.MakeDefaultClass("int"))
				g.AddRule("S", Production{"int"})
				return g
			},
			expectErr: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			g := tc.build()
			actual := g.Validate()

			if tc.expectErr {
				assert.Error(actual)
			} else {
				assert.NoError(actual)
			}
		})
	}
}

func Test_Grammar_FIRST(t *testing.T) {
	testCases := []struct {
		name   string
		first  string
		expect []string
	}{
		{name: "T", first: "T", expect: []string{"g", "m"}},
		{name: "Q", first: "Q", expect: []string{"d", Epsilon[0]}},
		{name: "K", first: "K", expect: []string{"b", Epsilon[0]}},
		{name: "L", first: "L", expect: []string{"d", Epsilon[0], "q", "b", "a"}},
		{name: "S", first: "S", expect: []string{"b", "d", "q", "g", "a", "p"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			g := buildFirstFollowExample()
			actual := g.FIRST(tc.first)

			assert.ElementsMatch(tc.expect, util.Alphabetized[string](actual))
		})
	}
}

func Test_Grammar_FOLLOW(t *testing.T) {
	testCases := []struct {
		name   string
		follow string
		expect []string
	}{
		{name: "S", follow: "S", expect: []string{"$", "f"}},
		{name: "T", follow: "T", expect: []string{"a", "b", "d", "f", "g", "m", "p", "q", "$"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			g := buildFirstFollowExample()
			actual := g.FOLLOW(tc.follow)

			assert.ElementsMatch(tc.expect, util.Alphabetized[string](actual))
		})
	}
}

func Test_Grammar_Augmented(t *testing.T) {
	assert := assert.New(t)

	g := Grammar{}
	g.AddTerm("int", types.MakeDefaultClass("int"))
	g.AddRule("S", Production{"int"})

	gPrime := g.Augmented()

	newStart := gPrime.StartSymbol()
	assert.NotEqual("S", newStart)

	r := gPrime.Rule(newStart)
	assert.Len(r.Productions, 1)
	assert.Equal(Production{"S"}, r.Productions[0])
}

func Test_Grammar_Augmented_WrapGeneralStart(t *testing.T) {
	assert := assert.New(t)

	g := Grammar{Options: Options{WrapGeneralStart: true}}
	g.AddTerm("int", types.MakeDefaultClass("int"))
	g.AddRule("general", Production{"int"})

	gPrime := g.Augmented()

	newStart := gPrime.StartSymbol()
	assert.NotEqual("general", newStart)

	r := gPrime.Rule(newStart)
	assert.Len(r.Productions, 1)
	wrapped := r.Productions[0][0]
	assert.NotEqual("general", wrapped)

	wrappedRule := gPrime.Rule(wrapped)
	assert.ElementsMatch([]Production{{wrapped, "general"}, {"general"}}, wrappedRule.Productions)
}

func Test_Grammar_LR0Items(t *testing.T) {
	assert := assert.New(t)

	g := Grammar{}
	g.AddTerm("a", types.MakeDefaultClass("a"))
	g.AddRule("S", Production{"a", "S"})
	g.AddRule("S", Epsilon)

	items := g.LR0Items()

	// production "a S" has 3 dot positions, "ε" has exactly 1
	assert.Len(items, 4)
}
