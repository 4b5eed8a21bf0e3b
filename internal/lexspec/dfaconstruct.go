package lex

import (
	"sort"
	"strconv"
	"strings"

	"github.com/halvardct/lrforge/internal/automaton"
	"github.com/halvardct/lrforge/internal/util"
)

// StateInfo is the value every state of a freshly-constructed (pre-
// minimization) regex DFA carries: the set of syntax-tree leaf positions
// that state represents (kept around for inspection/debugging, mirroring
// the original subset-construction algorithm's own bookkeeping) and, for an
// accepting state, the marker id that state resolves to.
type StateInfo struct {
	Positions util.ISet[int]

	// Marker is 0 for a non-accepting state. For an accepting state it is
	// the lowest marker id among the markers reachable in that state's
	// position set: spec.md's disambiguation rule is "longest match wins;
	// among ties at the same length, the rule/marker declared earliest
	// wins", and an earlier-declared rule always receives the lower marker
	// id (Normalize assigns them in source order starting at 1000), so the
	// lowest marker id in a tied accepting state is exactly the earliest
	// declared rule.
	Marker int
}

// computeFollowpos computes followpos(p) for every leaf position p in the
// tree rooted at root (Dragon Book Algorithm 3.63, rule 2): walking every
// Concat node unions right's firstpos into followpos(p) for each p in
// left's lastpos, and walking every Star node unions the node's own firstpos
// into followpos(p) for each p in the node's own lastpos. leaves is indexed
// 1..n (leaves[0] is unused); the returned slice has the same indexing.
func computeFollowpos(root *SyntaxNode, leaves []Symbol) []util.ISet[int] {
	followpos := make([]util.ISet[int], len(leaves))
	for i := range followpos {
		followpos[i] = util.NewKeySet[int]()
	}

	var walk func(n *SyntaxNode)
	walk = func(n *SyntaxNode) {
		if n == nil {
			return
		}
		switch n.Kind {
		case NodeLeaf:
			// nothing to contribute
		case NodeStar:
			walk(n.Left)
			for _, p := range n.LastPos.Elements() {
				followpos[p].AddAll(n.FirstPos)
			}
		case NodeConcat:
			walk(n.Left)
			walk(n.Right)
			for _, p := range n.Left.LastPos.Elements() {
				followpos[p].AddAll(n.Right.FirstPos)
			}
		case NodeAlt:
			walk(n.Left)
			walk(n.Right)
		}
	}
	walk(root)

	return followpos
}

// positionSetKey canonicalizes a position set to a comparable string so
// subset construction can recognize when it has rediscovered a state it
// already created.
func positionSetKey(s util.ISet[int]) string {
	elems := s.Elements()
	sort.Ints(elems)
	parts := make([]string, len(elems))
	for i, e := range elems {
		parts[i] = strconv.Itoa(e)
	}
	return strings.Join(parts, ",")
}

// stateName renders the nth (0-based) discovered state's name as a letter
// sequence: A, B, ..., Z, AA, AB, ..., matching spec.md §4.4's naming
// convention for DFA states.
func stateName(n int) string {
	if n < 0 {
		panic("negative state index")
	}
	var out []byte
	n++ // switch to 1-based for the standard bijective base-26 conversion
	for n > 0 {
		n--
		out = append([]byte{byte('A' + n%26)}, out...)
		n /= 26
	}
	return string(out)
}

// ConstructDFA builds the (pre-minimization) regex DFA from a syntax tree via
// ε-free subset construction over followpos, per spec.md §4.4: the start
// state is firstpos(root); from each discovered state (a set of leaf
// positions), and for every byte value, the successor state is the union of
// followpos(p) over every p in the current state whose leaf matches that
// byte; a state is accepting iff its position set contains a marker
// position, in which case it resolves to the lowest such marker id.
func ConstructDFA(root *SyntaxNode, leaves []Symbol) automaton.DFA[StateInfo] {
	followpos := computeFollowpos(root, leaves)

	dfa := automaton.DFA[StateInfo]{}

	type pending struct {
		name string
		set  util.ISet[int]
	}

	discovered := map[string]string{} // position-set key -> state name
	var queue []pending

	addState := func(set util.ISet[int]) string {
		key := positionSetKey(set)
		if name, ok := discovered[key]; ok {
			return name
		}
		name := stateName(len(discovered))
		discovered[key] = name

		marker := resolveMarker(set, leaves)
		dfa.AddState(name, marker != 0)
		dfa.SetValue(name, StateInfo{Positions: set, Marker: marker})

		queue = append(queue, pending{name: name, set: set})
		return name
	}

	start := root.FirstPos.Copy()
	dfa.Start = addState(start)

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		// the set of distinct bytes any leaf in this state's position set
		// can transition on.
		byteSeen := [256]bool{}
		for _, p := range cur.set.Elements() {
			for _, b := range leaves[p].Bytes() {
				byteSeen[b] = true
			}
		}

		for b := 0; b < 256; b++ {
			if !byteSeen[b] {
				continue
			}
			u := util.NewKeySet[int]()
			for _, p := range cur.set.Elements() {
				sym := leaves[p]
				if symMatchesByte(sym, byte(b)) {
					u.AddAll(followpos[p])
				}
			}
			if u.Empty() {
				continue
			}
			toName := addState(u)
			dfa.AddTransition(cur.name, strconv.Itoa(b), toName)
		}
	}

	return dfa
}

// symMatchesByte reports whether leaf symbol sym transitions on byte b. A
// Marker or Epsilon leaf never does (markers and λ are never transition
// symbols, per spec.md §3).
func symMatchesByte(sym Symbol, b byte) bool {
	switch sym.Kind {
	case SymByte:
		return sym.Byte == b
	case SymUnion:
		for _, c := range sym.Union {
			if c == b {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// resolveMarker returns the lowest marker id reachable from any position in
// set, or 0 if set contains no marker position.
func resolveMarker(set util.ISet[int], leaves []Symbol) int {
	best := 0
	for _, p := range set.Elements() {
		sym := leaves[p]
		if !sym.IsMarker() {
			continue
		}
		if best == 0 || sym.Marker < best {
			best = sym.Marker
		}
	}
	return best
}
