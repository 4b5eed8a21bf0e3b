package lex

import (
	"sort"
	"strconv"

	"github.com/halvardct/lrforge/internal/automaton"
	"github.com/halvardct/lrforge/internal/util"
)

// MinimizeDFA collapses dfa to its minimal equivalent via Hopcroft-style
// partition refinement, per spec.md §4.5, with one deviation from the
// textbook algorithm required by this domain: the *initial* partition groups
// states not just by accept/non-accept but by accept/(non-accept), marker id
// — two accepting states that resolve to different token rules must never
// be merged even if their outgoing transitions are identical, since doing so
// would silently make the lexer forget which rule matched. Every later
// refinement step only ever splits groups further, so this invariant holds
// all the way to the fixpoint.
func MinimizeDFA(dfa automaton.DFA[StateInfo]) automaton.DFA[StateInfo] {
	allStates := dfa.States().Elements()
	sort.Strings(allStates)

	groupOf := map[string]int{}
	var groups [][]string

	// initial partition: bucket by (accepting, marker) signature
	sigIndex := map[int]int{}
	for _, s := range allStates {
		info := dfa.GetValue(s)
		sig := info.Marker // 0 means non-accepting; distinct markers never merge
		gi, ok := sigIndex[sig]
		if !ok {
			gi = len(groups)
			sigIndex[sig] = gi
			groups = append(groups, nil)
		}
		groups[gi] = append(groups[gi], s)
		groupOf[s] = gi
	}

	// refine to a fixpoint
	for {
		changed := false
		var newGroups [][]string
		newGroupOf := map[string]int{}

		for _, g := range groups {
			// partition g by each member's "signature": for every byte,
			// which group does its transition lead to (or -1 if none)?
			buckets := map[string][]string{}
			var bucketOrder []string
			for _, s := range g {
				sig := transitionSignature(dfa, s, groupOf)
				if _, ok := buckets[sig]; !ok {
					bucketOrder = append(bucketOrder, sig)
				}
				buckets[sig] = append(buckets[sig], s)
			}
			sort.Strings(bucketOrder)
			if len(bucketOrder) > 1 {
				changed = true
			}
			for _, sig := range bucketOrder {
				gi := len(newGroups)
				newGroups = append(newGroups, buckets[sig])
				for _, s := range buckets[sig] {
					newGroupOf[s] = gi
				}
			}
		}

		groups = newGroups
		groupOf = newGroupOf
		if !changed {
			break
		}
	}

	return buildMinimizedDFA(dfa, groups, groupOf)
}

// transitionSignature renders state s's transition behavior, relative to the
// current partition, as a comparable string: for each byte 0..255 that s has
// a transition on, the destination group's index.
func transitionSignature(dfa automaton.DFA[StateInfo], s string, groupOf map[string]int) string {
	out := make([]byte, 0, 64)
	for b := 0; b < 256; b++ {
		next := dfa.Next(s, strconv.Itoa(b))
		if next == "" {
			continue
		}
		out = append(out, []byte(strconv.Itoa(b)+":"+strconv.Itoa(groupOf[next])+";")...)
	}
	return string(out)
}

// buildMinimizedDFA constructs the minimized DFA from the final partition:
// one new state per group, named A, B, ... with the start state's group
// first and the rest in partition order, with a group's
// transitions taken from (any) one representative member and retargeted to
// the destination's group name, and a group's StateInfo formed by unioning
// its members' position sets (kept purely for inspection) while its Marker
// is the (shared, by the initial-partition invariant) marker of its members.
func buildMinimizedDFA(dfa automaton.DFA[StateInfo], groups [][]string, groupOf map[string]int) automaton.DFA[StateInfo] {
	// order groups so the group containing the original start state becomes
	// the new start state, then the rest in partition order.
	startGroup := groupOf[dfa.Start]
	order := []int{startGroup}
	for i := range groups {
		if i != startGroup {
			order = append(order, i)
		}
	}

	newName := map[int]string{}
	for rank, gi := range order {
		newName[gi] = stateName(rank)
	}

	min := automaton.DFA[StateInfo]{}
	for _, gi := range order {
		g := groups[gi]
		positions := util.NewKeySet[int]()
		marker := 0
		for _, s := range g {
			info := dfa.GetValue(s)
			positions.AddAll(info.Positions)
			if info.Marker != 0 {
				marker = info.Marker
			}
		}
		name := newName[gi]
		min.AddState(name, marker != 0)
		min.SetValue(name, StateInfo{Positions: positions, Marker: marker})
	}
	min.Start = newName[startGroup]

	for _, gi := range order {
		g := groups[gi]
		rep := g[0]
		fromName := newName[gi]
		for b := 0; b < 256; b++ {
			next := dfa.Next(rep, strconv.Itoa(b))
			if next == "" {
				continue
			}
			toName := newName[groupOf[next]]
			min.AddTransition(fromName, strconv.Itoa(b), toName)
		}
	}

	return min
}
