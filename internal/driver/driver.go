// Package driver ties a compiled lexer DFA and an LR parse table together
// into a single shift-reduce run over a source text, recording each step it
// takes so callers can inspect or replay the run.
//
// It deliberately does not reuse parse.lrParser.Parse: that method builds a
// types.ParseTree, where Run only needs to narrate
// the sequence of shifts, reduces, accepts, errors, and recoveries against a
// caller-numbered production list (grammar.EnumeratedProduction), the way
// spec.md's driver scenarios describe.
package driver

import (
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/halvardct/lrforge/internal/grammar"
	"github.com/halvardct/lrforge/internal/icterrors"
	lex "github.com/halvardct/lrforge/internal/lexspec"
	"github.com/halvardct/lrforge/internal/parse"
	"github.com/halvardct/lrforge/internal/types"
	"github.com/halvardct/lrforge/internal/util"
)

// StepKind classifies one entry in a run's trace.
type StepKind int

const (
	StepShift StepKind = iota
	StepReduce
	StepAccept
	StepError
	StepRecover
)

func (k StepKind) String() string {
	switch k {
	case StepShift:
		return "shift"
	case StepReduce:
		return "reduce"
	case StepAccept:
		return "accept"
	case StepError:
		return "error"
	case StepRecover:
		return "recover"
	default:
		return "unknown"
	}
}

// Record is one step of a driver run, suitable for printing as a trace or
// for assertions in tests.
type Record struct {
	// Step is the 1-based index of this record within the run.
	Step int

	// State is the parser state on top of the stack when this step began.
	State string

	// Lookahead is the token class ID of the lookahead in effect.
	Lookahead string

	// Lexeme is the lexed text of the lookahead token.
	Lexeme string

	Kind StepKind

	// Detail carries step-specific information: the production that fired
	// for StepReduce (by its EnumeratedProduction.String()), the text
	// "resynchronized" for StepRecover (Lexeme then holds the token
	// recovery resumed on), or the diagnostic message for StepError.
	Detail string
}

// Verdict is the outcome of a single call to Run.
type Verdict struct {
	// RunID uniquely identifies this run, so trace output from the
	// lexer, table construction, and the simulator can be correlated in
	// logs even when several runs interleave.
	RunID uuid.UUID

	// Accepted is whether the input was accepted, with or without
	// intervening panic-mode recoveries.
	Accepted bool

	// TokensConsumed is the number of non-EOT tokens shifted.
	TokensConsumed int

	// Reductions is the number of productions reduced.
	Reductions int

	// RecoveredErrors is the number of panic-mode recoveries performed
	// before the run either accepted or gave up.
	RecoveredErrors int

	// Err is the unrecovered error that ended the run, nil if Accepted.
	Err error
}

// Options configures a Run, chiefly its panic-mode recovery strategy.
type Options struct {
	RecoveryMode parse.RecoveryMode
	FixedSyncSet []string

	// MaxSteps bounds the number of loop iterations Run will perform
	// before giving up and returning an error, as a backstop against a
	// malformed table looping forever. Zero means defaultOptions' value.
	MaxSteps int
}

func defaultOptions() Options {
	return Options{
		RecoveryMode: parse.RecoverFixedSet,
		FixedSyncSet: parse.DefaultFixedSyncSet,
		MaxSteps:     100000,
	}
}

// Run drives table over the tokens dfa lexes from src, recording every
// shift, reduce, accept, error, and panic-mode recovery it performs. prods
// is consulted only to label which numbered production fired on a reduce;
// it need not be exhaustive for Run to make progress, but a reduce whose
// production isn't found in it is labeled with the bare A -> β text instead
// of an index.
func Run(dfa lex.DFA, table parse.LRParseTable, prods []grammar.EnumeratedProduction, src io.Reader, opts Options) (Verdict, []Record, error) {
	if opts.RecoveryMode == 0 && opts.FixedSyncSet == nil && opts.MaxSteps == 0 {
		opts = defaultOptions()
	}
	if opts.MaxSteps == 0 {
		opts.MaxSteps = defaultOptions().MaxSteps
	}
	if len(opts.FixedSyncSet) == 0 {
		opts.FixedSyncSet = parse.DefaultFixedSyncSet
	}

	stream, err := lex.NewDFALexer(dfa, src)
	if err != nil {
		return Verdict{}, nil, fmt.Errorf("building lexer: %w", err)
	}

	g := reconstructGrammar(prods)
	stateStack := util.Stack[string]{Of: []string{table.Initial()}}

	var records []Record
	verdict := Verdict{RunID: uuid.New()}

	record := func(state string, a types.Token, kind StepKind, detail string) {
		records = append(records, Record{
			Step:      len(records) + 1,
			State:     state,
			Lookahead: a.Class().ID(),
			Lexeme:    a.Lexeme(),
			Kind:      kind,
			Detail:    detail,
		})
	}

	recovering := false
	a := stream.Next()

	for step := 0; step < opts.MaxSteps; step++ {
		if recovering {
			resynced, ok := recover_(stream, &stateStack, table, a, opts, g)
			if !ok {
				verdict.Err = icterrors.NewSyntaxErrorFromToken("unable to resynchronize after syntax error", a)
				return verdict, records, verdict.Err
			}
			a = resynced
			verdict.RecoveredErrors++
			record(stateStack.Peek(), a, StepRecover, "resynchronized")
			recovering = false
		}

		s := stateStack.Peek()
		action := table.Action(s, a.Class().ID())

		switch action.Type {
		case parse.LRShift:
			record(s, a, StepShift, "")
			verdict.TokensConsumed++
			stateStack.Push(action.State)
			a = stream.Next()

		case parse.LRReduce:
			detail := lookupProduction(prods, a.Class().ID(), action)
			record(s, a, StepReduce, detail)
			verdict.Reductions++

			for i := 0; i < len(action.Production); i++ {
				stateStack.Pop()
			}
			t := stateStack.Peek()
			toPush, gerr := table.Goto(t, action.Symbol)
			if gerr != nil {
				verdict.Err = icterrors.NewSyntaxErrorFromToken(
					fmt.Sprintf("no valid transition on %q after reducing", action.Symbol), a)
				return verdict, records, verdict.Err
			}
			stateStack.Push(toPush)

		case parse.LRAccept:
			record(s, a, StepAccept, "")
			verdict.Accepted = true
			return verdict, records, nil

		case parse.LRError:
			msg := fmt.Sprintf("unexpected token %q", a.Lexeme())
			record(s, a, StepError, msg)
			recovering = true
		}
	}

	verdict.Err = fmt.Errorf("driver: exceeded %d steps without accepting or failing; likely a malformed table", opts.MaxSteps)
	return verdict, records, verdict.Err
}

// lookupProduction finds the EnumeratedProduction matching the firing
// reduce action (by non-terminal and production body) and renders its
// numbered form; falls back to the bare A -> β text if none is found.
func lookupProduction(prods []grammar.EnumeratedProduction, lookahead string, action parse.LRAction) string {
	for _, p := range prods {
		if p.NonTerminal == action.Symbol && p.Production.Equal(action.Production) {
			return p.String()
		}
	}
	return fmt.Sprintf("%s -> %s", action.Symbol, action.Production.String())
}

// recover_ implements panic-mode recovery: discard lookahead tokens until
// one falls in the synchronization set opts.RecoveryMode selects, then pop
// state-stack frames until one has a non-error action on that token.
// Returns the resynchronizing token and true, or the token it stopped at and
// false if the stack was exhausted, or if the lookahead is end-of-text and the
// state on top of the stack has no action on it.
func recover_(stream types.TokenStream, stateStack *util.Stack[string], table parse.LRParseTable, a types.Token, opts Options, g grammar.Grammar) (types.Token, bool) {
	sync := syncSet(stateStack.Peek(), table, g, opts)

	for !sync[a.Class().ID()] && a.Class().ID() != types.TokenEndOfText.ID() {
		a = stream.Next()
	}

	for {
		if stateStack.Empty() {
			return a, false
		}
		s := stateStack.Peek()
		act := table.Action(s, a.Class().ID())
		if act.Type != parse.LRError {
			return a, true
		}
		if a.Class().ID() == types.TokenEndOfText.ID() {
			return a, false
		}
		stateStack.Pop()
	}
}

// syncSet computes the synchronization set to recover with, mirroring
// parse.lrParser.syncSet: RecoverFixedSet always uses opts.FixedSyncSet (or
// DefaultFixedSyncSet if empty); RecoverFollowDerived unions FOLLOW(nt) over
// every non-terminal reachable from topState, falling back to the fixed set
// if nothing matches.
func syncSet(topState string, table parse.LRParseTable, g grammar.Grammar, opts Options) map[string]bool {
	set := map[string]bool{"$": true}

	if opts.RecoveryMode == parse.RecoverFollowDerived {
		for _, nt := range g.NonTerminals() {
			if hasActionInvolving(topState, nt, table, g) {
				for _, f := range g.FOLLOW(nt).Elements() {
					set[f] = true
				}
			}
		}
		if len(set) > 1 {
			return set
		}
		// nothing matched; fall through to the fixed set so recovery can
		// still make progress
	}

	fixedSyncSet := opts.FixedSyncSet
	if len(fixedSyncSet) == 0 {
		fixedSyncSet = parse.DefaultFixedSyncSet
	}
	for _, sym := range fixedSyncSet {
		set[sym] = true
	}
	return set
}

// hasActionInvolving reports whether some terminal has a non-error action at
// state that would shift into, or whether state can ever reduce to, nt.
func hasActionInvolving(state, nt string, table parse.LRParseTable, g grammar.Grammar) bool {
	for _, term := range g.Terminals() {
		act := table.Action(state, term)
		if act.Type == parse.LRReduce && act.Symbol == nt {
			return true
		}
	}
	if _, err := table.Goto(state, nt); err == nil {
		return true
	}
	return false
}

// reconstructGrammar rebuilds the grammar.Grammar prods was enumerated from,
// well enough to compute FOLLOW sets over it: every production contributes
// its rule, and every production-body symbol that never appears as a rule's
// non-terminal is registered as a terminal. Run has no other access to the
// original grammar, since its signature (SPEC_FULL.md §6) takes only the
// already-enumerated production list, not the grammar itself.
func reconstructGrammar(prods []grammar.EnumeratedProduction) grammar.Grammar {
	var g grammar.Grammar

	nonTerminals := make(map[string]bool, len(prods))
	for _, ep := range prods {
		nonTerminals[ep.NonTerminal] = true
	}
	for _, ep := range prods {
		g.AddRule(ep.NonTerminal, ep.Production)
	}

	seenTerms := make(map[string]bool)
	for _, ep := range prods {
		for _, sym := range ep.Production {
			if sym == "" || nonTerminals[sym] || seenTerms[sym] {
				continue
			}
			seenTerms[sym] = true
			g.AddTerm(sym, types.MakeDefaultClass(sym))
		}
	}

	return g
}
