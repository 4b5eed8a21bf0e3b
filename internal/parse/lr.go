package parse

import (
	"fmt"
	"strings"

	"github.com/halvardct/lrforge/internal/automaton"
	"github.com/halvardct/lrforge/internal/grammar"
	"github.com/halvardct/lrforge/internal/icterrors"
	"github.com/halvardct/lrforge/internal/types"
	"github.com/halvardct/lrforge/internal/util"
)

// LRParseTable is a table of information passed to an LR parser. These will be
// generated from a grammar for the purposes of performing bottom-up parsing.
type LRParseTable interface {
	// Shift reads one token of input. For SR parsers that are implemented with
	// a stack, this will push a terminal onto the stack.
	//
	// ABC|xyz => ABCx|yz
	//Shift()

	// Reduce applies an inverse production at the right end of the left string.
	// For SR parsers that are implemented with a stack, this will pop 0 or more
	// terminals off of the stack (production rhs), then will push a
	// non-terminal onto the stack (production lhs).
	//
	// Given A -> xy is a production, then:
	// Cbxy|ijk => CbA|ijk
	//Reduce()

	// Initial returns the initial state of the parse table, if that is
	// applicable for the table.
	Initial() string

	// Action gets the next action to take based on a state i and terminal a.
	Action(state, symbol string) LRAction

	// Goto maps a state and a grammar symbol to some other state.
	Goto(state, symbol string) (string, error)

	// String prints a string representation of the table. If two LRParseTables
	// produce the same String() output, they are considered equal.
	String() string

	// GetDFA returns the DFA simulated by the table, with each state's value
	// set to the human-readable strings of the LR0 items it holds. Some
	// tables may in fact be the DFA itself along with supplementary info.
	GetDFA() automaton.DFA[util.StringSet]
}

// RecoveryMode selects how the panic-mode recovery routine derives its
// synchronization set.
type RecoveryMode int

const (
	// RecoverFixedSet resynchronizes on a fixed, hard-coded set of terminal
	// IDs (see ParserOptions.FixedSyncSet), regardless of where in the
	// grammar the error occurred.
	RecoverFixedSet RecoveryMode = iota

	// RecoverFollowDerived resynchronizes on the union of FOLLOW(A) over
	// every non-terminal A that has a goto from, or a reduce action in, the
	// state on top of the state stack when the error was detected.
	RecoverFollowDerived
)

// ParserOptions configures optional behavior of an lrParser, chiefly its
// panic-mode error recovery strategy.
type ParserOptions struct {
	RecoveryMode RecoveryMode

	// FixedSyncSet is the synchronization set used when RecoveryMode is
	// RecoverFixedSet. If empty, DefaultFixedSyncSet is used.
	FixedSyncSet []string
}

// DefaultFixedSyncSet is the minimal synchronization set a panic-mode
// recovery routine should use absent anything more specific: a statement
// terminator, an identifier, an opening grouping symbol, and end-of-text.
var DefaultFixedSyncSet = []string{"semicolon", "id", "lparen", "$"}

func defaultParserOptions() ParserOptions {
	return ParserOptions{RecoveryMode: RecoverFixedSet, FixedSyncSet: DefaultFixedSyncSet}
}

type lrParser struct {
	table     LRParseTable
	parseType types.ParserType
	gram      grammar.Grammar
	trace     func(s string)
	opts      ParserOptions

	// recovered holds one icterrors.SyntaxError per panic-mode recovery
	// attempted during the most recent call to Parse. A non-empty Recovered
	// after a successful (nil-error) Parse means the input was accepted only
	// after discarding and resynchronizing past one or more syntax errors.
	recovered []error
}

func (lr *lrParser) GetDFA() *automaton.DFA[util.StringSet] {
	dfa := lr.table.GetDFA()
	return &dfa
}

func (lr *lrParser) RegisterTraceListener(listener func(s string)) {
	lr.trace = listener
}

func (lr *lrParser) Type() types.ParserType {
	return lr.parseType
}

func (lr *lrParser) TableString() string {
	return lr.table.String()
}

// Recovered returns the syntax errors that started a panic-mode recovery
// during the most recent call to Parse, in the order they occurred. If that
// Parse returned an error, the last of them is the one recovery failed on.
func (lr *lrParser) Recovered() []error {
	return lr.recovered
}

func (lr lrParser) notifyTraceFn(fn func() string) {
	if lr.trace != nil {
		lr.trace(fn())
	}
}

func (lr lrParser) notifyTrace(fmtStr string, args ...interface{}) {
	lr.notifyTraceFn(func() string { return fmt.Sprintf(fmtStr, args...) })
}

func (lr lrParser) notifyStatePeek(s string) {
	lr.notifyTrace("states.peek(): %s", s)
}

func (lr lrParser) notifyStatePush(s string) {
	lr.notifyTrace("states.push(): %s", s)
}

func (lr lrParser) notifyStatePop(s string) {
	if s == "" {
		lr.notifyTrace("states.pop()")
	} else {
		lr.notifyTrace("states.pop(): %s", s)
	}
}

func (lr lrParser) notifyAction(act LRAction) {
	lr.notifyTrace("Action: %s", act.Type.String())
}

func (lr lrParser) notifyNextToken(tok types.Token) {
	lr.notifyTrace("Got next token: %s", tok.String())
}

func (lr lrParser) notifyRecovery(msg string) {
	lr.notifyTrace("panic-mode: %s", msg)
}

func (lr lrParser) notifyTokenStack(st util.Stack[types.Token]) {
	lr.notifyTraceFn(func() string {
		var lexStr strings.Builder
		var tokStr strings.Builder
		for i := range st.Of {
			tok := st.Of[i]
			lexStr.WriteRune('"')
			lexStr.WriteString(tok.Lexeme())
			lexStr.WriteRune('"')

			tokStr.WriteString(strings.ToUpper(tok.Class().ID()))

			if i+1 < len(st.Of) {
				lexStr.WriteString(", ")
				tokStr.WriteString(", ")
			}
		}
		if st.Empty() {
			lexStr.WriteString("(empty)")
			tokStr.WriteString("(empty)")
		}

		str := fmt.Sprintf("Token stack (lexed): %s", lexStr.String())
		str += "\n"
		str += fmt.Sprintf("Token stack (ttype): %s", tokStr.String())

		return str
	})
}

// parserRunState is one of the four states spec.md's panic-mode state
// machine names: Running, Recovering, Accepted, Failed. Parse itself never
// needs to hold this across calls; it is local to a single run.
type parserRunState int

const (
	stateRunning parserRunState = iota
	stateRecovering
	stateAccepted
	stateFailed
)

// Parse parses the input stream with the internal LR parse table.
//
// This is an implementation of Algorithm 4.44, "LR-parsing algorithm", from
// the purple dragon book, extended with panic-mode error recovery: on an
// LRError action the parser does not return immediately. It discards
// lookahead tokens until one falls in the synchronization set, then pops
// parse-stack frames until one has a non-error action on that token, and
// resumes normal parsing from there. If recovery cannot resynchronize (the
// stack empties, or end of input is reached in a state with no action on
// it), Parse gives up and returns a syntax error saying so.
func (lr *lrParser) Parse(stream types.TokenStream) (types.ParseTree, error) {
	if lr.opts.RecoveryMode == 0 && lr.opts.FixedSyncSet == nil {
		lr.opts = defaultParserOptions()
	}
	lr.recovered = nil

	stateStack := util.Stack[string]{Of: []string{lr.table.Initial()}}

	// we will use these to build our parse tree
	tokenBuffer := util.Stack[types.Token]{}
	subTreeRoots := util.Stack[*types.ParseTree]{}

	runState := stateRunning

	// let a be the first symbol of w$;
	a := stream.Next()
	lr.notifyNextToken(a)

	for { /* repeat forever */
		lr.notifyTokenStack(tokenBuffer)

		if runState == stateRecovering {
			a = lr.recover(stream, &stateStack, a)
			if a.Class().ID() == types.TokenError.ID() {
				return types.ParseTree{}, icterrors.NewSyntaxErrorFromToken("unable to resynchronize after syntax error", a)
			}
			runState = stateRunning
		}

		// let s be the state on top of the stack;
		s := stateStack.Peek()
		lr.notifyStatePeek(s)

		ACTION := lr.table.Action(s, a.Class().ID())
		lr.notifyAction(ACTION)

		switch ACTION.Type {
		case LRShift: // if ( ACTION[s, a] = shift t )
			// add token to our buffer
			tokenBuffer.Push(a)

			t := ACTION.State

			// push t onto the stack
			stateStack.Push(t)
			lr.notifyStatePush(t)

			// let a be the next input symbol
			a = stream.Next()
			lr.notifyNextToken(a)
		case LRReduce: // else if ( ACTION[s, a] = reduce A -> β )
			A := ACTION.Symbol
			beta := ACTION.Production

			// use the reduce to create a node in the parse tree
			node := &types.ParseTree{Value: A, Children: make([]*types.ParseTree, 0)}
			// we need to go from right to left of the production to pop things
			// from the stacks in the correct order
			for i := len(beta) - 1; i >= 0; i-- {
				sym := beta[i]
				if strings.ToLower(sym) == sym {
					// it is a terminal. read the source from the token buffer
					tok := tokenBuffer.Pop()
					subNode := &types.ParseTree{Terminal: true, Value: tok.Class().ID(), Source: tok}
					node.Children = append([]*types.ParseTree{subNode}, node.Children...)
				} else {
					// it is a non-terminal. it should be in our stack of
					// current tree roots.
					subNode := subTreeRoots.Pop()
					node.Children = append([]*types.ParseTree{subNode}, node.Children...)
				}
			}
			// remember it for next time
			subTreeRoots.Push(node)

			// pop |β| symbols off the stack;
			for i := 0; i < len(beta); i++ {
				stateStack.Pop()
				lr.notifyStatePop("")
			}

			// let state t now be on top of the stack
			t := stateStack.Peek()
			lr.notifyStatePeek(t)

			// push GOTO[t, A] onto the stack
			toPush, err := lr.table.Goto(t, A)
			if err != nil {
				return types.ParseTree{}, icterrors.NewSyntaxErrorFromToken(fmt.Sprintf("LR parsing error; DFA has no valid transition from here on %q", A), a)
			}
			stateStack.Push(toPush)
			lr.notifyStatePush(toPush)

			// output the production A -> β
			// (TODO: put it on the parse tree)
		case LRAccept: // else if ( ACTION[s, a] = accept )
			runState = stateAccepted
			// parsing is done. there should be at least one item on the stack
			pt := subTreeRoots.Pop()
			return *pt, nil
		case LRError:
			// call error-recovery routine
			synErr := icterrors.NewSyntaxErrorFromToken(fmt.Sprintf("unexpected %s; %s", a.Class().Human(), lr.getExpectedString(s)), a)
			lr.recovered = append(lr.recovered, synErr)
			lr.notifyRecovery(synErr.Error())
			runState = stateRecovering
		}
	}
}

// recover implements spec.md §7's panic-mode recovery: skip lookahead tokens
// until one is in the synchronization set, then pop stack frames until a
// state is found whose action on that token is not itself an error. It
// returns the resynchronizing token (which becomes the new lookahead) or a
// token of class types.TokenError if recovery failed (stack exhausted or
// end-of-text reached without finding a usable state).
func (lr *lrParser) recover(stream types.TokenStream, stateStack *util.Stack[string], a types.Token) types.Token {
	syncSet := lr.syncSet(stateStack.Peek())

	for !syncSet[a.Class().ID()] && a.Class().ID() != types.TokenEndOfText.ID() {
		lr.notifyRecovery(fmt.Sprintf("discarding %q", a.Lexeme()))
		a = stream.Next()
	}

	for {
		if stateStack.Empty() {
			return errorToken{}
		}

		s := stateStack.Peek()
		act := lr.table.Action(s, a.Class().ID())
		if act.Type != LRError {
			return a
		}

		if a.Class().ID() == types.TokenEndOfText.ID() {
			return errorToken{}
		}

		stateStack.Pop()
		lr.notifyStatePop("")
	}
}

// syncSet computes the synchronization set to recover with, given the
// RecoveryMode in effect and, for RecoverFollowDerived, the state currently
// on top of the stack.
func (lr *lrParser) syncSet(topState string) map[string]bool {
	set := map[string]bool{"$": true}

	switch lr.opts.RecoveryMode {
	case RecoverFollowDerived:
		for _, nt := range lr.gram.NonTerminals() {
			// a non-terminal is "under construction" at topState if some
			// action on topState is a reduce to it; approximate this by
			// unioning FOLLOW(nt) for every non-terminal with a non-error
			// action reachable from topState, which is a superset of the
			// single-nonterminal derivation spec.md describes but never
			// under-recovers.
			if lr.hasActionInvolving(topState, nt) {
				for _, f := range lr.gram.FOLLOW(nt).Elements() {
					set[f] = true
				}
			}
		}
		if len(set) == 1 {
			// nothing matched; fall back to the fixed set so recovery can
			// still make progress
			for _, sym := range lr.fixedSyncSet() {
				set[sym] = true
			}
		}
	default:
		for _, sym := range lr.fixedSyncSet() {
			set[sym] = true
		}
	}

	return set
}

func (lr *lrParser) fixedSyncSet() []string {
	if len(lr.opts.FixedSyncSet) > 0 {
		return lr.opts.FixedSyncSet
	}
	return DefaultFixedSyncSet
}

// hasActionInvolving reports whether some terminal has a non-error action at
// state that would shift into, or whether state can ever reduce to, nt. This
// is a coarse approximation used only to pick a recovery FOLLOW set.
func (lr *lrParser) hasActionInvolving(state, nt string) bool {
	for _, term := range lr.gram.Terminals() {
		act := lr.table.Action(state, term)
		if act.Type == LRReduce && act.Symbol == nt {
			return true
		}
	}
	if _, err := lr.table.Goto(state, nt); err == nil {
		return true
	}
	return false
}

// errorToken is a minimal types.Token used internally to signal that panic
// mode failed to resynchronize.
type errorToken struct{}

func (errorToken) Class() types.TokenClass { return types.TokenError }
func (errorToken) Lexeme() string          { return "" }
func (errorToken) LinePos() int            { return 0 }
func (errorToken) Line() int               { return 0 }
func (errorToken) FullLine() string        { return "" }
func (errorToken) String() string          { return "<error>" }

func (lr lrParser) getExpectedString(stateName string) string {
	expected := lr.findExpectedTokens(stateName)

	var sb strings.Builder

	sb.WriteString("expected ")

	commas := false
	finalOr := false

	if len(expected) > 1 {
		finalOr = true
		if len(expected) > 2 {
			commas = true
		}
	}
	for i := range expected {
		t := expected[i]

		if i == 0 {
			sb.WriteString(util.ArticleFor(t.Human(), false))
			sb.WriteRune(' ')
		}

		if finalOr && i+1 == len(expected) {
			sb.WriteString(" or ")
		}

		sb.WriteString(t.Human())
		if commas && i+1 < len(expected) {
			sb.WriteString(", ")
		}
	}

	return sb.String()
}

// findExpectedTokens returns all token classes that are allowed/expected for
// the given state, that is, those symbols that result in a non-error entry.
func (lr lrParser) findExpectedTokens(stateName string) []types.TokenClass {
	terms := lr.gram.Terminals()

	classes := make([]types.TokenClass, 0)
	for i := range terms {
		t := lr.gram.Term(terms[i])
		act := lr.table.Action(stateName, t.ID())
		if act.Type != LRError {
			classes = append(classes, t)
		}
	}

	return classes
}
