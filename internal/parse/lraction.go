package parse

import (
	"fmt"

	"github.com/halvardct/lrforge/internal/grammar"
	"github.com/halvardct/lrforge/internal/icterrors"
)

func isShiftReduceConlict(act1, act2 LRAction) (isSR bool, shiftAct LRAction) {
	if act1.Type == LRReduce && act2.Type == LRShift {
		return true, act2
	}
	if act2.Type == LRReduce && act1.Type == LRShift {
		return true, act1
	}

	return false, act1
}

// makeLRConflictError builds a conflict report for two candidate actions
// competing for the same (state, terminal) table cell. state is the
// (already numbered) state the conflict was detected in.
func makeLRConflictError(state string, act1, act2 LRAction, onInput string) *icterrors.ConflictError {
	if act1.Type == LRReduce && act2.Type == LRShift || act1.Type == LRShift && act2.Type == LRReduce {
		// shift-reduce conflict

		reduceRule := ""
		if act1.Type == LRReduce {
			reduceRule = act1.Symbol + " -> " + act1.Production.String()
		} else {
			reduceRule = act2.Symbol + " -> " + act2.Production.String()
		}
		msg := fmt.Sprintf("shift/reduce conflict detected on terminal %q (shift or reduce %s)", onInput, reduceRule)
		return icterrors.NewConflictError(state, onInput, act1.String(), act2.String(), msg)
	} else if act1.Type == LRReduce && act2.Type == LRReduce {
		// reduce-reduce conflict

		reduce1 := act1.Symbol + " -> " + act1.Production.String()
		reduce2 := act2.Symbol + " -> " + act2.Production.String()
		msg := fmt.Sprintf("reduce/reduce conflict detected on terminal %q (reduce %s or reduce %s)", onInput, reduce1, reduce2)
		return icterrors.NewConflictError(state, onInput, act1.String(), act2.String(), msg)
	} else if act1.Type == LRAccept || act2.Type == LRAccept {
		nonAcceptAct := act2

		if act2.Type == LRAccept {
			nonAcceptAct = act1
		}

		// accept-? conflict
		if nonAcceptAct.Type == LRShift {
			msg := fmt.Sprintf("accept/shift conflict detected on terminal %q", onInput)
			return icterrors.NewConflictError(state, onInput, act1.String(), act2.String(), msg)
		} else if nonAcceptAct.Type == LRReduce {
			reduce := nonAcceptAct.Symbol + " -> " + nonAcceptAct.Production.String()
			msg := fmt.Sprintf("accept/reduce conflict detected on terminal %q (accept or reduce %s)", onInput, reduce)
			return icterrors.NewConflictError(state, onInput, act1.String(), act2.String(), msg)
		}
	} else if act1.Type == LRShift && act2.Type == LRShift {
		msg := fmt.Sprintf("(!) shift/shift conflict on terminal %q", onInput)
		return icterrors.NewConflictError(state, onInput, act1.String(), act2.String(), msg)
	}
	msg := fmt.Sprintf("LR action conflict on terminal %q (%s or %s)", onInput, act1.String(), act2.String())
	return icterrors.NewConflictError(state, onInput, act1.String(), act2.String(), msg)
}

type LRActionType int

const (
	LRShift LRActionType = iota
	LRReduce
	LRAccept
	LRError
)

type LRAction struct {
	Type LRActionType

	// Production is used when Type is LRReduce. It is the production which
	// should be reduced; the β of A -> β.
	Production grammar.Production

	// Symbol is used when Type is LRReduce. It is the symbol to reduce the
	// production to; the A of A -> β.
	Symbol string

	// State is the state to shift to. It is used only when Type is LRShift.
	State string
}

func (act LRAction) String() string {
	switch act.Type {
	case LRAccept:
		return "ACTION<accept>"
	case LRError:
		return "ACTION<error>"
	case LRReduce:
		return fmt.Sprintf("ACTION<reduce %s -> %s>", act.Symbol, act.Production.String())
	case LRShift:
		return fmt.Sprintf("ACTION<shift %s>", act.State)
	default:
		return "ACTION<unknown>"
	}
}

func (act LRAction) Equal(o any) bool {
	other, ok := o.(LRAction)
	if !ok {
		otherPtr := o.(*LRAction)
		if !ok {
			return false
		}
		if otherPtr == nil {
			return false
		}
		other = *otherPtr
	}

	if act.Type != other.Type {
		return false
	} else if !act.Production.Equal(other.Production) {
		return false
	} else if act.State != other.State {
		return false
	} else if act.Symbol != other.Symbol {
		return false
	}

	return true
}
