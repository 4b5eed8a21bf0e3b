// Package icterrors holds error types used across the generator pipeline
// (lexing, parsing, grammar construction) that carry source position context
// so callers can render a human-readable caret diagnostic.
package icterrors

import (
	"fmt"
	"strings"

	"github.com/halvardct/lrforge/internal/types"
)

// SyntaxError is an error encountered while lexing or parsing a source text.
// It retains enough of the offending token's context to produce a
// multi-line, caret-annotated message via FullMessage.
type SyntaxError struct {
	message  string
	line     int
	linePos  int
	fullLine string
	lexeme   string
}

// NewSyntaxErrorFromToken creates a SyntaxError for the given message,
// attributing it to the position of tok.
func NewSyntaxErrorFromToken(message string, tok types.Token) *SyntaxError {
	return &SyntaxError{
		message:  message,
		line:     tok.Line(),
		linePos:  tok.LinePos(),
		fullLine: tok.FullLine(),
		lexeme:   tok.Lexeme(),
	}
}

// Error returns the bare message, satisfying the error interface.
func (se *SyntaxError) Error() string {
	return se.message
}

// FullMessage returns a multi-line diagnostic containing the message, the
// offending source line, and a caret pointing at the column the error was
// detected at.
func (se *SyntaxError) FullMessage() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%d: %s\n", se.line, se.message)
	sb.WriteString(se.fullLine)
	if !strings.HasSuffix(se.fullLine, "\n") {
		sb.WriteRune('\n')
	}

	caretPos := se.linePos - len(se.lexeme)
	if caretPos < 0 {
		caretPos = 0
	}
	sb.WriteString(strings.Repeat(" ", caretPos))
	sb.WriteRune('^')

	return sb.String()
}

// ConflictError is returned when grammar or table construction encounters an
// ambiguity (a shift/reduce or reduce/reduce conflict) that the chosen
// construction mode cannot resolve on its own. First and Second are the
// conflicting actions' String() renderings, kept as plain strings here so
// this package does not need to import the parse package.
type ConflictError struct {
	message  string
	State    string
	Terminal string
	First    string
	Second   string
}

func NewConflictError(state, terminal, first, second, message string) *ConflictError {
	return &ConflictError{message: message, State: state, Terminal: terminal, First: first, Second: second}
}

func (ce *ConflictError) Error() string {
	return ce.message
}

// SpecError is returned when a loaded grammar or lexer specification itself
// is inconsistent, e.g. it references an undefined terminal or non-terminal.
type SpecError struct {
	message string
}

func NewSpecError(format string, args ...interface{}) *SpecError {
	return &SpecError{message: fmt.Sprintf(format, args...)}
}

func (se *SpecError) Error() string {
	return se.message
}
