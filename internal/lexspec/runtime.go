package lex

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/halvardct/lrforge/internal/automaton"
	"github.com/halvardct/lrforge/internal/types"
)

// DFA is a compiled, minimized lexer automaton: the regex DFA stages B
// through E build, plus the marker -> token mapping stage F's runtime needs
// to turn an accepting state into an emitted token. It is the artefact
// spec.md §4 calls the product of the whole regex-to-DFA pipeline, and the
// type a driver.Run caller constructs once and reuses across every
// NewDFALexer call.
type DFA struct {
	Automaton automaton.DFA[StateInfo]
	Markers   map[int]MarkerInfo
}

// Compile runs the full stage B-E pipeline (Normalize, Tokenize,
// InsertConcatenation, ToPostfix, BuildSyntaxTree, ConstructDFA,
// MinimizeDFA) over a lexer specification's definitions and token rules,
// producing the DFA stage F's runtime lexes with.
func Compile(defs Definitions, rules []TokenRule) (DFA, error) {
	combined, markers, err := Normalize(defs, rules)
	if err != nil {
		return DFA{}, fmt.Errorf("normalizing lexer spec: %w", err)
	}

	toks, err := Tokenize(combined)
	if err != nil {
		return DFA{}, fmt.Errorf("tokenizing normalized regex: %w", err)
	}
	toks = InsertConcatenation(toks)

	postfix, err := ToPostfix(toks)
	if err != nil {
		return DFA{}, fmt.Errorf("converting to postfix: %w", err)
	}

	tree, leaves, err := BuildSyntaxTree(postfix)
	if err != nil {
		return DFA{}, fmt.Errorf("building syntax tree: %w", err)
	}

	raw := ConstructDFA(tree, leaves)
	min := MinimizeDFA(raw)

	return DFA{Automaton: min, Markers: markers}, nil
}

// dfaLex is the stage F runtime: a TokenStream that walks a compiled DFA
// byte-by-byte against a fully-buffered input, applying the standard
// maximal-munch rule (Dragon Book §3.5.2): it keeps advancing as long as the
// DFA has a transition, and when it falls off the automaton (or reaches the
// end of input) it backs up to the last position at which the DFA was in an
// accepting state and emits the token that state's (already
// lowest-marker-resolved, by ConstructDFA/MinimizeDFA) marker names. If no
// accepting state was ever reached, it discards one byte as a lexical error
// and resumes from there, per spec.md §4.5.
type dfaLex struct {
	dfa DFA
	buf []byte
	pos int

	curLine     int
	curPos      int
	curFullLine string

	done    bool
	classes map[string]types.TokenClass
}

// NewDFALexer reads input to completion and returns a TokenStream that lexes
// it against dfa. Buffering up front (rather than streaming) is what lets
// the DFA walk run at byte granularity without needing its own mark/restore
// reader: stage F's automaton has no backtracking once past a state, so the
// only lookahead it ever needs is "how far did the longest match reach",
// which a plain byte slice answers directly.
func NewDFALexer(dfa DFA, input io.Reader) (types.TokenStream, error) {
	data, err := io.ReadAll(input)
	if err != nil {
		return nil, fmt.Errorf("reading lexer input: %w", err)
	}
	return &dfaLex{
		dfa:     dfa,
		buf:     data,
		curLine: 1,
		curPos:  1,
		classes: map[string]types.TokenClass{},
	}, nil
}

func (lx *dfaLex) classFor(name string) types.TokenClass {
	if cl, ok := lx.classes[name]; ok {
		return cl
	}
	cl := NewTokenClass(strings.ToLower(name), name)
	lx.classes[name] = cl
	return cl
}

// Next returns the next token in the stream and advances the stream by one
// token. If at the end of the stream, this will return a token whose Class()
// is types.TokenEndOfText. If a lexical error occurs, it will return a token
// whose Class() is types.TokenError and whose lexeme describes the error;
// a subsequent call resumes scanning past the offending byte.
func (lx *dfaLex) Next() types.Token {
	for {
		if lx.done {
			return lx.makeEOTToken()
		}
		if lx.pos >= len(lx.buf) {
			lx.done = true
			return lx.makeEOTToken()
		}

		lexemeEnd, marker := lx.walk()

		if lexemeEnd < 0 {
			// the DFA never entered an accepting state: discard one byte
			// and report a lexical error at that position.
			bad := lx.buf[lx.pos : lx.pos+1]
			lx.advance(bad)
			return lx.makeErrorTokenf("unexpected character %q", bad)
		}

		lexeme := lx.buf[lx.pos:lexemeEnd]
		lx.advance(lexeme)

		info := lx.dfa.Markers[marker]
		if info.TokenName == WhitespaceToken {
			// skipped token: keep lexing rather than returning it
			continue
		}

		return lx.makeToken(lx.classFor(info.TokenName), string(lexeme))
	}
}

// walk drives the DFA forward from lx.pos, returning the end offset (in
// lx.buf) and marker id of the longest accepted lexeme found, or (-1, 0) if
// no prefix of the remaining input was ever accepted.
func (lx *dfaLex) walk() (end int, marker int) {
	state := lx.dfa.Automaton.Start
	end = -1

	i := lx.pos
	for i < len(lx.buf) {
		next := lx.dfa.Automaton.Next(state, strconv.Itoa(int(lx.buf[i])))
		if next == "" {
			break
		}
		state = next
		i++
		if lx.dfa.Automaton.IsAccepting(state) {
			end = i
			marker = lx.dfa.Automaton.GetValue(state).Marker
		}
	}
	return end, marker
}

// advance moves lx.pos past consumed, updating line/column/full-line
// tracking so tokens carry usable position info.
func (lx *dfaLex) advance(consumed []byte) {
	for _, b := range consumed {
		if b == '\n' {
			lx.curLine++
			lx.curPos = 0
			lx.curFullLine = ""
		}
		lx.curPos++
		lx.curFullLine += string(rune(b))
	}
	lx.pos += len(consumed)
}

// Peek returns the next token in the stream without advancing the stream.
func (lx *dfaLex) Peek() types.Token {
	savedPos := lx.pos
	savedLine := lx.curLine
	savedCol := lx.curPos
	savedFullLine := lx.curFullLine
	savedDone := lx.done

	tok := lx.Next()

	lx.pos = savedPos
	lx.curLine = savedLine
	lx.curPos = savedCol
	lx.curFullLine = savedFullLine
	lx.done = savedDone

	return tok
}

// HasNext returns whether the stream has any additional tokens.
func (lx *dfaLex) HasNext() bool {
	return !lx.done
}

func (lx *dfaLex) makeToken(class types.TokenClass, lexeme string) types.Token {
	return lexerToken{
		class:   class,
		line:    lx.curFullLine,
		linePos: lx.curPos,
		lineNum: lx.curLine,
		lexed:   lexeme,
	}
}

func (lx *dfaLex) makeEOTToken() types.Token {
	return lx.makeToken(types.TokenEndOfText, "")
}

func (lx *dfaLex) makeErrorTokenf(formatMsg string, args ...any) types.Token {
	return lx.makeToken(types.TokenError, fmt.Sprintf(formatMsg, args...))
}
