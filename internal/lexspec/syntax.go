package lex

import (
	"fmt"
	"strings"

	"github.com/halvardct/lrforge/internal/util"
)

// the internal concatenation operator token. It never collides with a real
// leaf operand: by the time Tokenize runs, the bare wildcard `.` has already
// been expanded away by expandBrackets, so `.` is free for shunting-yard's
// own use and is never handed to ParseSymbolToken.
const concatOp = "."

// metaUnderscoreUnion is the opaque island the `_` meta-token expands to per
// spec.md §4.2: any one byte of 33..255, i.e. all printable ASCII minus the
// space character 32. Unlike the bracket-complement and bare-wildcard `.`
// expansions in expandBrackets, `_` is left untouched by Normalize (stage B)
// and expanded here in Tokenize (stage C), exactly where spec.md places it.
func metaUnderscoreUnion() string {
	var codes []byte
	for c := 33; c <= 255; c++ {
		codes = append(codes, byte(c))
	}
	return opaqueUnion(codes)
}

// Tokenize splits a normalized regex string (Normalize's output, one
// alternative of it, or the whole combined string) into the flat token
// stream spec.md §4.2 describes: `(`, `)`, `|`, `*`, a decimal digit run (a
// byte code or a marker id), `λ`, a whole `$...$` opaque island treated as
// one token, or a bare `_` meta-token expanded in place to the same kind of
// opaque island.
func Tokenize(s string) ([]string, error) {
	var toks []string
	runes := []rune(s)
	n := len(runes)
	i := 0
	for i < n {
		r := runes[i]
		switch {
		case r == ' ' || r == '\t' || r == '\n':
			i++
		case r == '(' || r == ')' || r == '|' || r == '*':
			toks = append(toks, string(r))
			i++
		case r == 'λ':
			toks = append(toks, "λ")
			i++
		case r == '$':
			j := i + 1
			for j < n && runes[j] != '$' {
				j++
			}
			if j >= n {
				return nil, fmt.Errorf("unterminated opaque island starting at rune %d", i)
			}
			toks = append(toks, string(runes[i:j+1]))
			i = j + 1
		case r == '_':
			toks = append(toks, metaUnderscoreUnion())
			i++
		case r >= '0' && r <= '9':
			j := i
			for j < n && runes[j] >= '0' && runes[j] <= '9' {
				j++
			}
			toks = append(toks, string(runes[i:j]))
			i = j
		default:
			return nil, fmt.Errorf("unexpected character %q at rune offset %d", r, i)
		}
	}
	return toks, nil
}

// isOperandEnd reports whether tok can be the last token of a complete
// operand (and so could be immediately followed by an implicit
// concatenation).
func isOperandEnd(tok string) bool {
	return tok == ")" || tok == "*" || isLeafToken(tok)
}

// isOperandStart reports whether tok can begin a new operand.
func isOperandStart(tok string) bool {
	return tok == "(" || isLeafToken(tok)
}

func isLeafToken(tok string) bool {
	if tok == "λ" {
		return true
	}
	if strings.HasPrefix(tok, "$") {
		return true
	}
	for _, r := range tok {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(tok) > 0
}

// InsertConcatenation walks a token stream and inserts the explicit internal
// concatOp token everywhere two adjacent tokens are juxtaposed without an
// infix operator between them, e.g. `(105)(102)` (concatenation of 'i' and
// 'f') becomes `(105).(102)`.
func InsertConcatenation(toks []string) []string {
	if len(toks) == 0 {
		return toks
	}
	out := make([]string, 0, len(toks)*2)
	out = append(out, toks[0])
	for i := 1; i < len(toks); i++ {
		prev, cur := toks[i-1], toks[i]
		if isOperandEnd(prev) && isOperandStart(cur) {
			out = append(out, concatOp)
		}
		out = append(out, cur)
	}
	return out
}

var precedence = map[string]int{
	"*":     3,
	concatOp: 2,
	"|":     1,
}

// ToPostfix converts an infix token stream (with explicit concatenation
// already inserted) to postfix (Reverse Polish) form via the shunting-yard
// algorithm, per spec.md §4.2. `*` is postfix/unary; `.` and `|` are binary
// and left-associative.
func ToPostfix(toks []string) ([]string, error) {
	var output []string
	var ops util.Stack[string]

	popWhile := func(pred func(top string) bool) {
		for ops.Len() > 0 {
			top := ops.Peek()
			if !pred(top) {
				break
			}
			output = append(output, ops.Pop())
		}
	}

	for _, tok := range toks {
		switch {
		case isLeafToken(tok):
			output = append(output, tok)
		case tok == "(":
			ops.Push(tok)
		case tok == ")":
			popWhile(func(top string) bool { return top != "(" })
			if ops.Len() == 0 {
				return nil, fmt.Errorf("unbalanced parentheses: unmatched )")
			}
			ops.Pop() // discard "("
		case tok == "*" || tok == "|" || tok == concatOp:
			prec := precedence[tok]
			popWhile(func(top string) bool {
				if top == "(" {
					return false
				}
				return precedence[top] >= prec
			})
			ops.Push(tok)
		default:
			return nil, fmt.Errorf("unrecognized token %q", tok)
		}
	}

	popWhile(func(top string) bool {
		if top == "(" {
			panic("unbalanced parentheses: unmatched (")
		}
		return true
	})

	return output, nil
}

// NodeKind distinguishes the shapes a regex syntax-tree node (spec.md §3's
// SyntaxNode) can take: a single leaf symbol, a Kleene star over one
// subtree, or a binary concatenation/alternation of two subtrees.
type NodeKind int

const (
	NodeLeaf NodeKind = iota
	NodeStar
	NodeConcat
	NodeAlt
)

// SyntaxNode is one node of a regex syntax tree. Per spec.md §9's sum-type
// design note, its shape is distinguished by Kind rather than by
// embedding/inheritance; only the fields meaningful for Kind are populated.
//
// Pos is the leaf's 1-based position number (valid only when Kind ==
// NodeLeaf); positions are assigned left-to-right in the order leaves appear
// in the original expression, matching the order BuildSyntaxTree's
// postfix-stack evaluation creates them in.
//
// Nullable, FirstPos, and LastPos are computed bottom-up as the tree is
// built (Dragon Book Algorithm 3.63), so a fully built SyntaxNode always
// carries them already.
type SyntaxNode struct {
	Kind NodeKind

	Leaf Symbol
	Pos  int

	Left  *SyntaxNode
	Right *SyntaxNode // unused when Kind == NodeStar

	Nullable bool
	FirstPos util.ISet[int]
	LastPos  util.ISet[int]
}

// BuildSyntaxTree evaluates a postfix token stream into a regex syntax tree,
// per spec.md §4.3, computing nullable/firstpos/lastpos for every node as it
// goes (Dragon Book Algorithm 3.63) and returning the position -> Symbol leaf
// table stage D's followpos computation needs.
func BuildSyntaxTree(postfix []string) (root *SyntaxNode, leaves []Symbol, err error) {
	var stack util.Stack[*SyntaxNode]
	nextPos := 1
	leaves = append(leaves, Symbol{}) // leaves[0] unused; positions are 1-based

	for _, tok := range postfix {
		switch {
		case isLeafToken(tok):
			sym, perr := ParseSymbolToken(tok)
			if perr != nil {
				return nil, nil, perr
			}
			node := &SyntaxNode{Kind: NodeLeaf, Leaf: sym}
			if sym.IsEpsilon() {
				node.Nullable = true
				node.FirstPos = util.NewKeySet[int]()
				node.LastPos = util.NewKeySet[int]()
			} else {
				node.Pos = nextPos
				leaves = append(leaves, sym)
				nextPos++
				node.Nullable = false
				fp := util.NewKeySet[int]()
				fp.Add(node.Pos)
				node.FirstPos = fp
				lp := util.NewKeySet[int]()
				lp.Add(node.Pos)
				node.LastPos = lp
			}
			stack.Push(node)

		case tok == "*":
			if stack.Len() < 1 {
				return nil, nil, fmt.Errorf("malformed postfix expression: * with no operand")
			}
			operand := stack.Pop()
			node := &SyntaxNode{Kind: NodeStar, Left: operand}
			node.Nullable = true
			node.FirstPos = operand.FirstPos.Copy()
			node.LastPos = operand.LastPos.Copy()
			stack.Push(node)

		case tok == concatOp:
			if stack.Len() < 2 {
				return nil, nil, fmt.Errorf("malformed postfix expression: concatenation with fewer than 2 operands")
			}
			right := stack.Pop()
			left := stack.Pop()
			node := &SyntaxNode{Kind: NodeConcat, Left: left, Right: right}
			node.Nullable = left.Nullable && right.Nullable
			node.FirstPos = left.FirstPos.Copy()
			if left.Nullable {
				node.FirstPos.AddAll(right.FirstPos)
			}
			node.LastPos = right.LastPos.Copy()
			if right.Nullable {
				node.LastPos.AddAll(left.LastPos)
			}
			stack.Push(node)

		case tok == "|":
			if stack.Len() < 2 {
				return nil, nil, fmt.Errorf("malformed postfix expression: alternation with fewer than 2 operands")
			}
			right := stack.Pop()
			left := stack.Pop()
			node := &SyntaxNode{Kind: NodeAlt, Left: left, Right: right}
			node.Nullable = left.Nullable || right.Nullable
			node.FirstPos = left.FirstPos.Copy()
			node.FirstPos.AddAll(right.FirstPos)
			node.LastPos = left.LastPos.Copy()
			node.LastPos.AddAll(right.LastPos)
			stack.Push(node)

		default:
			return nil, nil, fmt.Errorf("unrecognized postfix token %q", tok)
		}
	}

	if stack.Len() != 1 {
		return nil, nil, fmt.Errorf("malformed postfix expression: %d values remain on the stack, expected 1", stack.Len())
	}
	return stack.Pop(), leaves, nil
}
