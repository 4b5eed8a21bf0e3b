package lex

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// SymbolKind distinguishes the kinds of leaf value a regex syntax-tree leaf
// can carry.
type SymbolKind int

const (
	SymByte SymbolKind = iota
	SymMarker
	SymEpsilon
	SymUnion
)

// Symbol is a single leaf value of the regex syntax tree (spec.md §3's
// SyntaxNode Leaf). spec.md §9 asks for a typed sum (Byte(u8) | Marker(u32) |
// Epsilon) instead of the regex text's own mixed string alphabet; Union
// extends that for the `$...$` opaque islands complement/difference bracket
// expansion produces (§4.1 step 3, §9): rather than a nested Alt tree, a
// Union leaf matches any one of a fixed set of bytes and is otherwise a
// single leaf/position, exactly as §4.2's tokenizer treats the enclosed
// region as one opaque token.
type Symbol struct {
	Kind   SymbolKind
	Byte   byte
	Marker int
	Union  []byte // sorted ascending; meaningful only when Kind == SymUnion
}

func ByteSymbol(b byte) Symbol   { return Symbol{Kind: SymByte, Byte: b} }
func MarkerSymbol(id int) Symbol { return Symbol{Kind: SymMarker, Marker: id} }
func EpsilonSymbol() Symbol      { return Symbol{Kind: SymEpsilon} }

func UnionSymbol(bytes []byte) Symbol {
	cp := append([]byte(nil), bytes...)
	sort.Slice(cp, func(i, j int) bool { return cp[i] < cp[j] })
	return Symbol{Kind: SymUnion, Union: cp}
}

func (s Symbol) IsMarker() bool  { return s.Kind == SymMarker }
func (s Symbol) IsEpsilon() bool { return s.Kind == SymEpsilon }

// Bytes returns every concrete input byte this leaf can transition on. A
// Marker or Epsilon leaf is never a transition symbol (spec.md §3's
// Transitions definition: "λ is never a transition symbol"), so Bytes
// returns nil for those.
func (s Symbol) Bytes() []byte {
	switch s.Kind {
	case SymByte:
		return []byte{s.Byte}
	case SymUnion:
		return s.Union
	default:
		return nil
	}
}

// String renders the symbol using the regex text's own alphabet: a decimal
// ASCII code, a marker id, "λ", or a parenthesized union of codes.
func (s Symbol) String() string {
	switch s.Kind {
	case SymByte:
		return strconv.Itoa(int(s.Byte))
	case SymMarker:
		return strconv.Itoa(s.Marker)
	case SymEpsilon:
		return "λ"
	case SymUnion:
		parts := make([]string, len(s.Union))
		for i, b := range s.Union {
			parts[i] = strconv.Itoa(int(b))
		}
		return "$" + strings.Join(parts, "|") + "$"
	}
	return fmt.Sprintf("<unknown symbol kind %d>", s.Kind)
}

// ParseSymbolToken converts one tokenized leaf-operand string (as produced
// by Tokenize) into its typed Symbol. tok is either a run of digits (a byte
// code if < 1000, a marker id otherwise), the literal "λ", or an opaque
// "$...$" island (sentinels included, one decimal code per "|"-separated
// entry).
func ParseSymbolToken(tok string) (Symbol, error) {
	if tok == "λ" {
		return EpsilonSymbol(), nil
	}
	if strings.HasPrefix(tok, "$") && strings.HasSuffix(tok, "$") && len(tok) >= 2 {
		inner := tok[1 : len(tok)-1]
		var codes []byte
		for _, part := range strings.Split(inner, "|") {
			n, err := strconv.Atoi(part)
			if err != nil {
				return Symbol{}, fmt.Errorf("malformed opaque union member %q in %q: %w", part, tok, err)
			}
			codes = append(codes, byte(n))
		}
		return UnionSymbol(codes), nil
	}

	n, err := strconv.Atoi(tok)
	if err != nil {
		return Symbol{}, fmt.Errorf("not a valid leaf operand: %q", tok)
	}
	if n >= 1000 {
		return MarkerSymbol(n), nil
	}
	if n < 0 || n > 255 {
		return Symbol{}, fmt.Errorf("byte code out of range 0..255: %d", n)
	}
	return ByteSymbol(byte(n)), nil
}
