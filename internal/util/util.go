package util

import (
	"cmp"
	"sort"
	"strings"
)

// OrderedKeys returns the keys of m in ascending sorted order. It is used
// whenever a map must be iterated deterministically, such as when rendering
// a table or numbering states in a generated automaton.
func OrderedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Alphabetized returns the elements of c sorted in ascending order. It is
// used to give deterministic output (e.g. FIRST/FOLLOW sets, state names)
// from containers whose native iteration order is not guaranteed.
func Alphabetized[T cmp.Ordered](c Container[T]) []T {
	elements := c.Elements()
	sorted := make([]T, len(elements))
	copy(sorted, elements)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	return sorted
}

// ArticleFor returns the English indefinite article ("a" or "an") to use
// before human; human itself is not part of the result. If capitalize is true, the article
// is capitalized ("A"/"An") instead of lowercase.
func ArticleFor(human string, capitalize bool) string {
	article := "a"

	if len(human) > 0 {
		switch human[0] {
		case 'a', 'e', 'i', 'o', 'u', 'A', 'E', 'I', 'O', 'U':
			article = "an"
		}
	}

	if capitalize {
		article = strings.ToUpper(article[:1]) + article[1:]
	}

	return article
}

// MakeTextList gives a nice list of things based on their display name.
//
// TODO: turn this into a generic function that accepts displayable OR ~string
func MakeTextList(items []string) string {
	if len(items) < 1 {
		return ""
	}

	output := ""

	if len(items) == 1 {
		output += items[0]
	} else if len(items) == 2 {
		output += items[0] + " and " + items[1]
	} else {
		// if its more than two, use an oxford comma
		items[len(items)-1] = "and " + items[len(items)-1]
		output += strings.Join(items, ", ")
	}

	return output
}
