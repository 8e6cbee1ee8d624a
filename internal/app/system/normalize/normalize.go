// Package normalize canonicalizes user-entered strings before they are
// stored or compared.
package normalize

import (
	"strings"
	"unicode"
)

// Email lowercases and trims an address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims and collapses inner whitespace, preserving case.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Role lowercases and trims a role string.
func Role(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Tags lowercases, trims and de-duplicates tags, dropping empties. Inner
// whitespace becomes a single hyphen. Order of first appearance is kept.
func Tags(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, t := range in {
		t = strings.Join(strings.FieldsFunc(strings.ToLower(t), unicode.IsSpace), "-")
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
