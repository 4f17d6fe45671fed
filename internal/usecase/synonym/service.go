// Package synonym augments query tokens with equivalents from a static table.
package synonym

import "github.com/kailas-cloud/storesearch/internal/domain"

// MaxTokens caps the expanded token list.
const MaxTokens = 8

// Expander performs direct (non-fuzzy) table lookups.
type Expander struct {
	table domain.SynonymTable
}

// New creates an expander over an immutable synonym table.
func New(table domain.SynonymTable) *Expander {
	return &Expander{table: table}
}

// Expand returns the original tokens in order followed by newly found synonyms in
// table order, de-duplicated by first occurrence and capped at MaxTokens.
func (e *Expander) Expand(tokens []string) []string {
	out := make([]string, 0, MaxTokens)
	seen := make(map[string]struct{}, MaxTokens)

	add := func(tok string) bool {
		if len(out) >= MaxTokens {
			return false
		}
		if _, ok := seen[tok]; ok {
			return true
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
		return true
	}

	for _, tok := range tokens {
		if !add(tok) {
			return out
		}
	}
	for _, tok := range tokens {
		for _, syn := range e.table.Lookup(tok) {
			if !add(syn) {
				return out
			}
		}
	}
	return out
}
