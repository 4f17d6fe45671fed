// Package tablefilter narrows in-memory table rows with the same fuzzy
// matching the command palette uses.
package tablefilter

import (
	"github.com/kailas-cloud/storesearch/internal/domain"
	"github.com/kailas-cloud/storesearch/internal/editdist"
	"github.com/kailas-cloud/storesearch/internal/textnorm"
	"github.com/kailas-cloud/storesearch/internal/usecase/query"
)

// SynonymLookup returns the table synonyms of a single normalized token.
type SynonymLookup interface {
	Lookup(token string) []string
}

// Matcher decides whether a row's text satisfies a processed query.
type Matcher struct {
	synonyms SynonymLookup
}

// NewMatcher creates a matcher. A nil lookup disables synonym alternatives.
func NewMatcher(synonyms SynonymLookup) *Matcher {
	return &Matcher{synonyms: synonyms}
}

// Match reports whether text approx-includes every final token of q, where a
// token is satisfied by itself or by any of its synonyms. Empty queries match.
func (m *Matcher) Match(text string, q domain.ProcessedQuery) bool {
	tokens := query.Tokens(q)
	if len(tokens) == 0 {
		return true
	}
	haystack := textnorm.Normalize(text)
	for _, tok := range tokens {
		if !m.matchToken(haystack, tok) {
			return false
		}
	}
	return true
}

func (m *Matcher) matchToken(haystack, tok string) bool {
	if editdist.ApproxIncludes(haystack, tok) {
		return true
	}
	if m.synonyms == nil {
		return false
	}
	for _, syn := range m.synonyms.Lookup(tok) {
		if editdist.ApproxIncludes(haystack, syn) {
			return true
		}
	}
	return false
}

// Filter keeps rows whose text matches q, preserving order.
func Filter[T any](m *Matcher, rows []T, text func(T) string, q domain.ProcessedQuery) []T {
	if q.IsEmpty() {
		out := make([]T, len(rows))
		copy(out, rows)
		return out
	}
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		if m.Match(text(r), q) {
			out = append(out, r)
		}
	}
	return out
}
