// Package query composes normalization, spelling correction and synonym
// expansion into one processed query per keystroke.
package query

import (
	"strings"

	"github.com/kailas-cloud/storesearch/internal/domain"
	"github.com/kailas-cloud/storesearch/internal/textnorm"
)

// Processor is pure, synchronous and deterministic; safe for concurrent use
// as long as its collaborators are.
type Processor struct {
	spell    Corrector
	synonyms Expander
}

// New creates a query processor.
func New(spell Corrector, synonyms Expander) *Processor {
	return &Processor{spell: spell, synonyms: synonyms}
}

// Process runs the full pipeline on raw input.
func (p *Processor) Process(raw string) domain.ProcessedQuery {
	normalized := textnorm.Normalize(raw)
	tokens := textnorm.Tokens(normalized)

	corrected, changed := p.spell.CorrectTokens(tokens)

	q := domain.ProcessedQuery{
		Raw:        raw,
		Normalized: normalized,
		// Unchanged input keeps normalized verbatim and is never re-spaced.
		Final: normalized,
	}
	if changed {
		q.Final = strings.Join(corrected, " ")
		q.Suggestion = q.Final
	}
	q.Expanded = strings.Join(p.synonyms.Expand(corrected), " ")

	return q
}

// Tokens returns the whitespace tokens of the final query.
func Tokens(q domain.ProcessedQuery) []string {
	return textnorm.Tokens(q.Final)
}

// ExpandedTokens returns the synonym-augmented tokens.
func ExpandedTokens(q domain.ProcessedQuery) []string {
	return textnorm.Tokens(q.Expanded)
}
