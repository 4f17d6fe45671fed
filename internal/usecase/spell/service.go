// Package spell replaces misspelled query tokens with the nearest dictionary word.
package spell

import (
	"unicode/utf8"

	"github.com/kailas-cloud/storesearch/internal/domain"
	"github.com/kailas-cloud/storesearch/internal/editdist"
)

// maxAcceptedDistance caps the accepted edit distance regardless of token length.
const maxAcceptedDistance = 2

// Correction is the outcome for a single token.
type Correction struct {
	// Suggestion is the accepted dictionary word, or the original token.
	Suggestion string
	// Distance is the edit distance to the closest dictionary word (0 on exact hit).
	Distance int
	// Accepted is true when Suggestion was taken from the dictionary.
	Accepted bool
}

// Corrector performs per-token, context-free spelling correction.
type Corrector struct {
	dict  domain.Dictionary
	words []string
}

// New creates a corrector over an immutable dictionary.
func New(dict domain.Dictionary) *Corrector {
	return &Corrector{dict: dict, words: dict.Words()}
}

// Threshold is the maximum accepted distance for a token of n runes: min(2, ceil(n*0.34)).
func Threshold(n int) int {
	t := (34*n + 99) / 100
	if t > maxAcceptedDistance {
		return maxAcceptedDistance
	}
	return t
}

// CorrectToken returns the nearest dictionary word when it is close enough.
// Ties resolve to the word that comes first in dictionary order.
func (c *Corrector) CorrectToken(token string) Correction {
	if c.dict.Contains(token) {
		return Correction{Suggestion: token, Distance: 0, Accepted: true}
	}
	if len(c.words) == 0 {
		return Correction{Suggestion: token, Distance: -1}
	}

	best := ""
	bestDist := -1
	for _, w := range c.words {
		d := editdist.Distance(token, w)
		if bestDist < 0 || d < bestDist {
			best, bestDist = w, d
		}
	}

	if bestDist <= Threshold(utf8.RuneCountInString(token)) {
		return Correction{Suggestion: best, Distance: bestDist, Accepted: true}
	}
	return Correction{Suggestion: token, Distance: bestDist}
}

// CorrectTokens corrects every token independently. changed is true iff an
// accepted suggestion differs from its source token.
func (c *Corrector) CorrectTokens(tokens []string) (corrected []string, changed bool) {
	corrected = make([]string, len(tokens))
	for i, tok := range tokens {
		res := c.CorrectToken(tok)
		corrected[i] = res.Suggestion
		if res.Suggestion != tok {
			changed = true
		}
	}
	return corrected, changed
}
