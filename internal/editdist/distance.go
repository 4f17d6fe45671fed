// Package editdist implements Damerau-Levenshtein distance and a typo-tolerant
// containment test over whitespace-separated words.
//
// Cost is O(|a|*|b|) per pair. ApproxIncludes scans every word of the haystack,
// so it is meant for in-memory collections of hundreds to low thousands of rows
// (table filters, local menus), never as a stand-in for server-side full-text search.
package editdist

import (
	"strings"
	"unicode/utf8"
)

// Distance returns the optimal-string-alignment Damerau-Levenshtein distance
// between a and b: insertions, deletions, substitutions and adjacent
// transpositions each cost 1. Strings are compared rune by rune.
func Distance(a, b string) int {
	if a == b {
		return 0
	}
	ra := []rune(a)
	rb := []rune(b)
	la := len(ra)
	lb := len(rb)

	if la == 0 {
		return lb
	}
	if lb == 0 {
		return la
	}

	// Three rows: prev2 holds i-2 for the transposition step.
	prev2 := make([]int, lb+1)
	prev := make([]int, lb+1)
	curr := make([]int, lb+1)

	for j := 0; j <= lb; j++ {
		prev[j] = j
	}

	for i := 1; i <= la; i++ {
		curr[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}

			best := prev[j] + 1 // deletion
			if ins := curr[j-1] + 1; ins < best {
				best = ins
			}
			if sub := prev[j-1] + cost; sub < best {
				best = sub
			}
			if i > 1 && j > 1 && ra[i-1] == rb[j-2] && ra[i-2] == rb[j-1] {
				if tr := prev2[j-2] + 1; tr < best {
					best = tr
				}
			}
			curr[j] = best
		}
		prev2, prev, curr = prev, curr, prev2
	}

	return prev[lb]
}

// MaxDistance is the edit budget for a needle of the given rune length:
// 1 up to 4 runes, 2 up to 7, 3 beyond.
func MaxDistance(needleRunes int) int {
	switch {
	case needleRunes <= 4:
		return 1
	case needleRunes <= 7:
		return 2
	default:
		return 3
	}
}

// ApproxIncludes reports whether needle occurs in haystack literally, or is
// within MaxDistance edits of one of haystack's whitespace-separated words.
// Both arguments are expected to be normalized already.
func ApproxIncludes(haystack, needle string) bool {
	if needle == "" {
		return true
	}
	if strings.Contains(haystack, needle) {
		return true
	}

	nl := utf8.RuneCountInString(needle)
	maxDist := MaxDistance(nl)

	for _, w := range strings.Fields(haystack) {
		diff := utf8.RuneCountInString(w) - nl
		if diff < 0 {
			diff = -diff
		}
		if diff > maxDist {
			continue
		}
		if Distance(w, needle) <= maxDist {
			return true
		}
	}
	return false
}
