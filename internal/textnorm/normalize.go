// Package textnorm canonicalizes Persian and Arabic search input.
//
// Pipeline order:
//  1. NFKC (presentation forms, fullwidth digits, ligatures)
//  2. lower-case
//  3. Persian/Arabic-Indic digits to ASCII, Arabic letter variants to Persian letters,
//     zero-width joiners and other format characters to spaces
//  4. remove combining marks (harakat) and tatweel
//  5. NFC
//  6. collapse whitespace runs to one space and trim
//
// Normalize is total, pure and idempotent, and safe for concurrent use.
package textnorm

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const tatweel = 'ـ'

// chainPool hands out transformer chains; a chain is stateful and not safe for parallel use.
var chainPool = sync.Pool{
	New: func() any {
		return transform.Chain(
			norm.NFKC,
			cases.Lower(language.Und),
			runes.Map(canonicalRune),
			runes.Remove(runes.Predicate(isStripped)),
			norm.NFC,
		)
	},
}

// Normalize returns the canonical search form of s.
func Normalize(s string) string {
	if s == "" {
		return ""
	}

	s = strings.ToValidUTF8(s, "")

	tr := chainPool.Get().(transform.Transformer)
	out, _, err := transform.String(tr, s)
	tr.Reset()
	chainPool.Put(tr)
	if err != nil {
		// transform.String only fails on malformed chains; fall back to the raw input.
		out = s
	}

	return collapseSpaces(out)
}

// canonicalRune maps a single rune to its canonical Persian/ASCII form.
func canonicalRune(r rune) rune {
	switch {
	case r >= '۰' && r <= '۹': // Extended Arabic-Indic (Persian) digits
		return '0' + (r - '۰')
	case r >= '٠' && r <= '٩': // Arabic-Indic digits
		return '0' + (r - '٠')
	}

	switch r {
	case 'ك': // ARABIC LETTER KAF
		return 'ک'
	case 'ي', 'ى': // ARABIC LETTER YEH, ALEF MAKSURA
		return 'ی'
	case 'ة', 'ۀ', 'ە': // TEH MARBUTA, HEH WITH YEH ABOVE, AE
		return 'ه'
	case 'أ', 'إ', 'ٱ': // ALEF WITH HAMZA ABOVE/BELOW, ALEF WASLA
		return 'ا'
	case 'ؤ': // WAW WITH HAMZA ABOVE
		return 'و'
	case '\u200c', '\u200d', '\u200b', '\u2060', '\ufeff', '\u200e', '\u200f': // ZWNJ, ZWJ, ZWSP, WJ, BOM, LRM, RLM
		return ' '
	}

	if unicode.Is(unicode.Cf, r) {
		return ' '
	}
	return r
}

// isStripped reports runes that are dropped outright.
func isStripped(r rune) bool {
	return r == tatweel || unicode.Is(unicode.M, r)
}

// collapseSpaces converts whitespace runs to a single ASCII space and trims the edges.
func collapseSpaces(s string) string {
	if s == "" {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	inWS := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			inWS = true
			continue
		}
		if inWS && b.Len() > 0 {
			b.WriteByte(' ')
		}
		inWS = false
		b.WriteRune(r)
	}
	return b.String()
}

// Tokens splits an already normalized string on single spaces, dropping empties.
func Tokens(normalized string) []string {
	if normalized == "" {
		return nil
	}
	parts := strings.Split(normalized, " ")
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
