package query

// Corrector replaces misspelled tokens with dictionary words.
type Corrector interface {
	CorrectTokens(tokens []string) (corrected []string, changed bool)
}

// Expander augments tokens with synonyms.
type Expander interface {
	Expand(tokens []string) []string
}
