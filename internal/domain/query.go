package domain

// ProcessedQuery is the output of the query pipeline for one keystroke.
// Every field is derived from Normalized and the static vocabulary only.
type ProcessedQuery struct {
	// Raw is the untouched user input.
	Raw string
	// Normalized is the digit/character-canonicalized input.
	Normalized string
	// Final is the joined corrected tokens when a correction was accepted, else Normalized verbatim.
	Final string
	// Suggestion equals Final when it differs from Normalized, else empty.
	Suggestion string
	// Expanded is the corrected tokens plus synonyms, space-joined.
	Expanded string
}

// HasSuggestion reports whether spelling correction changed the query.
func (q ProcessedQuery) HasSuggestion() bool { return q.Suggestion != "" }

// IsEmpty reports whether there is nothing to search for.
func (q ProcessedQuery) IsEmpty() bool { return q.Final == "" }
