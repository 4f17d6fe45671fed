package domain

// Dictionary is an immutable ordered set of canonical domain vocabulary.
// Iteration order is insertion order; duplicates keep their first position.
type Dictionary struct {
	words []string
	index map[string]struct{}
}

// NewDictionary creates a dictionary from already normalized words. Empty words are skipped.
func NewDictionary(words []string) Dictionary {
	d := Dictionary{
		words: make([]string, 0, len(words)),
		index: make(map[string]struct{}, len(words)),
	}
	for _, w := range words {
		if w == "" {
			continue
		}
		if _, ok := d.index[w]; ok {
			continue
		}
		d.index[w] = struct{}{}
		d.words = append(d.words, w)
	}
	return d
}

// Contains reports an exact hit.
func (d Dictionary) Contains(word string) bool {
	_, ok := d.index[word]
	return ok
}

// Words returns a copy of the vocabulary in insertion order.
func (d Dictionary) Words() []string {
	out := make([]string, len(d.words))
	copy(out, d.words)
	return out
}

// Len returns the number of words.
func (d Dictionary) Len() int { return len(d.words) }

// SynonymTable is an immutable mapping token -> equivalent tokens, in table order.
type SynonymTable struct {
	entries map[string][]string
}

// NewSynonymTable deep-copies m.
func NewSynonymTable(m map[string][]string) SynonymTable {
	t := SynonymTable{entries: make(map[string][]string, len(m))}
	for k, v := range m {
		if k == "" {
			continue
		}
		cp := make([]string, 0, len(v))
		for _, s := range v {
			if s != "" {
				cp = append(cp, s)
			}
		}
		t.entries[k] = cp
	}
	return t
}

// Lookup returns the synonyms of token. The returned slice must not be modified.
func (t SynonymTable) Lookup(token string) []string {
	return t.entries[token]
}

// Len returns the number of keys.
func (t SynonymTable) Len() int { return len(t.entries) }
