package extract

import "strings"

const (
	minWordLength = 2
	maxWordLength = 45
)

// stoplist holds high-frequency function words that are never worth
// collecting: articles, basic pronouns, prepositions, conjunctions and
// auxiliaries. It is a fixed table, not tuned at runtime.
var stoplist = map[string]struct{}{
	// articles
	"a": {}, "an": {}, "the": {},

	// pronouns
	"i": {}, "you": {}, "he": {}, "she": {}, "it": {}, "we": {}, "they": {},
	"me": {}, "him": {}, "her": {}, "us": {}, "them": {},
	"my": {}, "your": {}, "his": {}, "its": {}, "our": {}, "their": {},
	"this": {}, "that": {}, "these": {}, "those": {},

	// prepositions
	"in": {}, "on": {}, "at": {}, "to": {}, "for": {}, "of": {}, "with": {},
	"by": {}, "from": {}, "up": {}, "about": {}, "into": {}, "over": {},

	// conjunctions
	"and": {}, "but": {}, "or": {}, "if": {}, "so": {},

	// auxiliaries
	"am": {}, "is": {}, "are": {}, "was": {}, "were": {},
	"have": {}, "has": {}, "had": {},
	"do": {}, "does": {}, "did": {},

	// other function words
	"not": {}, "yes": {}, "no": {}, "ok": {}, "okay": {},
}

// IsValid reports whether word, after lowercasing, is a plausible
// vocabulary entry: 2-45 ASCII letters and not in the stoplist.
func IsValid(word string) bool {
	_, ok := normalizeWord(word)
	return ok
}

// normalizeWord trims, lowercases and checks the word against the
// validity rules. The returned string is the normalized form.
func normalizeWord(word string) (string, bool) {
	w := strings.ToLower(strings.TrimSpace(word))
	if len(w) < minWordLength || len(w) > maxWordLength {
		return "", false
	}
	for i := 0; i < len(w); i++ {
		if w[i] < 'a' || w[i] > 'z' {
			return "", false
		}
	}
	if _, stopped := stoplist[w]; stopped {
		return "", false
	}
	return w, true
}
