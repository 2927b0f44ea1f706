package extract

import (
	"fmt"

	"github.com/aaaton/golem/v4"
	"github.com/aaaton/golem/v4/dicts/en"
	"github.com/abadojack/whatlanggo"
)

// EnglishAnalyzer implements Analyzer with the golem English lemma
// dictionary and whatlanggo trigram language profiles. It is immutable
// after construction and safe for concurrent use.
type EnglishAnalyzer struct {
	lemmatizer *golem.Lemmatizer
}

// NewEnglishAnalyzer loads the embedded English lemma dictionary.
func NewEnglishAnalyzer() (*EnglishAnalyzer, error) {
	l, err := golem.New(en.New())
	if err != nil {
		return nil, fmt.Errorf("load english lemma dictionary: %w", err)
	}
	return &EnglishAnalyzer{lemmatizer: l}, nil
}

// DominantLanguage detects the dominant language of text. Detection on
// short or ambiguous input reports reliable=false, which callers treat
// as "assume English".
func (a *EnglishAnalyzer) DominantLanguage(text string) (string, bool) {
	info := whatlanggo.Detect(text)
	if !info.IsReliable() {
		return "", false
	}
	if info.Lang == whatlanggo.Eng {
		return "en", true
	}
	return whatlanggo.LangToString(info.Lang), true
}

// Lemma returns the dictionary base form of word, or word itself when
// the dictionary has no entry.
func (a *EnglishAnalyzer) Lemma(word string) string {
	return a.lemmatizer.Lemma(word)
}
