package extract

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/sync/errgroup"
)

// Analyzer provides the linguistic capabilities the extractor depends on:
// identifying the dominant language of a text and reducing a word to its
// base form. Implementations must be safe for concurrent use.
type Analyzer interface {
	// DominantLanguage returns an ISO 639-1 code for the dominant language
	// of text and whether the detection is confident enough to act on.
	DominantLanguage(text string) (lang string, reliable bool)
	// Lemma returns the base form of word, or word itself when no base
	// form is known.
	Lemma(word string) string
}

const (
	// DefaultMaxTextLen is the number of runes processed as a single
	// chunk. Longer input is split into fixed-size chunks that are
	// analyzed concurrently and unioned. A word lying across a chunk
	// boundary may be split and lost; that is an accepted trade-off
	// inherited from the chunking design.
	DefaultMaxTextLen = 10000

	defaultChunkWorkers = 4
)

// Extractor turns raw text into a deduplicated set of candidate lemmas.
// Candidates still need verification against a definition source before
// they count as real words.
type Extractor struct {
	// Analyzer supplies language detection and lemmatization.
	Analyzer Analyzer
	// MaxTextLen caps the rune length of a single chunk. Zero means
	// DefaultMaxTextLen.
	MaxTextLen int
	// ChunkWorkers bounds concurrent chunk processing. Zero means a
	// small fixed default.
	ChunkWorkers int
	// Logger receives debug events. nil disables logging.
	Logger *slog.Logger
}

// New returns an Extractor with default limits.
func New(a Analyzer) *Extractor {
	return &Extractor{
		Analyzer:     a,
		MaxTextLen:   DefaultMaxTextLen,
		ChunkWorkers: defaultChunkWorkers,
	}
}

// Extract tokenizes text and returns the candidate lemmas in first-seen
// order. Multi-word text whose dominant language is confidently not
// English yields no candidates. Single tokens skip language detection;
// there is too little signal to judge them.
func (e *Extractor) Extract(ctx context.Context, text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	if strings.IndexFunc(text, unicode.IsSpace) < 0 {
		// Single token: evaluate directly.
		set := newCandidateSet()
		e.processToken(text, set)
		return set.ordered, nil
	}

	if lang, reliable := e.Analyzer.DominantLanguage(text); reliable && lang != "en" {
		if e.Logger != nil {
			e.Logger.Debug("skipping non-English text", "lang", lang)
		}
		return nil, nil
	}

	maxLen := e.MaxTextLen
	if maxLen <= 0 {
		maxLen = DefaultMaxTextLen
	}
	chunks := splitChunks(text, maxLen)
	if len(chunks) == 1 {
		set := newCandidateSet()
		e.extractChunk(chunks[0], set)
		return set.ordered, nil
	}

	// Over-length input: process chunks concurrently and union the
	// results under a shared lock.
	workers := e.ChunkWorkers
	if workers <= 0 {
		workers = defaultChunkWorkers
	}
	var mu sync.Mutex
	merged := newCandidateSet()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, chunk := range chunks {
		chunk := chunk
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			local := newCandidateSet()
			e.extractChunk(chunk, local)
			mu.Lock()
			for _, w := range local.ordered {
				merged.add(w)
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return merged.ordered, nil
}

// extractChunk tokenizes one chunk and feeds every token through the
// compound-splitting and validation path.
func (e *Extractor) extractChunk(chunk string, set *candidateSet) {
	for _, token := range tokenize(chunk) {
		e.processToken(token, set)
	}
}

// processToken explodes compound tokens and validates each sub-token
// independently, preferring the analyzer's lemma over the surface form.
func (e *Extractor) processToken(token string, set *candidateSet) {
	for _, sub := range splitCompound(token) {
		w, ok := normalizeWord(sub)
		if !ok {
			continue
		}
		if lemma := strings.ToLower(e.Analyzer.Lemma(w)); lemma != "" {
			if lw, lok := normalizeWord(lemma); lok {
				set.add(lw)
				continue
			}
		}
		set.add(w)
	}
}

// tokenize splits a chunk into word-like tokens. Compound separators
// stay inside tokens so splitCompound can see "word_count" or
// "self-evident" whole; apostrophes stay so contractions like "don't"
// are rejected whole instead of leaking fragments.
func tokenize(chunk string) []string {
	return strings.FieldsFunc(chunk, func(r rune) bool {
		return !unicode.IsLetter(r) && r != '-' && r != '_' && r != '\''
	})
}

// splitCompound breaks a token that is not natural analyzer output into
// sub-tokens: separator-joined tokens split on "-"/"_", and mixed-case
// tokens with an internal uppercase letter split at each uppercase
// boundary ("getUserName" -> "get", "User", "Name").
func splitCompound(token string) []string {
	if strings.ContainsAny(token, "-_") {
		return strings.FieldsFunc(token, func(r rune) bool {
			return r == '-' || r == '_'
		})
	}
	if hasInternalUpper(token) {
		return splitCamelCase(token)
	}
	if token == "" {
		return nil
	}
	return []string{token}
}

// hasInternalUpper reports whether token mixes cases with an uppercase
// letter after the first rune. All-caps tokens are left whole.
func hasInternalUpper(token string) bool {
	hasUpper := false
	hasLower := false
	internalUpper := false
	for i, r := range token {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
			if i > 0 {
				internalUpper = true
			}
		case unicode.IsLower(r):
			hasLower = true
		}
	}
	return hasUpper && hasLower && internalUpper
}

// splitCamelCase emits each run starting at an uppercase letter as its
// own sub-token.
func splitCamelCase(token string) []string {
	var parts []string
	start := 0
	for i, r := range token {
		if i > 0 && unicode.IsUpper(r) {
			parts = append(parts, token[start:i])
			start = i
		}
	}
	parts = append(parts, token[start:])
	return parts
}

// splitChunks cuts text into rune chunks of at most maxLen. Text at or
// under the cap stays a single chunk.
func splitChunks(text string, maxLen int) []string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return []string{text}
	}
	var chunks []string
	for start := 0; start < len(runes); start += maxLen {
		end := start + maxLen
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}

// candidateSet deduplicates while preserving first-seen order.
type candidateSet struct {
	seen    map[string]struct{}
	ordered []string
}

func newCandidateSet() *candidateSet {
	return &candidateSet{seen: make(map[string]struct{})}
}

func (s *candidateSet) add(w string) {
	if _, dup := s.seen[w]; dup {
		return
	}
	s.seen[w] = struct{}{}
	s.ordered = append(s.ordered, w)
}
