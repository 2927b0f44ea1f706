// Package verify confirms candidate words against a definition source
// with bounded parallelism. A candidate counts as a word only when the
// source returns a definition for it.
package verify

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"wordwatch/pkg/lookup"
)

const (
	// DefaultWorkers bounds concurrent definition lookups.
	DefaultWorkers = 4
	// DefaultLookupTimeout caps a single lookup so one slow candidate
	// cannot stall the whole batch.
	DefaultLookupTimeout = 5 * time.Second
)

// Verifier checks batches of candidates against a definition lookup.
type Verifier struct {
	// Lookup resolves words to definitions.
	Lookup lookup.Lookup
	// Workers bounds concurrent lookups. Zero means DefaultWorkers.
	Workers int
	// Timeout applies per lookup call. Zero means DefaultLookupTimeout.
	Timeout time.Duration
	// Logger receives lookup failures. nil disables logging.
	Logger *slog.Logger
}

// New returns a Verifier with default bounds.
func New(l lookup.Lookup) *Verifier {
	return &Verifier{
		Lookup:  l,
		Workers: DefaultWorkers,
		Timeout: DefaultLookupTimeout,
	}
}

// Verify returns the subset of candidates confirmed to have a
// definition. Duplicates collapse to one lookup. A lookup failure
// (error or timeout) leaves that word unconfirmed and the batch
// continues; only context cancellation returns an error, alongside the
// words confirmed so far.
func (v *Verifier) Verify(ctx context.Context, candidates []string) ([]string, error) {
	unique := make([]string, 0, len(candidates))
	seen := make(map[string]struct{}, len(candidates))
	for _, w := range candidates {
		if _, dup := seen[w]; dup || w == "" {
			continue
		}
		seen[w] = struct{}{}
		unique = append(unique, w)
	}
	if len(unique) == 0 {
		return nil, nil
	}

	workers := v.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	timeout := v.Timeout
	if timeout <= 0 {
		timeout = DefaultLookupTimeout
	}

	pool := NewWorkerPool(workers, workers*2)
	pool.Start(ctx)

	var mu sync.Mutex
	var confirmed []string

	for _, word := range unique {
		word := word
		job := func(ctx context.Context) {
			lctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			_, err := v.Lookup.Define(lctx, word)
			switch {
			case err == nil:
				mu.Lock()
				confirmed = append(confirmed, word)
				mu.Unlock()
			case errors.Is(err, lookup.ErrNotFound):
				// Confirmed miss, drop silently.
			default:
				if v.Logger != nil {
					v.Logger.Warn("definition lookup failed", "word", word, "error", err)
				}
			}
		}
		if err := pool.SubmitCtx(ctx, job); err != nil {
			break
		}
	}

	pool.Close()

	if err := ctx.Err(); err != nil {
		return confirmed, err
	}
	return confirmed, nil
}
