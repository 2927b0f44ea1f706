// Package pipeline wires extraction, verification and storage into the
// background loop that turns raw text into stored vocabulary. One cycle
// runs at a time; text arriving mid-cycle coalesces into the next one.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"wordwatch/pkg/source"
)

// Extractor produces candidate lemmas from raw text.
type Extractor interface {
	Extract(ctx context.Context, text string) ([]string, error)
}

// Verifier returns the subset of candidates confirmed to be real words.
type Verifier interface {
	Verify(ctx context.Context, candidates []string) ([]string, error)
}

// Upserter records confirmed word occurrences.
type Upserter interface {
	BatchUpsert(ctx context.Context, words []string) error
}

// Event describes one completed pipeline cycle. Consumers subscribe via
// Events; the pipeline never knows who is listening.
type Event struct {
	// Candidates is the number of lemmas that passed local validation.
	Candidates int
	// Stored holds the verified words written in this cycle.
	Stored []string
	// FinishedAt is when the cycle completed.
	FinishedAt time.Time
}

// Pipeline orchestrates the word collection flow.
type Pipeline struct {
	Extractor Extractor
	Verifier  Verifier
	Store     Upserter
	// Logger receives cycle-level events and failures. nil disables
	// logging.
	Logger *slog.Logger

	events chan Event
}

// New assembles a pipeline from its stages.
func New(e Extractor, v Verifier, s Upserter) *Pipeline {
	return &Pipeline{
		Extractor: e,
		Verifier:  v,
		Store:     s,
		events:    make(chan Event, 8),
	}
}

// Events returns the completion event stream. Events are dropped, not
// queued without bound, when no consumer keeps up.
func (p *Pipeline) Events() <-chan Event {
	return p.events
}

// Process runs one full cycle for text: extract candidates, verify them
// against the definition source, store the confirmed set in a single
// batch. Cancellation is checked before verification dispatch and again
// before the store transaction, so a canceled cycle never applies a
// partial batch.
func (p *Pipeline) Process(ctx context.Context, text string) error {
	candidates, err := p.Extractor.Extract(ctx, text)
	if err != nil {
		return fmt.Errorf("extract: %w", err)
	}
	if len(candidates) == 0 {
		return nil
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	confirmed, err := p.Verifier.Verify(ctx, candidates)
	if err != nil {
		return fmt.Errorf("verify: %w", err)
	}

	if len(confirmed) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.Store.BatchUpsert(ctx, confirmed); err != nil {
			return fmt.Errorf("store: %w", err)
		}
	}

	if p.Logger != nil {
		p.Logger.Info("cycle complete",
			"candidates", len(candidates),
			"stored", len(confirmed))
	}
	p.publish(Event{
		Candidates: len(candidates),
		Stored:     confirmed,
		FinishedAt: time.Now(),
	})
	return nil
}

// Run consumes src until ctx is done or the source closes. Cycles are
// strictly sequential; while one runs, newer texts replace older unread
// ones, so a burst of changes collapses into the freshest snapshot. A
// failed cycle is logged and never stops the loop.
func (p *Pipeline) Run(ctx context.Context, src source.Source) error {
	texts, err := src.Watch(ctx)
	if err != nil {
		return fmt.Errorf("watch source: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case text, ok := <-texts:
			if !ok {
				return nil
			}
			// Coalesce any texts queued while the previous cycle ran;
			// the newest wins.
			for drained := false; !drained; {
				select {
				case next, ok := <-texts:
					if !ok {
						drained = true
						break
					}
					text = next
				default:
					drained = true
				}
			}
			if err := p.Process(ctx, text); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				if p.Logger != nil {
					p.Logger.Error("cycle failed", "error", err)
				}
			}
		}
	}
}

func (p *Pipeline) publish(ev Event) {
	select {
	case p.events <- ev:
	default:
	}
}
