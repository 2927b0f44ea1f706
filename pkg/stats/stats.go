// Package stats derives time-bucketed aggregate counts from the word
// store for a rolling window. Buckets are computed on demand and always
// reflect live data; nothing here is persisted.
package stats

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultWindowHours matches the statistics chart of the original
// application: the last 12 hourly slots.
const DefaultWindowHours = 12

// Counter is the read-side slice of the word store the aggregator
// needs.
type Counter interface {
	CountInRange(ctx context.Context, start, end time.Time) (int, error)
}

// Bucket is the number of word updates (creations or increments) whose
// last-seen time falls in [HourStart, HourStart+1h).
type Bucket struct {
	HourStart time.Time
	Count     int
}

// Aggregator computes rolling hourly buckets from a Counter.
type Aggregator struct {
	// Store answers the per-slot count queries.
	Store Counter
	// Logger receives refresh failures from Watch. nil disables logging.
	Logger *slog.Logger
}

// New returns an Aggregator over store.
func New(store Counter) *Aggregator {
	return &Aggregator{Store: store}
}

// HourlyBuckets returns one bucket per hourly slot for the windowHours
// slots ending at the hour containing now, oldest first. Slots are
// queried in parallel; the result order never depends on completion
// order. windowHours <= 0 yields an empty result.
func (a *Aggregator) HourlyBuckets(ctx context.Context, windowHours int, now time.Time) ([]Bucket, error) {
	if windowHours <= 0 {
		return nil, nil
	}

	currentHour := now.UTC().Truncate(time.Hour)
	buckets := make([]Bucket, windowHours)

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < windowHours; i++ {
		start := currentHour.Add(-time.Duration(windowHours-1-i) * time.Hour)
		buckets[i].HourStart = start
		i := i
		g.Go(func() error {
			n, err := a.Store.CountInRange(ctx, start, start.Add(time.Hour))
			if err != nil {
				return err
			}
			buckets[i].Count = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return buckets, nil
}

// Watch recomputes the window every interval and publishes the fresh
// buckets on the returned channel until ctx is done. A slow consumer
// only ever misses intermediate snapshots; the latest one wins.
func (a *Aggregator) Watch(ctx context.Context, interval time.Duration, windowHours int) <-chan []Bucket {
	if interval <= 0 {
		interval = time.Minute
	}
	out := make(chan []Bucket, 1)
	go func() {
		defer close(out)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				buckets, err := a.HourlyBuckets(ctx, windowHours, time.Now())
				if err != nil {
					if a.Logger != nil {
						a.Logger.Warn("statistics refresh failed", "error", err)
					}
					continue
				}
				// Drop the stale snapshot if the consumer is behind.
				select {
				case out <- buckets:
				default:
					select {
					case <-out:
					default:
					}
					out <- buckets
				}
			}
		}
	}()
	return out
}
