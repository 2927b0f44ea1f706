// Package source provides text sources for the pipeline. A source
// watches something that changes over time (a file, an input stream)
// and emits the raw text of each change; picking words out of that text
// is the pipeline's job, not the source's.
package source

import "context"

// Source emits raw text snapshots on each detected change. The channel
// closes when the source is exhausted or ctx is done.
type Source interface {
	Watch(ctx context.Context) (<-chan string, error)
}

// Chan adapts an existing channel to the Source interface; tests and
// embedders push text in directly.
type Chan <-chan string

func (c Chan) Watch(ctx context.Context) (<-chan string, error) {
	out := make(chan string)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case text, ok := <-c:
				if !ok {
					return
				}
				select {
				case out <- text:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
