package source

import (
	"bufio"
	"context"
	"io"
	"os"
)

// ReaderSource emits one text per line read from an io.Reader. The
// channel closes at EOF. NewStdin wraps os.Stdin for interactive use.
type ReaderSource struct {
	R io.Reader
	// MaxLine bounds a single line in bytes. Zero means 1 MB.
	MaxLine int
}

// NewStdin returns a source reading lines from standard input.
func NewStdin() *ReaderSource {
	return &ReaderSource{R: os.Stdin}
}

// Watch reads lines until EOF or ctx cancellation.
func (r *ReaderSource) Watch(ctx context.Context) (<-chan string, error) {
	maxLine := r.MaxLine
	if maxLine <= 0 {
		maxLine = 1 << 20
	}
	out := make(chan string)

	go func() {
		defer close(out)
		scanner := bufio.NewScanner(r.R)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLine)
		for scanner.Scan() {
			line := scanner.Text()
			if line == "" {
				continue
			}
			select {
			case out <- line:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
