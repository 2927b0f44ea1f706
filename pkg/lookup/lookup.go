// Package lookup resolves candidate words against a definition source.
// The source may be a remote dictionary service or a local table; the
// pipeline only cares about the three outcomes: defined, not found, or
// failed.
package lookup

import (
	"context"
	"errors"
)

// ErrNotFound means the source answered and the word has no definition.
// It is a confirmed miss, distinct from a transport or timeout failure.
var ErrNotFound = errors.New("lookup: word not found")

// Lookup resolves a normalized word to its definition. Implementations
// must support concurrent invocation.
type Lookup interface {
	Define(ctx context.Context, word string) (string, error)
}

// Func adapts a function to the Lookup interface.
type Func func(ctx context.Context, word string) (string, error)

func (f Func) Define(ctx context.Context, word string) (string, error) {
	return f(ctx, word)
}
