package lookup

import (
	"context"
	"errors"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// DefaultCacheSize bounds the number of remembered lookups.
const DefaultCacheSize = 1000

// cacheEntry remembers a settled outcome: a definition or a confirmed
// miss. Transient failures are never cached.
type cacheEntry struct {
	definition string
	notFound   bool
}

// Cached wraps a Lookup with an LRU cache and per-word request
// collapsing: concurrent callers asking for the same word share a
// single in-flight upstream call.
type Cached struct {
	upstream Lookup
	cache    *lru.Cache[string, cacheEntry]
	flight   singleflight.Group
}

// NewCached returns a caching wrapper around upstream. size<=0 means
// DefaultCacheSize.
func NewCached(upstream Lookup, size int) (*Cached, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	c, err := lru.New[string, cacheEntry](size)
	if err != nil {
		return nil, err
	}
	return &Cached{upstream: upstream, cache: c}, nil
}

// Define answers from cache when possible, otherwise forwards to the
// upstream lookup with at most one in-flight call per word.
func (c *Cached) Define(ctx context.Context, word string) (string, error) {
	if entry, ok := c.cache.Get(word); ok {
		if entry.notFound {
			return "", ErrNotFound
		}
		return entry.definition, nil
	}

	v, err, _ := c.flight.Do(word, func() (interface{}, error) {
		def, err := c.upstream.Define(ctx, word)
		switch {
		case err == nil:
			c.cache.Add(word, cacheEntry{definition: def})
			return def, nil
		case errors.Is(err, ErrNotFound):
			c.cache.Add(word, cacheEntry{notFound: true})
			return "", ErrNotFound
		default:
			return "", err
		}
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Purge drops all cached outcomes.
func (c *Cached) Purge() {
	c.cache.Purge()
}
