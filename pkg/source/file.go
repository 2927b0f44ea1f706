package source

import (
	"context"
	"crypto/sha256"
	"log/slog"
	"os"
	"time"
)

const (
	// DefaultPollInterval matches the cadence of the original clipboard
	// watcher.
	DefaultPollInterval = time.Second

	// maxFileSize caps how much of the watched file is read per poll.
	maxFileSize = 10 << 20 // 10 MB
)

// FileSource polls a file and emits its full content whenever the
// content changes. It stands in for a clipboard: anything that writes
// the file feeds the pipeline.
type FileSource struct {
	// Path of the watched file. The file may not exist yet; polling
	// simply continues until it does.
	Path string
	// Interval between polls. Zero means DefaultPollInterval.
	Interval time.Duration
	// Logger receives read failures. nil disables logging.
	Logger *slog.Logger
}

// Watch starts polling and returns the change channel. The channel
// closes when ctx is done.
func (f *FileSource) Watch(ctx context.Context) (<-chan string, error) {
	interval := f.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	out := make(chan string, 1)

	go func() {
		defer close(out)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		var lastHash [sha256.Size]byte
		haveLast := false

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			data, err := os.ReadFile(f.Path)
			if err != nil {
				if !os.IsNotExist(err) && f.Logger != nil {
					f.Logger.Warn("read watched file failed", "path", f.Path, "error", err)
				}
				continue
			}
			if len(data) == 0 || len(data) > maxFileSize {
				continue
			}
			hash := sha256.Sum256(data)
			if haveLast && hash == lastHash {
				continue
			}
			lastHash = hash
			haveLast = true

			select {
			case out <- string(data):
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
