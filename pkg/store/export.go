package store

import (
	"context"
	"strings"
)

// ExportList renders the word keys as newline-joined text, ordered by
// last-seen, newest first. The caller decides where the text goes; the
// store only produces it.
func (s *Store) ExportList(ctx context.Context, starredOnly bool) (string, error) {
	var (
		records []Record
		err     error
	)
	if starredOnly {
		records, err = s.GetStarred(ctx)
	} else {
		records, err = s.GetAll(ctx)
	}
	if err != nil {
		return "", err
	}
	texts := make([]string, len(records))
	for i, rec := range records {
		texts[i] = rec.Text
	}
	return strings.Join(texts, "\n"), nil
}
