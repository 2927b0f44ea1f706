package store

import (
	"context"
	"errors"
	"testing"
	"time"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// fixClock pins the store clock to a settable instant.
func fixClock(s *Store, at time.Time) func(time.Time) {
	current := at
	s.now = func() time.Time { return current }
	return func(next time.Time) { current = next }
}

func TestUpsertIncrementIdempotence(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	t0 := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	tick := fixClock(s, t0)

	if err := s.BatchUpsert(ctx, []string{"ephemeral"}); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	tick(t0.Add(time.Hour))
	if err := s.BatchUpsert(ctx, []string{"ephemeral"}); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	rec, err := s.Get(ctx, "ephemeral")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec == nil {
		t.Fatal("expected record, got nil")
	}
	if rec.Count != 2 {
		t.Fatalf("expected count 2, got %d", rec.Count)
	}
	if !rec.CreatedAt.Equal(t0) {
		t.Fatalf("createdAt changed: %v", rec.CreatedAt)
	}
	if !rec.UpdatedAt.Equal(t0.Add(time.Hour)) {
		t.Fatalf("updatedAt not advanced: %v", rec.UpdatedAt)
	}
}

func TestUpsertIncrementSingle(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	if err := s.UpsertIncrement(ctx, "limpid"); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	rec, err := s.Get(ctx, "limpid")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec == nil || rec.Count != 1 || rec.Stars != 0 {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if !rec.CreatedAt.Equal(rec.UpdatedAt) {
		t.Fatalf("fresh record should have createdAt == updatedAt")
	}
}

func TestBatchUpsertCountsDuplicates(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	if err := s.BatchUpsert(ctx, []string{"terse", "terse", "lucid"}); err != nil {
		t.Fatalf("batch upsert: %v", err)
	}
	rec, err := s.Get(ctx, "terse")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.Count != 2 {
		t.Fatalf("expected count 2 for duplicate in batch, got %d", rec.Count)
	}
}

func TestSetStarsKeepsUpdatedAt(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	t0 := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	tick := fixClock(s, t0)

	if err := s.UpsertIncrement(ctx, "astute"); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	tick(t0.Add(2 * time.Hour))
	if err := s.SetStars(ctx, "astute", 3); err != nil {
		t.Fatalf("set stars: %v", err)
	}

	rec, err := s.Get(ctx, "astute")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.Stars != 3 {
		t.Fatalf("expected 3 stars, got %d", rec.Stars)
	}
	if !rec.UpdatedAt.Equal(t0) {
		t.Fatalf("starring must not bump updatedAt, got %v", rec.UpdatedAt)
	}
}

func TestSetStarsClamps(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	if err := s.UpsertIncrement(ctx, "astute"); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := s.SetStars(ctx, "astute", 9); err != nil {
		t.Fatalf("set stars: %v", err)
	}
	rec, _ := s.Get(ctx, "astute")
	if rec.Stars != MaxStars {
		t.Fatalf("expected clamp to %d, got %d", MaxStars, rec.Stars)
	}
	if err := s.SetStars(ctx, "astute", -4); err != nil {
		t.Fatalf("set stars: %v", err)
	}
	rec, _ = s.Get(ctx, "astute")
	if rec.Stars != 0 {
		t.Fatalf("expected clamp to 0, got %d", rec.Stars)
	}
}

func TestSetStarsAbsentIsNoop(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	if err := s.SetStars(ctx, "phantom", 4); err != nil {
		t.Fatalf("set stars on absent word: %v", err)
	}
	rec, err := s.Get(ctx, "phantom")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec != nil {
		t.Fatalf("starring must not create records, got %+v", rec)
	}
}

func TestGetAllOrdering(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	t0 := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	tick := fixClock(s, t0)

	for i, w := range []string{"oldest", "middle", "newest"} {
		tick(t0.Add(time.Duration(i) * time.Minute))
		if err := s.UpsertIncrement(ctx, w); err != nil {
			t.Fatalf("upsert %s: %v", w, err)
		}
	}

	all, err := s.GetAll(ctx)
	if err != nil {
		t.Fatalf("get all: %v", err)
	}
	want := []string{"newest", "middle", "oldest"}
	if len(all) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(all))
	}
	for i, w := range want {
		if all[i].Text != w {
			t.Fatalf("position %d: expected %q, got %q", i, w, all[i].Text)
		}
	}
}

func TestGetStarred(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	for _, w := range []string{"plain", "marked"} {
		if err := s.UpsertIncrement(ctx, w); err != nil {
			t.Fatalf("upsert %s: %v", w, err)
		}
	}
	if err := s.SetStars(ctx, "marked", 2); err != nil {
		t.Fatalf("set stars: %v", err)
	}

	starred, err := s.GetStarred(ctx)
	if err != nil {
		t.Fatalf("get starred: %v", err)
	}
	if len(starred) != 1 || starred[0].Text != "marked" {
		t.Fatalf("unexpected starred set: %+v", starred)
	}
}

func TestSearchEmptyEqualsGetAll(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	t0 := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	tick := fixClock(s, t0)

	for i, w := range []string{"alpha", "beta", "gamma"} {
		tick(t0.Add(time.Duration(i) * time.Minute))
		if err := s.UpsertIncrement(ctx, w); err != nil {
			t.Fatalf("upsert %s: %v", w, err)
		}
	}

	all, err := s.GetAll(ctx)
	if err != nil {
		t.Fatalf("get all: %v", err)
	}
	found, err := s.Search(ctx, "")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(all) != len(found) {
		t.Fatalf("expected %d records, got %d", len(all), len(found))
	}
	for i := range all {
		if all[i].Text != found[i].Text {
			t.Fatalf("position %d: %q vs %q", i, all[i].Text, found[i].Text)
		}
	}
}

func TestSearchMatching(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	for _, w := range []string{"cat", "catalog", "concatenate", "dog"} {
		if err := s.UpsertIncrement(ctx, w); err != nil {
			t.Fatalf("upsert %s: %v", w, err)
		}
	}

	found, err := s.Search(ctx, "CAT")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	got := make(map[string]bool, len(found))
	for _, rec := range found {
		got[rec.Text] = true
	}
	for _, want := range []string{"cat", "catalog", "concatenate"} {
		if !got[want] {
			t.Fatalf("expected %q in results, got %v", want, found)
		}
	}
	if got["dog"] {
		t.Fatal("unrelated word matched")
	}
}

func TestCountInRangePartition(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	tick := fixClock(s, base)

	// Scatter updates across a day at uneven offsets.
	words := []string{"zero", "one", "two", "three", "four", "five", "six"}
	offsets := []time.Duration{
		10 * time.Minute,
		10 * time.Minute, // same hour as the previous one
		3*time.Hour + 59*time.Minute,
		7 * time.Hour,
		7*time.Hour + 30*time.Minute,
		15 * time.Hour,
		23*time.Hour + 59*time.Minute,
	}
	for i, w := range words {
		tick(base.Add(offsets[i]))
		if err := s.UpsertIncrement(ctx, w); err != nil {
			t.Fatalf("upsert %s: %v", w, err)
		}
	}

	end := base.Add(24 * time.Hour)
	total, err := s.CountInRange(ctx, base, end)
	if err != nil {
		t.Fatalf("count full range: %v", err)
	}
	if total != len(words) {
		t.Fatalf("expected %d in full range, got %d", len(words), total)
	}

	sum := 0
	for h := 0; h < 24; h++ {
		start := base.Add(time.Duration(h) * time.Hour)
		n, err := s.CountInRange(ctx, start, start.Add(time.Hour))
		if err != nil {
			t.Fatalf("count slot %d: %v", h, err)
		}
		sum += n
	}
	if sum != total {
		t.Fatalf("hourly slots sum to %d, want %d", sum, total)
	}

	// End bound is exclusive.
	n, err := s.CountInRange(ctx, base, base.Add(10*time.Minute))
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected exclusive end bound, got %d", n)
	}
}

func TestRemove(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	if err := s.UpsertIncrement(ctx, "fleeting"); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := s.Remove(ctx, "fleeting"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	rec, err := s.Get(ctx, "fleeting")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec != nil {
		t.Fatalf("expected record gone, got %+v", rec)
	}
	if err := s.Remove(ctx, "fleeting"); err != nil {
		t.Fatalf("removing absent word should be a no-op: %v", err)
	}
}

func TestRemoveAll(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	for _, w := range []string{"one", "two", "three"} {
		if err := s.UpsertIncrement(ctx, w); err != nil {
			t.Fatalf("upsert %s: %v", w, err)
		}
	}
	if err := s.RemoveAll(ctx); err != nil {
		t.Fatalf("remove all: %v", err)
	}
	n, err := s.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected empty store, got %d records", n)
	}
}

func TestExportList(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	t0 := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	tick := fixClock(s, t0)

	for i, w := range []string{"first", "second", "third"} {
		tick(t0.Add(time.Duration(i) * time.Minute))
		if err := s.UpsertIncrement(ctx, w); err != nil {
			t.Fatalf("upsert %s: %v", w, err)
		}
	}
	if err := s.SetStars(ctx, "second", 5); err != nil {
		t.Fatalf("set stars: %v", err)
	}

	text, err := s.ExportList(ctx, false)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if text != "third\nsecond\nfirst" {
		t.Fatalf("unexpected export: %q", text)
	}

	starred, err := s.ExportList(ctx, true)
	if err != nil {
		t.Fatalf("export starred: %v", err)
	}
	if starred != "second" {
		t.Fatalf("unexpected starred export: %q", starred)
	}
}

func TestTopWords(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	counts := map[string]int{"rare": 1, "common": 5, "usual": 3}
	for w, n := range counts {
		for i := 0; i < n; i++ {
			if err := s.UpsertIncrement(ctx, w); err != nil {
				t.Fatalf("upsert %s: %v", w, err)
			}
		}
	}

	top, err := s.TopWords(ctx, 2)
	if err != nil {
		t.Fatalf("top words: %v", err)
	}
	if len(top) != 2 || top[0].Text != "common" || top[1].Text != "usual" {
		t.Fatalf("unexpected top words: %+v", top)
	}
}

func TestOldestCreatedAt(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	_, ok, err := s.OldestCreatedAt(ctx)
	if err != nil {
		t.Fatalf("oldest on empty store: %v", err)
	}
	if ok {
		t.Fatal("expected ok=false on empty store")
	}

	t0 := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	tick := fixClock(s, t0)
	if err := s.UpsertIncrement(ctx, "first"); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	tick(t0.Add(time.Hour))
	if err := s.UpsertIncrement(ctx, "second"); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, ok, err := s.OldestCreatedAt(ctx)
	if err != nil {
		t.Fatalf("oldest: %v", err)
	}
	if !ok || !got.Equal(t0) {
		t.Fatalf("expected %v, got %v (ok=%v)", t0, got, ok)
	}
}

func TestStorageErrorSurfaces(t *testing.T) {
	s := setupTestStore(t)
	s.Close()

	err := s.UpsertIncrement(context.Background(), "orphan")
	if err == nil {
		t.Fatal("expected error writing to a closed store")
	}
	var se *StorageError
	if !errors.As(err, &se) {
		t.Fatalf("expected StorageError, got %T: %v", err, err)
	}
}
