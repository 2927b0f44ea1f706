// Package store is the durable word repository: one row per unique
// normalized word, keyed by text, with an occurrence counter, a manual
// star rank and first/last-seen timestamps. It owns all word records;
// callers get copies and mutate through its API only.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"
)

// MaxStars is the highest manual rank a word can carry.
const MaxStars = 5

// Record is one word entry. Text is lowercase, alphabetic-only and
// unique across the store.
type Record struct {
	Text      string
	Count     int
	Stars     int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// StorageError wraps an underlying storage failure. Writes never fail
// silently; every I/O error surfaces as one of these.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("store: %s: %v", e.Op, e.Err) }
func (e *StorageError) Unwrap() error { return e.Err }

func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

// Store is a WordStore backed by a single embedded SQLite database.
// The connection pool is limited to one connection, so conflicting
// writes to the same key are serialized by construction; readers never
// observe a torn record because every operation is its own transaction.
type Store struct {
	db *sql.DB

	// now is the clock; replaced in tests.
	now func() time.Time
}

var recordColumns = []string{"text", "count", "stars", "created_at", "updated_at"}

// Open opens (creating if needed) the database at path and prepares the
// schema. Use ":memory:" for an ephemeral store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, wrapErr("open", err)
	}
	// Single connection: serializes writes and keeps :memory: databases
	// from splitting into one DB per connection.
	db.SetMaxOpenConns(1)
	if err := Init(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return wrapErr("close", s.db.Close())
}

const upsertSQL = `
INSERT INTO words (text, count, stars, created_at, updated_at)
VALUES (?, 1, 0, ?, ?)
ON CONFLICT(text) DO UPDATE SET
	count = words.count + 1,
	updated_at = excluded.updated_at`

// UpsertIncrement records one occurrence of word: first sighting creates
// the row with count 1, later sightings bump the counter and the
// last-seen timestamp.
func (s *Store) UpsertIncrement(ctx context.Context, word string) error {
	now := s.now().UnixMilli()
	_, err := s.db.ExecContext(ctx, upsertSQL, word, now, now)
	return wrapErr("upsert "+word, err)
}

// BatchUpsert applies UpsertIncrement for every word inside one
// transaction. The batch is all-or-nothing: a failed write rolls back
// every upsert in the batch and the prior store state stays intact.
func (s *Store) BatchUpsert(ctx context.Context, words []string) error {
	if len(words) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return wrapErr("begin batch", err)
	}
	defer tx.Rollback() // no-op after commit

	now := s.now().UnixMilli()
	stmt, err := tx.PrepareContext(ctx, upsertSQL)
	if err != nil {
		return wrapErr("prepare batch", err)
	}
	defer stmt.Close()

	for _, w := range words {
		if _, err := stmt.ExecContext(ctx, w, now, now); err != nil {
			return wrapErr("batch upsert "+w, err)
		}
	}
	return wrapErr("commit batch", tx.Commit())
}

// SetStars sets the manual rank of word, clamped to [0, MaxStars].
// Starring is curation, not new exposure, so the last-seen timestamp is
// left untouched. Absent words are a no-op.
func (s *Store) SetStars(ctx context.Context, word string, stars int) error {
	if stars < 0 {
		stars = 0
	}
	if stars > MaxStars {
		stars = MaxStars
	}
	_, err := s.db.ExecContext(ctx, `UPDATE words SET stars = ? WHERE text = ?`, stars, word)
	return wrapErr("set stars "+word, err)
}

// Get returns the record for word, or nil when absent.
func (s *Store) Get(ctx context.Context, word string) (*Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT text, count, stars, created_at, updated_at FROM words WHERE text = ?`, word)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapErr("get "+word, err)
	}
	return &rec, nil
}

// GetAll returns every record ordered by last-seen, newest first.
func (s *Store) GetAll(ctx context.Context) ([]Record, error) {
	return s.selectRecords(ctx, "get all", s.baseSelect())
}

// GetStarred returns the starred records ordered by last-seen, newest
// first.
func (s *Store) GetStarred(ctx context.Context) ([]Record, error) {
	return s.selectRecords(ctx, "get starred", s.baseSelect().Where(sq.Gt{"stars": 0}))
}

// Search returns records matching query by exact, prefix or substring
// match on the word text, case-insensitive, ordered by last-seen. An
// empty query returns everything, same as GetAll.
func (s *Store) Search(ctx context.Context, query string) ([]Record, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return s.GetAll(ctx)
	}
	b := s.baseSelect().Where(sq.Or{
		sq.Eq{"text": q},
		sq.Like{"text": likeEscape(q) + "%"},
		sq.Like{"text": "%" + likeEscape(q) + "%"},
	})
	return s.selectRecords(ctx, "search "+q, b)
}

// TopWords returns the n most frequently seen records, ties broken by
// recency.
func (s *Store) TopWords(ctx context.Context, n int) ([]Record, error) {
	if n <= 0 {
		return nil, nil
	}
	b := sq.Select(recordColumns...).
		From("words").
		OrderBy("count DESC", "updated_at DESC").
		Limit(uint64(n))
	return s.selectRecords(ctx, "top words", b)
}

// CountInRange counts records whose last update falls in [start, end).
func (s *Store) CountInRange(ctx context.Context, start, end time.Time) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM words WHERE updated_at >= ? AND updated_at < ?`,
		start.UnixMilli(), end.UnixMilli()).Scan(&n)
	return n, wrapErr("count in range", err)
}

// Count returns the number of distinct words in the store.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM words`).Scan(&n)
	return n, wrapErr("count", err)
}

// OldestCreatedAt returns the first-insertion time of the oldest record.
// ok is false when the store is empty.
func (s *Store) OldestCreatedAt(ctx context.Context) (t time.Time, ok bool, err error) {
	var ms sql.NullInt64
	if err := s.db.QueryRowContext(ctx, `SELECT MIN(created_at) FROM words`).Scan(&ms); err != nil {
		return time.Time{}, false, wrapErr("oldest created_at", err)
	}
	if !ms.Valid {
		return time.Time{}, false, nil
	}
	return time.UnixMilli(ms.Int64).UTC(), true, nil
}

// Remove deletes word from the store. Removing an absent word is a
// no-op.
func (s *Store) Remove(ctx context.Context, word string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM words WHERE text = ?`, word)
	return wrapErr("remove "+word, err)
}

// RemoveAll deletes every record.
func (s *Store) RemoveAll(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM words`)
	return wrapErr("remove all", err)
}

func (s *Store) baseSelect() sq.SelectBuilder {
	return sq.Select(recordColumns...).
		From("words").
		OrderBy("updated_at DESC", "text ASC")
}

func (s *Store) selectRecords(ctx context.Context, op string, b sq.SelectBuilder) ([]Record, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, wrapErr(op, err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapErr(op, err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, wrapErr(op, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr(op, err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row scanner) (Record, error) {
	var rec Record
	var created, updated int64
	if err := row.Scan(&rec.Text, &rec.Count, &rec.Stars, &created, &updated); err != nil {
		return Record{}, err
	}
	rec.CreatedAt = time.UnixMilli(created).UTC()
	rec.UpdatedAt = time.UnixMilli(updated).UTC()
	return rec, nil
}

// likeEscape is intentionally minimal: stored texts are lowercase
// letters only, but the query is user input and may carry wildcards.
func likeEscape(s string) string {
	s = strings.ReplaceAll(s, "%", "")
	return strings.ReplaceAll(s, "_", "")
}
