package store

import (
	"database/sql"
	"strings"
)

// Timestamps are stored as integer unix milliseconds so that range
// comparisons never depend on string formats or zones.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS words (
	text TEXT PRIMARY KEY,
	count INTEGER NOT NULL DEFAULT 1,
	stars INTEGER NOT NULL DEFAULT 0,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_words_updated_at ON words (updated_at);

CREATE INDEX IF NOT EXISTS idx_words_stars ON words (stars)
`

// Init creates the schema on the given connection using the embedded SQL.
func Init(db *sql.DB) error {
	stmts := strings.Split(schemaSQL, ";")
	for _, s := range stmts {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, err := db.Exec(s); err != nil {
			return wrapErr("init schema", err)
		}
	}
	return nil
}
