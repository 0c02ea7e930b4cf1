// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/review-engine/pkg/types"
)

const dbFile = "review.db"

// SQLiteStore persists decisions in a SQLite database keyed by the article
// composite key. Unlike FileStore, deciding the same article twice upserts
// a single row, so the key appears in at most one set at a time by schema.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens or creates the decision database at dataDir/review.db,
// creating the schema if it does not exist.
func OpenSQLite(dataDir string) (*SQLiteStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) createSchema() error {
	_, err := s.db.Exec(
		`CREATE TABLE IF NOT EXISTS decisions (
			key TEXT PRIMARY KEY,
			set_name TEXT NOT NULL,
			article TEXT NOT NULL,
			decided_at TEXT NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("executing schema statement: %w", err)
	}
	_, err = s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_decisions_set ON decisions(set_name)`)
	if err != nil {
		return fmt.Errorf("creating set index: %w", err)
	}
	return nil
}

// Load reads both sets. Rows whose article payload no longer parses are
// skipped rather than failing the whole load.
func (s *SQLiteStore) Load() (Decisions, error) {
	rows, err := s.db.Query(`SELECT set_name, article FROM decisions ORDER BY decided_at`)
	if err != nil {
		return Decisions{}, fmt.Errorf("querying decisions: %w", err)
	}
	defer rows.Close()

	var d Decisions
	for rows.Next() {
		var setName, articleJSON string
		if err := rows.Scan(&setName, &articleJSON); err != nil {
			return Decisions{}, fmt.Errorf("scanning row: %w", err)
		}

		var a types.Article
		if err := json.Unmarshal([]byte(articleJSON), &a); err != nil {
			continue
		}

		switch Set(setName) {
		case SetIncluded:
			d.Included = append(d.Included, a)
		case SetExcluded:
			d.Excluded = append(d.Excluded, a)
		}
	}
	return d, rows.Err()
}

// Append upserts the article into the named set.
func (s *SQLiteStore) Append(set Set, article types.Article) error {
	if !set.Valid() {
		return fmt.Errorf("unknown decision set %q", set)
	}

	data, err := json.Marshal(article)
	if err != nil {
		return fmt.Errorf("encoding article: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO decisions (key, set_name, article, decided_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET
			set_name=excluded.set_name, article=excluded.article, decided_at=excluded.decided_at`,
		article.Key(), string(set), string(data), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("upserting decision: %w", err)
	}
	return nil
}

// Move reassigns the keyed article from one set to the other in a single
// statement, so it cannot be absent from both sets mid-operation.
func (s *SQLiteStore) Move(key string, from, to Set) error {
	if !from.Valid() || !to.Valid() {
		return fmt.Errorf("unknown decision set in move %q -> %q", from, to)
	}

	res, err := s.db.Exec(
		`UPDATE decisions SET set_name = ?, decided_at = ? WHERE key = ? AND set_name = ?`,
		string(to), time.Now().UTC().Format(time.RFC3339Nano), key, string(from),
	)
	if err != nil {
		return fmt.Errorf("moving decision: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking move result: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("article %s not found in %s set", key, from)
	}
	return nil
}

// Close releases the database connection.
func (s *SQLiteStore) Close() error { return s.db.Close() }
