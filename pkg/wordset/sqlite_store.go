package wordset

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS bad_words (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	word TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS allowed_words (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	word TEXT NOT NULL UNIQUE
);
`

// SQLiteStore keeps the word lists in two tables, bad_words and allowed_words.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at path and ensures the schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, errors.Wrap(err, "create database directory")
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "create schema")
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) BadWords(ctx context.Context) ([]string, error) {
	return s.words(ctx, "SELECT word FROM bad_words")
}

func (s *SQLiteStore) AllowedWords(ctx context.Context) ([]string, error) {
	return s.words(ctx, "SELECT word FROM allowed_words")
}

func (s *SQLiteStore) AddBadWords(ctx context.Context, words ...string) error {
	return s.insert(ctx, "INSERT OR IGNORE INTO bad_words (word) VALUES (?)", words)
}

func (s *SQLiteStore) AddAllowedWords(ctx context.Context, words ...string) error {
	return s.insert(ctx, "INSERT OR IGNORE INTO allowed_words (word) VALUES (?)", words)
}

func (s *SQLiteStore) words(ctx context.Context, query string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, "query words")
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var w string
		if err := rows.Scan(&w); err != nil {
			return nil, errors.Wrap(err, "scan word")
		}
		out = append(out, w)
	}
	return out, errors.Wrap(rows.Err(), "iterate words")
}

func (s *SQLiteStore) insert(ctx context.Context, stmt string, words []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	defer tx.Rollback()

	prepared, err := tx.PrepareContext(ctx, stmt)
	if err != nil {
		return errors.Wrap(err, "prepare insert")
	}
	defer prepared.Close()

	for _, w := range words {
		if w == "" {
			continue
		}
		if _, err := prepared.ExecContext(ctx, w); err != nil {
			return errors.Wrapf(err, "insert %q", w)
		}
	}
	return errors.Wrap(tx.Commit(), "commit")
}
