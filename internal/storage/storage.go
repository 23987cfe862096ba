package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Store keeps a local history of transpile runs in SQLite.
type Store struct {
	db *sql.DB
}

// Run is one recorded transpilation.
type Run struct {
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	SourceLang string    `json:"source_lang"`
	TargetLang string    `json:"target_lang"`
	Method     string    `json:"method"`
	CodeLen    int       `json:"code_len"`
	Warnings   []string  `json:"warnings"`
	Errors     []string  `json:"errors"`
}

// Open creates or opens the history database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		created_at TIMESTAMP,
		source_lang TEXT,
		target_lang TEXT,
		method TEXT,
		code_len INTEGER,
		warnings JSON,
		errors JSON
	);`)
	return err
}

// SaveRun records one transpilation. A missing ID or timestamp is filled in.
func (s *Store) SaveRun(ctx context.Context, r Run) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	warnings, err := json.Marshal(r.Warnings)
	if err != nil {
		return err
	}
	errors, err := json.Marshal(r.Errors)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, created_at, source_lang, target_lang, method, code_len, warnings, errors)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.CreatedAt, r.SourceLang, r.TargetLang, r.Method, r.CodeLen, string(warnings), string(errors))
	return err
}

// RecentRuns returns the newest runs, most recent first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, source_lang, target_lang, method, code_len, warnings, errors
		 FROM runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var warnings, errors string
		if err := rows.Scan(&r.ID, &r.CreatedAt, &r.SourceLang, &r.TargetLang, &r.Method, &r.CodeLen, &warnings, &errors); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(warnings), &r.Warnings); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(errors), &r.Errors); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
