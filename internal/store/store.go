// Package store persists crawl state and extracted records in SQLite.
//
// The visited table lets a repeated crawl skip registrations it already
// fetched; the records table keeps the latest extraction of each
// registration as JSON, keyed by site and record id.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/abraham-mv/huon-test/internal/models"
)

type DB struct {
	db   *sql.DB
	path string
}

// Open opens or creates the database file at path, creating its directory.
func Open(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path+"?mode=rwc")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// SQLite has a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	s := &DB{db: db, path: path}
	if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if err := s.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	return s, nil
}

func (s *DB) Close() error { return s.db.Close() }

func (s *DB) Path() string { return s.path }

func (s *DB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS visited (
		key TEXT PRIMARY KEY,
		seen_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS records (
		site TEXT NOT NULL,
		rid TEXT NOT NULL,
		crawl_id TEXT,
		rdate DATETIME,
		record_json TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (site, rid)
	);

	CREATE INDEX IF NOT EXISTS idx_records_crawl ON records(crawl_id);
	`
	_, err := s.db.ExecContext(context.Background(), schema)
	return err
}

// Seen reports whether key was marked.
func (s *DB) Seen(ctx context.Context, key string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM visited WHERE key = ?`, key).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("query visited: %w", err)
	}
	return n > 0, nil
}

func (s *DB) MarkSeen(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `
	INSERT INTO visited (key) VALUES (?)
	ON CONFLICT(key) DO UPDATE SET seen_at = CURRENT_TIMESTAMP
	`, key)
	if err != nil {
		return fmt.Errorf("mark visited: %w", err)
	}
	return nil
}

// SaveRecord inserts rec, replacing an earlier extraction of the same record.
func (s *DB) SaveRecord(ctx context.Context, rec models.Record) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("serialize record: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
	INSERT INTO records (site, rid, crawl_id, rdate, record_json)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(site, rid) DO UPDATE SET
		crawl_id = excluded.crawl_id,
		rdate = excluded.rdate,
		record_json = excluded.record_json,
		updated_at = CURRENT_TIMESTAMP
	`, rec.Site, rec.RID, rec.Meta.CID, rec.RDate.UTC().Format(time.RFC3339), string(body))
	if err != nil {
		return fmt.Errorf("save record %s/%s: %w", rec.Site, rec.RID, err)
	}
	return nil
}

// Records returns the stored records of site ordered by record id. An empty
// site returns every record.
func (s *DB) Records(ctx context.Context, site string) ([]models.Record, error) {
	query := `SELECT record_json FROM records WHERE site = ? ORDER BY rid`
	args := []any{site}
	if site == "" {
		query = `SELECT record_json FROM records ORDER BY site, rid`
		args = nil
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var out []models.Record
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		var rec models.Record
		if err := json.Unmarshal([]byte(body), &rec); err != nil {
			return nil, fmt.Errorf("parse stored record: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
