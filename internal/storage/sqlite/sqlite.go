// Package sqlite provides a single-file record store on the pure-Go
// modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/cory-johannsen/srdcrawl/internal/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS srd_records (
	kind       TEXT NOT NULL,
	name       TEXT NOT NULL,
	run_id     TEXT NOT NULL,
	document   TEXT NOT NULL,
	updated_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (kind, name)
);
CREATE INDEX IF NOT EXISTS idx_srd_records_run_id ON srd_records (run_id);
`

// Store keeps records in an SQLite database file.
type Store struct {
	db *sql.DB
}

var _ storage.Store = (*Store)(nil)

// Open opens or creates the database at path and ensures the schema exists.
//
// Postcondition: Returns a ready Store or a non-nil error.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite %s: %w", path, err)
	}
	// one writer; avoids SQLITE_BUSY between pooled connections
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema in %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put upserts recs inside a single transaction.
//
// Precondition: every record passes storage.Validate.
// Postcondition: either every record is written or none is.
func (s *Store) Put(ctx context.Context, recs []storage.Record) error {
	for _, rec := range recs {
		if err := storage.Validate(rec); err != nil {
			return err
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO srd_records (kind, name, run_id, document)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (kind, name) DO UPDATE
		 SET run_id = excluded.run_id, document = excluded.document, updated_at = CURRENT_TIMESTAMP`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range recs {
		if _, err := stmt.ExecContext(ctx, rec.Kind, rec.Name, rec.RunID.String(), string(rec.Document)); err != nil {
			return fmt.Errorf("writing %s %q: %w", rec.Kind, rec.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing records: %w", err)
	}
	return nil
}

// Get returns the record stored under kind and name.
//
// Postcondition: returns storage.ErrNotFound when no such record exists.
func (s *Store) Get(ctx context.Context, kind, name string) (storage.Record, error) {
	var (
		rec   storage.Record
		runID string
		doc   string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT kind, name, run_id, document FROM srd_records WHERE kind = ? AND name = ?`,
		kind, name,
	).Scan(&rec.Kind, &rec.Name, &runID, &doc)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.Record{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.Record{}, fmt.Errorf("querying record %s/%s: %w", kind, name, err)
	}

	rec.RunID, err = uuid.Parse(runID)
	if err != nil {
		return storage.Record{}, fmt.Errorf("parsing run id of %s/%s: %w", kind, name, err)
	}
	rec.Document = []byte(doc)
	return rec, nil
}

// Count returns the number of records of kind.
func (s *Store) Count(ctx context.Context, kind string) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM srd_records WHERE kind = ?`, kind).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting %s records: %w", kind, err)
	}
	return n, nil
}
