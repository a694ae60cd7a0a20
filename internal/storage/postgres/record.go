package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/srdcrawl/internal/storage"
)

// RecordRepository stores extracted records in the srd_records table.
type RecordRepository struct {
	db *pgxpool.Pool
}

var _ storage.Store = (*RecordRepository)(nil)

// NewRecordRepository creates a RecordRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool and the
// srd_records migration must have been applied.
func NewRecordRepository(db *pgxpool.Pool) *RecordRepository {
	return &RecordRepository{db: db}
}

// Put upserts recs inside a single transaction.
//
// Precondition: every record passes storage.Validate.
// Postcondition: either every record is written or none is.
func (r *RecordRepository) Put(ctx context.Context, recs []storage.Record) error {
	for _, rec := range recs {
		if err := storage.Validate(rec); err != nil {
			return err
		}
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	batch := &pgx.Batch{}
	for _, rec := range recs {
		batch.Queue(
			`INSERT INTO srd_records (kind, name, run_id, document)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (kind, name) DO UPDATE
			 SET run_id = EXCLUDED.run_id, document = EXCLUDED.document, updated_at = NOW()`,
			rec.Kind, rec.Name, rec.RunID.String(), []byte(rec.Document),
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("writing records: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing records: %w", err)
	}
	return nil
}

// Get returns the record stored under kind and name.
//
// Postcondition: returns storage.ErrNotFound when no such record exists.
func (r *RecordRepository) Get(ctx context.Context, kind, name string) (storage.Record, error) {
	var (
		rec   storage.Record
		runID string
		doc   []byte
	)
	err := r.db.QueryRow(ctx,
		`SELECT kind, name, run_id::text, document FROM srd_records WHERE kind = $1 AND name = $2`,
		kind, name,
	).Scan(&rec.Kind, &rec.Name, &runID, &doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return storage.Record{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.Record{}, fmt.Errorf("querying record %s/%s: %w", kind, name, err)
	}

	rec.RunID, err = uuid.Parse(runID)
	if err != nil {
		return storage.Record{}, fmt.Errorf("parsing run id of %s/%s: %w", kind, name, err)
	}
	rec.Document = doc
	return rec, nil
}

// Count returns the number of records of kind.
func (r *RecordRepository) Count(ctx context.Context, kind string) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM srd_records WHERE kind = $1`, kind).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting %s records: %w", kind, err)
	}
	return n, nil
}
