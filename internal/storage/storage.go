// Package storage defines the record store shared by the PostgreSQL and
// SQLite backends.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Record kinds.
const (
	KindMonster = "monster"
	KindSpell   = "spell"
)

// ErrNotFound is returned when a record lookup yields no results.
var ErrNotFound = errors.New("record not found")

// Record is one extracted monster or spell, keyed by kind and name.
type Record struct {
	Kind     string
	Name     string
	RunID    uuid.UUID
	Document json.RawMessage
}

// Store persists records.
type Store interface {
	// Put upserts recs in one transaction. A record whose (Kind, Name) already
	// exists is replaced.
	Put(ctx context.Context, recs []Record) error
	// Get returns the record stored under kind and name, or ErrNotFound.
	Get(ctx context.Context, kind, name string) (Record, error)
	// Count returns the number of records of kind.
	Count(ctx context.Context, kind string) (int, error)
}

// ValidKind reports whether kind is a recognised record kind.
func ValidKind(kind string) bool {
	switch kind {
	case KindMonster, KindSpell:
		return true
	}
	return false
}

// ErrInvalidRecord is returned by Validate.
var ErrInvalidRecord = errors.New("invalid record")

// Validate checks that r can be stored.
//
// Postcondition: returns nil, or an error wrapping ErrInvalidRecord.
func Validate(r Record) error {
	switch {
	case !ValidKind(r.Kind):
		return fmt.Errorf("%w: kind %q", ErrInvalidRecord, r.Kind)
	case r.Name == "":
		return fmt.Errorf("%w: empty name", ErrInvalidRecord)
	case !json.Valid(r.Document):
		return fmt.Errorf("%w: %s document is not valid JSON", ErrInvalidRecord, r.Name)
	}
	return nil
}
