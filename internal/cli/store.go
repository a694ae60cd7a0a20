package cli

import (
	"context"

	"github.com/google/uuid"

	"github.com/cory-johannsen/srdcrawl/internal/config"
	"github.com/cory-johannsen/srdcrawl/internal/importer"
	"github.com/cory-johannsen/srdcrawl/internal/storage"
	"github.com/cory-johannsen/srdcrawl/internal/storage/postgres"
	"github.com/cory-johannsen/srdcrawl/internal/storage/sqlite"
)

// OpenStore opens the record store named by cfg.Store.Driver.
//
// Postcondition: for driver "none" the store is nil. The returned close
// function is always non-nil and safe to call.
func OpenStore(ctx context.Context, cfg config.Config) (storage.Store, func(), error) {
	switch cfg.Store.Driver {
	case "postgres":
		repo, closeRepo, err := postgres.Open(ctx, cfg.Database)
		if err != nil {
			return nil, func() {}, err
		}
		return repo, closeRepo, nil
	case "sqlite":
		s, err := sqlite.Open(ctx, cfg.Store.SQLitePath)
		if err != nil {
			return nil, func() {}, err
		}
		return s, func() { _ = s.Close() }, nil
	default:
		return nil, func() {}, nil
	}
}

// Sinks returns the file sink for outPath in the configured format, plus a
// store sink when store is non-nil.
func Sinks[Out any](cfg config.Config, outPath string, store storage.Store, kind string, runID uuid.UUID, name func(Out) string) []importer.Sink[Out] {
	sinks := []importer.Sink[Out]{importer.NewFileSink[Out](outPath, cfg.Output.Format)}
	if store != nil {
		sinks = append(sinks, importer.NewStoreSink(store, kind, runID, name))
	}
	return sinks
}
