package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kafkapulse/kafkapulse/internal/config"
	"github.com/kafkapulse/kafkapulse/internal/normalize"
)

// Store abstracts the persistence backend for normalized record batches.
type Store interface {
	// Save persists one batch in a single transaction — either every record
	// lands or none do.
	Save(ctx context.Context, recs []normalize.Record) error

	// Query returns records for metric between from and to (inclusive),
	// sorted by time ascending. An empty metric matches all metrics.
	Query(ctx context.Context, metric string, from, to time.Time) ([]normalize.Record, error)

	// Sweep deletes records older than olderThan and returns how many were
	// removed.
	Sweep(ctx context.Context, olderThan time.Time) (int64, error)

	// Close releases the backend's resources.
	Close() error
}

// New opens the Store selected by cfg.Backend.
func New(cfg config.StorageConfig, log *slog.Logger) (Store, error) {
	switch cfg.Backend {
	case "sqlite", "":
		return OpenSQLite(cfg.Path, log)
	default:
		return nil, fmt.Errorf("store: unknown backend %q", cfg.Backend)
	}
}
