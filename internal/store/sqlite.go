package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"github.com/kafkapulse/kafkapulse/internal/normalize"
)

// SQLite persists record batches in a local SQLite file. The modernc.org
// driver is pure Go, so the agent builds without CGO.
type SQLite struct {
	db  *sql.DB
	log *slog.Logger
}

// OpenSQLite opens (or creates) the database file at path and runs the
// migration that creates the records table if it does not exist.
// The caller must Close() the store on shutdown.
func OpenSQLite(path string, log *slog.Logger) (*SQLite, error) {
	if log == nil {
		log = slog.Default()
	}

	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?_fk=1", path))
	if err != nil {
		return nil, fmt.Errorf("store: open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: ping sqlite db: %w", err)
	}

	s := &SQLite{db: db, log: log}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: run migration: %w", err)
	}
	return s, nil
}

func (s *SQLite) migrate() error {
	const stmt = `
CREATE TABLE IF NOT EXISTS records (
    id       INTEGER PRIMARY KEY AUTOINCREMENT,
    ts       INTEGER NOT NULL,
    metric   TEXT NOT NULL,
    value    REAL NOT NULL,
    category TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_records_metric_ts ON records(metric, ts);
`
	if _, err := s.db.Exec(stmt); err != nil {
		return fmt.Errorf("create records table: %w", err)
	}
	s.log.Info("store: sqlite migration applied")
	return nil
}

// Save persists one batch in a single transaction.
func (s *SQLite) Save(ctx context.Context, recs []normalize.Record) error {
	if len(recs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO records (ts, metric, value, category) VALUES (?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("store: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range recs {
		if _, err := stmt.ExecContext(ctx, r.Time, r.Metric, r.Value, r.Category); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("store: insert %q: %w", r.Metric, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit tx: %w", err)
	}

	s.log.Debug("store: batch persisted", "records", len(recs), "ts", recs[0].Time)
	return nil
}

// Query returns records for metric between from and to (inclusive), sorted
// by time ascending. An empty metric matches all metrics.
func (s *SQLite) Query(ctx context.Context, metric string, from, to time.Time) ([]normalize.Record, error) {
	const base = `SELECT ts, metric, value, category FROM records WHERE ts BETWEEN ? AND ?`

	var (
		rows *sql.Rows
		err  error
	)
	if metric == "" {
		rows, err = s.db.QueryContext(ctx, base+` ORDER BY ts ASC`,
			from.UnixMilli(), to.UnixMilli())
	} else {
		rows, err = s.db.QueryContext(ctx, base+` AND metric = ? ORDER BY ts ASC`,
			from.UnixMilli(), to.UnixMilli(), metric)
	}
	if err != nil {
		return nil, fmt.Errorf("store: query records: %w", err)
	}
	defer rows.Close()

	var recs []normalize.Record
	for rows.Next() {
		var r normalize.Record
		if err := rows.Scan(&r.Time, &r.Metric, &r.Value, &r.Category); err != nil {
			return nil, fmt.Errorf("store: scan record: %w", err)
		}
		recs = append(recs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate records: %w", err)
	}
	return recs, nil
}

// Sweep deletes records older than olderThan and returns the removed count.
func (s *SQLite) Sweep(ctx context.Context, olderThan time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM records WHERE ts < ?`, olderThan.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("store: sweep: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("store: sweep rows affected: %w", err)
	}
	if n > 0 {
		s.log.Info("store: retention sweep removed records", "count", n)
	}
	return n, nil
}

// Close shuts down the database connection.
func (s *SQLite) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
