package storage

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

const (
	indexFile     = "index.db"
	schemaVersion = 1
)

const schema = `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	timestamp  TEXT NOT NULL,
	prefix     TEXT NOT NULL,
	start_idx  INTEGER NOT NULL,
	end_idx    INTEGER NOT NULL,
	step       INTEGER NOT NULL,
	field      TEXT NOT NULL,
	axis       TEXT NOT NULL,
	colormap   TEXT NOT NULL,
	dpi        INTEGER NOT NULL,
	output_dir TEXT NOT NULL,
	rendered   INTEGER NOT NULL,
	failed     INTEGER NOT NULL,
	elapsed    REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_field ON runs(field);

CREATE TABLE IF NOT EXISTS slices (
	run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	idx    INTEGER NOT NULL,
	time   REAL NOT NULL,
	min    REAL,
	max    REAL,
	mean   REAL,
	std    REAL,
	output TEXT NOT NULL,
	PRIMARY KEY (run_id, idx)
);
`

// Index keeps run metadata and slice statistics in a SQLite database next
// to the run directories so runs can be filtered without reading every
// metadata file.
type Index struct {
	db *sql.DB
}

func OpenIndex(ctx context.Context, dir string) (*Index, error) {
	path := filepath.Join(dir, indexFile)
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open index: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	if _, err := db.ExecContext(ctx, `INSERT OR IGNORE INTO schema_version (version) VALUES (?)`, schemaVersion); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set schema version: %w", err)
	}
	return &Index{db: db}, nil
}

func (ix *Index) Close() error {
	return ix.db.Close()
}

// Record inserts or replaces a run and its slices.
func (ix *Index) Record(ctx context.Context, meta RunMetadata, records []SliceRecord) error {
	tx, err := ix.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM slices WHERE run_id = ?`, meta.ID); err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO runs
			(id, timestamp, prefix, start_idx, end_idx, step, field, axis, colormap, dpi, output_dir, rendered, failed, elapsed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		meta.ID, meta.Timestamp.UTC().Format(time.RFC3339Nano), meta.Prefix, meta.Start, meta.End, meta.Step,
		meta.Field, meta.Axis, meta.Colormap, meta.DPI, meta.OutputDir, meta.Rendered, meta.Failed, meta.Elapsed)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO slices (run_id, idx, time, min, max, mean, std, output)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, r := range records {
		if _, err := stmt.ExecContext(ctx, meta.ID, r.Index, r.Time,
			nullable(r.Min), nullable(r.Max), nullable(r.Mean), nullable(r.Std), r.Output); err != nil {
			return fmt.Errorf("failed to insert slice %d: %w", r.Index, err)
		}
	}
	return tx.Commit()
}

// Runs returns indexed runs oldest first, restricted to field unless it is
// empty.
func (ix *Index) Runs(ctx context.Context, field string) ([]RunMetadata, error) {
	query := `SELECT id, timestamp, prefix, start_idx, end_idx, step, field, axis, colormap, dpi, output_dir, rendered, failed, elapsed FROM runs`
	var args []any
	if field != "" {
		query += ` WHERE field = ?`
		args = append(args, field)
	}
	query += ` ORDER BY timestamp`

	rows, err := ix.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]RunMetadata, 0)
	for rows.Next() {
		var m RunMetadata
		var ts string
		if err := rows.Scan(&m.ID, &ts, &m.Prefix, &m.Start, &m.End, &m.Step, &m.Field, &m.Axis,
			&m.Colormap, &m.DPI, &m.OutputDir, &m.Rendered, &m.Failed, &m.Elapsed); err != nil {
			return nil, err
		}
		if m.Timestamp, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return nil, fmt.Errorf("run %s: bad timestamp %q: %w", m.ID, ts, err)
		}
		runs = append(runs, m)
	}
	return runs, rows.Err()
}

// Range returns the smallest minimum and largest maximum over a run's slices.
func (ix *Index) Range(ctx context.Context, runID string) (lo, hi float64, err error) {
	var minV, maxV sql.NullFloat64
	err = ix.db.QueryRowContext(ctx, `SELECT MIN(min), MAX(max) FROM slices WHERE run_id = ?`, runID).Scan(&minV, &maxV)
	if err != nil {
		return 0, 0, err
	}
	if !minV.Valid || !maxV.Valid {
		return 0, 0, fmt.Errorf("run %s: %w", runID, sql.ErrNoRows)
	}
	return minV.Float64, maxV.Float64, nil
}

// nullable stores NaN statistics as NULL.
func nullable(v float64) any {
	if v != v {
		return nil
	}
	return v
}
