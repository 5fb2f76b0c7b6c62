// Package history stores the results of report runs in a SQLite
// database so coverage can be compared over time.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/unbound-force/parity/internal/browser"
	"github.com/unbound-force/parity/internal/score"
)

// FileName is the database file created inside the history directory.
const FileName = "parity.db"

// Sentinel errors.
var (
	// ErrRunNotFound is returned when a run ID does not exist.
	ErrRunNotFound = errors.New("run not found")

	// ErrNoDatabase is returned by Open when the database does not
	// exist and CreateIfNotExists is false.
	ErrNoDatabase = errors.New("history database not found")
)

// DB is the run history store.
type DB struct {
	db     *sql.DB
	dbPath string
	now    func() time.Time
}

// Options configures DB behavior.
type Options struct {
	// CreateIfNotExists creates the directory and database file if
	// they don't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// RunInfo describes a recorded run without its rows.
type RunInfo struct {
	ID         int64          `json:"id"`
	Family     browser.Family `json:"family"`
	RecordedAt time.Time      `json:"recorded_at"`
	Source     string         `json:"source"`
	Totals     score.Totals   `json:"totals"`
}

// Open opens or creates the history database in dir.
func Open(dir string, opts Options) (*DB, error) {
	dbPath := filepath.Join(dir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", dbPath, ErrNoDatabase)
		} else if err != nil {
			return nil, fmt.Errorf("checking history database: %w", err)
		}
	} else if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	h := &DB{db: db, dbPath: dbPath, now: time.Now}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("enabling WAL mode: %w", err)
		}
	}
	if err := h.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating tables: %w", err)
	}
	return h, nil
}

// Path returns the database file path.
func (h *DB) Path() string {
	return h.dbPath
}

// Close closes the database connection.
func (h *DB) Close() error {
	return h.db.Close()
}

func (h *DB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		family TEXT NOT NULL,
		recorded_at TEXT NOT NULL,
		source TEXT NOT NULL DEFAULT '',
		categories INTEGER NOT NULL,
		real_count INTEGER NOT NULL,
		implemented INTEGER NOT NULL,
		erroneous INTEGER NOT NULL,
		run_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_family ON runs(family);
	`
	_, err := h.db.ExecContext(context.Background(), schema)
	return err
}

// Record stores a run and returns its ID. source describes where the
// catalog came from (a file path or "built-in").
func (h *DB) Record(ctx context.Context, run score.Run, source string) (int64, error) {
	data, err := json.Marshal(run)
	if err != nil {
		return 0, fmt.Errorf("serializing run: %w", err)
	}

	res, err := h.db.ExecContext(ctx, `
	INSERT INTO runs (family, recorded_at, source, categories, real_count, implemented, erroneous, run_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		string(run.Family),
		h.now().UTC().Format(time.RFC3339Nano),
		source,
		run.Totals.Categories,
		run.Totals.Real,
		run.Totals.Implemented,
		run.Totals.Erroneous,
		string(data),
	)
	if err != nil {
		return 0, fmt.Errorf("recording run: %w", err)
	}
	return res.LastInsertId()
}

// ListRuns returns recorded runs, newest first. An empty family lists
// every family; limit <= 0 means no limit.
func (h *DB) ListRuns(ctx context.Context, family browser.Family, limit int) ([]RunInfo, error) {
	query := `SELECT id, family, recorded_at, source, categories, real_count, implemented, erroneous FROM runs`
	var args []any
	if family != "" {
		query += ` WHERE family = ?`
		args = append(args, string(family))
	}
	query += ` ORDER BY id DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := h.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var infos []RunInfo
	for rows.Next() {
		info, err := scanInfo(rows)
		if err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

// LoadRun returns a recorded run with its rows.
func (h *DB) LoadRun(ctx context.Context, id int64) (score.Run, RunInfo, error) {
	row := h.db.QueryRowContext(ctx, `
	SELECT id, family, recorded_at, source, categories, real_count, implemented, erroneous, run_json
	FROM runs WHERE id = ?`, id)

	var (
		info     RunInfo
		family   string
		recorded string
		data     string
	)
	err := row.Scan(&info.ID, &family, &recorded, &info.Source,
		&info.Totals.Categories, &info.Totals.Real, &info.Totals.Implemented, &info.Totals.Erroneous,
		&data)
	if errors.Is(err, sql.ErrNoRows) {
		return score.Run{}, RunInfo{}, fmt.Errorf("run %d: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return score.Run{}, RunInfo{}, fmt.Errorf("loading run %d: %w", id, err)
	}
	info.Family = browser.Family(family)
	if info.RecordedAt, err = time.Parse(time.RFC3339Nano, recorded); err != nil {
		return score.Run{}, RunInfo{}, fmt.Errorf("run %d: bad timestamp: %w", id, err)
	}

	var run score.Run
	if err := json.Unmarshal([]byte(data), &run); err != nil {
		return score.Run{}, RunInfo{}, fmt.Errorf("run %d: decoding rows: %w", id, err)
	}
	return run, info, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanInfo(s scanner) (RunInfo, error) {
	var (
		info     RunInfo
		family   string
		recorded string
	)
	if err := s.Scan(&info.ID, &family, &recorded, &info.Source,
		&info.Totals.Categories, &info.Totals.Real, &info.Totals.Implemented, &info.Totals.Erroneous); err != nil {
		return RunInfo{}, fmt.Errorf("scanning run: %w", err)
	}
	info.Family = browser.Family(family)
	t, err := time.Parse(time.RFC3339Nano, recorded)
	if err != nil {
		return RunInfo{}, fmt.Errorf("run %d: bad timestamp: %w", info.ID, err)
	}
	info.RecordedAt = t
	return info, nil
}

// Latest returns up to n of the most recent runs of family, newest
// first.
func (h *DB) Latest(ctx context.Context, family browser.Family, n int) ([]score.Run, error) {
	infos, err := h.ListRuns(ctx, family, n)
	if err != nil {
		return nil, err
	}
	runs := make([]score.Run, 0, len(infos))
	for _, info := range infos {
		run, _, err := h.LoadRun(ctx, info.ID)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, nil
}
