// Package history keeps a local record of builds in SQLite.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Times are stored in UTC with a fixed width so they sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Entry is one finished build.
type Entry struct {
	ID            string
	Version       string
	Target        string
	PlatformGroup string
	Result        string
	OutputPath    string
	Installer     bool // the installer compiler was started
	Error         string
	StartedAt     time.Time
	FinishedAt    time.Time
}

// Duration is zero when the start time is unknown.
func (e Entry) Duration() time.Duration {
	if e.StartedAt.IsZero() || e.FinishedAt.IsZero() {
		return 0
	}
	return e.FinishedAt.Sub(e.StartedAt)
}

type Store struct {
	db     *sql.DB
	dbPath string
}

// Open opens or creates the history database at dbPath.
func Open(dbPath string) (*Store, error) {
	if strings.TrimSpace(dbPath) == "" {
		return nil, errors.New("history database path is empty")
	}
	resolved := filepath.Clean(dbPath)
	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", resolved)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schemaV1); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	return &Store{db: db, dbPath: resolved}, nil
}

func (s *Store) Path() string {
	return s.dbPath
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores e. Missing IDs and finish times are filled in.
func (s *Store) Record(ctx context.Context, e Entry) error {
	if e.Result == "" {
		return errors.New("build result is required")
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.FinishedAt.IsZero() {
		e.FinishedAt = time.Now()
	}

	var started any
	if !e.StartedAt.IsZero() {
		started = e.StartedAt.UTC().Format(timeLayout)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO builds (
			build_uuid, version, target, platform_group, result,
			output_path, installer, error, started_at, finished_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(build_uuid) DO UPDATE SET
			version=excluded.version,
			target=excluded.target,
			platform_group=excluded.platform_group,
			result=excluded.result,
			output_path=excluded.output_path,
			installer=excluded.installer,
			error=excluded.error,
			started_at=excluded.started_at,
			finished_at=excluded.finished_at
	`, e.ID, e.Version, e.Target, e.PlatformGroup, e.Result,
		e.OutputPath, e.Installer, e.Error, started, e.FinishedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("failed to record build %s: %w", e.ID, err)
	}
	return nil
}

// Recent returns up to limit builds, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT build_uuid, version, target, platform_group, result,
		       output_path, installer, error, started_at, finished_at
		FROM builds
		ORDER BY finished_at DESC, build_id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query builds: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e        Entry
			started  sql.NullString
			finished string
		)
		if err := rows.Scan(&e.ID, &e.Version, &e.Target, &e.PlatformGroup, &e.Result,
			&e.OutputPath, &e.Installer, &e.Error, &started, &finished); err != nil {
			return nil, err
		}
		if started.Valid {
			e.StartedAt, _ = time.Parse(timeLayout, started.String)
		}
		e.FinishedAt, _ = time.Parse(timeLayout, finished)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
