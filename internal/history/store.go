// Package history provides local, single-writer persistence of past
// stitchcheck runs. It has no equivalent in spec.md or the system the
// spec was distilled from (a stateless HTTP endpoint) — it exists because
// a CLI tool built in this teacher's idiom always has somewhere durable to
// put run results, the same reason the teacher carries its own SQLite
// layer. The core pipeline (internal/pipeline) never imports this package;
// only cmd/stitchcheck wires the two together.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"stitchcheck/assets"
	"stitchcheck/internal/model"
)

// Config holds store configuration, following internal/db's
// Config/DefaultConfig shape.
type Config struct {
	Path            string
	BusyTimeout     time.Duration
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

// DefaultConfig returns the settings used everywhere this repo opens the
// history database: WAL mode, a single connection (SQLite is single
// writer regardless of how many *sql.DB connections you hand it, so the
// pool is capped at one to make that explicit), and a generous busy
// timeout so a slow VACUUM doesn't surface as a spurious error.
func DefaultConfig(path string) Config {
	return Config{
		Path:            path,
		BusyTimeout:     5 * time.Second,
		MaxOpenConns:    1,
		ConnMaxLifetime: time.Hour,
	}
}

// Store wraps a single SQLite database file holding the `runs` table. All
// writes go through mu, the same "sole writer" discipline
// internal/merger's merger.go documents for corpus.db.
type Store struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// Open opens (creating if needed) the history database at cfg.Path and
// ensures its schema exists.
func Open(cfg Config) (*Store, error) {
	dir := filepath.Dir(cfg.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pragmas := []string{
		fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.BusyTimeout.Milliseconds()),
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("set pragma %q: %w", p, err)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping history db: %w", err)
	}

	schema, err := assets.SchemaFS.ReadFile("schema/history.sql")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("read history schema: %w", err)
	}
	if _, err := db.Exec(string(schema)); err != nil {
		db.Close()
		return nil, fmt.Errorf("init history schema: %w", err)
	}

	return &Store{db: db, path: cfg.Path}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Run is a single recorded analysis.
type Run struct {
	ID             string
	SourceLabel    string
	CreatedAt      time.Time
	Sizes          []string
	CastOnCounts   map[string]int
	ErrorCount     int
	WarningCount   int
	IdempotentHash string
}

// Record persists a completed Pattern analysis as a new Run, serializing
// under mu so concurrent calls on the same Store never interleave writes.
// mu is per process; separate CLI invocations against the same data
// directory are coordinated only by SQLite's own locking and busy timeout.
func (s *Store) Record(ctx context.Context, sourceLabel string, p *model.Pattern, idempotentHash string) (*Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run := &Run{
		ID:             uuid.NewString(),
		SourceLabel:    sourceLabel,
		CreatedAt:      time.Now(),
		Sizes:          p.Sizes,
		CastOnCounts:   p.CastOnCounts,
		IdempotentHash: idempotentHash,
	}
	for _, issue := range p.Issues {
		switch issue.Severity {
		case model.SeverityError:
			run.ErrorCount++
		case model.SeverityWarning:
			run.WarningCount++
		}
	}

	sizesJSON, err := json.Marshal(run.Sizes)
	if err != nil {
		return nil, fmt.Errorf("marshal sizes: %w", err)
	}
	castOnJSON, err := json.Marshal(run.CastOnCounts)
	if err != nil {
		return nil, fmt.Errorf("marshal cast-on counts: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (id, source_label, created_at, sizes, cast_on_counts, error_count, warning_count, idempotent_hash)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.SourceLabel, run.CreatedAt.Format(time.RFC3339), string(sizesJSON), string(castOnJSON), run.ErrorCount, run.WarningCount, run.IdempotentHash)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}

	return run, nil
}

// List returns the most recent runs, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source_label, created_at, sizes, cast_on_counts, error_count, warning_count, idempotent_hash
		FROM runs ORDER BY created_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		var createdAt, sizesJSON, castOnJSON string
		var idempotentHash sql.NullString
		if err := rows.Scan(&r.ID, &r.SourceLabel, &createdAt, &sizesJSON, &castOnJSON, &r.ErrorCount, &r.WarningCount, &idempotentHash); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		json.Unmarshal([]byte(sizesJSON), &r.Sizes)
		json.Unmarshal([]byte(castOnJSON), &r.CastOnCounts)
		r.IdempotentHash = idempotentHash.String
		out = append(out, r)
	}
	return out, rows.Err()
}

// Get returns a single run by ID.
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, source_label, created_at, sizes, cast_on_counts, error_count, warning_count, idempotent_hash
		FROM runs WHERE id = ?
	`, id)

	var r Run
	var createdAt, sizesJSON, castOnJSON string
	var idempotentHash sql.NullString
	if err := row.Scan(&r.ID, &r.SourceLabel, &createdAt, &sizesJSON, &castOnJSON, &r.ErrorCount, &r.WarningCount, &idempotentHash); err != nil {
		return nil, fmt.Errorf("get run %s: %w", id, err)
	}
	r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	json.Unmarshal([]byte(sizesJSON), &r.Sizes)
	json.Unmarshal([]byte(castOnJSON), &r.CastOnCounts)
	r.IdempotentHash = idempotentHash.String
	return &r, nil
}
