// Package history persists executed command lines in SQLite.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/minish-sh/minish/core/history/migrations"
)

// ErrNotFound is returned when a lookup matches nothing.
var ErrNotFound = errors.New("not found")

// Entry is one executed command line.
type Entry struct {
	ID         int64
	SessionID  string
	Line       string
	Program    string
	Background bool
	RanAt      time.Time
}

// RepositoryConfig is the configuration for the SQLite repository.
type RepositoryConfig struct {
	DBPath string
	Logger *log.Logger
}

func (c *RepositoryConfig) defaults() error {
	if c.DBPath == "" {
		return fmt.Errorf("db path is required")
	}
	if c.Logger == nil {
		c.Logger = log.New(io.Discard, "", 0)
	}
	return nil
}

// Repository is a SQLite store of shell history.
type Repository struct {
	db     *sql.DB
	logger *log.Logger
}

// NewRepository opens the history database, creating it and applying
// pending migrations as needed.
func NewRepository(ctx context.Context, cfg RepositoryConfig) (*Repository, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	dir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("could not create db directory: %w", err)
	}

	dsn := fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)", cfg.DBPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}

	migrator, err := migrations.NewMigrator(db, cfg.Logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("could not create migrator: %w", err)
	}
	if err := migrator.Up(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not run migrations: %w", err)
	}

	cfg.Logger.Printf("history database ready at %s", cfg.DBPath)

	return &Repository{db: db, logger: cfg.Logger}, nil
}

// Close closes the database connection.
func (r *Repository) Close() error { return r.db.Close() }

// AddEntry stores one executed line and returns its row ID.
func (r *Repository) AddEntry(ctx context.Context, entry Entry) (int64, error) {
	ranAt := entry.RanAt
	if ranAt.IsZero() {
		ranAt = time.Now().UTC()
	}

	query := `
		INSERT INTO entries (session_id, line, program, background, ran_at)
		VALUES (?, ?, ?, ?, ?)
	`

	res, err := r.db.ExecContext(
		ctx,
		query,
		entry.SessionID,
		entry.Line,
		entry.Program,
		entry.Background,
		ranAt.Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("could not insert entry: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("could not get entry id: %w", err)
	}
	return id, nil
}

// Recent returns the newest n entries, oldest first.
func (r *Repository) Recent(ctx context.Context, n int) ([]Entry, error) {
	query := `
		SELECT id, session_id, line, program, background, ran_at
		FROM (
			SELECT id, session_id, line, program, background, ran_at
			FROM entries
			ORDER BY id DESC
			LIMIT ?
		)
		ORDER BY id ASC
	`

	return r.queryEntries(ctx, query, n)
}

// BySession returns every entry recorded under one session, oldest first.
func (r *Repository) BySession(ctx context.Context, sessionID string) ([]Entry, error) {
	query := `
		SELECT id, session_id, line, program, background, ran_at
		FROM entries
		WHERE session_id = ?
		ORDER BY id ASC
	`

	entries, err := r.queryEntries(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("session %s: %w", sessionID, ErrNotFound)
	}
	return entries, nil
}

func (r *Repository) queryEntries(ctx context.Context, query string, args ...any) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("could not query entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return entries, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (Entry, error) {
	var entry Entry
	var ranAt int64

	err := s.Scan(
		&entry.ID,
		&entry.SessionID,
		&entry.Line,
		&entry.Program,
		&entry.Background,
		&ranAt,
	)
	if err != nil {
		return Entry{}, err
	}

	entry.RanAt = time.Unix(ranAt, 0).UTC()
	return entry, nil
}
