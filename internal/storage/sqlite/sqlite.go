package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mcsr-tools/splitwatch/internal/log"
	"github.com/mcsr-tools/splitwatch/internal/model"
	"github.com/mcsr-tools/splitwatch/internal/storage/sqlite/migrations"
)

// JournalConfig is the configuration for the SQLite journal.
type JournalConfig struct {
	DBPath string
	Logger log.Logger
}

func (c *JournalConfig) defaults() error {
	if c.DBPath == "" {
		return fmt.Errorf("db path is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.SQLite"})
	return nil
}

// Journal is a SQLite implementation of storage.Journal.
type Journal struct {
	db     *sql.DB
	logger log.Logger
}

// NewJournal creates a new SQLite journal, running migrations.
func NewJournal(ctx context.Context, cfg JournalConfig) (*Journal, error) {
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

	cfg.Logger.Debugf("SQLite journal initialized at %s", cfg.DBPath)

	return &Journal{db: db, logger: cfg.Logger}, nil
}

// Close closes the database connection.
func (j *Journal) Close() error { return j.db.Close() }

// RecordTransition appends one accepted transition.
func (j *Journal) RecordTransition(ctx context.Context, t model.Transition) error {
	query := `
		INSERT INTO transitions (run_id, kind, source, milestone, elapsed_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := j.db.ExecContext(
		ctx,
		query,
		t.RunID,
		string(t.Kind),
		string(t.Source),
		string(t.Milestone),
		t.Elapsed.Milliseconds(),
		t.At.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("could not insert transition: %w", err)
	}
	return nil
}

// ListTransitions returns the most recent transitions, newest first.
func (j *Journal) ListTransitions(ctx context.Context, limit int) ([]model.Transition, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive: %w", model.ErrNotValid)
	}

	query := `
		SELECT id, run_id, kind, source, milestone, elapsed_ms, created_at
		FROM transitions
		ORDER BY id DESC
		LIMIT ?
	`

	rows, err := j.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("could not query transitions: %w", err)
	}
	defer rows.Close()

	var ts []model.Transition
	for rows.Next() {
		var (
			t         model.Transition
			elapsedMS int64
			createdAt int64
		)
		err := rows.Scan(&t.ID, &t.RunID, (*string)(&t.Kind), (*string)(&t.Source), (*string)(&t.Milestone), &elapsedMS, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("could not scan transition: %w", err)
		}
		t.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		t.At = time.UnixMilli(createdAt).UTC()
		ts = append(ts, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("could not iterate transitions: %w", err)
	}

	return ts, nil
}
