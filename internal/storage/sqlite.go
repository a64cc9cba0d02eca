package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver registration.

	"newsbot/migrations"
)

const timeLayout = "2006-01-02T15:04:05Z"

// SQLite implements Store backed by a SQLite database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at dsn and runs pending migrations.
// Deleting the database file is a supported recovery procedure: the
// schema is recreated on next open with empty dedup history and
// counters.
func NewSQLite(dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	if err := migrations.Run(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// CheckAndMarkSeen inserts the fingerprint unless it already exists.
// The check and the insert are a single statement, so two concurrent
// callers cannot both observe the fingerprint as new.
func (s *SQLite) CheckAndMarkSeen(ctx context.Context, fingerprint string, postedAt time.Time) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO seen (fingerprint, posted_at) VALUES (?, ?)
		 ON CONFLICT (fingerprint) DO NOTHING`,
		fingerprint, postedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return false, fmt.Errorf("mark seen: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// UnmarkSeen deletes the fingerprint record. Missing rows are not an error.
func (s *SQLite) UnmarkSeen(ctx context.Context, fingerprint string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM seen WHERE fingerprint = ?`, fingerprint); err != nil {
		return fmt.Errorf("unmark seen: %w", err)
	}
	return nil
}

// TryIncrementDailyCounter increments the counter for dateKey if count
// is still below limit. The row is created on first use of a new day;
// absence of a row is the day's reset.
func (s *SQLite) TryIncrementDailyCounter(ctx context.Context, dateKey string, limit int) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO daily_counter (date_key, count) VALUES (?, 0)
		 ON CONFLICT (date_key) DO NOTHING`,
		dateKey,
	); err != nil {
		return false, fmt.Errorf("ensure counter row: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE daily_counter SET count = count + 1 WHERE date_key = ? AND count < ?`,
		dateKey, limit,
	)
	if err != nil {
		return false, fmt.Errorf("increment counter: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit: %w", err)
	}
	return n > 0, nil
}

// DailyCount returns the current counter value for dateKey.
func (s *SQLite) DailyCount(ctx context.Context, dateKey string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT count FROM daily_counter WHERE date_key = ?`, dateKey,
	).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("query counter: %w", err)
	}
	return count, nil
}
