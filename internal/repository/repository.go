package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Dan9191/task-service/internal/models"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            TEXT PRIMARY KEY,
		username      TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id         TEXT PRIMARY KEY,
		task       TEXT NOT NULL,
		due_date   DATE NOT NULL,
		status     TEXT NOT NULL,
		priority   TEXT NOT NULL,
		created_by TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS tasks_created_by_idx ON tasks (created_by)`,
	`CREATE INDEX IF NOT EXISTS tasks_due_date_idx ON tasks (due_date)`,
}

// Repository provides database operations for users and tasks
type Repository struct {
	db       *sql.DB
	postgres bool
}

// NewRepository initializes a new repository. driver is "postgres" or "sqlite".
func NewRepository(db *sql.DB, driver string) *Repository {
	return &Repository{db: db, postgres: driver == "postgres"}
}

// Open connects, pings and migrates
func Open(ctx context.Context, driver, dsn string) (*Repository, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if driver == "sqlite" {
		// One writer avoids SQLITE_BUSY under concurrent requests.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	repo := NewRepository(db, driver)
	if err := repo.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return repo, nil
}

// Migrate creates the tables and indexes if they are missing
func (r *Repository) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate schema: %w", err)
		}
	}
	return nil
}

// Ping checks the database connection
func (r *Repository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return storeErr("ping", err)
	}
	return nil
}

// Close releases the connection pool
func (r *Repository) Close() error {
	return r.db.Close()
}

// rebind rewrites ? placeholders to $n for postgres
func (r *Repository) rebind(query string) string {
	if !r.postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, c := range query {
		if c == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}

func storeErr(op string, err error) error {
	return fmt.Errorf("failed to %s: %w: %w", op, models.ErrStoreUnavailable, err)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY ||
			strings.Contains(liteErr.Error(), "UNIQUE constraint failed")
	}
	return false
}
