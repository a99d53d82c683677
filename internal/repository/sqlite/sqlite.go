// Package sqlite implements the repository interfaces on top of SQLite.
//
// modernc.org/sqlite is a pure Go translation of SQLite, so the binary needs no
// C toolchain. All access goes through database/sql:
//
//   - sql.DB  is the pool (pinned to one connection here, see New)
//   - sql.Tx  scopes every write; see withTx
//   - sql.Row / sql.Rows carry query results (Rows must be closed)
//
// Use ":memory:" as the path for an isolated, throwaway database in tests.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/ItsHarfer/CineShelf/internal/apperror"
	"github.com/ItsHarfer/CineShelf/internal/repository"

	// Registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// connPragmas are applied by the driver to every connection it opens.
// SQLite ships with foreign keys OFF; ON DELETE CASCADE is inert without them.
var connPragmas = []string{
	"foreign_keys(1)",
	"busy_timeout(5000)",
}

var _ repository.Store = (*DB)(nil)

// DB wraps a sql.DB connection pool and provides repository methods.
type DB struct {
	conn *sql.DB
}

// New opens the SQLite database at dbPath and creates the schema.
//
// dbPath examples:
//   - "data/cineshelf.db" → file-based database (persistent)
//   - ":memory:"          → in-memory database, private to this DB value
//
// The pool is limited to a single connection. SQLite allows one writer at a
// time anyway, and a single connection keeps an in-memory database alive and
// shared between calls. Concurrent callers queue on the pool, which
// serializes transactions.
func New(dbPath string) (*DB, error) {
	if strings.TrimSpace(dbPath) == "" {
		return nil, errors.New("sqlite: database path is required")
	}

	conn, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(0)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets readers proceed while a write is in flight on file databases.
	// In-memory databases report "memory" and ignore it.
	if dbPath != ":memory:" {
		if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
			conn.Close()
			return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
		}
	}

	db := &DB{conn: conn}

	if err := db.verifyForeignKeys(); err != nil {
		conn.Close()
		return nil, err
	}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: creating schema: %w", err)
	}

	return db, nil
}

// dsn appends the per-connection pragmas to path in the form the driver
// understands: "path?_pragma=foreign_keys(1)&_pragma=...".
func dsn(path string) string {
	params := make([]string, 0, len(connPragmas))
	for _, p := range connPragmas {
		params = append(params, "_pragma="+p)
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + strings.Join(params, "&")
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping checks that the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	if err := db.conn.PingContext(ctx); err != nil {
		return apperror.Storage("pinging database", err)
	}
	return nil
}

func (db *DB) verifyForeignKeys() error {
	var enabled int
	if err := db.conn.QueryRow("PRAGMA foreign_keys").Scan(&enabled); err != nil {
		return fmt.Errorf("sqlite: reading foreign_keys pragma: %w", err)
	}
	if enabled != 1 {
		return errors.New("sqlite: foreign key enforcement could not be enabled")
	}
	return nil
}

// migrate creates the tables if they do not exist yet.
// There is no versioned migration history; the schema is fixed.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id   INTEGER PRIMARY KEY,
			name TEXT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS movies (
			id         INTEGER PRIMARY KEY,
			name       TEXT NOT NULL,
			director   TEXT NOT NULL,
			year       INTEGER NOT NULL,
			poster_url TEXT NULL,
			owner_id   INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE
		);
		CREATE INDEX IF NOT EXISTS idx_movies_owner_name ON movies(owner_id, name);
	`)
	if err != nil {
		return fmt.Errorf("creating movies table: %w", err)
	}

	return nil
}

// withTx runs fn inside one transaction and commits it, or rolls it back if fn
// fails. Errors that are not already classified are returned as
// apperror.ErrStorage.
//
// The transaction is detached from ctx cancellation: once begun it always runs
// to commit or rollback. fn receives the detached context and must use it for
// every statement.
func (db *DB) withTx(ctx context.Context, op string, fn func(ctx context.Context, tx *sql.Tx) error) error {
	ctx = context.WithoutCancel(ctx)

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return apperror.Storage(op+": begin", err)
	}

	if err := fn(ctx, tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return apperror.Storage(op+": rollback", errors.Join(err, rbErr))
		}
		if apperror.IsAppError(err) {
			return err
		}
		return apperror.Storage(op, err)
	}

	if err := tx.Commit(); err != nil {
		return apperror.Storage(op+": commit", err)
	}
	return nil
}
