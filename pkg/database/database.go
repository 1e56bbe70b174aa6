// Package database opens the embedded SQLite store shared by all services.
//
// All statements run over a single pooled connection. SQLite allows one writer
// at a time, and an in-memory database lives exactly as long as its
// connection, so the pool is pinned to one connection that is never recycled.
// Every operation is therefore serialized against every other.
package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mattn/go-sqlite3"
	sqldblogger "github.com/simukti/sqldb-logger"

	"github.com/ghuser/itemtracker/pkg/logger"
)

// Database wraps *sql.DB with transaction helpers.
type Database struct {
	db *sql.DB
}

// Open connects to the SQLite database at dsn (":memory:" for a process-local
// store) and verifies connectivity. Statements are logged at debug level.
func Open(ctx context.Context, dsn string, log logger.Logger) (*Database, error) {
	db := sqldblogger.OpenDriver(dsn, &sqlite3.SQLiteDriver{}, &sqlLogger{log: log},
		sqldblogger.WithMinimumLevel(sqldblogger.LevelDebug),
		sqldblogger.WithSQLQueryAsMessage(true),
	)

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("database: ping: %w", err)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("database: apply pragmas: %w", err)
	}

	return &Database{db: db}, nil
}

// DB returns the underlying *sql.DB for non-transactional queries.
func (d *Database) DB() *sql.DB {
	return d.db
}

// WithTx runs fn inside a transaction. The transaction is committed when fn
// returns nil and rolled back otherwise, including when fn panics.
// fn must use tx for every statement: the single pooled connection is held by
// the transaction until it ends.
func (d *Database) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("database: begin tx: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("database: commit: %w", err)
	}
	return nil
}

// Ping checks the database connection health.
func (d *Database) Ping(ctx context.Context) error {
	if err := d.db.PingContext(ctx); err != nil {
		return fmt.Errorf("database: ping: %w", err)
	}
	return nil
}

// Close releases the connection. An in-memory database is discarded.
func (d *Database) Close() error {
	if d.db == nil {
		return nil
	}
	return d.db.Close()
}

// sqlLogger bridges logger.Logger to sqldblogger.Logger.
type sqlLogger struct{ log logger.Logger }

func (l *sqlLogger) Log(ctx context.Context, level sqldblogger.Level, msg string, data map[string]interface{}) {
	args := make([]any, 0, len(data)*2)
	for k, v := range data {
		args = append(args, k, v)
	}
	if level == sqldblogger.LevelError {
		l.log.ErrorContext(ctx, msg, args...)
		return
	}
	l.log.DebugContext(ctx, msg, args...)
}
