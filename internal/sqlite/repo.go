// Package sqlite implements the application's stores on top of sqlite.
package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sethvargo/go-retry"
	_ "modernc.org/sqlite"

	"github.com/jdholdren/cattery/internal/cats"
	"github.com/jdholdren/cattery/internal/migrations"
)

// Ensure Repo implements the store interfaces
var _ cats.Store = (*Repo)(nil)

type Repo struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) Repo {
	return Repo{db: db}
}

// DSN builds the connection string for a database file.
func DSN(file string) string {
	return fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", file)
}

// Open connects to the database, waits for it to answer and runs all migrations.
func Open(ctx context.Context, dsn string) (*sqlx.DB, error) {
	dbx, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %s", err)
	}

	// Every connection to an in-memory database gets its own copy
	if strings.Contains(dsn, ":memory:") {
		dbx.SetMaxOpenConns(1)
	}

	backoff := retry.WithMaxRetries(5, retry.NewFibonacci(100*time.Millisecond))
	if err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := dbx.PingContext(ctx); err != nil {
			return retry.RetryableError(err)
		}

		return nil
	}); err != nil {
		dbx.Close()
		return nil, fmt.Errorf("error reaching database: %s", err)
	}

	if err := migrations.Run(dbx); err != nil {
		dbx.Close()
		return nil, fmt.Errorf("error running migrations: %s", err)
	}

	return dbx, nil
}
