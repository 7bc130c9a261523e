// Package database implements the store interfaces on PostgreSQL.
//
// Go Pattern: We use the `sqlx` package which extends Go's standard `database/sql`
// with convenient features like scanning rows into structs. Unlike an ORM,
// you write raw SQL, which gives you full control over every query.
//
// Go's database/sql has built-in connection pooling: you create one *sqlx.DB
// at startup and share it across your entire application. It's safe for
// concurrent use by multiple goroutines.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // registers the "postgres" driver; the underscore import runs its init()

	"github.com/Shimizu-Technology/paperhub-api/internal/apperrors"
	"github.com/Shimizu-Technology/paperhub-api/internal/store"
)

// DB wraps the sqlx database connection with our application-specific methods.
// Go Pattern: Embedding (*sqlx.DB) gives us all of sqlx's methods automatically,
// plus we can add our own. This is Go's version of inheritance: composition.
type DB struct {
	*sqlx.DB
}

// Compile-time check that *DB satisfies the full store contract.
var _ store.Store = (*DB)(nil)

// New creates a new database connection with connection pooling configured.
// driverName is "postgres" (lib/pq) or "pgx" (jackc/pgx through database/sql).
func New(databaseURL, driverName string) (*DB, error) {
	if driverName == "" {
		driverName = "postgres"
	}

	// sqlx.Connect both opens the connection and pings the database
	db, err := sqlx.Connect(driverName, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Sized for serverless PostgreSQL, which closes idle connections quickly
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(2 * time.Minute)
	db.SetConnMaxIdleTime(30 * time.Second)

	return &DB{db}, nil
}

// HealthCheck verifies the database connection is alive.
// Go Pattern: context.Context is passed to functions that may be slow or
// need cancellation (database queries, HTTP requests).
func (db *DB) HealthCheck(ctx context.Context) error {
	return db.PingContext(ctx)
}

// Close closes the pool.
func (db *DB) Close() error {
	return db.DB.Close()
}

// validID filters out ids Postgres would reject as malformed UUIDs, so a
// bad id in a URL is a 404 instead of a driver error.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// notFound converts sql.ErrNoRows into the shared not-found error.
func notFound(kind string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.NewNotFoundError(kind + " not found")
	}
	return fmt.Errorf("failed to load %s: %w", kind, err)
}

// expectOneRow turns "0 rows affected" into a not-found error.
func expectOneRow(result sql.Result, kind string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if rows == 0 {
		return apperrors.NewNotFoundError(kind + " not found")
	}
	return nil
}

// prefixPattern builds a LIKE pattern matching values that start with term.
// %, _ and \ in the term are escaped so they match literally.
func prefixPattern(term string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(strings.ToLower(term)) + "%"
}
