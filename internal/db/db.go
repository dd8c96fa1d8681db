// Package db stores normalized job postings in PostgreSQL or SQLite.
package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Queries are the statements available inside a unit of work.
type Queries interface {
	JobURLExists(ctx context.Context, url string) (bool, error)

	InsertCompany(ctx context.Context, name string) (uuid.UUID, error)
	FindCompany(ctx context.Context, name string) (uuid.UUID, error)

	InsertLocation(ctx context.Context, city, province string) (uuid.UUID, error)
	FindLocation(ctx context.Context, city, province string) (uuid.UUID, error)

	InsertSkill(ctx context.Context, name string) (uuid.UUID, error)
	FindSkill(ctx context.Context, name string) (uuid.UUID, error)

	InsertJobPosting(ctx context.Context, in JobPostingInput) (uuid.UUID, error)
	InsertJobSkill(ctx context.Context, jobID, skillID uuid.UUID) error
}

// Store is a relational store for job postings.
type Store interface {
	// InUnit runs fn in a transaction. The transaction commits when fn
	// returns nil and rolls back otherwise; fn's error is returned as is.
	InUnit(ctx context.Context, fn func(q Queries) error) error

	Counts(ctx context.Context) (*TableCounts, error)
	GetJobPostingByURL(ctx context.Context, url string) (*JobPosting, error)
	ListJobSkills(ctx context.Context, jobID uuid.UUID) ([]string, error)
	Close()
}

const sqliteScheme = "sqlite://"

type dialect int

const (
	dialectUnsupported dialect = iota
	dialectPostgres
	dialectSQLite
)

// dialectOf names the store a database URL selects. For SQLite the file
// path follows the scheme.
func dialectOf(databaseURL string) dialect {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		return dialectPostgres
	case strings.HasPrefix(databaseURL, sqliteScheme):
		return dialectSQLite
	default:
		return dialectUnsupported
	}
}

func unsupportedURL(databaseURL string) error {
	return fmt.Errorf("unsupported database URL %q: want postgres://, postgresql:// or sqlite://", redact(databaseURL))
}

// Open connects to the store named by databaseURL: postgres:// or
// postgresql:// for PostgreSQL, sqlite://<path> for a SQLite file.
func Open(ctx context.Context, databaseURL string) (Store, error) {
	switch dialectOf(databaseURL) {
	case dialectPostgres:
		return Connect(ctx, databaseURL)
	case dialectSQLite:
		return OpenSQLite(ctx, strings.TrimPrefix(databaseURL, sqliteScheme))
	default:
		return nil, unsupportedURL(databaseURL)
	}
}

// redact hides everything after the scheme so credentials never reach logs.
func redact(databaseURL string) string {
	if i := strings.Index(databaseURL, "://"); i >= 0 {
		return databaseURL[:i+3] + "..."
	}
	return "..."
}
