package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore is a Store backed by a PostgreSQL connection pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, storeErr("connect", fmt.Errorf("failed to connect to database: %w", err))
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, storeErr("connect", fmt.Errorf("failed to ping database: %w", err))
	}

	return &PostgresStore{pool: pool}, nil
}

// Close closes the connection pool
func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// InUnit runs fn inside a transaction on one pooled connection.
func (s *PostgresStore) InUnit(ctx context.Context, fn func(q Queries) error) error {
	var fnErr error
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		fnErr = fn(&pgQueries{tx: tx})
		return fnErr
	})
	if fnErr != nil {
		return fnErr
	}
	if err != nil {
		return storeErr("transaction", err)
	}
	return nil
}

// Counts returns the number of rows in each table.
func (s *PostgresStore) Counts(ctx context.Context) (*TableCounts, error) {
	var c TableCounts
	err := s.pool.QueryRow(ctx, countsQuery).Scan(
		&c.Companies, &c.Locations, &c.Skills, &c.JobPostings, &c.JobSkills,
	)
	if err != nil {
		return nil, storeErr("count rows", err)
	}
	return &c, nil
}

// GetJobPostingByURL returns the posting stored under url, or nil if none.
func (s *PostgresStore) GetJobPostingByURL(ctx context.Context, url string) (*JobPosting, error) {
	var p JobPosting
	err := s.pool.QueryRow(ctx,
		`SELECT j.job_id, j.job_title, c.company_id, c.company_name, l.location_id, l.city, l.province,
		        j.salary_min, j.salary_max, j.posted_date, j.is_remote,
		        COALESCE(j.job_url, ''), COALESCE(j.job_description, '')
		 FROM job_postings j
		 JOIN companies c ON c.company_id = j.company_id
		 JOIN locations l ON l.location_id = j.location_id
		 WHERE j.job_url = $1`,
		url,
	).Scan(&p.ID, &p.Title, &p.CompanyID, &p.CompanyName, &p.LocationID, &p.City, &p.Province,
		&p.SalaryMin, &p.SalaryMax, &p.PostedDate, &p.IsRemote, &p.URL, &p.Description)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, storeErr("get job posting", err)
	}
	return &p, nil
}

// ListJobSkills returns the skill names linked to a posting, sorted.
func (s *PostgresStore) ListJobSkills(ctx context.Context, jobID uuid.UUID) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT s.skill_name
		 FROM job_skills js
		 JOIN skills s ON s.skill_id = js.skill_id
		 WHERE js.job_id = $1
		 ORDER BY s.skill_name`,
		jobID,
	)
	if err != nil {
		return nil, storeErr("list job skills", err)
	}

	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, storeErr("list job skills", err)
	}
	return names, nil
}

const countsQuery = `SELECT
	(SELECT COUNT(*) FROM companies),
	(SELECT COUNT(*) FROM locations),
	(SELECT COUNT(*) FROM skills),
	(SELECT COUNT(*) FROM job_postings),
	(SELECT COUNT(*) FROM job_skills)`

// pgQueries runs statements on one transaction.
type pgQueries struct {
	tx pgx.Tx
}

// insertID runs an INSERT ... ON CONFLICT DO NOTHING RETURNING statement.
// No returned row means the natural key already exists.
func (q *pgQueries) insertID(ctx context.Context, op, sql string, args ...any) (uuid.UUID, error) {
	var id uuid.UUID
	err := q.tx.QueryRow(ctx, sql, args...).Scan(&id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return uuid.Nil, ErrConflict
		}
		return uuid.Nil, storeErr(op, err)
	}
	return id, nil
}

// findID runs a SELECT of one id by natural key.
func (q *pgQueries) findID(ctx context.Context, op, sql string, args ...any) (uuid.UUID, error) {
	var id uuid.UUID
	err := q.tx.QueryRow(ctx, sql, args...).Scan(&id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return uuid.Nil, ErrNotFound
		}
		return uuid.Nil, storeErr(op, err)
	}
	return id, nil
}
