package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// sqlitePragmas enable foreign keys and wait on a locked file instead of failing.
const sqlitePragmas = "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

// SQLiteStore is a Store backed by a SQLite file. It is meant for local
// runs and tests; all access goes through a single connection.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens the SQLite database file at path.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite database path cannot be empty")
	}

	sqlDB, err := sql.Open("sqlite", path+sqlitePragmas)
	if err != nil {
		return nil, storeErr("connect", fmt.Errorf("failed to open sqlite database: %w", err))
	}
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, storeErr("connect", fmt.Errorf("failed to ping sqlite database: %w", err))
	}

	return &SQLiteStore{db: sqlDB}, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() {
	if s.db != nil {
		_ = s.db.Close()
	}
}

// InUnit runs fn inside a transaction.
func (s *SQLiteStore) InUnit(ctx context.Context, fn func(q Queries) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storeErr("transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(&sqliteQueries{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return storeErr("commit", err)
	}
	return nil
}

// Counts returns the number of rows in each table.
func (s *SQLiteStore) Counts(ctx context.Context) (*TableCounts, error) {
	var c TableCounts
	err := s.db.QueryRowContext(ctx, countsQuery).Scan(
		&c.Companies, &c.Locations, &c.Skills, &c.JobPostings, &c.JobSkills,
	)
	if err != nil {
		return nil, storeErr("count rows", err)
	}
	return &c, nil
}

// GetJobPostingByURL returns the posting stored under url, or nil if none.
func (s *SQLiteStore) GetJobPostingByURL(ctx context.Context, url string) (*JobPosting, error) {
	var (
		p          JobPosting
		postedDate sql.NullString
		isRemote   sql.NullBool
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT j.job_id, j.job_title, c.company_id, c.company_name, l.location_id, l.city, l.province,
		        j.salary_min, j.salary_max, j.posted_date, j.is_remote,
		        COALESCE(j.job_url, ''), COALESCE(j.job_description, '')
		 FROM job_postings j
		 JOIN companies c ON c.company_id = j.company_id
		 JOIN locations l ON l.location_id = j.location_id
		 WHERE j.job_url = ?`,
		url,
	).Scan(&p.ID, &p.Title, &p.CompanyID, &p.CompanyName, &p.LocationID, &p.City, &p.Province,
		&p.SalaryMin, &p.SalaryMax, &postedDate, &isRemote, &p.URL, &p.Description)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, storeErr("get job posting", err)
	}

	if postedDate.Valid {
		d, err := time.Parse(postedDateLayout, postedDate.String)
		if err != nil {
			return nil, storeErr("get job posting", fmt.Errorf("invalid posted_date %q: %w", postedDate.String, err))
		}
		p.PostedDate = &d
	}
	if isRemote.Valid {
		p.IsRemote = &isRemote.Bool
	}
	return &p, nil
}

// ListJobSkills returns the skill names linked to a posting, sorted.
func (s *SQLiteStore) ListJobSkills(ctx context.Context, jobID uuid.UUID) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT s.skill_name
		 FROM job_skills js
		 JOIN skills s ON s.skill_id = js.skill_id
		 WHERE js.job_id = ?
		 ORDER BY s.skill_name`,
		jobID,
	)
	if err != nil {
		return nil, storeErr("list job skills", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, storeErr("list job skills", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list job skills", err)
	}
	return names, nil
}

// sqliteQueries runs statements on one transaction.
type sqliteQueries struct {
	tx *sql.Tx
}

func (q *sqliteQueries) insertID(ctx context.Context, op, query string, args ...any) (uuid.UUID, error) {
	var id uuid.UUID
	err := q.tx.QueryRowContext(ctx, query, args...).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return uuid.Nil, ErrConflict
		}
		return uuid.Nil, storeErr(op, err)
	}
	return id, nil
}

func (q *sqliteQueries) findID(ctx context.Context, op, query string, args ...any) (uuid.UUID, error) {
	var id uuid.UUID
	err := q.tx.QueryRowContext(ctx, query, args...).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return uuid.Nil, ErrNotFound
		}
		return uuid.Nil, storeErr(op, err)
	}
	return id, nil
}

func (q *sqliteQueries) JobURLExists(ctx context.Context, url string) (bool, error) {
	var exists bool
	err := q.tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM job_postings WHERE job_url = ?)`,
		url,
	).Scan(&exists)
	if err != nil {
		return false, storeErr("check job url", err)
	}
	return exists, nil
}

func (q *sqliteQueries) InsertCompany(ctx context.Context, name string) (uuid.UUID, error) {
	return q.insertID(ctx, "insert company",
		`INSERT INTO companies (company_id, company_name) VALUES (?, ?)
		 ON CONFLICT (company_name) DO NOTHING
		 RETURNING company_id`,
		uuid.New(), name,
	)
}

func (q *sqliteQueries) FindCompany(ctx context.Context, name string) (uuid.UUID, error) {
	return q.findID(ctx, "find company",
		`SELECT company_id FROM companies WHERE company_name = ?`, name)
}

func (q *sqliteQueries) InsertLocation(ctx context.Context, city, province string) (uuid.UUID, error) {
	return q.insertID(ctx, "insert location",
		`INSERT INTO locations (location_id, city, province) VALUES (?, ?, ?)
		 ON CONFLICT (city, province) DO NOTHING
		 RETURNING location_id`,
		uuid.New(), city, province,
	)
}

func (q *sqliteQueries) FindLocation(ctx context.Context, city, province string) (uuid.UUID, error) {
	return q.findID(ctx, "find location",
		`SELECT location_id FROM locations WHERE city = ? AND province = ?`, city, province)
}

func (q *sqliteQueries) InsertSkill(ctx context.Context, name string) (uuid.UUID, error) {
	return q.insertID(ctx, "insert skill",
		`INSERT INTO skills (skill_id, skill_name) VALUES (?, ?)
		 ON CONFLICT (skill_name) DO NOTHING
		 RETURNING skill_id`,
		uuid.New(), name,
	)
}

func (q *sqliteQueries) FindSkill(ctx context.Context, name string) (uuid.UUID, error) {
	return q.findID(ctx, "find skill",
		`SELECT skill_id FROM skills WHERE skill_name = ?`, name)
}

func (q *sqliteQueries) InsertJobPosting(ctx context.Context, in JobPostingInput) (uuid.UUID, error) {
	var postedDate any
	if in.PostedDate != nil {
		postedDate = in.PostedDate.UTC().Format(postedDateLayout)
	}

	return q.insertID(ctx, "insert job posting",
		`INSERT INTO job_postings (job_id, job_title, company_id, location_id,
		                           salary_min, salary_max, posted_date, is_remote,
		                           job_url, job_description)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (job_url) DO NOTHING
		 RETURNING job_id`,
		uuid.New(), in.Title, in.CompanyID, in.LocationID,
		in.SalaryMin, in.SalaryMax, postedDate, in.IsRemote,
		nullIfEmpty(in.URL), nullIfEmpty(in.Description),
	)
}

func (q *sqliteQueries) InsertJobSkill(ctx context.Context, jobID, skillID uuid.UUID) error {
	_, err := q.tx.ExecContext(ctx,
		`INSERT INTO job_skills (job_id, skill_id) VALUES (?, ?)
		 ON CONFLICT (job_id, skill_id) DO NOTHING`,
		jobID, skillID,
	)
	if err != nil {
		return storeErr("insert job skill", err)
	}
	return nil
}
