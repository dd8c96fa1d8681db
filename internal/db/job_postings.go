package db

import (
	"context"

	"github.com/google/uuid"
)

// -----------------------------------------------------------------------------
// Job postings and skill links (PostgreSQL)
// -----------------------------------------------------------------------------

// JobURLExists reports whether a posting with this external URL is stored.
func (q *pgQueries) JobURLExists(ctx context.Context, url string) (bool, error) {
	var exists bool
	err := q.tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM job_postings WHERE job_url = $1)`,
		url,
	).Scan(&exists)
	if err != nil {
		return false, storeErr("check job url", err)
	}
	return exists, nil
}

// InsertJobPosting stores a posting and returns its new id. It returns
// ErrConflict when the URL was stored after the caller's existence check.
func (q *pgQueries) InsertJobPosting(ctx context.Context, in JobPostingInput) (uuid.UUID, error) {
	return q.insertID(ctx, "insert job posting",
		`INSERT INTO job_postings (job_id, job_title, company_id, location_id,
		                           salary_min, salary_max, posted_date, is_remote,
		                           job_url, job_description)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (job_url) DO NOTHING
		 RETURNING job_id`,
		uuid.New(), in.Title, in.CompanyID, in.LocationID,
		in.SalaryMin, in.SalaryMax, in.PostedDate, in.IsRemote,
		nullIfEmpty(in.URL), nullIfEmpty(in.Description),
	)
}

// InsertJobSkill links a skill to a posting. Linking twice is a no-op.
func (q *pgQueries) InsertJobSkill(ctx context.Context, jobID, skillID uuid.UUID) error {
	_, err := q.tx.Exec(ctx,
		`INSERT INTO job_skills (job_id, skill_id)
		 VALUES ($1, $2)
		 ON CONFLICT (job_id, skill_id) DO NOTHING`,
		jobID, skillID,
	)
	if err != nil {
		return storeErr("insert job skill", err)
	}
	return nil
}
