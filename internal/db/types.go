package db

import (
	"time"

	"github.com/google/uuid"
)

// JobPostingInput holds the resolved values of a posting to insert.
type JobPostingInput struct {
	Title       string
	CompanyID   uuid.UUID
	LocationID  uuid.UUID
	SalaryMin   int64
	SalaryMax   int64
	PostedDate  *time.Time
	IsRemote    bool
	URL         string // stored as NULL when empty
	Description string // stored as NULL when empty
}

// JobPosting is a stored posting joined with its company and location.
type JobPosting struct {
	ID          uuid.UUID  `json:"job_id"`
	Title       string     `json:"job_title"`
	CompanyID   uuid.UUID  `json:"company_id"`
	CompanyName string     `json:"company_name"`
	LocationID  uuid.UUID  `json:"location_id"`
	City        string     `json:"city"`
	Province    string     `json:"province"`
	SalaryMin   int64      `json:"salary_min"`
	SalaryMax   int64      `json:"salary_max"`
	PostedDate  *time.Time `json:"posted_date,omitempty"`
	IsRemote    *bool      `json:"is_remote,omitempty"`
	URL         string     `json:"job_url,omitempty"`
	Description string     `json:"job_description,omitempty"`
}

// TableCounts holds row counts for every table of the schema.
type TableCounts struct {
	Companies   int64 `json:"companies"`
	Locations   int64 `json:"locations"`
	Skills      int64 `json:"skills"`
	JobPostings int64 `json:"job_postings"`
	JobSkills   int64 `json:"job_skills"`
}

// postedDateLayout is the text form of a posted date in SQLite.
const postedDateLayout = "2006-01-02"

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
