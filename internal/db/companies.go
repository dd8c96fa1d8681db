package db

import (
	"context"

	"github.com/google/uuid"
)

// -----------------------------------------------------------------------------
// Reference entities: companies, locations, skills (PostgreSQL)
// -----------------------------------------------------------------------------

// InsertCompany creates a company, or returns ErrConflict if the name exists.
func (q *pgQueries) InsertCompany(ctx context.Context, name string) (uuid.UUID, error) {
	return q.insertID(ctx, "insert company",
		`INSERT INTO companies (company_id, company_name)
		 VALUES ($1, $2)
		 ON CONFLICT (company_name) DO NOTHING
		 RETURNING company_id`,
		uuid.New(), name,
	)
}

// FindCompany returns the id of the company with this exact name.
func (q *pgQueries) FindCompany(ctx context.Context, name string) (uuid.UUID, error) {
	return q.findID(ctx, "find company",
		`SELECT company_id FROM companies WHERE company_name = $1`,
		name,
	)
}

// InsertLocation creates a location, or returns ErrConflict if the pair exists.
func (q *pgQueries) InsertLocation(ctx context.Context, city, province string) (uuid.UUID, error) {
	return q.insertID(ctx, "insert location",
		`INSERT INTO locations (location_id, city, province)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (city, province) DO NOTHING
		 RETURNING location_id`,
		uuid.New(), city, province,
	)
}

// FindLocation returns the id of the (city, province) pair.
func (q *pgQueries) FindLocation(ctx context.Context, city, province string) (uuid.UUID, error) {
	return q.findID(ctx, "find location",
		`SELECT location_id FROM locations WHERE city = $1 AND province = $2`,
		city, province,
	)
}

// InsertSkill creates a skill, or returns ErrConflict if the name exists.
func (q *pgQueries) InsertSkill(ctx context.Context, name string) (uuid.UUID, error) {
	return q.insertID(ctx, "insert skill",
		`INSERT INTO skills (skill_id, skill_name)
		 VALUES ($1, $2)
		 ON CONFLICT (skill_name) DO NOTHING
		 RETURNING skill_id`,
		uuid.New(), name,
	)
}

// FindSkill returns the id of the skill with this canonical name.
func (q *pgQueries) FindSkill(ctx context.Context, name string) (uuid.UUID, error) {
	return q.findID(ctx, "find skill",
		`SELECT skill_id FROM skills WHERE skill_name = $1`,
		name,
	)
}
