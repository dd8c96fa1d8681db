// Package resolver maps natural keys of companies, locations and skills to
// surrogate ids, creating rows that do not exist yet.
package resolver

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonathan/jobmarket/internal/db"
	"github.com/sirupsen/logrus"
)

// Store is the statement set the resolver needs. Insert methods return
// db.ErrConflict when the natural key already exists; Find methods return
// db.ErrNotFound when it does not.
type Store interface {
	InsertCompany(ctx context.Context, name string) (uuid.UUID, error)
	FindCompany(ctx context.Context, name string) (uuid.UUID, error)
	InsertLocation(ctx context.Context, city, province string) (uuid.UUID, error)
	FindLocation(ctx context.Context, city, province string) (uuid.UUID, error)
	InsertSkill(ctx context.Context, name string) (uuid.UUID, error)
	FindSkill(ctx context.Context, name string) (uuid.UUID, error)
}

// Entity names used in errors and log fields.
const (
	EntityCompany  = "company"
	EntityLocation = "location"
	EntitySkill    = "skill"
)

// Resolver resolves-or-creates reference entities within one unit of work.
type Resolver struct {
	store Store
	log   logrus.FieldLogger
}

// New creates a Resolver over store.
func New(store Store, log logrus.FieldLogger) *Resolver {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Resolver{store: store, log: log}
}

// Company returns the id of the company with this exact name.
func (r *Resolver) Company(ctx context.Context, name string) (uuid.UUID, error) {
	return r.resolve(ctx, EntityCompany, name,
		func() (uuid.UUID, error) { return r.store.InsertCompany(ctx, name) },
		func() (uuid.UUID, error) { return r.store.FindCompany(ctx, name) },
	)
}

// Location returns the id of the (city, province) pair.
func (r *Resolver) Location(ctx context.Context, city, province string) (uuid.UUID, error) {
	return r.resolve(ctx, EntityLocation, city+", "+province,
		func() (uuid.UUID, error) { return r.store.InsertLocation(ctx, city, province) },
		func() (uuid.UUID, error) { return r.store.FindLocation(ctx, city, province) },
	)
}

// Skill returns the id of the skill with this canonical name.
func (r *Resolver) Skill(ctx context.Context, name string) (uuid.UUID, error) {
	return r.resolve(ctx, EntitySkill, name,
		func() (uuid.UUID, error) { return r.store.InsertSkill(ctx, name) },
		func() (uuid.UUID, error) { return r.store.FindSkill(ctx, name) },
	)
}

// resolve inserts first and falls back to a lookup when the uniqueness
// constraint rejected the row. A prior read is never trusted to prove absence.
func (r *Resolver) resolve(ctx context.Context, entity, key string, insert, find func() (uuid.UUID, error)) (uuid.UUID, error) {
	id, err := insert()
	if err == nil {
		r.log.WithFields(logrus.Fields{"entity": entity, "key": key, "id": id}).Debug("created")
		return id, nil
	}
	if !errors.Is(err, db.ErrConflict) {
		return uuid.Nil, &Error{Entity: entity, Key: key, Err: fmt.Errorf("failed to insert: %w", err)}
	}

	id, err = find()
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return uuid.Nil, &Error{Entity: entity, Key: key, Err: ErrVanished}
		}
		return uuid.Nil, &Error{Entity: entity, Key: key, Err: fmt.Errorf("failed to fetch existing: %w", err)}
	}
	return id, nil
}
