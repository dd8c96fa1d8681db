package resolver

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jonathan/jobmarket/internal/db"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore keeps each entity table as a map from natural key to id.
type fakeStore struct {
	rows map[string]uuid.UUID

	insertErr error // returned by every insert when set
	findErr   error // returned by every find when set
	vanish    bool  // inserts conflict but finds miss
	inserts   int
	finds     int
}

func newFakeStore() *fakeStore {
	return &fakeStore{rows: map[string]uuid.UUID{}}
}

func (f *fakeStore) insert(key string) (uuid.UUID, error) {
	f.inserts++
	if f.insertErr != nil {
		return uuid.Nil, f.insertErr
	}
	if f.vanish {
		return uuid.Nil, db.ErrConflict
	}
	if _, ok := f.rows[key]; ok {
		return uuid.Nil, db.ErrConflict
	}
	id := uuid.New()
	f.rows[key] = id
	return id, nil
}

func (f *fakeStore) find(key string) (uuid.UUID, error) {
	f.finds++
	if f.findErr != nil {
		return uuid.Nil, f.findErr
	}
	id, ok := f.rows[key]
	if !ok {
		return uuid.Nil, db.ErrNotFound
	}
	return id, nil
}

func (f *fakeStore) InsertCompany(_ context.Context, name string) (uuid.UUID, error) {
	return f.insert("company:" + name)
}

func (f *fakeStore) FindCompany(_ context.Context, name string) (uuid.UUID, error) {
	return f.find("company:" + name)
}

func (f *fakeStore) InsertLocation(_ context.Context, city, province string) (uuid.UUID, error) {
	return f.insert("location:" + city + "|" + province)
}

func (f *fakeStore) FindLocation(_ context.Context, city, province string) (uuid.UUID, error) {
	return f.find("location:" + city + "|" + province)
}

func (f *fakeStore) InsertSkill(_ context.Context, name string) (uuid.UUID, error) {
	return f.insert("skill:" + name)
}

func (f *fakeStore) FindSkill(_ context.Context, name string) (uuid.UUID, error) {
	return f.find("skill:" + name)
}

func newTestResolver(store Store) *Resolver {
	log, _ := logtest.NewNullLogger()
	return New(store, log)
}

func TestResolver_CreatesThenReuses(t *testing.T) {
	store := newFakeStore()
	r := newTestResolver(store)
	ctx := context.Background()

	first, err := r.Company(ctx, "Acme")
	require.NoError(t, err)
	second, err := r.Company(ctx, "Acme")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, store.rows, 1)
	assert.Equal(t, 2, store.inserts)
	assert.Equal(t, 1, store.finds, "only the conflicting insert triggers a lookup")
}

func TestResolver_NaturalKeys(t *testing.T) {
	store := newFakeStore()
	r := newTestResolver(store)
	ctx := context.Background()

	on, err := r.Location(ctx, "Toronto", "ON")
	require.NoError(t, err)
	oh, err := r.Location(ctx, "Toronto", "OH")
	require.NoError(t, err)
	assert.NotEqual(t, on, oh, "locations are keyed on the pair")

	again, err := r.Location(ctx, "Toronto", "ON")
	require.NoError(t, err)
	assert.Equal(t, on, again)

	python, err := r.Skill(ctx, "python")
	require.NoError(t, err)
	company, err := r.Company(ctx, "python")
	require.NoError(t, err)
	assert.NotEqual(t, python, company, "entities do not share keys")

	// Company names are matched exactly.
	upper, err := r.Company(ctx, "PYTHON")
	require.NoError(t, err)
	assert.NotEqual(t, company, upper)
}

func TestResolver_ConflictWithExistingRow(t *testing.T) {
	store := newFakeStore()
	existing := uuid.New()
	store.rows["skill:sql"] = existing

	id, err := newTestResolver(store).Skill(context.Background(), "sql")
	require.NoError(t, err)
	assert.Equal(t, existing, id)
}

func TestResolver_Errors(t *testing.T) {
	unavailable := &db.StoreError{Op: "insert company", Err: errors.New("connection reset")}

	tests := []struct {
		name      string
		setup     func(*fakeStore)
		wantErr   error
		wantFinds int
	}{
		{
			name:    "insert failure",
			setup:   func(f *fakeStore) { f.insertErr = unavailable },
			wantErr: db.ErrStoreUnavailable,
		},
		{
			name: "lookup failure after conflict",
			setup: func(f *fakeStore) {
				f.rows["company:Acme"] = uuid.New()
				f.findErr = unavailable
			},
			wantErr:   db.ErrStoreUnavailable,
			wantFinds: 1,
		},
		{
			name:      "conflicting row vanished",
			setup:     func(f *fakeStore) { f.vanish = true },
			wantErr:   ErrVanished,
			wantFinds: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			tt.setup(store)

			id, err := newTestResolver(store).Company(context.Background(), "Acme")
			require.Error(t, err)
			assert.Equal(t, uuid.Nil, id)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, 1, store.inserts, "no retries")
			assert.Equal(t, tt.wantFinds, store.finds)

			var resolveErr *Error
			require.ErrorAs(t, err, &resolveErr)
			assert.Equal(t, EntityCompany, resolveErr.Entity)
			assert.Equal(t, "Acme", resolveErr.Key)
		})
	}
}

func TestResolver_LogsCreation(t *testing.T) {
	log, hook := logtest.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	r := New(newFakeStore(), log)

	_, err := r.Skill(context.Background(), "python")
	require.NoError(t, err)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "created", entry.Message)
	assert.Equal(t, EntitySkill, entry.Data["entity"])
	assert.Equal(t, "python", entry.Data["key"])
}

func TestError_Message(t *testing.T) {
	err := &Error{Entity: EntityLocation, Key: "Toronto, ON", Err: ErrVanished}
	assert.Equal(t, `resolve location "Toronto, ON": conflicting row not found`, err.Error())
}
