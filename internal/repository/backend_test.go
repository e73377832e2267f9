package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edufy-app/roster-api/internal/models"
	"github.com/edufy-app/roster-api/pkg/config"
	appErrors "github.com/edufy-app/roster-api/pkg/errors"
)

type recordedQuery struct {
	backend string
	op      string
	err     error
}

type fakeObserver struct {
	queries []recordedQuery
}

func (f *fakeObserver) ObserveStoreQuery(backend, op string, duration time.Duration, err error) {
	f.queries = append(f.queries, recordedQuery{backend: backend, op: op, err: err})
}

func localOnlyConfig() *config.Config {
	return &config.Config{
		Database: config.DatabaseConfig{Host: "localhost", Password: config.PlaceholderPassword},
		Backend:  config.BackendConfig{Timeout: 5 * time.Second},
	}
}

func newLocalBackend(t *testing.T) (*Backend, *fakeObserver) {
	t.Helper()
	local, err := OpenLocalStore(afero.NewMemMapFs(), "data", nil)
	require.NoError(t, err)
	observer := &fakeObserver{}
	return NewBackend(localOnlyConfig(), nil, nil, local, observer, nil), observer
}

func TestBackendPlaceholderPasswordSelectsLocal(t *testing.T) {
	backend, observer := newLocalBackend(t)
	assert.False(t, backend.Ready())

	users, err := backend.ListUsers(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 5)

	require.Len(t, observer.queries, 1)
	assert.Equal(t, "local", observer.queries[0].backend)
	assert.Equal(t, "users.list", observer.queries[0].op)
}

func TestBackendConfiguredWithoutHandleStaysLocal(t *testing.T) {
	local, err := OpenLocalStore(afero.NewMemMapFs(), "data", nil)
	require.NoError(t, err)

	cfg := localOnlyConfig()
	cfg.Database.Password = "live-secret"
	backend := NewBackend(cfg, nil, nil, local, nil, nil)

	// Credentials look live but no connection was established at startup.
	assert.False(t, backend.Ready())

	_, err = backend.FindByID(context.Background(), "s1")
	require.NoError(t, err)
}

func TestBackendAdminAliasOnTeacherForm(t *testing.T) {
	backend, _ := newLocalBackend(t)

	for _, alias := range []string{"Admin", "admin", "ADMIN"} {
		user, err := backend.FindByEmailAndRole(context.Background(), alias, models.RoleTeacher)
		require.NoError(t, err)
		assert.Equal(t, models.RoleAdmin, user.Role)
		assert.Equal(t, "admin1", user.ID)
	}

	// The alias only applies to the teacher form.
	_, err := backend.FindByEmailAndRole(context.Background(), "Admin", models.RoleStudent)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestBackendMissPassesThroughUnwrapped(t *testing.T) {
	backend, observer := newLocalBackend(t)

	_, err := backend.FindByEmailAndRole(context.Background(), "nobody@example.com", models.RoleStudent)
	assert.ErrorIs(t, err, sql.ErrNoRows)

	var appErr *appErrors.Error
	assert.False(t, errors.As(err, &appErr))

	require.Len(t, observer.queries, 1)
	assert.ErrorIs(t, observer.queries[0].err, sql.ErrNoRows)
}

func TestBackendSetAndResetPassword(t *testing.T) {
	backend, _ := newLocalBackend(t)
	ctx := context.Background()

	require.NoError(t, backend.SetPassword(ctx, "s1", "abcdef"))
	user, err := backend.FindByID(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, user.Password)
	assert.Equal(t, "abcdef", *user.Password)

	require.NoError(t, backend.ResetPassword(ctx, "s1"))
	user, err = backend.FindByID(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, user.PendingSetup())
}

func TestBackendScheduleQueries(t *testing.T) {
	backend, observer := newLocalBackend(t)
	ctx := context.Background()

	byStudent, err := backend.SessionsByStudent(ctx, "s2")
	require.NoError(t, err)
	assert.Len(t, byStudent, 2)

	byTeacher, err := backend.SessionsByTeacher(ctx, "t2")
	require.NoError(t, err)
	assert.Len(t, byTeacher, 2)

	require.Len(t, observer.queries, 2)
	assert.Equal(t, "schedules.list_by_student", observer.queries[0].op)
	assert.Equal(t, "schedules.list_by_teacher", observer.queries[1].op)
}
