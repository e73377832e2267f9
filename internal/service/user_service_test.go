package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edufy-app/roster-api/internal/models"
	appErrors "github.com/edufy-app/roster-api/pkg/errors"
)

type mockUserBackend struct {
	users []models.User
}

func seedUserBackend() *mockUserBackend {
	return &mockUserBackend{users: []models.User{
		{ID: "admin1", Email: "Admin", Role: models.RoleAdmin, Name: "System Admin", Password: strPtr("Iamadmin2626")},
		{ID: "s1", Email: "student@example.com", Role: models.RoleStudent, Name: "Jane Smith"},
		{ID: "t2", Email: "sarah@example.com", Role: models.RoleTeacher, Name: "Sarah Williams", Password: strPtr("password123")},
	}}
}

func (m *mockUserBackend) FindByEmailAndRole(_ context.Context, email string, role models.Role) (*models.User, error) {
	for i := range m.users {
		if m.users[i].Email == email && m.users[i].Role == role {
			return &m.users[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserBackend) FindByID(_ context.Context, id string) (*models.User, error) {
	for i := range m.users {
		if m.users[i].ID == id {
			return &m.users[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserBackend) ListUsers(_ context.Context) ([]models.User, error) {
	return m.users, nil
}

func (m *mockUserBackend) CreateUser(_ context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = "generated"
	}
	user.Password = nil
	m.users = append(m.users, *user)
	return nil
}

func (m *mockUserBackend) UpdateUser(_ context.Context, id string, upd models.UserUpdate) error {
	for i := range m.users {
		if m.users[i].ID != id {
			continue
		}
		if upd.Email != nil {
			m.users[i].Email = *upd.Email
		}
		if upd.Name != nil {
			m.users[i].Name = *upd.Name
		}
		if upd.Role != nil {
			m.users[i].Role = *upd.Role
		}
		if upd.Subjects != nil {
			m.users[i].Subjects = *upd.Subjects
		}
		return nil
	}
	return sql.ErrNoRows
}

func (m *mockUserBackend) DeleteUser(_ context.Context, id string) error {
	for i := range m.users {
		if m.users[i].ID == id {
			m.users = append(m.users[:i], m.users[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

func (m *mockUserBackend) ResetPassword(_ context.Context, id string) error {
	for i := range m.users {
		if m.users[i].ID == id {
			m.users[i].Password = nil
			return nil
		}
	}
	return sql.ErrNoRows
}

func TestUserServiceListHidesAdminsByDefault(t *testing.T) {
	svc := NewUserService(seedUserBackend(), nil, nil)

	infos, err := svc.List(context.Background(), nil, false)
	require.NoError(t, err)
	require.Len(t, infos, 2)
	for _, info := range infos {
		assert.NotEqual(t, models.RoleAdmin, info.Role)
	}

	all, err := svc.List(context.Background(), nil, true)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestUserServiceListRoleFilter(t *testing.T) {
	svc := NewUserService(seedUserBackend(), nil, nil)

	role := models.RoleTeacher
	infos, err := svc.List(context.Background(), &role, false)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "t2", infos[0].ID)
	assert.False(t, infos[0].PendingSetup)
}

func TestUserServiceListMarksPendingSetup(t *testing.T) {
	svc := NewUserService(seedUserBackend(), nil, nil)

	role := models.RoleStudent
	infos, err := svc.List(context.Background(), &role, false)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.True(t, infos[0].PendingSetup)
}

func TestUserServiceCreateStartsPending(t *testing.T) {
	backend := seedUserBackend()
	svc := NewUserService(backend, nil, nil)

	user, err := svc.Create(context.Background(), CreateUserRequest{
		Email: "new@example.com", Role: models.RoleStudent, Name: "New Student", Subjects: []string{"Math"},
	})
	require.NoError(t, err)
	assert.Nil(t, user.Password)

	stored, err := backend.FindByEmailAndRole(context.Background(), "new@example.com", models.RoleStudent)
	require.NoError(t, err)
	assert.True(t, stored.PendingSetup())
}

func TestUserServiceCreateDuplicatePairRejected(t *testing.T) {
	svc := NewUserService(seedUserBackend(), nil, nil)

	_, err := svc.Create(context.Background(), CreateUserRequest{
		Email: "student@example.com", Role: models.RoleStudent, Name: "Duplicate",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Status, appErr.Status)

	// Same email under the other role is a different account.
	_, err = svc.Create(context.Background(), CreateUserRequest{
		Email: "student@example.com", Role: models.RoleTeacher, Name: "Same Email Teacher",
	})
	assert.NoError(t, err)
}

func TestUserServiceCreateRejectsAdminRole(t *testing.T) {
	svc := NewUserService(seedUserBackend(), nil, nil)

	_, err := svc.Create(context.Background(), CreateUserRequest{
		Email: "another@example.com", Role: models.RoleAdmin, Name: "Second Admin",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Status, appErr.Status)
}

func TestUserServiceUpdateReturnsFreshRecord(t *testing.T) {
	svc := NewUserService(seedUserBackend(), nil, nil)

	name := "Jane Renamed"
	user, err := svc.Update(context.Background(), "s1", UpdateUserRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Jane Renamed", user.Name)

	_, err = svc.Update(context.Background(), "ghost", UpdateUserRequest{Name: &name})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Status, appErrors.FromError(err).Status)
}

func TestUserServiceDeleteAndReset(t *testing.T) {
	backend := seedUserBackend()
	svc := NewUserService(backend, nil, nil)
	ctx := context.Background()

	require.NoError(t, svc.ResetPassword(ctx, "t2"))
	sarah, err := backend.FindByID(ctx, "t2")
	require.NoError(t, err)
	assert.True(t, sarah.PendingSetup())

	require.NoError(t, svc.Delete(ctx, "t2"))
	assert.Equal(t, appErrors.ErrNotFound.Status, appErrors.FromError(svc.Delete(ctx, "t2")).Status)
}

func TestUserServiceExportCSV(t *testing.T) {
	svc := NewUserService(seedUserBackend(), nil, nil)

	data, contentType, filename, err := svc.Export(context.Background(), "csv")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", contentType)
	assert.Equal(t, "roster.csv", filename)

	body := string(data)
	assert.Contains(t, body, "student@example.com")
	assert.Contains(t, body, "pending setup")
	// The export never leaks admin rows or passwords.
	assert.NotContains(t, body, "Iamadmin2626")
	assert.NotContains(t, body, "password123")
	assert.Equal(t, 3, strings.Count(body, "\n"))
}

func TestUserServiceExportPDF(t *testing.T) {
	svc := NewUserService(seedUserBackend(), nil, nil)

	data, contentType, filename, err := svc.Export(context.Background(), "pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", contentType)
	assert.Equal(t, "roster.pdf", filename)
	assert.True(t, strings.HasPrefix(string(data), "%PDF"))
}

func TestUserServiceExportUnknownFormat(t *testing.T) {
	svc := NewUserService(seedUserBackend(), nil, nil)

	_, _, _, err := svc.Export(context.Background(), "xlsx")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Status, appErrors.FromError(err).Status)
}
