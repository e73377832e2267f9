package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edufy-app/roster-api/internal/models"
)

type mockFlowStore struct {
	users      map[string]*models.User
	findErr    error
	createErr  error
	setPwErr   error
	setPwCalls int
}

func flowKey(email string, role models.Role) string {
	return email + "|" + string(role)
}

func newMockFlowStore(users ...*models.User) *mockFlowStore {
	m := &mockFlowStore{users: make(map[string]*models.User)}
	for _, u := range users {
		m.users[flowKey(u.Email, u.Role)] = u
	}
	return m
}

func (m *mockFlowStore) FindByEmailAndRole(_ context.Context, email string, role models.Role) (*models.User, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	// Admin alias on the teacher form.
	if strings.EqualFold(email, "admin") && role == models.RoleTeacher {
		for _, u := range m.users {
			if u.Role == models.RoleAdmin {
				return u, nil
			}
		}
	}
	user, ok := m.users[flowKey(email, role)]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func (m *mockFlowStore) CreateUser(_ context.Context, user *models.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	if user.ID == "" {
		user.ID = "generated-" + user.Email
	}
	user.Password = nil
	clone := *user
	m.users[flowKey(user.Email, user.Role)] = &clone
	return nil
}

func (m *mockFlowStore) SetPassword(_ context.Context, id, password string) error {
	m.setPwCalls++
	if m.setPwErr != nil {
		return m.setPwErr
	}
	for _, u := range m.users {
		if u.ID == id {
			pw := password
			u.Password = &pw
			return nil
		}
	}
	return sql.ErrNoRows
}

func strPtr(s string) *string { return &s }

func seedFlowStore() *mockFlowStore {
	return newMockFlowStore(
		&models.User{ID: "admin1", Email: "Admin", Role: models.RoleAdmin, Name: "System Admin", Password: strPtr("Iamadmin2626")},
		&models.User{ID: "s1", Email: "student@example.com", Role: models.RoleStudent, Name: "Jane Smith"},
		&models.User{ID: "s2", Email: "alex@example.com", Role: models.RoleStudent, Name: "Alex Johnson", Password: strPtr("password123")},
	)
}

func newTestFlow(store *mockFlowStore, role models.Role, mode string) *SignInFlow {
	auth := newTestAuthService(newMemorySessionStore())
	return NewSignInFlow(store, auth, role, mode, nil)
}

func TestFlowStartsAtEmailStep(t *testing.T) {
	flow := newTestFlow(seedFlowStore(), models.RoleStudent, "")
	assert.Equal(t, StepEmail, flow.Step())
	assert.Empty(t, flow.Err())
}

func TestFlowEmptyEmailRejected(t *testing.T) {
	flow := newTestFlow(seedFlowStore(), models.RoleStudent, "")

	err := flow.SubmitEmail(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, "Please enter your email.", flow.Err())
	assert.Equal(t, StepEmail, flow.Step())
}

func TestFlowUnknownEmailSignIn(t *testing.T) {
	flow := newTestFlow(seedFlowStore(), models.RoleStudent, "")

	err := flow.SubmitEmail(context.Background(), "nobody@example.com")
	require.Error(t, err)
	assert.Equal(t, "Email not registered for a student. Please contact the Admin.", flow.Err())
	assert.Equal(t, StepEmail, flow.Step())
}

func TestFlowKnownEmailWithPasswordGoesToPasswordStep(t *testing.T) {
	flow := newTestFlow(seedFlowStore(), models.RoleStudent, "")

	require.NoError(t, flow.SubmitEmail(context.Background(), "alex@example.com"))
	assert.Equal(t, StepPassword, flow.Step())
}

func TestFlowPendingAccountGoesToCreatePassword(t *testing.T) {
	flow := newTestFlow(seedFlowStore(), models.RoleStudent, "")

	require.NoError(t, flow.SubmitEmail(context.Background(), "student@example.com"))
	assert.Equal(t, StepCreatePassword, flow.Step())
}

func TestFlowWrongPassword(t *testing.T) {
	flow := newTestFlow(seedFlowStore(), models.RoleStudent, "")
	ctx := context.Background()

	require.NoError(t, flow.SubmitEmail(ctx, "alex@example.com"))
	_, err := flow.SubmitPassword(ctx, "wrong")
	require.Error(t, err)
	assert.Equal(t, "Invalid password.", flow.Err())
	assert.Equal(t, StepPassword, flow.Step())

	// The error clears on the next successful transition.
	res, err := flow.SubmitPassword(ctx, "password123")
	require.NoError(t, err)
	assert.Empty(t, flow.Err())
	assert.Equal(t, StepDone, flow.Step())
	assert.Equal(t, "s2", res.Session.ID)
}

func TestFlowCreatePasswordValidation(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name    string
		pw      string
		confirm string
		wantErr string
	}{
		{"missing fields", "", "abcdef", "Please fill in all fields."},
		{"too short", "abc", "abc", "Password must be at least 6 characters long."},
		{"mismatch", "abcdef", "abcdeg", "Passwords do not match."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			flow := newTestFlow(seedFlowStore(), models.RoleStudent, "")
			require.NoError(t, flow.SubmitEmail(ctx, "student@example.com"))

			_, err := flow.SubmitCreatePassword(ctx, tc.pw, tc.confirm)
			require.Error(t, err)
			assert.Equal(t, tc.wantErr, flow.Err())
			assert.Equal(t, StepCreatePassword, flow.Step())
		})
	}
}

func TestFlowCreatePasswordSuccess(t *testing.T) {
	store := seedFlowStore()
	flow := newTestFlow(store, models.RoleStudent, "")
	ctx := context.Background()

	require.NoError(t, flow.SubmitEmail(ctx, "student@example.com"))
	res, err := flow.SubmitCreatePassword(ctx, "abcdef", "abcdef")
	require.NoError(t, err)
	assert.Equal(t, StepDone, flow.Step())
	assert.Equal(t, "s1", res.Session.ID)
	assert.Equal(t, 1, store.setPwCalls)

	// The account is no longer pending: a fresh flow lands on the
	// password step and the new password works.
	second := newTestFlow(store, models.RoleStudent, "")
	require.NoError(t, second.SubmitEmail(ctx, "student@example.com"))
	assert.Equal(t, StepPassword, second.Step())
	_, err = second.SubmitPassword(ctx, "abcdef")
	assert.NoError(t, err)
}

func TestFlowAdminAliasOnTeacherForm(t *testing.T) {
	flow := newTestFlow(seedFlowStore(), models.RoleTeacher, "")
	ctx := context.Background()

	require.NoError(t, flow.SubmitEmail(ctx, "Admin"))
	assert.Equal(t, StepPassword, flow.Step())

	res, err := flow.SubmitPassword(ctx, "Iamadmin2626")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, res.Session.Role)
}

func TestFlowSignUpExistingEmailRejected(t *testing.T) {
	flow := newTestFlow(seedFlowStore(), models.RoleStudent, models.FlowModeSignUp)

	err := flow.SubmitEmail(context.Background(), "alex@example.com")
	require.Error(t, err)
	assert.Equal(t, "Email already registered for a student.", flow.Err())
	assert.Equal(t, StepEmail, flow.Step())
}

func TestFlowSignUpValidationOrder(t *testing.T) {
	ctx := context.Background()

	// Emptiness is checked before length, length before the match.
	cases := []struct {
		name    string
		input   SignUpInput
		wantErr string
	}{
		{
			"empty name wins over short password",
			SignUpInput{Name: "", Subjects: "Math", Password: "abc", ConfirmPassword: "abc"},
			"Please fill in all fields.",
		},
		{
			"short password wins over mismatch",
			SignUpInput{Name: "New Student", Subjects: "Math", Password: "abc", ConfirmPassword: "abcdef"},
			"Password must be at least 6 characters long.",
		},
		{
			"mismatch",
			SignUpInput{Name: "New Student", Subjects: "Math", Password: "abcdef", ConfirmPassword: "fedcba"},
			"Passwords do not match.",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			flow := newTestFlow(seedFlowStore(), models.RoleStudent, models.FlowModeSignUp)
			require.NoError(t, flow.SubmitEmail(ctx, "new@example.com"))

			_, err := flow.SubmitSignUp(ctx, tc.input)
			require.Error(t, err)
			assert.Equal(t, tc.wantErr, flow.Err())
			assert.Equal(t, StepSignUp, flow.Step())
		})
	}
}

func TestFlowSignUpSuccess(t *testing.T) {
	store := seedFlowStore()
	flow := newTestFlow(store, models.RoleTeacher, models.FlowModeSignUp)
	ctx := context.Background()

	require.NoError(t, flow.SubmitEmail(ctx, "new@example.com"))
	res, err := flow.SubmitSignUp(ctx, SignUpInput{
		Name:            "New Teacher",
		Subjects:        "Math, Physics, ,  Chemistry ",
		Password:        "abcdef",
		ConfirmPassword: "abcdef",
	})
	require.NoError(t, err)
	assert.Equal(t, StepDone, flow.Step())
	assert.Equal(t, "New Teacher", res.Session.Name)
	assert.Equal(t, models.RoleTeacher, res.Session.Role)

	created, err := store.FindByEmailAndRole(ctx, "new@example.com", models.RoleTeacher)
	require.NoError(t, err)
	assert.Equal(t, []string{"Math", "Physics", "Chemistry"}, []string(created.Subjects))
	require.NotNil(t, created.Password)
	assert.Equal(t, "abcdef", *created.Password)
}

func TestFlowSelectRoleResetsEverything(t *testing.T) {
	flow := newTestFlow(seedFlowStore(), models.RoleStudent, "")
	ctx := context.Background()

	require.NoError(t, flow.SubmitEmail(ctx, "alex@example.com"))
	require.Error(t, flow.SubmitEmail(ctx, "again@example.com"))

	flow.SelectRole(models.RoleTeacher)
	assert.Equal(t, StepEmail, flow.Step())
	assert.Empty(t, flow.Err())
}

func TestFlowOutOfOrderSubmissions(t *testing.T) {
	flow := newTestFlow(seedFlowStore(), models.RoleStudent, "")
	ctx := context.Background()

	_, err := flow.SubmitPassword(ctx, "whatever")
	assert.Error(t, err)

	_, err = flow.SubmitCreatePassword(ctx, "abcdef", "abcdef")
	assert.Error(t, err)

	_, err = flow.SubmitSignUp(ctx, SignUpInput{})
	assert.Error(t, err)

	assert.Equal(t, StepEmail, flow.Step())
}
