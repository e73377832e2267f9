package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/edufy-app/roster-api/internal/models"
	appErrors "github.com/edufy-app/roster-api/pkg/errors"
)

// FlowStep names the states of the sign-in wizard.
type FlowStep string

const (
	StepEmail          FlowStep = "email"
	StepPassword       FlowStep = "password"
	StepCreatePassword FlowStep = "create-password"
	StepSignUp         FlowStep = "signup"
	StepDone           FlowStep = "done"
)

// minPasswordLen applies to both first-login setup and sign-up.
const minPasswordLen = 6

type flowUserStore interface {
	FindByEmailAndRole(ctx context.Context, email string, role models.Role) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	SetPassword(ctx context.Context, id, password string) error
}

type sessionIssuer interface {
	Login(ctx context.Context, user *models.User) (*models.LoginResponse, error)
}

// SignUpInput carries the self-service registration form.
type SignUpInput struct {
	Name            string
	Subjects        string
	Password        string
	ConfirmPassword string
}

// SignInFlow is the sign-in wizard as an explicit state machine. Each
// transition either advances the step or records exactly one current error
// and stays put; success is terminal and yields an authenticated session.
type SignInFlow struct {
	users  flowUserStore
	auth   sessionIssuer
	logger *zap.Logger

	role    models.Role
	mode    string
	step    FlowStep
	email   string
	found   *models.User
	lastErr string
}

// FlowFactory builds sign-in flows bound to the user store and session
// issuer, one flow per authentication attempt.
type FlowFactory struct {
	users  flowUserStore
	auth   sessionIssuer
	logger *zap.Logger
}

// NewFlowFactory constructs a FlowFactory.
func NewFlowFactory(users flowUserStore, auth sessionIssuer, logger *zap.Logger) *FlowFactory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FlowFactory{users: users, auth: auth, logger: logger}
}

// Start begins a fresh flow for the given role and mode.
func (f *FlowFactory) Start(role models.Role, mode string) *SignInFlow {
	return NewSignInFlow(f.users, f.auth, role, mode, f.logger)
}

// NewSignInFlow starts a flow at the email step. mode defaults to sign-in.
func NewSignInFlow(users flowUserStore, auth sessionIssuer, role models.Role, mode string, logger *zap.Logger) *SignInFlow {
	if logger == nil {
		logger = zap.NewNop()
	}
	if mode == "" {
		mode = models.FlowModeSignIn
	}
	return &SignInFlow{users: users, auth: auth, role: role, mode: mode, step: StepEmail, logger: logger}
}

// Step returns the current state.
func (f *SignInFlow) Step() FlowStep { return f.step }

// Err returns the single current error message, empty when none.
func (f *SignInFlow) Err() string { return f.lastErr }

// SelectRole switches the role and restarts the whole flow: changing role
// mid-flow is not supported, every field is cleared.
func (f *SignInFlow) SelectRole(role models.Role) {
	f.role = role
	f.reset()
}

// Reset returns the flow to the email step with all fields cleared.
func (f *SignInFlow) Reset() { f.reset() }

func (f *SignInFlow) reset() {
	f.step = StepEmail
	f.email = ""
	f.found = nil
	f.lastErr = ""
}

// fail records the message as the single current error, replacing any
// previous one, and leaves the step unchanged.
func (f *SignInFlow) fail(err *appErrors.Error) error {
	f.lastErr = err.Message
	return err
}

// SubmitEmail drives the email step. In sign-in mode a match moves to the
// password step (or first-login setup when the password is still pending);
// in sign-up mode a miss moves to registration.
func (f *SignInFlow) SubmitEmail(ctx context.Context, email string) error {
	f.lastErr = ""
	if f.step != StepEmail {
		return f.fail(appErrors.Clone(appErrors.ErrValidation, "not at the email step"))
	}
	if email == "" {
		return f.fail(appErrors.Clone(appErrors.ErrValidation, "Please enter your email."))
	}

	user, err := f.users.FindByEmailAndRole(ctx, email, f.role)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		f.lastErr = appErrors.ErrBackendUnavailable.Message
		return err
	}
	exists := err == nil

	if f.mode == models.FlowModeSignUp {
		if exists {
			return f.fail(appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("Email already registered for a %s.", f.role)))
		}
		f.email = email
		f.step = StepSignUp
		return nil
	}

	if !exists {
		return f.fail(appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("Email not registered for a %s. Please contact the Admin.", f.role)))
	}

	f.email = email
	f.found = user
	if user.PendingSetup() {
		f.step = StepCreatePassword
	} else {
		f.step = StepPassword
	}
	return nil
}

// SubmitPassword compares by exact value equality and, on success, creates
// the session and terminates the flow.
func (f *SignInFlow) SubmitPassword(ctx context.Context, password string) (*models.LoginResponse, error) {
	f.lastErr = ""
	if f.step != StepPassword {
		return nil, f.fail(appErrors.Clone(appErrors.ErrValidation, "not at the password step"))
	}

	if f.found.Password == nil || password != *f.found.Password {
		return nil, f.fail(appErrors.ErrInvalidPassword)
	}

	res, err := f.auth.Login(ctx, f.found)
	if err != nil {
		return nil, err
	}
	f.step = StepDone
	return res, nil
}

// SubmitCreatePassword finishes first-login setup: stores the password,
// then logs the user in.
func (f *SignInFlow) SubmitCreatePassword(ctx context.Context, newPassword, confirmPassword string) (*models.LoginResponse, error) {
	f.lastErr = ""
	if f.step != StepCreatePassword {
		return nil, f.fail(appErrors.Clone(appErrors.ErrValidation, "not at the password setup step"))
	}

	if newPassword == "" || confirmPassword == "" {
		return nil, f.fail(appErrors.Clone(appErrors.ErrValidation, "Please fill in all fields."))
	}
	if len(newPassword) < minPasswordLen {
		return nil, f.fail(appErrors.Clone(appErrors.ErrValidation, "Password must be at least 6 characters long."))
	}
	if newPassword != confirmPassword {
		return nil, f.fail(appErrors.Clone(appErrors.ErrValidation, "Passwords do not match."))
	}

	if err := f.users.SetPassword(ctx, f.found.ID, newPassword); err != nil {
		return nil, err
	}
	f.found.Password = &newPassword

	res, err := f.auth.Login(ctx, f.found)
	if err != nil {
		return nil, err
	}
	f.step = StepDone
	return res, nil
}

// SubmitSignUp registers a new account, stores the chosen password, and
// logs in with the freshly created identity.
func (f *SignInFlow) SubmitSignUp(ctx context.Context, input SignUpInput) (*models.LoginResponse, error) {
	f.lastErr = ""
	if f.step != StepSignUp {
		return nil, f.fail(appErrors.Clone(appErrors.ErrValidation, "not at the registration step"))
	}

	if input.Name == "" || input.Subjects == "" || input.Password == "" || input.ConfirmPassword == "" {
		return nil, f.fail(appErrors.Clone(appErrors.ErrValidation, "Please fill in all fields."))
	}
	if len(input.Password) < minPasswordLen {
		return nil, f.fail(appErrors.Clone(appErrors.ErrValidation, "Password must be at least 6 characters long."))
	}
	if input.Password != input.ConfirmPassword {
		return nil, f.fail(appErrors.Clone(appErrors.ErrValidation, "Passwords do not match."))
	}

	user := &models.User{
		Email:    f.email,
		Role:     f.role,
		Name:     input.Name,
		Subjects: pq.StringArray(splitSubjects(input.Subjects)),
	}

	// Creation always lands in the pending-setup state; the chosen password
	// is applied right after, then the login is synthesized from both.
	if err := f.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	if err := f.users.SetPassword(ctx, user.ID, input.Password); err != nil {
		return nil, err
	}
	user.Password = &input.Password

	f.logger.Info("self-service sign-up completed",
		zap.String("user_id", user.ID), zap.String("role", string(user.Role)))

	res, err := f.auth.Login(ctx, user)
	if err != nil {
		return nil, err
	}
	f.step = StepDone
	return res, nil
}

// splitSubjects turns comma-separated text into the subjects sequence:
// split, trim, drop empties, preserve order.
func splitSubjects(raw string) []string {
	parts := strings.Split(raw, ",")
	subjects := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			subjects = append(subjects, trimmed)
		}
	}
	return subjects
}
