package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/edufy-app/roster-api/internal/models"
	appErrors "github.com/edufy-app/roster-api/pkg/errors"
	"github.com/edufy-app/roster-api/pkg/export"
)

type userBackend interface {
	FindByEmailAndRole(ctx context.Context, email string, role models.Role) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	UpdateUser(ctx context.Context, id string, upd models.UserUpdate) error
	DeleteUser(ctx context.Context, id string) error
	ResetPassword(ctx context.Context, id string) error
}

// CreateUserRequest represents the admin console's add-user payload. Only
// student and teacher accounts are created this way; the single admin
// record is seeded, never created through the API.
type CreateUserRequest struct {
	Email    string      `json:"email" validate:"required"`
	Role     models.Role `json:"role" validate:"required,oneof=student teacher"`
	Name     string      `json:"name" validate:"required"`
	Subjects []string    `json:"subjects"`
}

// UpdateUserRequest carries a partial update; nil fields stay untouched.
type UpdateUserRequest struct {
	Email    *string     `json:"email"`
	Name     *string     `json:"name"`
	Role     *models.Role `json:"role"`
	Subjects *[]string   `json:"subjects"`
}

// UserService handles roster management workflows.
type UserService struct {
	backend   userBackend
	validator *validator.Validate
	logger    *zap.Logger
}

// NewUserService creates an instance of UserService.
func NewUserService(backend userBackend, validate *validator.Validate, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &UserService{backend: backend, validator: validate, logger: logger}
}

// List returns the roster. Role filtering happens here, above the
// repository; the admin console hides admin records by default.
func (s *UserService) List(ctx context.Context, role *models.Role, includeAdmins bool) ([]models.UserInfo, error) {
	users, err := s.backend.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	infos := make([]models.UserInfo, 0, len(users))
	for i := range users {
		u := &users[i]
		if !includeAdmins && u.Role == models.RoleAdmin {
			continue
		}
		if role != nil && u.Role != *role {
			continue
		}
		infos = append(infos, u.Info())
	}
	return infos, nil
}

// Create adds a new account in the pending-setup state. The (email, role)
// uniqueness invariant is enforced here, inside the create path, so direct
// API use cannot bypass it.
func (s *UserService) Create(ctx context.Context, req CreateUserRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid create user payload")
	}

	if _, err := s.backend.FindByEmailAndRole(ctx, req.Email, req.Role); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("Email already registered for a %s.", req.Role))
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	user := &models.User{
		Email:    req.Email,
		Role:     req.Role,
		Name:     req.Name,
		Subjects: pq.StringArray(req.Subjects),
	}

	if err := s.backend.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user created", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	return user, nil
}

// Update merges the given fields into the record and returns the result.
func (s *UserService) Update(ctx context.Context, id string, req UpdateUserRequest) (*models.User, error) {
	upd := models.UserUpdate{Email: req.Email, Name: req.Name, Role: req.Role, Subjects: req.Subjects}

	if err := s.backend.UpdateUser(ctx, id, upd); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, err
	}

	user, err := s.backend.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, err
	}
	return user, nil
}

// Delete removes an account. Class sessions referencing it are left in
// place with their denormalized names; a known, accepted staleness.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.backend.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return err
	}
	s.logger.Info("user deleted", zap.String("user_id", id))
	return nil
}

// ResetPassword puts an account back into the pending-setup state, forcing
// the first-login flow on the next sign-in.
func (s *UserService) ResetPassword(ctx context.Context, id string) error {
	if err := s.backend.ResetPassword(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return err
	}
	s.logger.Info("password reset to pending setup", zap.String("user_id", id))
	return nil
}

// Export renders the roster as CSV or PDF for the admin console.
func (s *UserService) Export(ctx context.Context, format string) ([]byte, string, string, error) {
	infos, err := s.List(ctx, nil, false)
	if err != nil {
		return nil, "", "", err
	}

	table := export.Table{
		Title:   "Edufy Roster",
		Columns: []string{"ID", "Email", "Role", "Name", "Subjects", "Status"},
	}
	for _, info := range infos {
		status := "active"
		if info.PendingSetup {
			status = "pending setup"
		}
		table.Rows = append(table.Rows, []string{
			info.ID, info.Email, string(info.Role), info.Name, strings.Join(info.Subjects, ", "), status,
		})
	}

	switch format {
	case "", "csv":
		data, err := export.NewCSVRenderer().Render(table)
		if err != nil {
			return nil, "", "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return data, "text/csv", "roster.csv", nil
	case "pdf":
		data, err := export.NewPDFRenderer().Render(table)
		if err != nil {
			return nil, "", "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return data, "application/pdf", "roster.pdf", nil
	default:
		return nil, "", "", appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}
}
