package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/edufy-app/roster-api/internal/models"
)

// UserRepository provides PostgreSQL access to the users collection.
// Lookup misses are reported as sql.ErrNoRows; any other failure is wrapped
// so callers can tell "no such record" apart from "backend broke".
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, email, role, name, password, subjects`

// FindByEmailAndRole returns the user matching the (email, role) pair.
func (r *UserRepository) FindByEmailAndRole(ctx context.Context, email string, role models.Role) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE email = $1 AND role = $2 LIMIT 1`, userColumns)
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, email, role); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find user by email and role: %w", err)
	}
	return &user, nil
}

// FindByID returns a user by identifier.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1 LIMIT 1`, userColumns)
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return &user, nil
}

// FindAdmin returns the single admin record.
func (r *UserRepository) FindAdmin(ctx context.Context) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE role = $1 LIMIT 1`, userColumns)
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, models.RoleAdmin); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find admin: %w", err)
	}
	return &user, nil
}

// List returns every user in stored order. The roster is small by design;
// role filtering is the caller's job.
func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users ORDER BY id`, userColumns)
	var users []models.User
	if err := r.db.SelectContext(ctx, &users, query); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// Create inserts a new user. The password column is always written as NULL:
// new accounts start in the pending-setup state regardless of caller intent.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.Password = nil

	const query = `INSERT INTO users (id, email, role, name, password, subjects) VALUES ($1, $2, $3, $4, NULL, $5)`
	if _, err := r.db.ExecContext(ctx, query, user.ID, user.Email, user.Role, user.Name, pq.StringArray(user.Subjects)); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// Update merges the provided fields into the stored record. Absent fields
// are left untouched; role transitions are not validated.
func (r *UserRepository) Update(ctx context.Context, id string, upd models.UserUpdate) error {
	var sets []string
	var args []interface{}

	if upd.Email != nil {
		sets = append(sets, fmt.Sprintf("email = $%d", len(args)+1))
		args = append(args, *upd.Email)
	}
	if upd.Name != nil {
		sets = append(sets, fmt.Sprintf("name = $%d", len(args)+1))
		args = append(args, *upd.Name)
	}
	if upd.Role != nil {
		sets = append(sets, fmt.Sprintf("role = $%d", len(args)+1))
		args = append(args, *upd.Role)
	}
	if upd.Subjects != nil {
		sets = append(sets, fmt.Sprintf("subjects = $%d", len(args)+1))
		args = append(args, pq.StringArray(*upd.Subjects))
	}

	if len(sets) == 0 {
		return nil
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE users SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a user. Hard delete: ClassSession rows referencing the id
// keep their denormalized names and dangle, matching the admin console's
// historical behavior.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SetPassword overwrites the stored password. A nil value puts the account
// back into the pending-setup state.
func (r *UserRepository) SetPassword(ctx context.Context, id string, password *string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET password = $2 WHERE id = $1`, id, password)
	if err != nil {
		return fmt.Errorf("set password: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
