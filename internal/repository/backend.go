package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/edufy-app/roster-api/internal/models"
	"github.com/edufy-app/roster-api/pkg/config"
	appErrors "github.com/edufy-app/roster-api/pkg/errors"
)

// adminAlias is the reserved email that, entered on the teacher form,
// resolves to the admin record. A deliberate UI shortcut, not a bug.
const adminAlias = "admin"

// UserStore is the operation set shared by the remote and local user
// backends.
type UserStore interface {
	FindByEmailAndRole(ctx context.Context, email string, role models.Role) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindAdmin(ctx context.Context) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, id string, upd models.UserUpdate) error
	Delete(ctx context.Context, id string) error
	SetPassword(ctx context.Context, id string, password *string) error
}

// ScheduleStore is the read-only schedule operation set.
type ScheduleStore interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.ClassSession, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]models.ClassSession, error)
}

// QueryObserver receives one observation per routed backend operation.
type QueryObserver interface {
	ObserveStoreQuery(backend, op string, duration time.Duration, err error)
}

// Backend routes every operation to the remote PostgreSQL repositories or
// to the local file store. The choice is re-evaluated on each call from the
// configuration alone, so flipping credentials takes effect on the next
// call without a restart. Each routed call runs under a deadline so a hung
// backend surfaces as an error instead of a stuck client.
type Backend struct {
	db       config.DatabaseConfig
	remote   *UserRepository
	remSched *ScheduleRepository
	local    *LocalStore
	timeout  time.Duration
	observer QueryObserver
	logger   *zap.Logger
}

// NewBackend assembles the selector. remote and remSched may be nil when
// the database was not reachable at startup.
func NewBackend(cfg *config.Config, remote *UserRepository, remSched *ScheduleRepository, local *LocalStore, observer QueryObserver, logger *zap.Logger) *Backend {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Backend{
		db:       cfg.Database,
		remote:   remote,
		remSched: remSched,
		local:    local,
		timeout:  cfg.Backend.Timeout,
		observer: observer,
		logger:   logger,
	}
}

// Ready reports whether the remote path is usable: live-looking credentials
// and an established handle. Pure inspection, no round-trip.
func (b *Backend) Ready() bool {
	return b.db.Configured() && b.remote != nil
}

func (b *Backend) users() UserStore {
	if b.Ready() {
		return b.remote
	}
	return b.local
}

func (b *Backend) schedules() ScheduleStore {
	if b.Ready() {
		return b.remSched
	}
	return b.local
}

func (b *Backend) backendName() string {
	if b.Ready() {
		return "postgres"
	}
	return "local"
}

func (b *Backend) observe(op string, start time.Time, err error) {
	if b.observer != nil {
		b.observer.ObserveStoreQuery(b.backendName(), op, time.Since(start), err)
	}
}

// wrapErr converts non-miss failures into the transport error kind so
// callers can always tell "not found" apart from "backend broke".
func wrapErr(err error, op string) error {
	if err == nil || errors.Is(err, sql.ErrNoRows) {
		return err
	}
	return appErrors.Wrap(err, appErrors.ErrBackendUnavailable.Code, appErrors.ErrBackendUnavailable.Status, op+" failed")
}

func (b *Backend) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if b.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, b.timeout)
}

// FindByEmailAndRole performs the exact-match lookup. The admin alias is
// resolved here so both backends agree: email "Admin" (any case) on the
// teacher form looks up the single admin record instead.
func (b *Backend) FindByEmailAndRole(ctx context.Context, email string, role models.Role) (*models.User, error) {
	ctx, cancel := b.callCtx(ctx)
	defer cancel()

	start := time.Now()
	var user *models.User
	var err error
	if strings.EqualFold(email, adminAlias) && role == models.RoleTeacher {
		user, err = b.users().FindAdmin(ctx)
	} else {
		user, err = b.users().FindByEmailAndRole(ctx, email, role)
	}
	b.observe("users.find_by_email_and_role", start, err)
	return user, wrapErr(err, "find user")
}

// FindByID returns a user by identifier.
func (b *Backend) FindByID(ctx context.Context, id string) (*models.User, error) {
	ctx, cancel := b.callCtx(ctx)
	defer cancel()

	start := time.Now()
	user, err := b.users().FindByID(ctx, id)
	b.observe("users.find_by_id", start, err)
	return user, wrapErr(err, "find user")
}

// ListUsers returns the whole roster in stored order.
func (b *Backend) ListUsers(ctx context.Context) ([]models.User, error) {
	ctx, cancel := b.callCtx(ctx)
	defer cancel()

	start := time.Now()
	users, err := b.users().List(ctx)
	b.observe("users.list", start, err)
	return users, wrapErr(err, "list users")
}

// CreateUser stores a new account in the pending-setup state.
func (b *Backend) CreateUser(ctx context.Context, user *models.User) error {
	ctx, cancel := b.callCtx(ctx)
	defer cancel()

	start := time.Now()
	err := b.users().Create(ctx, user)
	b.observe("users.create", start, err)
	return wrapErr(err, "create user")
}

// UpdateUser merges the given fields into the stored record.
func (b *Backend) UpdateUser(ctx context.Context, id string, upd models.UserUpdate) error {
	ctx, cancel := b.callCtx(ctx)
	defer cancel()

	start := time.Now()
	err := b.users().Update(ctx, id, upd)
	b.observe("users.update", start, err)
	return wrapErr(err, "update user")
}

// DeleteUser removes the record. Hard delete, no schedule cascade.
func (b *Backend) DeleteUser(ctx context.Context, id string) error {
	ctx, cancel := b.callCtx(ctx)
	defer cancel()

	start := time.Now()
	err := b.users().Delete(ctx, id)
	b.observe("users.delete", start, err)
	return wrapErr(err, "delete user")
}

// SetPassword overwrites the stored password unconditionally.
func (b *Backend) SetPassword(ctx context.Context, id, password string) error {
	ctx, cancel := b.callCtx(ctx)
	defer cancel()

	start := time.Now()
	err := b.users().SetPassword(ctx, id, &password)
	b.observe("users.set_password", start, err)
	return wrapErr(err, "set password")
}

// ResetPassword puts the account back into pending setup. This is the sole
// mechanism to force the first-login flow again for an existing user.
func (b *Backend) ResetPassword(ctx context.Context, id string) error {
	ctx, cancel := b.callCtx(ctx)
	defer cancel()

	start := time.Now()
	err := b.users().SetPassword(ctx, id, nil)
	b.observe("users.reset_password", start, err)
	return wrapErr(err, "reset password")
}

// SessionsByStudent lists the sessions booked for a student.
func (b *Backend) SessionsByStudent(ctx context.Context, studentID string) ([]models.ClassSession, error) {
	ctx, cancel := b.callCtx(ctx)
	defer cancel()

	start := time.Now()
	sessions, err := b.schedules().ListByStudent(ctx, studentID)
	b.observe("schedules.list_by_student", start, err)
	return sessions, wrapErr(err, "list schedules")
}

// SessionsByTeacher lists the sessions taught by a teacher.
func (b *Backend) SessionsByTeacher(ctx context.Context, teacherID string) ([]models.ClassSession, error) {
	ctx, cancel := b.callCtx(ctx)
	defer cancel()

	start := time.Now()
	sessions, err := b.schedules().ListByTeacher(ctx, teacherID)
	b.observe("schedules.list_by_teacher", start, err)
	return sessions, wrapErr(err, "list schedules")
}
