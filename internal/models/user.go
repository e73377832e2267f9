package models

import "github.com/lib/pq"

// Role enumerates the account types known to the platform.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return true
	}
	return false
}

// User represents a platform account. Uniqueness is enforced per
// (email, role) pair, not globally: the same email may exist once as a
// student and once as a teacher.
//
// Password is nullable on purpose. A nil password is not "forgotten", it is
// the pending-setup state: the user must create a password on first login.
type User struct {
	ID       string         `db:"id" json:"id"`
	Email    string         `db:"email" json:"email"`
	Role     Role           `db:"role" json:"role"`
	Name     string         `db:"name" json:"name"`
	Password *string        `db:"password" json:"-"`
	Subjects pq.StringArray `db:"subjects" json:"subjects"`
}

// PendingSetup reports whether the user still has to create a password.
func (u *User) PendingSetup() bool {
	return u.Password == nil
}

// UserUpdate carries a partial-field merge; nil fields are left untouched.
type UserUpdate struct {
	Email    *string   `json:"email"`
	Name     *string   `json:"name"`
	Role     *Role     `json:"role"`
	Subjects *[]string `json:"subjects"`
}

// UserInfo is the user shape exposed by the management API.
type UserInfo struct {
	ID           string   `json:"id"`
	Email        string   `json:"email"`
	Role         Role     `json:"role"`
	Name         string   `json:"name"`
	Subjects     []string `json:"subjects"`
	PendingSetup bool     `json:"pending_setup"`
}

// Info projects a User onto its API shape, never exposing the password.
func (u *User) Info() UserInfo {
	return UserInfo{
		ID:           u.ID,
		Email:        u.Email,
		Role:         u.Role,
		Name:         u.Name,
		Subjects:     append([]string(nil), u.Subjects...),
		PendingSetup: u.PendingSetup(),
	}
}
