package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/edufy-app/roster-api/internal/models"
)

// Fixed file names mirroring the fallback's two logical tables: each is one
// full-collection JSON blob.
const (
	usersFile     = "users.json"
	schedulesFile = "schedules.json"
)

// LocalStore is the durable fallback backend used while the remote database
// is not configured. Collections are serialized whole on every write, which
// is fine at this scale, and access is serialized behind one mutex.
//
// Lookup misses are reported as sql.ErrNoRows so services handle both
// backends identically.
type LocalStore struct {
	fs     afero.Fs
	dir    string
	logger *zap.Logger

	mu sync.Mutex
}

// userRecord is the on-disk shape. It differs from models.User only in that
// the password survives marshaling; the API model hides it from JSON.
type userRecord struct {
	ID       string   `json:"id"`
	Email    string   `json:"email"`
	Role     string   `json:"role"`
	Name     string   `json:"name"`
	Password *string  `json:"password"`
	Subjects []string `json:"subjects,omitempty"`
}

func toRecord(u models.User) userRecord {
	return userRecord{ID: u.ID, Email: u.Email, Role: string(u.Role), Name: u.Name, Password: u.Password, Subjects: []string(u.Subjects)}
}

func (rec userRecord) toUser() models.User {
	return models.User{ID: rec.ID, Email: rec.Email, Role: models.Role(rec.Role), Name: rec.Name, Password: rec.Password, Subjects: pq.StringArray(rec.Subjects)}
}

// OpenLocalStore prepares the data directory and seeds it on first use.
// An existing users blob that predates the admin record gets it appended.
func OpenLocalStore(fs afero.Fs, dir string, logger *zap.Logger) (*LocalStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create local store dir: %w", err)
	}

	s := &LocalStore{fs: fs, dir: dir, logger: logger}

	if err := s.ensureSeeded(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *LocalStore) ensureSeeded() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	usersPath := filepath.Join(s.dir, usersFile)
	exists, err := afero.Exists(s.fs, usersPath)
	if err != nil {
		return fmt.Errorf("stat %s: %w", usersPath, err)
	}

	if !exists {
		s.logger.Info("seeding local user store", zap.String("dir", s.dir))
		if err := s.writeUsers(seedRecords()); err != nil {
			return err
		}
	} else {
		records, err := s.readUsers()
		if err != nil {
			return err
		}
		if !hasAdmin(records) {
			records = append(records, toRecord(SeedUsers()[0]))
			if err := s.writeUsers(records); err != nil {
				return err
			}
		}
	}

	schedulesPath := filepath.Join(s.dir, schedulesFile)
	exists, err = afero.Exists(s.fs, schedulesPath)
	if err != nil {
		return fmt.Errorf("stat %s: %w", schedulesPath, err)
	}
	if !exists {
		if err := s.writeSessions(SeedSessions()); err != nil {
			return err
		}
	}

	return nil
}

func seedRecords() []userRecord {
	users := SeedUsers()
	records := make([]userRecord, len(users))
	for i, u := range users {
		records[i] = toRecord(u)
	}
	return records
}

func hasAdmin(records []userRecord) bool {
	for _, rec := range records {
		if strings.EqualFold(rec.Email, "admin") {
			return true
		}
	}
	return false
}

func (s *LocalStore) readUsers() ([]userRecord, error) {
	raw, err := afero.ReadFile(s.fs, filepath.Join(s.dir, usersFile))
	if err != nil {
		return nil, fmt.Errorf("read users blob: %w", err)
	}
	var records []userRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decode users blob: %w", err)
	}
	return records, nil
}

func (s *LocalStore) writeUsers(records []userRecord) error {
	raw, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode users blob: %w", err)
	}
	if err := afero.WriteFile(s.fs, filepath.Join(s.dir, usersFile), raw, 0o644); err != nil {
		return fmt.Errorf("write users blob: %w", err)
	}
	return nil
}

func (s *LocalStore) readSessions() ([]models.ClassSession, error) {
	raw, err := afero.ReadFile(s.fs, filepath.Join(s.dir, schedulesFile))
	if err != nil {
		return nil, fmt.Errorf("read schedules blob: %w", err)
	}
	var sessions []models.ClassSession
	if err := json.Unmarshal(raw, &sessions); err != nil {
		return nil, fmt.Errorf("decode schedules blob: %w", err)
	}
	return sessions, nil
}

func (s *LocalStore) writeSessions(sessions []models.ClassSession) error {
	raw, err := json.MarshalIndent(sessions, "", "  ")
	if err != nil {
		return fmt.Errorf("encode schedules blob: %w", err)
	}
	if err := afero.WriteFile(s.fs, filepath.Join(s.dir, schedulesFile), raw, 0o644); err != nil {
		return fmt.Errorf("write schedules blob: %w", err)
	}
	return nil
}

// FindByEmailAndRole scans the blob for the exact (email, role) pair.
func (s *LocalStore) FindByEmailAndRole(ctx context.Context, email string, role models.Role) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readUsers()
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		if rec.Email == email && models.Role(rec.Role) == role {
			user := rec.toUser()
			return &user, nil
		}
	}
	return nil, sql.ErrNoRows
}

// FindByID scans the blob for the id.
func (s *LocalStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readUsers()
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		if rec.ID == id {
			user := rec.toUser()
			return &user, nil
		}
	}
	return nil, sql.ErrNoRows
}

// FindAdmin returns the single admin record.
func (s *LocalStore) FindAdmin(ctx context.Context) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readUsers()
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		if models.Role(rec.Role) == models.RoleAdmin {
			user := rec.toUser()
			return &user, nil
		}
	}
	return nil, sql.ErrNoRows
}

// List returns every user in stored order.
func (s *LocalStore) List(ctx context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readUsers()
	if err != nil {
		return nil, err
	}
	users := make([]models.User, len(records))
	for i, rec := range records {
		users[i] = rec.toUser()
	}
	return users, nil
}

// Create appends a new user to the blob. The password is always nil: new
// accounts start pending setup regardless of caller intent.
func (s *LocalStore) Create(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readUsers()
	if err != nil {
		return err
	}

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.Password = nil

	records = append(records, toRecord(*user))
	return s.writeUsers(records)
}

// Update merges the provided fields into the matching record.
func (s *LocalStore) Update(ctx context.Context, id string, upd models.UserUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readUsers()
	if err != nil {
		return err
	}

	found := false
	for i := range records {
		if records[i].ID != id {
			continue
		}
		found = true
		if upd.Email != nil {
			records[i].Email = *upd.Email
		}
		if upd.Name != nil {
			records[i].Name = *upd.Name
		}
		if upd.Role != nil {
			records[i].Role = string(*upd.Role)
		}
		if upd.Subjects != nil {
			records[i].Subjects = append([]string(nil), (*upd.Subjects)...)
		}
	}
	if !found {
		return sql.ErrNoRows
	}
	return s.writeUsers(records)
}

// Delete removes the matching record. No cascade to class sessions.
func (s *LocalStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readUsers()
	if err != nil {
		return err
	}

	kept := records[:0]
	found := false
	for _, rec := range records {
		if rec.ID == id {
			found = true
			continue
		}
		kept = append(kept, rec)
	}
	if !found {
		return sql.ErrNoRows
	}
	return s.writeUsers(kept)
}

// SetPassword overwrites the stored password; nil re-enters pending setup.
func (s *LocalStore) SetPassword(ctx context.Context, id string, password *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readUsers()
	if err != nil {
		return err
	}

	found := false
	for i := range records {
		if records[i].ID == id {
			records[i].Password = password
			found = true
		}
	}
	if !found {
		return sql.ErrNoRows
	}
	return s.writeUsers(records)
}

// ListByStudent filters the schedule blob by student id, preserving order.
func (s *LocalStore) ListByStudent(ctx context.Context, studentID string) ([]models.ClassSession, error) {
	return s.filterSessions(func(cs models.ClassSession) bool { return cs.StudentID == studentID })
}

// ListByTeacher filters the schedule blob by teacher id, preserving order.
func (s *LocalStore) ListByTeacher(ctx context.Context, teacherID string) ([]models.ClassSession, error) {
	return s.filterSessions(func(cs models.ClassSession) bool { return cs.TeacherID == teacherID })
}

func (s *LocalStore) filterSessions(keep func(models.ClassSession) bool) ([]models.ClassSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions, err := s.readSessions()
	if err != nil {
		return nil, err
	}
	var matched []models.ClassSession
	for _, cs := range sessions {
		if keep(cs) {
			matched = append(matched, cs)
		}
	}
	return matched, nil
}
