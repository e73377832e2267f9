package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/edufy-app/roster-api/internal/models"
)

// ScheduleRepository provides read access to class sessions on PostgreSQL.
// The roster core never creates or mutates sessions; BulkInsert exists only
// for the seeding utility.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository creates a new schedule repository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

const sessionColumns = `id, student_id, teacher_id, student_name, teacher_name, subject, day, date, "time"`

// ListByStudent returns the sessions booked for a student, in stored order.
func (r *ScheduleRepository) ListByStudent(ctx context.Context, studentID string) ([]models.ClassSession, error) {
	query := fmt.Sprintf(`SELECT %s FROM class_sessions WHERE student_id = $1 ORDER BY id`, sessionColumns)
	var sessions []models.ClassSession
	if err := r.db.SelectContext(ctx, &sessions, query, studentID); err != nil {
		return nil, fmt.Errorf("list sessions by student: %w", err)
	}
	return sessions, nil
}

// ListByTeacher returns the sessions taught by a teacher, in stored order.
func (r *ScheduleRepository) ListByTeacher(ctx context.Context, teacherID string) ([]models.ClassSession, error) {
	query := fmt.Sprintf(`SELECT %s FROM class_sessions WHERE teacher_id = $1 ORDER BY id`, sessionColumns)
	var sessions []models.ClassSession
	if err := r.db.SelectContext(ctx, &sessions, query, teacherID); err != nil {
		return nil, fmt.Errorf("list sessions by teacher: %w", err)
	}
	return sessions, nil
}

// BulkInsert stores session fixtures inside a transaction, skipping rows
// that already exist. Used by cmd/seed.
func (r *ScheduleRepository) BulkInsert(ctx context.Context, sessions []models.ClassSession) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin bulk insert sessions: %w", err)
	}

	const query = `INSERT INTO class_sessions (id, student_id, teacher_id, student_name, teacher_name, subject, day, date, "time")
		VALUES (:id, :student_id, :teacher_id, :student_name, :teacher_name, :subject, :day, :date, :time)
		ON CONFLICT (id) DO NOTHING`

	for i := range sessions {
		if _, err := tx.NamedExecContext(ctx, query, sessions[i]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert session %s: %w", sessions[i].ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit bulk insert sessions: %w", err)
	}
	return nil
}
