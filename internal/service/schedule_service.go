package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/edufy-app/roster-api/internal/models"
)

type scheduleBackend interface {
	SessionsByStudent(ctx context.Context, studentID string) ([]models.ClassSession, error)
	SessionsByTeacher(ctx context.Context, teacherID string) ([]models.ClassSession, error)
}

// ScheduleService answers the read-only schedule queries behind the
// student and teacher dashboards.
type ScheduleService struct {
	backend scheduleBackend
	logger  *zap.Logger
}

// NewScheduleService creates a schedule service.
func NewScheduleService(backend scheduleBackend, logger *zap.Logger) *ScheduleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{backend: backend, logger: logger}
}

// ForStudent lists a student's booked sessions. An empty roster is a valid
// result, not an error.
func (s *ScheduleService) ForStudent(ctx context.Context, studentID string) ([]models.ClassSession, error) {
	sessions, err := s.backend.SessionsByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if sessions == nil {
		sessions = []models.ClassSession{}
	}
	return sessions, nil
}

// ForTeacher lists the sessions a teacher gives.
func (s *ScheduleService) ForTeacher(ctx context.Context, teacherID string) ([]models.ClassSession, error) {
	sessions, err := s.backend.SessionsByTeacher(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	if sessions == nil {
		sessions = []models.ClassSession{}
	}
	return sessions, nil
}
