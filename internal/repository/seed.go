package repository

import "github.com/edufy-app/roster-api/internal/models"

func strPtr(s string) *string { return &s }

// SeedUsers returns the initial account fixtures. The admin record is first;
// student@example.com and teacher@example.com start in the pending-setup
// state so the first-login flow can be exercised out of the box.
func SeedUsers() []models.User {
	return []models.User{
		{ID: "admin1", Email: "Admin", Role: models.RoleAdmin, Name: "System Admin", Password: strPtr("Iamadmin2626")},
		{ID: "s1", Email: "student@example.com", Role: models.RoleStudent, Name: "Jane Smith", Password: nil, Subjects: []string{"Mathematics", "English"}},
		{ID: "t1", Email: "teacher@example.com", Role: models.RoleTeacher, Name: "John Doe", Password: nil, Subjects: []string{"Mathematics", "Physics"}},
		{ID: "s2", Email: "alex@example.com", Role: models.RoleStudent, Name: "Alex Johnson", Password: strPtr("password123"), Subjects: []string{"Physics", "Chemistry"}},
		{ID: "t2", Email: "sarah@example.com", Role: models.RoleTeacher, Name: "Sarah Williams", Password: strPtr("password123"), Subjects: []string{"English", "Biology"}},
	}
}

// SeedSessions returns the initial class session fixtures.
func SeedSessions() []models.ClassSession {
	return []models.ClassSession{
		{ID: "c1", StudentID: "s1", TeacherID: "t1", StudentName: "Jane Smith", TeacherName: "John Doe", Subject: "Mathematics", Day: "Monday", Date: "2026-02-23", Time: "10:00 AM"},
		{ID: "c2", StudentID: "s1", TeacherID: "t2", StudentName: "Jane Smith", TeacherName: "Sarah Williams", Subject: "English", Day: "Wednesday", Date: "2026-02-25", Time: "02:00 PM"},
		{ID: "c3", StudentID: "s1", TeacherID: "t1", StudentName: "Jane Smith", TeacherName: "John Doe", Subject: "Mathematics", Day: "Friday", Date: "2026-02-27", Time: "11:00 AM"},
		{ID: "c4", StudentID: "s2", TeacherID: "t1", StudentName: "Alex Johnson", TeacherName: "John Doe", Subject: "Physics", Day: "Tuesday", Date: "2026-02-24", Time: "09:00 AM"},
		{ID: "c5", StudentID: "s2", TeacherID: "t2", StudentName: "Alex Johnson", TeacherName: "Sarah Williams", Subject: "Chemistry", Day: "Thursday", Date: "2026-02-26", Time: "04:00 PM"},
	}
}
