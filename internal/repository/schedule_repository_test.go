package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newScheduleRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func sessionRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "student_id", "teacher_id", "student_name", "teacher_name", "subject", "day", "date", "time"})
}

func TestScheduleRepositoryListByStudent(t *testing.T) {
	db, mock, cleanup := newScheduleRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	rows := sessionRows().
		AddRow("c1", "s1", "t1", "Jane Smith", "John Doe", "Mathematics", "Monday", "2026-02-23", "10:00 AM").
		AddRow("c2", "s1", "t2", "Jane Smith", "Sarah Williams", "English", "Wednesday", "2026-02-25", "02:00 PM")
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, student_id, teacher_id, student_name, teacher_name, subject, day, date, "time" FROM class_sessions WHERE student_id = $1 ORDER BY id`)).
		WithArgs("s1").
		WillReturnRows(rows)

	sessions, err := repo.ListByStudent(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "10:00 AM", sessions[0].Time)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryListByTeacherEmpty(t *testing.T) {
	db, mock, cleanup := newScheduleRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectQuery("SELECT .* FROM class_sessions WHERE teacher_id").
		WithArgs("t9").
		WillReturnRows(sessionRows())

	sessions, err := repo.ListByTeacher(context.Background(), "t9")
	require.NoError(t, err)
	assert.Empty(t, sessions)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryBulkInsert(t *testing.T) {
	db, mock, cleanup := newScheduleRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	fixtures := SeedSessions()[:2]

	mock.ExpectBegin()
	for range fixtures {
		mock.ExpectExec("INSERT INTO class_sessions").
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectCommit()

	require.NoError(t, repo.BulkInsert(context.Background(), fixtures))
	assert.NoError(t, mock.ExpectationsWereMet())
}
