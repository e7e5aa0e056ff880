package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnrollmentRepositoryEnrollIsIdempotent(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	insert := regexp.QuoteMeta(`INSERT INTO course_students (course_id, student_id, enrolled_at)`)

	mock.ExpectExec(insert).
		WithArgs("course-1", "stu-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Enroll(context.Background(), "course-1", "stu-1"))

	// Second enroll hits the conflict clause: zero rows, still no error.
	mock.ExpectExec(insert).
		WithArgs("course-1", "stu-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, repo.Enroll(context.Background(), "course-1", "stu-1"))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryIsEnrolled(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	query := regexp.QuoteMeta(`SELECT 1 FROM course_students WHERE course_id = $1 AND student_id = $2 LIMIT 1`)

	mock.ExpectQuery(query).
		WithArgs("course-1", "stu-1").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	enrolled, err := repo.IsEnrolled(context.Background(), "course-1", "stu-1")
	require.NoError(t, err)
	assert.True(t, enrolled)

	mock.ExpectQuery(query).
		WithArgs("course-1", "stu-2").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))
	enrolled, err = repo.IsEnrolled(context.Background(), "course-1", "stu-2")
	require.NoError(t, err)
	assert.False(t, enrolled)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryListCoursesByStudent(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	rows := sqlmock.NewRows([]string{"id", "owner_id", "subject_id", "title", "slug", "overview", "created_at", "updated_at", "subject_title", "owner_name", "total_modules"}).
		AddRow("course-1", "user-1", "sub-1", "Go Basics", "go-basics", "intro", time.Now(), time.Now(), "Programming", "Ada", 3)
	mock.ExpectQuery(`JOIN course_students cs ON cs.course_id = c.id`).
		WithArgs("stu-1").
		WillReturnRows(rows)

	courses, err := repo.ListCoursesByStudent(context.Background(), "stu-1")
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, 3, courses[0].TotalModules)
	require.NoError(t, mock.ExpectationsWereMet())
}
