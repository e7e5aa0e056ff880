package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kkampardi/educa-coursware/internal/models"
)

func TestSubjectRepositoryListWithCourseCounts(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	rows := sqlmock.NewRows([]string{"id", "title", "slug", "total_courses"}).
		AddRow("sub-1", "Mathematics", "mathematics", 2).
		AddRow("sub-2", "Programming", "programming", 0)
	mock.ExpectQuery(`LEFT JOIN courses c ON c.subject_id = s.id`).
		WillReturnRows(rows)

	subjects, err := repo.ListWithCourseCounts(context.Background())
	require.NoError(t, err)
	require.Len(t, subjects, 2)
	assert.Equal(t, 2, subjects[0].TotalCourses)
	assert.Zero(t, subjects[1].TotalCourses)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubjectRepositoryCreateAssignsID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO subjects (id, title, slug)`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	subject := &models.Subject{Title: "History", Slug: "history"}
	require.NoError(t, repo.Create(context.Background(), subject))
	assert.NotEmpty(t, subject.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubjectRepositoryFindBySlugMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, title, slug FROM subjects WHERE slug = $1`)).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "slug"}))

	_, err := repo.FindBySlug(context.Background(), "missing")
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
