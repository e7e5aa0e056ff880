package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kkampardi/educa-coursware/internal/models"
	appErrors "github.com/kkampardi/educa-coursware/pkg/errors"
)

type mockCourseRepo struct {
	courses map[string]*models.Course
	slugs   map[string]string
	deleted []string
	updated *models.Course
}

func (m *mockCourseRepo) List(ctx context.Context, filter models.CourseFilter) ([]models.CourseDetail, int, error) {
	var list []models.CourseDetail
	for _, c := range m.courses {
		if filter.OwnerID != "" && c.OwnerID != filter.OwnerID {
			continue
		}
		if filter.SubjectID != "" && c.SubjectID != filter.SubjectID {
			continue
		}
		list = append(list, models.CourseDetail{Course: *c})
	}
	return list, len(list), nil
}

func (m *mockCourseRepo) FindByID(ctx context.Context, id string) (*models.Course, error) {
	if c, ok := m.courses[id]; ok {
		return c, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockCourseRepo) FindDetailBySlug(ctx context.Context, slug string) (*models.CourseDetail, error) {
	for _, c := range m.courses {
		if c.Slug == slug {
			return &models.CourseDetail{Course: *c}, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockCourseRepo) ExistsBySlug(ctx context.Context, slug, excludeID string) (bool, error) {
	id, ok := m.slugs[slug]
	if !ok {
		return false, nil
	}
	return id != excludeID, nil
}

func (m *mockCourseRepo) Create(ctx context.Context, course *models.Course) error {
	if m.courses == nil {
		m.courses = make(map[string]*models.Course)
	}
	if m.slugs == nil {
		m.slugs = make(map[string]string)
	}
	if course.ID == "" {
		course.ID = "new-course"
	}
	m.courses[course.ID] = course
	m.slugs[course.Slug] = course.ID
	return nil
}

func (m *mockCourseRepo) Update(ctx context.Context, course *models.Course) error {
	m.courses[course.ID] = course
	m.updated = course
	return nil
}

func (m *mockCourseRepo) Delete(ctx context.Context, id string) error {
	delete(m.courses, id)
	m.deleted = append(m.deleted, id)
	return nil
}

type mockSubjectReader struct{}

func (m *mockSubjectReader) FindByID(ctx context.Context, id string) (*models.Subject, error) {
	if id == "missing" {
		return nil, sql.ErrNoRows
	}
	return &models.Subject{ID: id, Title: "Programming", Slug: "programming"}, nil
}

const validSubjectID = "a3bb189e-8bf9-4888-9912-ace4e6543002"

func TestCourseServiceCreate(t *testing.T) {
	repo := &mockCourseRepo{}
	svc := NewCourseService(repo, &mockSubjectReader{}, validator.New(), zap.NewNop())

	course, err := svc.Create(context.Background(), "owner-1", models.CreateCourseRequest{
		SubjectID: validSubjectID,
		Title:     "Go for Beginners",
		Slug:      "go-for-beginners",
		Overview:  "An introduction.",
	})
	require.NoError(t, err)
	assert.Equal(t, "owner-1", course.OwnerID)
	assert.Equal(t, "go-for-beginners", course.Slug)
}

func TestCourseServiceCreateSlugConflict(t *testing.T) {
	repo := &mockCourseRepo{
		courses: map[string]*models.Course{"c1": {ID: "c1", Slug: "go-for-beginners"}},
		slugs:   map[string]string{"go-for-beginners": "c1"},
	}
	svc := NewCourseService(repo, &mockSubjectReader{}, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), "owner-1", models.CreateCourseRequest{
		SubjectID: validSubjectID,
		Title:     "Go for Beginners",
		Slug:      "go-for-beginners",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestCourseServiceUpdateForeignCourse(t *testing.T) {
	repo := &mockCourseRepo{
		courses: map[string]*models.Course{"c1": {ID: "c1", OwnerID: "owner-1", Slug: "go"}},
		slugs:   map[string]string{"go": "c1"},
	}
	svc := NewCourseService(repo, &mockSubjectReader{}, validator.New(), zap.NewNop())

	_, err := svc.Update(context.Background(), "intruder", "c1", models.UpdateCourseRequest{
		SubjectID: validSubjectID,
		Title:     "Hijacked",
		Slug:      "go",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	assert.Nil(t, repo.updated)
}

func TestCourseServiceUpdateMissingCourse(t *testing.T) {
	svc := NewCourseService(&mockCourseRepo{}, &mockSubjectReader{}, validator.New(), zap.NewNop())

	_, err := svc.Update(context.Background(), "owner-1", "nope", models.UpdateCourseRequest{
		SubjectID: validSubjectID,
		Title:     "Title",
		Slug:      "slug",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestCourseServiceDeleteForeignCourse(t *testing.T) {
	repo := &mockCourseRepo{
		courses: map[string]*models.Course{"c1": {ID: "c1", OwnerID: "owner-1"}},
	}
	svc := NewCourseService(repo, &mockSubjectReader{}, validator.New(), zap.NewNop())

	err := svc.Delete(context.Background(), "intruder", "c1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.deleted)

	// the untouched course still lists for its real owner
	owned, total, err := svc.ListOwned(context.Background(), "owner-1", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, owned, 1)
}

func TestCourseServiceGetBySlug(t *testing.T) {
	repo := &mockCourseRepo{
		courses: map[string]*models.Course{"c1": {ID: "c1", Slug: "go", Title: "Go"}},
	}
	svc := NewCourseService(repo, &mockSubjectReader{}, validator.New(), zap.NewNop())

	detail, err := svc.GetBySlug(context.Background(), "go")
	require.NoError(t, err)
	assert.Equal(t, "Go", detail.Title)

	_, err = svc.GetBySlug(context.Background(), "nope")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
