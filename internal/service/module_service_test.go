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

type mockModuleRepo struct {
	modules   map[string]*models.Module
	owners    map[string]string
	deleted   []string
	reordered map[string]int
	// owner the reorder was attempted with
	reorderOwner string
}

func (m *mockModuleRepo) ListByCourse(ctx context.Context, courseID string) ([]models.ModuleDetail, error) {
	var list []models.ModuleDetail
	for _, mod := range m.modules {
		if mod.CourseID == courseID {
			list = append(list, models.ModuleDetail{Module: *mod})
		}
	}
	return list, nil
}

func (m *mockModuleRepo) FindByID(ctx context.Context, id string) (*models.Module, error) {
	if mod, ok := m.modules[id]; ok {
		return mod, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockModuleRepo) OwnerOf(ctx context.Context, moduleID string) (string, error) {
	if owner, ok := m.owners[moduleID]; ok {
		return owner, nil
	}
	return "", sql.ErrNoRows
}

func (m *mockModuleRepo) Create(ctx context.Context, module *models.Module) error {
	if m.modules == nil {
		m.modules = make(map[string]*models.Module)
	}
	if module.ID == "" {
		module.ID = "new-module"
	}
	module.Order = len(m.modules)
	m.modules[module.ID] = module
	return nil
}

func (m *mockModuleRepo) Update(ctx context.Context, module *models.Module) error {
	m.modules[module.ID] = module
	return nil
}

func (m *mockModuleRepo) Delete(ctx context.Context, id string) error {
	delete(m.modules, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockModuleRepo) BulkReorder(ctx context.Context, ownerID string, orders map[string]int) (int, error) {
	m.reorderOwner = ownerID
	m.reordered = orders
	updated := 0
	for id, pos := range orders {
		if m.owners[id] != ownerID {
			continue
		}
		if mod, ok := m.modules[id]; ok {
			mod.Order = pos
			updated++
		}
	}
	return updated, nil
}

type mockCourseReader struct {
	courses map[string]*models.Course
}

func (m *mockCourseReader) FindByID(ctx context.Context, id string) (*models.Course, error) {
	if c, ok := m.courses[id]; ok {
		return c, nil
	}
	return nil, sql.ErrNoRows
}

type mockEnrollmentChecker struct {
	enrolled map[string]bool
}

func (m *mockEnrollmentChecker) IsEnrolled(ctx context.Context, courseID, studentID string) (bool, error) {
	return m.enrolled[courseID+":"+studentID], nil
}

func newModuleFixture() (*mockModuleRepo, *mockCourseReader, *mockEnrollmentChecker) {
	repo := &mockModuleRepo{
		modules: map[string]*models.Module{
			"m1": {ID: "m1", CourseID: "c1", Title: "Basics", Order: 0},
			"m2": {ID: "m2", CourseID: "c1", Title: "Advanced", Order: 1},
		},
		owners: map[string]string{"m1": "owner-1", "m2": "owner-1"},
	}
	courses := &mockCourseReader{courses: map[string]*models.Course{
		"c1": {ID: "c1", OwnerID: "owner-1"},
	}}
	enrollments := &mockEnrollmentChecker{enrolled: map[string]bool{}}
	return repo, courses, enrollments
}

func TestModuleServiceCreateAppends(t *testing.T) {
	repo, courses, enrollments := newModuleFixture()
	svc := NewModuleService(repo, courses, enrollments, validator.New(), zap.NewNop())

	module, err := svc.Create(context.Background(), "owner-1", "c1", models.CreateModuleRequest{Title: "Closing"})
	require.NoError(t, err)
	assert.Equal(t, 2, module.Order)
}

func TestModuleServiceCreateForeignCourse(t *testing.T) {
	repo, courses, enrollments := newModuleFixture()
	svc := NewModuleService(repo, courses, enrollments, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), "intruder", "c1", models.CreateModuleRequest{Title: "Sneaky"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	// list for the real owner is unchanged
	list, err := svc.ListByCourse(context.Background(), "owner-1", models.RoleInstructor, "c1")
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestModuleServiceCreateMissingCourse(t *testing.T) {
	repo, courses, enrollments := newModuleFixture()
	svc := NewModuleService(repo, courses, enrollments, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), "owner-1", "nope", models.CreateModuleRequest{Title: "Ghost"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestModuleServiceListRequiresEnrollmentForStudents(t *testing.T) {
	repo, courses, enrollments := newModuleFixture()
	svc := NewModuleService(repo, courses, enrollments, validator.New(), zap.NewNop())

	_, err := svc.ListByCourse(context.Background(), "student-1", models.RoleStudent, "c1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	enrollments.enrolled["c1:student-1"] = true
	list, err := svc.ListByCourse(context.Background(), "student-1", models.RoleStudent, "c1")
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestModuleServiceReorderSkipsUnowned(t *testing.T) {
	repo, courses, enrollments := newModuleFixture()
	repo.modules["m3"] = &models.Module{ID: "m3", CourseID: "c2", Title: "Foreign", Order: 0}
	repo.owners["m3"] = "other-owner"
	svc := NewModuleService(repo, courses, enrollments, validator.New(), zap.NewNop())

	result, err := svc.Reorder(context.Background(), "owner-1", models.ReorderRequest{
		"m1": 1,
		"m2": 0,
		"m3": 2,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Updated)
	assert.Equal(t, 1, repo.modules["m1"].Order)
	assert.Equal(t, 0, repo.modules["m2"].Order)
	assert.Equal(t, 0, repo.modules["m3"].Order)
}

func TestModuleServiceUpdateKeepsOrder(t *testing.T) {
	repo, courses, enrollments := newModuleFixture()
	svc := NewModuleService(repo, courses, enrollments, validator.New(), zap.NewNop())

	module, err := svc.Update(context.Background(), "owner-1", "m2", models.UpdateModuleRequest{
		Title:       "Renamed",
		Description: "New description",
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", module.Title)
	assert.Equal(t, 1, module.Order)
}

func TestModuleServiceDeleteForeignModule(t *testing.T) {
	repo, courses, enrollments := newModuleFixture()
	svc := NewModuleService(repo, courses, enrollments, validator.New(), zap.NewNop())

	err := svc.Delete(context.Background(), "intruder", "m1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.deleted)
}
