package service

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kkampardi/educa-coursware/internal/models"
	appErrors "github.com/kkampardi/educa-coursware/pkg/errors"
)

func newExportFixture() (*mockCourseRepo, *mockModuleRepo, *mockContentRepo, *mockEnrollmentChecker) {
	courses := &mockCourseRepo{courses: map[string]*models.Course{
		"c1": {ID: "c1", OwnerID: "owner-1", Title: "Go for Beginners", Slug: "go-for-beginners"},
	}}
	modules := &mockModuleRepo{modules: map[string]*models.Module{
		"m1": {ID: "m1", CourseID: "c1", Title: "Basics", Description: "Syntax and tooling", Order: 0},
	}}
	contents := &mockContentRepo{
		contents: map[string]*models.Content{
			"con-1": {ID: "con-1", ModuleID: "m1", ItemKind: models.KindText, ItemID: "i1", Order: 0},
		},
		items: map[string]*models.Item{
			"i1": {ID: "i1", Title: "Hello World", Payload: "package main"},
		},
	}
	enrollments := &mockEnrollmentChecker{enrolled: map[string]bool{}}
	return courses, modules, contents, enrollments
}

func TestExportServiceSyllabusCSV(t *testing.T) {
	courses, modules, contents, enrollments := newExportFixture()
	svc := NewExportService(courses, modules, contents, enrollments, zap.NewNop())

	file, err := svc.Syllabus(context.Background(), "owner-1", models.RoleInstructor, "go-for-beginners", FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "text/csv", file.ContentType)
	assert.Equal(t, "go-for-beginners-syllabus.csv", file.Filename)

	body := string(file.Data)
	assert.True(t, strings.Contains(body, "Basics"))
	assert.True(t, strings.Contains(body, "Hello World"))
	assert.True(t, strings.Contains(body, "text"))
}

func TestExportServiceSyllabusPDF(t *testing.T) {
	courses, modules, contents, enrollments := newExportFixture()
	svc := NewExportService(courses, modules, contents, enrollments, zap.NewNop())

	file, err := svc.Syllabus(context.Background(), "owner-1", models.RoleInstructor, "go-for-beginners", FormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, bytes.HasPrefix(file.Data, []byte("%PDF")))
}

func TestExportServiceSyllabusRequiresEnrollment(t *testing.T) {
	courses, modules, contents, enrollments := newExportFixture()
	svc := NewExportService(courses, modules, contents, enrollments, zap.NewNop())

	_, err := svc.Syllabus(context.Background(), "student-1", models.RoleStudent, "go-for-beginners", FormatCSV)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	enrollments.enrolled["c1:student-1"] = true
	_, err = svc.Syllabus(context.Background(), "student-1", models.RoleStudent, "go-for-beginners", FormatCSV)
	require.NoError(t, err)
}

func TestExportServiceUnknownFormat(t *testing.T) {
	courses, modules, contents, enrollments := newExportFixture()
	svc := NewExportService(courses, modules, contents, enrollments, zap.NewNop())

	_, err := svc.Syllabus(context.Background(), "owner-1", models.RoleInstructor, "go-for-beginners", ExportFormat("xlsx"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
