package service

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/kkampardi/educa-coursware/internal/models"
	appErrors "github.com/kkampardi/educa-coursware/pkg/errors"
	"github.com/kkampardi/educa-coursware/pkg/export"
)

// ExportFormat names a supported syllabus export format.
type ExportFormat string

const (
	FormatCSV ExportFormat = "csv"
	FormatPDF ExportFormat = "pdf"
)

// ExportFile is a rendered export ready to stream to the client.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

type exportCourseRepository interface {
	FindDetailBySlug(ctx context.Context, slug string) (*models.CourseDetail, error)
}

type exportModuleRepository interface {
	ListByCourse(ctx context.Context, courseID string) ([]models.ModuleDetail, error)
}

type exportContentRepository interface {
	ListByModule(ctx context.Context, moduleID string) ([]models.ContentDetail, error)
}

type exportEnrollmentRepository interface {
	IsEnrolled(ctx context.Context, courseID, studentID string) (bool, error)
}

// ExportService renders course syllabi into downloadable documents.
type ExportService struct {
	courses     exportCourseRepository
	modules     exportModuleRepository
	contents    exportContentRepository
	enrollments exportEnrollmentRepository
	csv         *export.CSVRenderer
	pdf         *export.PDFRenderer
	logger      *zap.Logger
}

// NewExportService constructs an ExportService instance.
func NewExportService(courses exportCourseRepository, modules exportModuleRepository, contents exportContentRepository, enrollments exportEnrollmentRepository, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		courses:     courses,
		modules:     modules,
		contents:    contents,
		enrollments: enrollments,
		csv:         export.NewCSVRenderer(),
		pdf:         export.NewPDFRenderer(),
		logger:      logger,
	}
}

// Syllabus renders the course outline in the requested format. The owner
// always has access; a student must be enrolled.
func (s *ExportService) Syllabus(ctx context.Context, userID string, role models.UserRole, courseSlug string, format ExportFormat) (*ExportFile, error) {
	if format != FormatCSV && format != FormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}

	course, err := s.courses.FindDetailBySlug(ctx, courseSlug)
	if err != nil {
		if isNoRows(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch course")
	}

	if course.OwnerID != userID {
		if role != models.RoleStudent {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "course belongs to another instructor")
		}
		enrolled, err := s.enrollments.IsEnrolled(ctx, course.ID, userID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check enrollment")
		}
		if !enrolled {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "not enrolled in this course")
		}
	}

	modules, err := s.modules.ListByCourse(ctx, course.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list modules")
	}

	switch format {
	case FormatPDF:
		return s.renderPDF(ctx, course, modules)
	default:
		return s.renderCSV(ctx, course, modules)
	}
}

func (s *ExportService) renderCSV(ctx context.Context, course *models.CourseDetail, modules []models.ModuleDetail) (*ExportFile, error) {
	table := export.Table{
		Headers: []string{"Module", "Title", "Description", "Content", "Type"},
	}
	for _, module := range modules {
		contents, err := s.contents.ListByModule(ctx, module.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list contents")
		}
		if len(contents) == 0 {
			table.Rows = append(table.Rows, []string{
				strconv.Itoa(module.Order + 1), module.Title, module.Description, "", "",
			})
			continue
		}
		for _, content := range contents {
			table.Rows = append(table.Rows, []string{
				strconv.Itoa(module.Order + 1), module.Title, module.Description,
				content.ItemTitle, string(content.ItemKind),
			})
		}
	}

	data, err := s.csv.Render(table)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
	}
	return &ExportFile{
		Filename:    fmt.Sprintf("%s-syllabus.csv", course.Slug),
		ContentType: "text/csv",
		Data:        data,
	}, nil
}

func (s *ExportService) renderPDF(ctx context.Context, course *models.CourseDetail, modules []models.ModuleDetail) (*ExportFile, error) {
	sections := make([]export.OutlineSection, 0, len(modules))
	for _, module := range modules {
		contents, err := s.contents.ListByModule(ctx, module.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list contents")
		}
		section := export.OutlineSection{Title: module.Title, Description: module.Description}
		for _, content := range contents {
			section.Entries = append(section.Entries, fmt.Sprintf("%s (%s)", content.ItemTitle, content.ItemKind))
		}
		sections = append(sections, section)
	}

	subtitle := fmt.Sprintf("%s - %s", course.SubjectTitle, course.OwnerName)
	data, err := s.pdf.RenderOutline(course.Title, subtitle, sections)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
	}
	return &ExportFile{
		Filename:    fmt.Sprintf("%s-syllabus.pdf", course.Slug),
		ContentType: "application/pdf",
		Data:        data,
	}, nil
}
