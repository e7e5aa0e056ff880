package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/kkampardi/educa-coursware/internal/models"
	appErrors "github.com/kkampardi/educa-coursware/pkg/errors"
)

type enrollmentRepository interface {
	Enroll(ctx context.Context, courseID, studentID string) error
	IsEnrolled(ctx context.Context, courseID, studentID string) (bool, error)
	ListCoursesByStudent(ctx context.Context, studentID string) ([]models.CourseDetail, error)
	CountByCourse(ctx context.Context, courseID string) (int, error)
}

type enrollmentCourseRepository interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
}

// EnrollmentService manages student enrollment in courses.
type EnrollmentService struct {
	repo    enrollmentRepository
	courses enrollmentCourseRepository
	metrics *MetricsService
	logger  *zap.Logger
}

// NewEnrollmentService constructs an EnrollmentService instance. Metrics may
// be nil.
func NewEnrollmentService(repo enrollmentRepository, courses enrollmentCourseRepository, metrics *MetricsService, logger *zap.Logger) *EnrollmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{repo: repo, courses: courses, metrics: metrics, logger: logger}
}

// Enroll registers a student on a course. Enrolling twice is a no-op, so
// clients can retry the request safely.
func (s *EnrollmentService) Enroll(ctx context.Context, studentID, courseID string) error {
	if _, err := s.courses.FindByID(ctx, courseID); err != nil {
		if isNoRows(err) {
			return appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch course")
	}

	if err := s.repo.Enroll(ctx, courseID, studentID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enroll")
	}

	s.metrics.RecordEnrollment()
	s.logger.Info("student enrolled",
		zap.String("course_id", courseID),
		zap.String("student_id", studentID))
	return nil
}

// ListMyCourses returns the courses the student is enrolled in, most recent
// enrollment first.
func (s *EnrollmentService) ListMyCourses(ctx context.Context, studentID string) ([]models.CourseDetail, error) {
	courses, err := s.repo.ListCoursesByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrolled courses")
	}
	return courses, nil
}

// IsEnrolled reports whether the student is enrolled in the course.
func (s *EnrollmentService) IsEnrolled(ctx context.Context, courseID, studentID string) (bool, error) {
	enrolled, err := s.repo.IsEnrolled(ctx, courseID, studentID)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check enrollment")
	}
	return enrolled, nil
}

// CountByCourse returns the number of students enrolled in a course.
func (s *EnrollmentService) CountByCourse(ctx context.Context, courseID string) (int, error) {
	count, err := s.repo.CountByCourse(ctx, courseID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count enrollments")
	}
	return count, nil
}
