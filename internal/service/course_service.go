package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/kkampardi/educa-coursware/internal/models"
	appErrors "github.com/kkampardi/educa-coursware/pkg/errors"
)

type courseRepository interface {
	List(ctx context.Context, filter models.CourseFilter) ([]models.CourseDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.Course, error)
	FindDetailBySlug(ctx context.Context, slug string) (*models.CourseDetail, error)
	ExistsBySlug(ctx context.Context, slug, excludeID string) (bool, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id string) error
}

type courseSubjectRepository interface {
	FindByID(ctx context.Context, id string) (*models.Subject, error)
}

// CourseService manages instructor-owned course authoring.
type CourseService struct {
	repo      courseRepository
	subjects  courseSubjectRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCourseService constructs a CourseService instance.
func NewCourseService(repo courseRepository, subjects courseSubjectRepository, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &CourseService{repo: repo, subjects: subjects, validator: validate, logger: logger}
}

// List returns courses matching the filter plus the total count.
func (s *CourseService) List(ctx context.Context, filter models.CourseFilter) ([]models.CourseDetail, int, error) {
	courses, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	return courses, total, nil
}

// ListOwned returns the courses belonging to the given instructor.
func (s *CourseService) ListOwned(ctx context.Context, ownerID string, page, pageSize int) ([]models.CourseDetail, int, error) {
	return s.List(ctx, models.CourseFilter{OwnerID: ownerID, Page: page, PageSize: pageSize})
}

// GetBySlug returns detail for a single course.
func (s *CourseService) GetBySlug(ctx context.Context, slug string) (*models.CourseDetail, error) {
	course, err := s.repo.FindDetailBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch course")
	}
	return course, nil
}

// Create records a new course owned by the requesting instructor.
func (s *CourseService) Create(ctx context.Context, ownerID string, req models.CreateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid course payload")
	}

	if _, err := s.subjects.FindByID(ctx, req.SubjectID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "subject does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check subject")
	}

	taken, err := s.repo.ExistsBySlug(ctx, req.Slug, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check slug")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrConflict, "course slug already in use")
	}

	course := &models.Course{
		OwnerID:   ownerID,
		SubjectID: req.SubjectID,
		Title:     req.Title,
		Slug:      req.Slug,
		Overview:  req.Overview,
	}
	if err := s.repo.Create(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create course")
	}

	s.logger.Info("course created",
		zap.String("course_id", course.ID),
		zap.String("owner_id", ownerID),
		zap.String("slug", course.Slug))
	return course, nil
}

// Update modifies a course after verifying the caller owns it.
func (s *CourseService) Update(ctx context.Context, ownerID, courseID string, req models.UpdateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid course payload")
	}

	course, err := s.ownedCourse(ctx, ownerID, courseID)
	if err != nil {
		return nil, err
	}

	if _, err := s.subjects.FindByID(ctx, req.SubjectID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "subject does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check subject")
	}

	taken, err := s.repo.ExistsBySlug(ctx, req.Slug, course.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check slug")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrConflict, "course slug already in use")
	}

	course.SubjectID = req.SubjectID
	course.Title = req.Title
	course.Slug = req.Slug
	course.Overview = req.Overview
	if err := s.repo.Update(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update course")
	}
	return course, nil
}

// Delete removes an owned course and everything under it.
func (s *CourseService) Delete(ctx context.Context, ownerID, courseID string) error {
	course, err := s.ownedCourse(ctx, ownerID, courseID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, course.ID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete course")
	}
	s.logger.Info("course deleted", zap.String("course_id", course.ID), zap.String("owner_id", ownerID))
	return nil
}

// ownedCourse loads a course and enforces ownership. A missing course is
// reported as not found; an existing course with a different owner is
// forbidden, so the two cases stay distinguishable to clients.
func (s *CourseService) ownedCourse(ctx context.Context, ownerID, courseID string) (*models.Course, error) {
	course, err := s.repo.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch course")
	}
	if course.OwnerID != ownerID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "course belongs to another instructor")
	}
	return course, nil
}
