package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/kkampardi/educa-coursware/internal/models"
	appErrors "github.com/kkampardi/educa-coursware/pkg/errors"
)

type moduleRepository interface {
	ListByCourse(ctx context.Context, courseID string) ([]models.ModuleDetail, error)
	FindByID(ctx context.Context, id string) (*models.Module, error)
	OwnerOf(ctx context.Context, moduleID string) (string, error)
	Create(ctx context.Context, module *models.Module) error
	Update(ctx context.Context, module *models.Module) error
	Delete(ctx context.Context, id string) error
	BulkReorder(ctx context.Context, ownerID string, orders map[string]int) (int, error)
}

type moduleCourseRepository interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
}

type moduleEnrollmentRepository interface {
	IsEnrolled(ctx context.Context, courseID, studentID string) (bool, error)
}

// ModuleService manages course modules: the ordered sections of a course.
type ModuleService struct {
	repo        moduleRepository
	courses     moduleCourseRepository
	enrollments moduleEnrollmentRepository
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewModuleService constructs a ModuleService instance.
func NewModuleService(repo moduleRepository, courses moduleCourseRepository, enrollments moduleEnrollmentRepository, validate *validator.Validate, logger *zap.Logger) *ModuleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ModuleService{
		repo:        repo,
		courses:     courses,
		enrollments: enrollments,
		validator:   validate,
		logger:      logger,
	}
}

// ListByCourse returns the course outline. The owner always sees it; a
// student must be enrolled.
func (s *ModuleService) ListByCourse(ctx context.Context, userID string, role models.UserRole, courseID string) ([]models.ModuleDetail, error) {
	course, err := s.courses.FindByID(ctx, courseID)
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
		enrolled, err := s.enrollments.IsEnrolled(ctx, courseID, userID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check enrollment")
		}
		if !enrolled {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "not enrolled in this course")
		}
	}

	modules, err := s.repo.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list modules")
	}
	return modules, nil
}

// Create appends a module to the end of an owned course.
func (s *ModuleService) Create(ctx context.Context, ownerID, courseID string, req models.CreateModuleRequest) (*models.Module, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid module payload")
	}

	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		if isNoRows(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch course")
	}
	if course.OwnerID != ownerID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "course belongs to another instructor")
	}

	module := &models.Module{
		CourseID:    courseID,
		Title:       req.Title,
		Description: req.Description,
	}
	if err := s.repo.Create(ctx, module); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create module")
	}

	s.logger.Info("module created",
		zap.String("module_id", module.ID),
		zap.String("course_id", courseID),
		zap.Int("order", module.Order))
	return module, nil
}

// Update modifies an owned module's title and description. Order is not
// editable here; positions change only through Reorder.
func (s *ModuleService) Update(ctx context.Context, ownerID, moduleID string, req models.UpdateModuleRequest) (*models.Module, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid module payload")
	}

	module, err := s.ownedModule(ctx, ownerID, moduleID)
	if err != nil {
		return nil, err
	}

	module.Title = req.Title
	module.Description = req.Description
	if err := s.repo.Update(ctx, module); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update module")
	}
	return module, nil
}

// Delete removes an owned module together with its contents and their items.
func (s *ModuleService) Delete(ctx context.Context, ownerID, moduleID string) error {
	module, err := s.ownedModule(ctx, ownerID, moduleID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, module.ID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete module")
	}
	s.logger.Info("module deleted", zap.String("module_id", module.ID), zap.String("course_id", module.CourseID))
	return nil
}

// Reorder applies the posted module positions. Entries naming modules the
// caller does not own are skipped without failing the request, matching the
// drag-and-drop client which treats the save as fire-and-forget.
func (s *ModuleService) Reorder(ctx context.Context, ownerID string, req models.ReorderRequest) (*models.ReorderResult, error) {
	updated, err := s.repo.BulkReorder(ctx, ownerID, req)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reorder modules")
	}
	if updated < len(req) {
		s.logger.Warn("module reorder skipped unowned entries",
			zap.String("owner_id", ownerID),
			zap.Int("requested", len(req)),
			zap.Int("updated", updated))
	}
	return &models.ReorderResult{Updated: updated}, nil
}

func (s *ModuleService) ownedModule(ctx context.Context, ownerID, moduleID string) (*models.Module, error) {
	module, err := s.repo.FindByID(ctx, moduleID)
	if err != nil {
		if isNoRows(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "module not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch module")
	}

	owner, err := s.repo.OwnerOf(ctx, module.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve module owner")
	}
	if owner != ownerID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "module belongs to another instructor")
	}
	return module, nil
}
