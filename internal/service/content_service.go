package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/kkampardi/educa-coursware/internal/models"
	appErrors "github.com/kkampardi/educa-coursware/pkg/errors"
)

type contentRepository interface {
	ListByModule(ctx context.Context, moduleID string) ([]models.ContentDetail, error)
	FindByID(ctx context.Context, id string) (*models.Content, error)
	FindItem(ctx context.Context, desc models.KindDescriptor, itemID string) (*models.Item, error)
	OwnerOf(ctx context.Context, contentID string) (string, error)
	CreateWithItem(ctx context.Context, desc models.KindDescriptor, item *models.Item, moduleID string) (*models.Content, error)
	UpdateItem(ctx context.Context, desc models.KindDescriptor, item *models.Item) error
	DeleteWithItem(ctx context.Context, desc models.KindDescriptor, content *models.Content) error
	BulkReorder(ctx context.Context, ownerID string, orders map[string]int) (int, error)
}

type contentModuleRepository interface {
	FindByID(ctx context.Context, id string) (*models.Module, error)
	OwnerOf(ctx context.Context, moduleID string) (string, error)
}

type contentEnrollmentRepository interface {
	IsEnrolled(ctx context.Context, courseID, studentID string) (bool, error)
}

// ContentService manages the typed content items hanging off modules.
type ContentService struct {
	repo        contentRepository
	modules     contentModuleRepository
	enrollments contentEnrollmentRepository
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewContentService constructs a ContentService instance. Metrics may be nil.
func NewContentService(repo contentRepository, modules contentModuleRepository, enrollments contentEnrollmentRepository, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *ContentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ContentService{
		repo:        repo,
		modules:     modules,
		enrollments: enrollments,
		metrics:     metrics,
		validator:   validate,
		logger:      logger,
	}
}

// ListByModule returns the module's contents in display order. The course
// owner always sees them; a student must be enrolled.
func (s *ContentService) ListByModule(ctx context.Context, userID string, role models.UserRole, moduleID string) ([]models.ContentDetail, error) {
	module, err := s.modules.FindByID(ctx, moduleID)
	if err != nil {
		if isNoRows(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "module not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch module")
	}

	owner, err := s.modules.OwnerOf(ctx, module.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve module owner")
	}
	if owner != userID {
		if role != models.RoleStudent {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "module belongs to another instructor")
		}
		enrolled, err := s.enrollments.IsEnrolled(ctx, module.CourseID, userID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check enrollment")
		}
		if !enrolled {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "not enrolled in this course")
		}
	}

	contents, err := s.repo.ListByModule(ctx, moduleID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list contents")
	}
	return contents, nil
}

// Create adds a typed item to an owned module, appending it to the end of
// the module's content order. The kind name comes from the URL; anything
// outside the fixed set reads as a missing resource.
func (s *ContentService) Create(ctx context.Context, ownerID, moduleID, kindName string, req models.ItemRequest) (*models.Content, error) {
	desc, ok := models.ResolveKind(kindName)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "unknown content type")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid item payload")
	}
	if err := s.validatePayload(desc, req.Payload); err != nil {
		return nil, err
	}

	if err := s.ownedModuleCheck(ctx, ownerID, moduleID); err != nil {
		return nil, err
	}

	item := &models.Item{OwnerID: ownerID, Title: req.Title, Payload: req.Payload}
	content, err := s.repo.CreateWithItem(ctx, desc, item, moduleID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create content")
	}

	s.metrics.RecordContentCreated(string(desc.Kind))
	s.logger.Info("content created",
		zap.String("content_id", content.ID),
		zap.String("module_id", moduleID),
		zap.String("kind", string(desc.Kind)))
	return content, nil
}

// Update rewrites the item behind an owned content entry. The kind is fixed
// at creation; only title and payload change.
func (s *ContentService) Update(ctx context.Context, ownerID, contentID string, req models.ItemRequest) (*models.Content, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid item payload")
	}

	content, desc, err := s.ownedContent(ctx, ownerID, contentID)
	if err != nil {
		return nil, err
	}
	if err := s.validatePayload(desc, req.Payload); err != nil {
		return nil, err
	}

	item := &models.Item{ID: content.ItemID, Title: req.Title, Payload: req.Payload}
	if err := s.repo.UpdateItem(ctx, desc, item); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update content")
	}
	return content, nil
}

// Delete removes an owned content entry and its item in one step, so no
// orphaned item rows are left behind.
func (s *ContentService) Delete(ctx context.Context, ownerID, contentID string) error {
	content, desc, err := s.ownedContent(ctx, ownerID, contentID)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteWithItem(ctx, desc, content); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete content")
	}
	s.logger.Info("content deleted",
		zap.String("content_id", content.ID),
		zap.String("kind", string(desc.Kind)))
	return nil
}

// Reorder applies the posted content positions, skipping entries the caller
// does not own.
func (s *ContentService) Reorder(ctx context.Context, ownerID string, req models.ReorderRequest) (*models.ReorderResult, error) {
	updated, err := s.repo.BulkReorder(ctx, ownerID, req)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reorder contents")
	}
	if updated < len(req) {
		s.logger.Warn("content reorder skipped unowned entries",
			zap.String("owner_id", ownerID),
			zap.Int("requested", len(req)),
			zap.Int("updated", updated))
	}
	return &models.ReorderResult{Updated: updated}, nil
}

// validatePayload applies per-kind payload rules: video and image items
// carry an external URL, file items carry a stored media reference, text
// items carry inline markup.
func (s *ContentService) validatePayload(desc models.KindDescriptor, payload string) error {
	switch desc.Kind {
	case models.KindVideo, models.KindImage:
		if err := s.validator.Var(payload, "url"); err != nil {
			return appErrors.WithFields(
				appErrors.Clone(appErrors.ErrValidation, "payload must be a valid URL"),
				map[string]string{"payload": "url"})
		}
	case models.KindFile:
		if strings.ContainsAny(payload, "/\\") || strings.Contains(payload, "..") {
			return appErrors.WithFields(
				appErrors.Clone(appErrors.ErrValidation, "payload must be a stored media reference"),
				map[string]string{"payload": "media_ref"})
		}
	}
	return nil
}

func (s *ContentService) ownedModuleCheck(ctx context.Context, ownerID, moduleID string) error {
	if _, err := s.modules.FindByID(ctx, moduleID); err != nil {
		if isNoRows(err) {
			return appErrors.Clone(appErrors.ErrNotFound, "module not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch module")
	}
	owner, err := s.modules.OwnerOf(ctx, moduleID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve module owner")
	}
	if owner != ownerID {
		return appErrors.Clone(appErrors.ErrForbidden, "module belongs to another instructor")
	}
	return nil
}

func (s *ContentService) ownedContent(ctx context.Context, ownerID, contentID string) (*models.Content, models.KindDescriptor, error) {
	content, err := s.repo.FindByID(ctx, contentID)
	if err != nil {
		if isNoRows(err) {
			return nil, models.KindDescriptor{}, appErrors.Clone(appErrors.ErrNotFound, "content not found")
		}
		return nil, models.KindDescriptor{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch content")
	}

	owner, err := s.repo.OwnerOf(ctx, contentID)
	if err != nil {
		return nil, models.KindDescriptor{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve content owner")
	}
	if owner != ownerID {
		return nil, models.KindDescriptor{}, appErrors.Clone(appErrors.ErrForbidden, "content belongs to another instructor")
	}

	desc, ok := models.ResolveKind(string(content.ItemKind))
	if !ok {
		return nil, models.KindDescriptor{}, appErrors.Clone(appErrors.ErrInternal, "stored content has unknown kind")
	}
	return content, desc, nil
}
