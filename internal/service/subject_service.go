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

type subjectRepository interface {
	List(ctx context.Context) ([]models.Subject, error)
	ListWithCourseCounts(ctx context.Context) ([]models.SubjectWithCount, error)
	FindByID(ctx context.Context, id string) (*models.Subject, error)
	FindBySlug(ctx context.Context, slug string) (*models.Subject, error)
	ExistsBySlug(ctx context.Context, slug string) (bool, error)
	Create(ctx context.Context, subject *models.Subject) error
}

// SubjectService manages the subject reference data.
type SubjectService struct {
	repo      subjectRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSubjectService constructs a SubjectService instance.
func NewSubjectService(repo subjectRepository, validate *validator.Validate, logger *zap.Logger) *SubjectService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &SubjectService{repo: repo, validator: validate, logger: logger}
}

// List returns all subjects with their course counts, ordered by title.
func (s *SubjectService) List(ctx context.Context) ([]models.SubjectWithCount, error) {
	subjects, err := s.repo.ListWithCourseCounts(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subjects")
	}
	return subjects, nil
}

// GetBySlug returns a single subject by its slug.
func (s *SubjectService) GetBySlug(ctx context.Context, slug string) (*models.Subject, error) {
	subject, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch subject")
	}
	return subject, nil
}

// Create adds a new subject, enforcing slug uniqueness.
func (s *SubjectService) Create(ctx context.Context, req models.CreateSubjectRequest) (*models.Subject, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid subject payload")
	}

	taken, err := s.repo.ExistsBySlug(ctx, req.Slug)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check slug")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrConflict, "subject slug already in use")
	}

	subject := &models.Subject{Title: req.Title, Slug: req.Slug}
	if err := s.repo.Create(ctx, subject); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create subject")
	}

	s.logger.Info("subject created", zap.String("subject_id", subject.ID), zap.String("slug", subject.Slug))
	return subject, nil
}
