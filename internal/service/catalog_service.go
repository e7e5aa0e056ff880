package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kkampardi/educa-coursware/internal/models"
	appErrors "github.com/kkampardi/educa-coursware/pkg/errors"
)

// Cache key layout for the public catalog. Keys are written on read misses
// only; entries age out via TTL rather than write invalidation, so the
// catalog may briefly lag behind authoring changes.
const (
	cacheKeyAllSubjects = "all_subjects"
	cacheKeyAllCourses  = "all_courses"
)

func cacheKeySubjectCourses(subjectID string) string {
	return fmt.Sprintf("subject_%s_courses", subjectID)
}

type catalogCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

type catalogSubjectRepository interface {
	ListWithCourseCounts(ctx context.Context) ([]models.SubjectWithCount, error)
	FindBySlug(ctx context.Context, slug string) (*models.Subject, error)
}

type catalogCourseRepository interface {
	ListAll(ctx context.Context, subjectID string) ([]models.CourseDetail, error)
}

// CatalogService serves the public course catalog, fronting the database
// with a read-through cache.
type CatalogService struct {
	subjects catalogSubjectRepository
	courses  catalogCourseRepository
	cache    catalogCache
	metrics  *MetricsService
	enabled  bool
	ttl      time.Duration
	logger   *zap.Logger
}

// NewCatalogService constructs a CatalogService instance. Metrics may be nil.
func NewCatalogService(subjects catalogSubjectRepository, courses catalogCourseRepository, cache catalogCache, metrics *MetricsService, enabled bool, ttl time.Duration, logger *zap.Logger) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &CatalogService{
		subjects: subjects,
		courses:  courses,
		cache:    cache,
		metrics:  metrics,
		enabled:  enabled && cache != nil,
		ttl:      ttl,
		logger:   logger,
	}
}

// ListSubjects returns all subjects with course counts for the catalog
// sidebar.
func (s *CatalogService) ListSubjects(ctx context.Context) ([]models.SubjectWithCount, error) {
	var cached []models.SubjectWithCount
	if s.cacheGet(ctx, cacheKeyAllSubjects, &cached) {
		return cached, nil
	}

	subjects, err := s.subjects.ListWithCourseCounts(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subjects")
	}

	s.cacheSet(ctx, cacheKeyAllSubjects, subjects)
	return subjects, nil
}

// ListCourses returns the full catalog course list, optionally narrowed to
// a subject slug. The catalog is rendered whole, so the listing is
// unpaginated and the cached value holds every matching course.
func (s *CatalogService) ListCourses(ctx context.Context, subjectSlug string) ([]models.CourseDetail, error) {
	key := cacheKeyAllCourses
	subjectID := ""

	if subjectSlug != "" {
		subject, err := s.subjects.FindBySlug(ctx, subjectSlug)
		if err != nil {
			if isNoRows(err) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch subject")
		}
		key = cacheKeySubjectCourses(subject.ID)
		subjectID = subject.ID
	}

	var cached []models.CourseDetail
	if s.cacheGet(ctx, key, &cached) {
		return cached, nil
	}

	courses, err := s.courses.ListAll(ctx, subjectID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}

	s.cacheSet(ctx, key, courses)
	return courses, nil
}

// FlushCache drops every catalog cache entry. This is the escape hatch for
// the staleness window: entries otherwise live out their TTL untouched by
// authoring changes.
func (s *CatalogService) FlushCache(ctx context.Context) error {
	if !s.enabled {
		return nil
	}
	for _, pattern := range []string{cacheKeyAllSubjects, cacheKeyAllCourses, cacheKeySubjectCourses("*")} {
		if err := s.cache.DeleteByPattern(ctx, pattern); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to flush catalog cache")
		}
	}
	return nil
}

func (s *CatalogService) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	if !s.enabled {
		return false
	}
	err := s.cache.Get(ctx, key, dest)
	if err == nil {
		s.metrics.RecordCacheLookup(true)
		return true
	}
	s.metrics.RecordCacheLookup(false)
	if !errors.Is(err, appErrors.ErrCacheMiss) {
		s.logger.Warn("catalog cache read failed", zap.String("key", key), zap.Error(err))
	}
	return false
}

func (s *CatalogService) cacheSet(ctx context.Context, key string, value interface{}) {
	if !s.enabled {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.ttl); err != nil {
		s.logger.Warn("catalog cache write failed", zap.String("key", key), zap.Error(err))
	}
}
