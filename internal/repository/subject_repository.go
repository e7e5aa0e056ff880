package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/kkampardi/educa-coursware/internal/models"
)

// SubjectRepository handles persistence for subjects.
type SubjectRepository struct {
	db *sqlx.DB
}

// NewSubjectRepository creates a new repository instance.
func NewSubjectRepository(db *sqlx.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

// List returns all subjects ordered by title.
func (r *SubjectRepository) List(ctx context.Context) ([]models.Subject, error) {
	const query = `SELECT id, title, slug FROM subjects ORDER BY title ASC`
	var subjects []models.Subject
	if err := r.db.SelectContext(ctx, &subjects, query); err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	return subjects, nil
}

// ListWithCourseCounts returns subjects annotated with their course counts,
// ordered by title.
func (r *SubjectRepository) ListWithCourseCounts(ctx context.Context) ([]models.SubjectWithCount, error) {
	const query = `SELECT s.id, s.title, s.slug, COUNT(c.id) AS total_courses
FROM subjects s
LEFT JOIN courses c ON c.subject_id = s.id
GROUP BY s.id, s.title, s.slug
ORDER BY s.title ASC`
	var subjects []models.SubjectWithCount
	if err := r.db.SelectContext(ctx, &subjects, query); err != nil {
		return nil, fmt.Errorf("list subjects with counts: %w", err)
	}
	return subjects, nil
}

// FindByID returns a subject by id.
func (r *SubjectRepository) FindByID(ctx context.Context, id string) (*models.Subject, error) {
	const query = `SELECT id, title, slug FROM subjects WHERE id = $1`
	var subject models.Subject
	if err := r.db.GetContext(ctx, &subject, query, id); err != nil {
		return nil, err
	}
	return &subject, nil
}

// FindBySlug returns a subject by slug.
func (r *SubjectRepository) FindBySlug(ctx context.Context, slug string) (*models.Subject, error) {
	const query = `SELECT id, title, slug FROM subjects WHERE slug = $1`
	var subject models.Subject
	if err := r.db.GetContext(ctx, &subject, query, slug); err != nil {
		return nil, err
	}
	return &subject, nil
}

// ExistsBySlug checks uniqueness of a subject slug.
func (r *SubjectRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	const query = `SELECT 1 FROM subjects WHERE slug = $1 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, slug); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check subject slug: %w", err)
	}
	return true, nil
}

// Create persists a new subject.
func (r *SubjectRepository) Create(ctx context.Context, subject *models.Subject) error {
	if subject.ID == "" {
		subject.ID = uuid.NewString()
	}
	const query = `INSERT INTO subjects (id, title, slug) VALUES (:id, :title, :slug)`
	if _, err := r.db.NamedExecContext(ctx, query, subject); err != nil {
		return fmt.Errorf("create subject: %w", err)
	}
	return nil
}
