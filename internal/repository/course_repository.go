package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/kkampardi/educa-coursware/internal/models"
)

// CourseRepository handles persistence for courses.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs the repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

const courseDetailColumns = `c.id, c.owner_id, c.subject_id, c.title, c.slug, c.overview, c.created_at, c.updated_at,
s.title AS subject_title, u.full_name AS owner_name,
(SELECT COUNT(*) FROM modules m WHERE m.course_id = c.id) AS total_modules`

const courseDetailBase = `FROM courses c
JOIN subjects s ON s.id = c.subject_id
JOIN users u ON u.id = c.owner_id`

// List returns course details matching the filter with a total count.
func (r *CourseRepository) List(ctx context.Context, filter models.CourseFilter) ([]models.CourseDetail, int, error) {
	base := courseDetailBase + " WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.OwnerID != "" {
		conditions = append(conditions, fmt.Sprintf("c.owner_id = $%d", len(args)+1))
		args = append(args, filter.OwnerID)
	}
	if filter.SubjectID != "" {
		conditions = append(conditions, fmt.Sprintf("c.subject_id = $%d", len(args)+1))
		args = append(args, filter.SubjectID)
	}
	if filter.SubjectSlug != "" {
		conditions = append(conditions, fmt.Sprintf("s.slug = $%d", len(args)+1))
		args = append(args, filter.SubjectSlug)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(c.title) LIKE $%d OR LOWER(c.overview) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]string{
		"title":      "c.title",
		"created_at": "c.created_at",
		"updated_at": "c.updated_at",
	}
	column, ok := allowedSorts[sortBy]
	if !ok {
		column = "c.created_at"
	}

	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", courseDetailColumns, base, column, order, size, offset)
	var courses []models.CourseDetail
	if err := r.db.SelectContext(ctx, &courses, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list courses: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count courses: %w", err)
	}

	return courses, total, nil
}

// ListAll returns every catalog course, optionally narrowed to a subject.
// The public catalog renders the full list, so no LIMIT is applied.
func (r *CourseRepository) ListAll(ctx context.Context, subjectID string) ([]models.CourseDetail, error) {
	query := fmt.Sprintf("SELECT %s %s", courseDetailColumns, courseDetailBase)
	var args []interface{}
	if subjectID != "" {
		query += " WHERE c.subject_id = $1"
		args = append(args, subjectID)
	}
	query += " ORDER BY c.created_at DESC, c.id ASC"

	var courses []models.CourseDetail
	if err := r.db.SelectContext(ctx, &courses, query, args...); err != nil {
		return nil, fmt.Errorf("list all courses: %w", err)
	}
	return courses, nil
}

// FindByID returns a course by id.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.Course, error) {
	const query = `SELECT id, owner_id, subject_id, title, slug, overview, created_at, updated_at FROM courses WHERE id = $1`
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, err
	}
	return &course, nil
}

// FindDetailBySlug returns an annotated course by its unique slug.
func (r *CourseRepository) FindDetailBySlug(ctx context.Context, slug string) (*models.CourseDetail, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE c.slug = $1", courseDetailColumns, courseDetailBase)
	var course models.CourseDetail
	if err := r.db.GetContext(ctx, &course, query, slug); err != nil {
		return nil, err
	}
	return &course, nil
}

// ExistsBySlug checks slug uniqueness, optionally excluding a course id.
func (r *CourseRepository) ExistsBySlug(ctx context.Context, slug, excludeID string) (bool, error) {
	query := `SELECT 1 FROM courses WHERE slug = $1`
	args := []interface{}{slug}
	if excludeID != "" {
		query += ` AND id <> $2`
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check course slug: %w", err)
	}
	return true, nil
}

// Create persists a new course.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if course.CreatedAt.IsZero() {
		course.CreatedAt = now
	}
	course.UpdatedAt = now

	const query = `INSERT INTO courses (id, owner_id, subject_id, title, slug, overview, created_at, updated_at)
VALUES (:id, :owner_id, :subject_id, :title, :slug, :overview, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, course); err != nil {
		return fmt.Errorf("create course: %w", err)
	}
	return nil
}

// Update modifies a course's editable fields.
func (r *CourseRepository) Update(ctx context.Context, course *models.Course) error {
	course.UpdatedAt = time.Now().UTC()
	const query = `UPDATE courses SET subject_id = :subject_id, title = :title, slug = :slug, overview = :overview, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, course); err != nil {
		return fmt.Errorf("update course: %w", err)
	}
	return nil
}

// Delete removes a course together with every item stored under its
// modules. Modules and contents cascade at the schema level, but the
// per-kind item tables carry no foreign key back to contents, so their
// rows are cleared explicitly inside the same transaction.
func (r *CourseRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete course: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback() //nolint:errcheck
		}
	}()

	for _, kind := range models.Kinds() {
		desc, _ := models.ResolveKind(string(kind))
		query := fmt.Sprintf(`DELETE FROM %s WHERE id IN (SELECT ct.item_id FROM contents ct JOIN modules m ON m.id = ct.module_id WHERE m.course_id = $1 AND ct.item_kind = $2)`, desc.Table)
		if _, err := tx.ExecContext(ctx, query, id, desc.Kind); err != nil {
			return fmt.Errorf("delete %s items: %w", desc.Kind, err)
		}
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM courses WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete course: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete course: %w", err)
	}
	committed = true
	return nil
}
