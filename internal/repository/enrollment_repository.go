package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/kkampardi/educa-coursware/internal/models"
)

// EnrollmentRepository handles the course/student membership set.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// Enroll adds the student to the course. The composite primary key plus
// ON CONFLICT DO NOTHING gives set semantics: re-enrolling is a no-op.
func (r *EnrollmentRepository) Enroll(ctx context.Context, courseID, studentID string) error {
	const query = `INSERT INTO course_students (course_id, student_id, enrolled_at)
VALUES ($1, $2, $3)
ON CONFLICT (course_id, student_id) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, courseID, studentID, time.Now().UTC()); err != nil {
		return fmt.Errorf("enroll student: %w", err)
	}
	return nil
}

// IsEnrolled reports whether the student belongs to the course.
func (r *EnrollmentRepository) IsEnrolled(ctx context.Context, courseID, studentID string) (bool, error) {
	const query = `SELECT 1 FROM course_students WHERE course_id = $1 AND student_id = $2 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, courseID, studentID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check enrollment: %w", err)
	}
	return true, nil
}

// ListCoursesByStudent returns the annotated courses the student enrolled in,
// newest enrollment first.
func (r *EnrollmentRepository) ListCoursesByStudent(ctx context.Context, studentID string) ([]models.CourseDetail, error) {
	query := fmt.Sprintf(`SELECT %s %s
JOIN course_students cs ON cs.course_id = c.id
WHERE cs.student_id = $1
ORDER BY cs.enrolled_at DESC`, courseDetailColumns, courseDetailBase)
	var courses []models.CourseDetail
	if err := r.db.SelectContext(ctx, &courses, query, studentID); err != nil {
		return nil, fmt.Errorf("list student courses: %w", err)
	}
	return courses, nil
}

// CountByCourse returns the number of students enrolled in the course.
func (r *EnrollmentRepository) CountByCourse(ctx context.Context, courseID string) (int, error) {
	const query = `SELECT COUNT(*) FROM course_students WHERE course_id = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, courseID); err != nil {
		return 0, fmt.Errorf("count enrollments: %w", err)
	}
	return count, nil
}
