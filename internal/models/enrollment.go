package models

import "time"

// Enrollment captures a student's membership in a course. The pair
// (course_id, student_id) is the primary key, so re-enrolling is a no-op.
type Enrollment struct {
	CourseID   string    `db:"course_id" json:"course_id"`
	StudentID  string    `db:"student_id" json:"student_id"`
	EnrolledAt time.Time `db:"enrolled_at" json:"enrolled_at"`
}
