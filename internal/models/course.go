package models

import "time"

// Course represents an authored course belonging to an instructor.
type Course struct {
	ID        string    `db:"id" json:"id"`
	OwnerID   string    `db:"owner_id" json:"owner_id"`
	SubjectID string    `db:"subject_id" json:"subject_id"`
	Title     string    `db:"title" json:"title"`
	Slug      string    `db:"slug" json:"slug"`
	Overview  string    `db:"overview" json:"overview"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// CourseDetail enriches Course with catalog aggregates and joined names.
type CourseDetail struct {
	Course
	SubjectTitle string `db:"subject_title" json:"subject_title"`
	OwnerName    string `db:"owner_name" json:"owner_name"`
	TotalModules int    `db:"total_modules" json:"total_modules"`
}

// CreateCourseRequest is the payload for creating a course.
type CreateCourseRequest struct {
	SubjectID string `json:"subject_id" validate:"required,uuid4"`
	Title     string `json:"title" validate:"required,max=200"`
	Slug      string `json:"slug" validate:"required,max=200"`
	Overview  string `json:"overview" validate:"max=5000"`
}

// UpdateCourseRequest is the payload for updating an owned course.
type UpdateCourseRequest struct {
	SubjectID string `json:"subject_id" validate:"required,uuid4"`
	Title     string `json:"title" validate:"required,max=200"`
	Slug      string `json:"slug" validate:"required,max=200"`
	Overview  string `json:"overview" validate:"max=5000"`
}

// CourseFilter captures supported filters for listing courses.
type CourseFilter struct {
	OwnerID     string
	SubjectID   string
	SubjectSlug string
	Search      string
	Page        int
	PageSize    int
	SortBy      string
	SortOrder   string
}
