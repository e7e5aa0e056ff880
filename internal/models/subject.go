package models

// Subject represents a course subject area. Reference data, listed by title.
type Subject struct {
	ID    string `db:"id" json:"id"`
	Title string `db:"title" json:"title"`
	Slug  string `db:"slug" json:"slug"`
}

// SubjectWithCount enriches Subject with the number of related courses.
type SubjectWithCount struct {
	Subject
	TotalCourses int `db:"total_courses" json:"total_courses"`
}

// CreateSubjectRequest is the payload for creating a subject.
type CreateSubjectRequest struct {
	Title string `json:"title" validate:"required,max=200"`
	Slug  string `json:"slug" validate:"required,max=200"`
}
