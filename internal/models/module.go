package models

// Module represents an ordered section within a course.
type Module struct {
	ID          string `db:"id" json:"id"`
	CourseID    string `db:"course_id" json:"course_id"`
	Title       string `db:"title" json:"title"`
	Description string `db:"description" json:"description"`
	Order       int    `db:"order" json:"order"`
}

// ModuleDetail enriches Module with its content count.
type ModuleDetail struct {
	Module
	TotalContents int `db:"total_contents" json:"total_contents"`
}

// CreateModuleRequest is the payload for appending a module to a course.
type CreateModuleRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=5000"`
}

// UpdateModuleRequest is the payload for updating a module.
type UpdateModuleRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=5000"`
}

// ReorderRequest maps entity IDs onto their desired positions. The wire
// format mirrors the drag-and-drop client, which posts the full mapping at
// once.
type ReorderRequest map[string]int

// ReorderResult reports how many rows a bulk reorder touched.
type ReorderResult struct {
	Updated int `json:"updated"`
}
