package dto

import "time"

// UserResponse is a roster entry as returned to the admin UI.
type UserResponse struct {
	StudentID string    `json:"studentId"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CourseResponse is a whitelisted course as returned to the admin UI.
type CourseResponse struct {
	CourseID   string    `json:"courseId"`
	CourseName string    `json:"courseName"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// CreateUserRequest payload for adding one roster entry.
type CreateUserRequest struct {
	StudentID string `json:"studentId"`
	Name      string `json:"name"`
}

// UpdateUserRequest payload for renaming a roster entry.
type UpdateUserRequest struct {
	Name string `json:"name"`
}

// CreateCourseRequest payload for adding one course.
type CreateCourseRequest struct {
	CourseID   string `json:"courseId"`
	CourseName string `json:"courseName"`
}

// UpdateCourseRequest payload for renaming a course.
type UpdateCourseRequest struct {
	CourseName string `json:"courseName"`
}

// ImportRequest payload for CSV imports.
type ImportRequest struct {
	CSVContent string `json:"csvContent"`
}

// BatchDeleteRequest payload for bulk deletes.
type BatchDeleteRequest struct {
	IDs []string `json:"ids"`
}
