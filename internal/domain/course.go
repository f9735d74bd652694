package domain

import "time"

// Course is a whitelisted course a student may bind a session to. A course
// deleted after login does not invalidate sessions already bound to it.
type Course struct {
	CourseID   string
	CourseName string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
