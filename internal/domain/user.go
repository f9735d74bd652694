package domain

import "time"

// User is a roster entry: a student allowed to log in. The roster holds no
// password; login matches student id and name exactly.
type User struct {
	StudentID string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
