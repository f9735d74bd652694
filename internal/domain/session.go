package domain

import "time"

// Role differentiates student sessions from admin sessions. It decides the
// cookie name, the TTL, and which privileged routes a session can reach.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// UserSession is a persisted student session row. Identity fields are
// snapshotted at login and stay valid for the full TTL even if the roster
// changes afterwards.
type UserSession struct {
	Token     string
	StudentID string
	CourseID  string
	Name      string
	LoginAt   time.Time
	ExpiresAt time.Time
}

// AdminSession is a persisted admin session row. There is no finer-grained
// admin identity beyond the role itself.
type AdminSession struct {
	Token     string
	LoginAt   time.Time
	ExpiresAt time.Time
}

// UserIdentity is the resolved identity handed to request handlers after a
// student session verifies.
type UserIdentity struct {
	StudentID string `json:"studentId"`
	CourseID  string `json:"courseId"`
	Name      string `json:"name"`
}
