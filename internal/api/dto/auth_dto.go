package dto

import "github.com/spec-kit/classroom-chat/internal/domain"

// UserLoginRequest payload for student login.
type UserLoginRequest struct {
	Name      string `json:"name"`
	StudentID string `json:"studentId"`
	CourseID  string `json:"courseId"`
}

// AdminLoginRequest payload for admin login.
type AdminLoginRequest struct {
	Password string `json:"password"`
}

// SessionResponse reports the current session state to the UI.
type SessionResponse struct {
	IsLoggedIn bool                 `json:"isLoggedIn"`
	User       *domain.UserIdentity `json:"user,omitempty"`
}
