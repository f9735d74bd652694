package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/classroom-chat/internal/auth"
	"github.com/spec-kit/classroom-chat/internal/config"
	"github.com/spec-kit/classroom-chat/internal/domain"
	"github.com/spec-kit/classroom-chat/internal/repository"
	apperrors "github.com/spec-kit/classroom-chat/pkg/util"
)

// AuthService coordinates login, logout and session verification for both
// roles. It is the only code that mutates the session store.
type AuthService struct {
	users      repository.UserRepository
	courses    repository.CourseRepository
	sessions   repository.SessionRepository
	settings   repository.SettingsRepository
	issuer     *auth.TokenIssuer
	bcryptCost int
}

// AuthDependencies encapsulates repo requirements for the auth service.
type AuthDependencies struct {
	UserRepo     repository.UserRepository
	CourseRepo   repository.CourseRepository
	SessionRepo  repository.SessionRepository
	SettingsRepo repository.SettingsRepository
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		courses:    deps.CourseRepo,
		sessions:   deps.SessionRepo,
		settings:   deps.SettingsRepo,
		issuer:     auth.NewTokenIssuer(cfg.UserSessionTTL(), cfg.AdminSessionTTL()),
		bcryptCost: cfg.BcryptCost,
	}
}

// LoginUser validates roster credentials and the course whitelist, then
// mints and persists a student session. The session row must exist before
// the caller sets any cookie.
func (s *AuthService) LoginUser(ctx context.Context, name, studentID, courseID string) (*domain.UserIdentity, string, time.Time, error) {
	name = strings.TrimSpace(name)
	studentID = strings.TrimSpace(studentID)
	courseID = strings.TrimSpace(courseID)

	if _, err := s.users.FindByCredentials(ctx, studentID, name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", time.Time{}, apperrors.NewInvalidCredentials()
		}
		return nil, "", time.Time{}, apperrors.NewStoreUnavailable(err)
	}

	if _, err := s.courses.GetByCourseID(ctx, courseID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", time.Time{}, apperrors.NewUnknownCourse()
		}
		return nil, "", time.Time{}, apperrors.NewStoreUnavailable(err)
	}

	session := &domain.UserSession{StudentID: studentID, CourseID: courseID, Name: name}
	token, expiresAt, err := s.createSession(ctx, domain.RoleUser, func(token string, expiresAt time.Time) error {
		session.Token = token
		session.ExpiresAt = expiresAt
		return s.sessions.CreateUserSession(ctx, session)
	})
	if err != nil {
		return nil, "", time.Time{}, err
	}

	identity := &domain.UserIdentity{StudentID: studentID, CourseID: courseID, Name: name}
	return identity, token, expiresAt, nil
}

// LoginAdmin compares the password against the stored admin secret and, on
// match, mints and persists an admin session.
func (s *AuthService) LoginAdmin(ctx context.Context, password string) (string, time.Time, error) {
	hash, err := s.settings.GetAdminPasswordHash(ctx)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", time.Time{}, apperrors.NewInvalidCredentials()
		}
		return "", time.Time{}, apperrors.NewStoreUnavailable(err)
	}
	if err := auth.ComparePassword(hash, password); err != nil {
		return "", time.Time{}, apperrors.NewInvalidCredentials()
	}

	return s.createSession(ctx, domain.RoleAdmin, func(token string, expiresAt time.Time) error {
		return s.sessions.CreateAdminSession(ctx, &domain.AdminSession{Token: token, ExpiresAt: expiresAt})
	})
}

// createSession issues a token and inserts the row. A token collision is a
// retry-worthy internal fault, so one fresh token is attempted before the
// conflict is surfaced.
func (s *AuthService) createSession(ctx context.Context, role domain.Role, insert func(token string, expiresAt time.Time) error) (string, time.Time, error) {
	for attempt := 0; attempt < 2; attempt++ {
		token, expiresAt, err := s.issuer.Issue(role)
		if err != nil {
			return "", time.Time{}, apperrors.NewInternalError(err)
		}
		if err := insert(token, expiresAt); err != nil {
			if errors.Is(err, repository.ErrTokenConflict) {
				continue
			}
			return "", time.Time{}, apperrors.NewStoreUnavailable(err)
		}
		return token, expiresAt, nil
	}
	return "", time.Time{}, apperrors.NewConflict("session token collision", nil)
}

// LogoutUser destroys the session row. Deleting an absent token is fine;
// logout always succeeds from the client's point of view.
func (s *AuthService) LogoutUser(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.sessions.DeleteUserSession(ctx, token); err != nil {
		return apperrors.NewStoreUnavailable(err)
	}
	return nil
}

// LogoutAdmin destroys the admin session row.
func (s *AuthService) LogoutAdmin(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.sessions.DeleteAdminSession(ctx, token); err != nil {
		return apperrors.NewStoreUnavailable(err)
	}
	return nil
}

// VerifyUser resolves a token to its student identity. Absent and expired
// sessions both come back as (nil, nil); the identity is taken from the
// session row, never re-joined against the roster.
func (s *AuthService) VerifyUser(ctx context.Context, token string) (*domain.UserIdentity, error) {
	if token == "" {
		return nil, nil
	}
	session, err := s.sessions.GetUserSession(ctx, token)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Reap a possibly-expired row; the delete is idempotent so an
			// unknown token is a no-op.
			_ = s.sessions.DeleteUserSession(ctx, token)
			return nil, nil
		}
		return nil, err
	}
	return &domain.UserIdentity{
		StudentID: session.StudentID,
		CourseID:  session.CourseID,
		Name:      session.Name,
	}, nil
}

// VerifyAdmin resolves a token to admin standing.
func (s *AuthService) VerifyAdmin(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}
	if _, err := s.sessions.GetAdminSession(ctx, token); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			_ = s.sessions.DeleteAdminSession(ctx, token)
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// EnsureAdminPassword seeds the admin secret on first startup. An existing
// secret is never overwritten.
func (s *AuthService) EnsureAdminPassword(ctx context.Context, bootstrap string) error {
	if _, err := s.settings.GetAdminPasswordHash(ctx); err == nil {
		return nil
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := auth.HashPassword(bootstrap, s.bcryptCost)
	if err != nil {
		return err
	}
	return s.settings.SetAdminPasswordHash(ctx, hash)
}
