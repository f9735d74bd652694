package repository

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/classroom-chat/internal/domain"
)

type memorySessionRepository struct {
	mu            sync.RWMutex
	userSessions  map[string]domain.UserSession
	adminSessions map[string]domain.AdminSession
}

// NewMemorySessionRepository returns a map-backed store. It enforces the
// same read-time expiry filtering as the Postgres implementation.
func NewMemorySessionRepository() SessionRepository {
	return &memorySessionRepository{
		userSessions:  make(map[string]domain.UserSession),
		adminSessions: make(map[string]domain.AdminSession),
	}
}

func (r *memorySessionRepository) CreateUserSession(_ context.Context, session *domain.UserSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.userSessions[session.Token]; exists {
		return ErrTokenConflict
	}
	if session.LoginAt.IsZero() {
		session.LoginAt = time.Now()
	}
	r.userSessions[session.Token] = *session
	return nil
}

func (r *memorySessionRepository) GetUserSession(_ context.Context, token string) (*domain.UserSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, exists := r.userSessions[token]
	if !exists {
		return nil, pgx.ErrNoRows
	}
	if !session.ExpiresAt.After(time.Now()) {
		delete(r.userSessions, token)
		return nil, pgx.ErrNoRows
	}
	return &session, nil
}

func (r *memorySessionRepository) DeleteUserSession(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.userSessions, token)
	return nil
}

func (r *memorySessionRepository) CreateAdminSession(_ context.Context, session *domain.AdminSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.adminSessions[session.Token]; exists {
		return ErrTokenConflict
	}
	if session.LoginAt.IsZero() {
		session.LoginAt = time.Now()
	}
	r.adminSessions[session.Token] = *session
	return nil
}

func (r *memorySessionRepository) GetAdminSession(_ context.Context, token string) (*domain.AdminSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, exists := r.adminSessions[token]
	if !exists {
		return nil, pgx.ErrNoRows
	}
	if !session.ExpiresAt.After(time.Now()) {
		delete(r.adminSessions, token)
		return nil, pgx.ErrNoRows
	}
	return &session, nil
}

func (r *memorySessionRepository) DeleteAdminSession(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.adminSessions, token)
	return nil
}

func (r *memorySessionRepository) SweepExpired(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	var removed int64
	for token, session := range r.userSessions {
		if !session.ExpiresAt.After(now) {
			delete(r.userSessions, token)
			removed++
		}
	}
	for token, session := range r.adminSessions {
		if !session.ExpiresAt.After(now) {
			delete(r.adminSessions, token)
			removed++
		}
	}
	return removed, nil
}
