package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/classroom-chat/internal/domain"
)

// ErrTokenConflict is returned when a session insert hits an existing token.
// With 256-bit random tokens this should never happen, but it is surfaced
// rather than swallowed so the login path can refuse to hand out a cookie.
var ErrTokenConflict = errors.New("session token already exists")

const uniqueViolationCode = "23505"

// SessionRepository defines persistence access for both session kinds.
// Reads filter expired rows at the store boundary; an expired session is
// indistinguishable from an absent one to every caller.
type SessionRepository interface {
	CreateUserSession(ctx context.Context, session *domain.UserSession) error
	GetUserSession(ctx context.Context, token string) (*domain.UserSession, error)
	DeleteUserSession(ctx context.Context, token string) error
	CreateAdminSession(ctx context.Context, session *domain.AdminSession) error
	GetAdminSession(ctx context.Context, token string) (*domain.AdminSession, error)
	DeleteAdminSession(ctx context.Context, token string) error
	SweepExpired(ctx context.Context) (int64, error)
}

type sessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository returns a Postgres-backed implementation.
func NewSessionRepository(pool *pgxpool.Pool) SessionRepository {
	return &sessionRepository{pool: pool}
}

func (r *sessionRepository) CreateUserSession(ctx context.Context, session *domain.UserSession) error {
	const query = `
        INSERT INTO user_sessions (session_token, student_id, course_id, name, login_at, expires_at)
        VALUES ($1, $2, $3, $4, NOW(), $5)
        RETURNING login_at`

	err := r.pool.QueryRow(ctx, query,
		session.Token,
		session.StudentID,
		session.CourseID,
		session.Name,
		session.ExpiresAt,
	).Scan(&session.LoginAt)
	return mapConflict(err)
}

func (r *sessionRepository) GetUserSession(ctx context.Context, token string) (*domain.UserSession, error) {
	const query = `
        SELECT session_token, student_id, course_id, name, login_at, expires_at
        FROM user_sessions WHERE session_token=$1 AND expires_at > NOW()`

	var session domain.UserSession
	if err := r.pool.QueryRow(ctx, query, token).Scan(
		&session.Token,
		&session.StudentID,
		&session.CourseID,
		&session.Name,
		&session.LoginAt,
		&session.ExpiresAt,
	); err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepository) DeleteUserSession(ctx context.Context, token string) error {
	const query = `DELETE FROM user_sessions WHERE session_token=$1`

	// Deleting an absent token is not an error; logout must be idempotent.
	_, err := r.pool.Exec(ctx, query, token)
	return err
}

func (r *sessionRepository) CreateAdminSession(ctx context.Context, session *domain.AdminSession) error {
	const query = `
        INSERT INTO admin_sessions (session_token, login_at, expires_at)
        VALUES ($1, NOW(), $2)
        RETURNING login_at`

	err := r.pool.QueryRow(ctx, query,
		session.Token,
		session.ExpiresAt,
	).Scan(&session.LoginAt)
	return mapConflict(err)
}

func (r *sessionRepository) GetAdminSession(ctx context.Context, token string) (*domain.AdminSession, error) {
	const query = `
        SELECT session_token, login_at, expires_at
        FROM admin_sessions WHERE session_token=$1 AND expires_at > NOW()`

	var session domain.AdminSession
	if err := r.pool.QueryRow(ctx, query, token).Scan(
		&session.Token,
		&session.LoginAt,
		&session.ExpiresAt,
	); err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepository) DeleteAdminSession(ctx context.Context, token string) error {
	const query = `DELETE FROM admin_sessions WHERE session_token=$1`

	_, err := r.pool.Exec(ctx, query, token)
	return err
}

// SweepExpired bulk-deletes expired rows of both roles. Correctness never
// depends on it running; it only bounds storage growth.
func (r *sessionRepository) SweepExpired(ctx context.Context) (int64, error) {
	var removed int64

	cmd, err := r.pool.Exec(ctx, `DELETE FROM user_sessions WHERE expires_at <= NOW()`)
	if err != nil {
		return removed, err
	}
	removed += cmd.RowsAffected()

	cmd, err = r.pool.Exec(ctx, `DELETE FROM admin_sessions WHERE expires_at <= NOW()`)
	if err != nil {
		return removed, err
	}
	removed += cmd.RowsAffected()

	return removed, nil
}

func mapConflict(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		return ErrTokenConflict
	}
	return err
}
