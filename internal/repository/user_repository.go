package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/classroom-chat/internal/domain"
)

// UserRepository defines persistence access for the student roster.
type UserRepository interface {
	List(ctx context.Context) ([]domain.User, error)
	GetByStudentID(ctx context.Context, studentID string) (*domain.User, error)
	FindByCredentials(ctx context.Context, studentID, name string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, studentID string) error
	CreateMany(ctx context.Context, users []domain.User) error
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

func (r *userRepository) List(ctx context.Context) ([]domain.User, error) {
	const query = `
        SELECT student_id, name, created_at, updated_at
        FROM users ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(&user.StudentID, &user.Name, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (r *userRepository) GetByStudentID(ctx context.Context, studentID string) (*domain.User, error) {
	const query = `
        SELECT student_id, name, created_at, updated_at
        FROM users WHERE student_id=$1`

	var user domain.User
	if err := r.pool.QueryRow(ctx, query, studentID).Scan(
		&user.StudentID,
		&user.Name,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByCredentials(ctx context.Context, studentID, name string) (*domain.User, error) {
	const query = `
        SELECT student_id, name, created_at, updated_at
        FROM users WHERE student_id=$1 AND name=$2`

	var user domain.User
	if err := r.pool.QueryRow(ctx, query, studentID, name).Scan(
		&user.StudentID,
		&user.Name,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (student_id, name)
        VALUES ($1, $2)
        RETURNING created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		user.StudentID,
		user.Name,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	const query = `
        UPDATE users SET name=$1, updated_at=NOW()
        WHERE student_id=$2`

	cmd, err := r.pool.Exec(ctx, query, user.Name, user.StudentID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) Delete(ctx context.Context, studentID string) error {
	const query = `DELETE FROM users WHERE student_id=$1`

	cmd, err := r.pool.Exec(ctx, query, studentID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// CreateMany inserts roster entries in one transaction, skipping student ids
// that already exist. Used by CSV import.
func (r *userRepository) CreateMany(ctx context.Context, users []domain.User) error {
	const query = `
        INSERT INTO users (student_id, name)
        VALUES ($1, $2)
        ON CONFLICT (student_id) DO NOTHING`

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	for _, user := range users {
		if _, err := tx.Exec(ctx, query, user.StudentID, user.Name); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}
