package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/classroom-chat/internal/domain"
)

// CourseRepository defines persistence access for the course whitelist.
type CourseRepository interface {
	List(ctx context.Context) ([]domain.Course, error)
	GetByCourseID(ctx context.Context, courseID string) (*domain.Course, error)
	Create(ctx context.Context, course *domain.Course) error
	Update(ctx context.Context, course *domain.Course) error
	Delete(ctx context.Context, courseID string) error
	CreateMany(ctx context.Context, courses []domain.Course) error
}

type courseRepository struct {
	pool *pgxpool.Pool
}

// NewCourseRepository returns a Postgres-backed implementation.
func NewCourseRepository(pool *pgxpool.Pool) CourseRepository {
	return &courseRepository{pool: pool}
}

func (r *courseRepository) List(ctx context.Context) ([]domain.Course, error) {
	const query = `
        SELECT course_id, course_name, created_at, updated_at
        FROM courses ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var courses []domain.Course
	for rows.Next() {
		var course domain.Course
		if err := rows.Scan(&course.CourseID, &course.CourseName, &course.CreatedAt, &course.UpdatedAt); err != nil {
			return nil, err
		}
		courses = append(courses, course)
	}
	return courses, rows.Err()
}

func (r *courseRepository) GetByCourseID(ctx context.Context, courseID string) (*domain.Course, error) {
	const query = `
        SELECT course_id, course_name, created_at, updated_at
        FROM courses WHERE course_id=$1`

	var course domain.Course
	if err := r.pool.QueryRow(ctx, query, courseID).Scan(
		&course.CourseID,
		&course.CourseName,
		&course.CreatedAt,
		&course.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *courseRepository) Create(ctx context.Context, course *domain.Course) error {
	const query = `
        INSERT INTO courses (course_id, course_name)
        VALUES ($1, $2)
        RETURNING created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		course.CourseID,
		course.CourseName,
	).Scan(&course.CreatedAt, &course.UpdatedAt)
}

func (r *courseRepository) Update(ctx context.Context, course *domain.Course) error {
	const query = `
        UPDATE courses SET course_name=$1, updated_at=NOW()
        WHERE course_id=$2`

	cmd, err := r.pool.Exec(ctx, query, course.CourseName, course.CourseID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *courseRepository) Delete(ctx context.Context, courseID string) error {
	const query = `DELETE FROM courses WHERE course_id=$1`

	cmd, err := r.pool.Exec(ctx, query, courseID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// CreateMany inserts courses in one transaction, skipping course ids that
// already exist. Used by CSV import.
func (r *courseRepository) CreateMany(ctx context.Context, courses []domain.Course) error {
	const query = `
        INSERT INTO courses (course_id, course_name)
        VALUES ($1, $2)
        ON CONFLICT (course_id) DO NOTHING`

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	for _, course := range courses {
		if _, err := tx.Exec(ctx, query, course.CourseID, course.CourseName); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}
