package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/classroom-chat/internal/domain"
)

type memoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]domain.User
}

// NewMemoryUserRepository returns a map-backed roster.
func NewMemoryUserRepository() UserRepository {
	return &memoryUserRepository{users: make(map[string]domain.User)}
}

func (r *memoryUserRepository) List(_ context.Context) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]domain.User, 0, len(r.users))
	for _, user := range r.users {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})
	return users, nil
}

func (r *memoryUserRepository) GetByStudentID(_ context.Context, studentID string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, exists := r.users[studentID]
	if !exists {
		return nil, pgx.ErrNoRows
	}
	return &user, nil
}

func (r *memoryUserRepository) FindByCredentials(_ context.Context, studentID, name string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, exists := r.users[studentID]
	if !exists || user.Name != name {
		return nil, pgx.ErrNoRows
	}
	return &user, nil
}

func (r *memoryUserRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.StudentID] = *user
	return nil
}

func (r *memoryUserRepository) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.users[user.StudentID]
	if !exists {
		return pgx.ErrNoRows
	}
	existing.Name = user.Name
	existing.UpdatedAt = time.Now()
	r.users[user.StudentID] = existing
	return nil
}

func (r *memoryUserRepository) Delete(_ context.Context, studentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[studentID]; !exists {
		return pgx.ErrNoRows
	}
	delete(r.users, studentID)
	return nil
}

func (r *memoryUserRepository) CreateMany(_ context.Context, users []domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for _, user := range users {
		if _, exists := r.users[user.StudentID]; exists {
			continue
		}
		user.CreatedAt = now
		user.UpdatedAt = now
		r.users[user.StudentID] = user
	}
	return nil
}

type memoryCourseRepository struct {
	mu      sync.RWMutex
	courses map[string]domain.Course
}

// NewMemoryCourseRepository returns a map-backed course whitelist.
func NewMemoryCourseRepository() CourseRepository {
	return &memoryCourseRepository{courses: make(map[string]domain.Course)}
}

func (r *memoryCourseRepository) List(_ context.Context) ([]domain.Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	courses := make([]domain.Course, 0, len(r.courses))
	for _, course := range r.courses {
		courses = append(courses, course)
	}
	sort.Slice(courses, func(i, j int) bool {
		return courses[i].CreatedAt.After(courses[j].CreatedAt)
	})
	return courses, nil
}

func (r *memoryCourseRepository) GetByCourseID(_ context.Context, courseID string) (*domain.Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	course, exists := r.courses[courseID]
	if !exists {
		return nil, pgx.ErrNoRows
	}
	return &course, nil
}

func (r *memoryCourseRepository) Create(_ context.Context, course *domain.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	course.CreatedAt = now
	course.UpdatedAt = now
	r.courses[course.CourseID] = *course
	return nil
}

func (r *memoryCourseRepository) Update(_ context.Context, course *domain.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.courses[course.CourseID]
	if !exists {
		return pgx.ErrNoRows
	}
	existing.CourseName = course.CourseName
	existing.UpdatedAt = time.Now()
	r.courses[course.CourseID] = existing
	return nil
}

func (r *memoryCourseRepository) Delete(_ context.Context, courseID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.courses[courseID]; !exists {
		return pgx.ErrNoRows
	}
	delete(r.courses, courseID)
	return nil
}

func (r *memoryCourseRepository) CreateMany(_ context.Context, courses []domain.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for _, course := range courses {
		if _, exists := r.courses[course.CourseID]; exists {
			continue
		}
		course.CreatedAt = now
		course.UpdatedAt = now
		r.courses[course.CourseID] = course
	}
	return nil
}
