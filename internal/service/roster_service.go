package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/classroom-chat/internal/domain"
	"github.com/spec-kit/classroom-chat/internal/repository"
	apperrors "github.com/spec-kit/classroom-chat/pkg/util"
)

// RosterService manages the student roster and the course whitelist on
// behalf of admin endpoints.
type RosterService struct {
	users   repository.UserRepository
	courses repository.CourseRepository
}

// NewRosterService builds the service.
func NewRosterService(users repository.UserRepository, courses repository.CourseRepository) *RosterService {
	return &RosterService{users: users, courses: courses}
}

// ListUsers returns the full roster.
func (s *RosterService) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	return users, nil
}

// CreateUser adds a roster entry, rejecting duplicate student ids.
func (s *RosterService) CreateUser(ctx context.Context, studentID, name string) (*domain.User, error) {
	studentID = strings.TrimSpace(studentID)
	name = strings.TrimSpace(name)
	if studentID == "" || name == "" {
		return nil, apperrors.NewValidationError("student id and name required", nil)
	}

	if _, err := s.users.GetByStudentID(ctx, studentID); err == nil {
		return nil, apperrors.NewConflict("student id already exists", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewStoreUnavailable(err)
	}

	user := &domain.User{StudentID: studentID, Name: name}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	return user, nil
}

// UpdateUser renames a roster entry.
func (s *RosterService) UpdateUser(ctx context.Context, studentID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return apperrors.NewValidationError("name required", nil)
	}
	err := s.users.Update(ctx, &domain.User{StudentID: studentID, Name: name})
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound("user", nil)
	}
	if err != nil {
		return apperrors.NewStoreUnavailable(err)
	}
	return nil
}

// DeleteUser removes a roster entry. Existing sessions stay valid for their
// full TTL; there is no cascading invalidation.
func (s *RosterService) DeleteUser(ctx context.Context, studentID string) error {
	err := s.users.Delete(ctx, studentID)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound("user", nil)
	}
	if err != nil {
		return apperrors.NewStoreUnavailable(err)
	}
	return nil
}

// BatchDeleteUsers removes several roster entries, ignoring unknown ids.
func (s *RosterService) BatchDeleteUsers(ctx context.Context, studentIDs []string) (int, error) {
	deleted := 0
	for _, studentID := range studentIDs {
		err := s.users.Delete(ctx, studentID)
		if errors.Is(err, pgx.ErrNoRows) {
			continue
		}
		if err != nil {
			return deleted, apperrors.NewStoreUnavailable(err)
		}
		deleted++
	}
	return deleted, nil
}

// ImportUsersCSV parses "name,student_id" rows and inserts them in one
// transaction. Any malformed line fails the whole import.
func (s *RosterService) ImportUsersCSV(ctx context.Context, csvContent string) (int, error) {
	records, err := parseCSV(csvContent, []string{"name", "student_id"}, true)
	if err != nil {
		return 0, err
	}

	users := make([]domain.User, 0, len(records))
	for _, record := range records {
		users = append(users, domain.User{Name: record[0], StudentID: record[1]})
	}
	if len(users) == 0 {
		return 0, apperrors.NewValidationError("no rows to import", nil)
	}

	if err := s.users.CreateMany(ctx, users); err != nil {
		return 0, apperrors.NewStoreUnavailable(err)
	}
	return len(users), nil
}

// ListCourses returns the course whitelist.
func (s *RosterService) ListCourses(ctx context.Context) ([]domain.Course, error) {
	courses, err := s.courses.List(ctx)
	if err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	return courses, nil
}

// CreateCourse adds a course, rejecting duplicate ids. An empty course name
// falls back to the course id.
func (s *RosterService) CreateCourse(ctx context.Context, courseID, courseName string) (*domain.Course, error) {
	courseID = strings.TrimSpace(courseID)
	courseName = strings.TrimSpace(courseName)
	if courseID == "" {
		return nil, apperrors.NewValidationError("course id required", nil)
	}
	if courseName == "" {
		courseName = courseID
	}

	if _, err := s.courses.GetByCourseID(ctx, courseID); err == nil {
		return nil, apperrors.NewConflict("course id already exists", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewStoreUnavailable(err)
	}

	course := &domain.Course{CourseID: courseID, CourseName: courseName}
	if err := s.courses.Create(ctx, course); err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	return course, nil
}

// UpdateCourse renames a course.
func (s *RosterService) UpdateCourse(ctx context.Context, courseID, courseName string) error {
	courseName = strings.TrimSpace(courseName)
	if courseName == "" {
		return apperrors.NewValidationError("course name required", nil)
	}
	err := s.courses.Update(ctx, &domain.Course{CourseID: courseID, CourseName: courseName})
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound("course", nil)
	}
	if err != nil {
		return apperrors.NewStoreUnavailable(err)
	}
	return nil
}

// DeleteCourse removes a course from the whitelist.
func (s *RosterService) DeleteCourse(ctx context.Context, courseID string) error {
	err := s.courses.Delete(ctx, courseID)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound("course", nil)
	}
	if err != nil {
		return apperrors.NewStoreUnavailable(err)
	}
	return nil
}

// BatchDeleteCourses removes several courses, ignoring unknown ids.
func (s *RosterService) BatchDeleteCourses(ctx context.Context, courseIDs []string) (int, error) {
	deleted := 0
	for _, courseID := range courseIDs {
		err := s.courses.Delete(ctx, courseID)
		if errors.Is(err, pgx.ErrNoRows) {
			continue
		}
		if err != nil {
			return deleted, apperrors.NewStoreUnavailable(err)
		}
		deleted++
	}
	return deleted, nil
}

// ImportCoursesCSV parses "course_id,course_name" rows and inserts them in
// one transaction. The course name column may be empty.
func (s *RosterService) ImportCoursesCSV(ctx context.Context, csvContent string) (int, error) {
	records, err := parseCSV(csvContent, []string{"course_id", "course_name"}, false)
	if err != nil {
		return 0, err
	}

	courses := make([]domain.Course, 0, len(records))
	for _, record := range records {
		name := record[1]
		if name == "" {
			name = record[0]
		}
		courses = append(courses, domain.Course{CourseID: record[0], CourseName: name})
	}
	if len(courses) == 0 {
		return 0, apperrors.NewValidationError("no rows to import", nil)
	}

	if err := s.courses.CreateMany(ctx, courses); err != nil {
		return 0, apperrors.NewStoreUnavailable(err)
	}
	return len(courses), nil
}

// parseCSV validates the header and returns trimmed two-column records.
// requireSecond makes the second column mandatory per row.
func parseCSV(content string, header []string, requireSecond bool) ([][2]string, error) {
	reader := csv.NewReader(strings.NewReader(strings.TrimSpace(content)))
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, apperrors.NewValidationError("malformed CSV", nil)
	}
	if len(rows) < 2 {
		return nil, apperrors.NewValidationError("CSV needs a header and at least one row", nil)
	}

	got := rows[0]
	if len(got) < len(header) {
		return nil, apperrors.NewValidationError(fmt.Sprintf("CSV header must be %s", strings.Join(header, ",")), nil)
	}
	for i, want := range header {
		if strings.TrimSpace(got[i]) != want {
			return nil, apperrors.NewValidationError(fmt.Sprintf("CSV header must be %s", strings.Join(header, ",")), nil)
		}
	}

	var records [][2]string
	for i, row := range rows[1:] {
		if len(row) == 1 && strings.TrimSpace(row[0]) == "" {
			continue
		}
		if len(row) < 1 || strings.TrimSpace(row[0]) == "" {
			return nil, apperrors.NewValidationError(fmt.Sprintf("row %d is incomplete", i+2), nil)
		}
		first := strings.TrimSpace(row[0])
		second := ""
		if len(row) > 1 {
			second = strings.TrimSpace(row[1])
		}
		if requireSecond && second == "" {
			return nil, apperrors.NewValidationError(fmt.Sprintf("row %d is incomplete", i+2), nil)
		}
		records = append(records, [2]string{first, second})
	}
	return records, nil
}
