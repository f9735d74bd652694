package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/classroom-chat/internal/repository"
	apperrors "github.com/spec-kit/classroom-chat/pkg/util"
)

func newTestRosterService() *RosterService {
	return NewRosterService(repository.NewMemoryUserRepository(), repository.NewMemoryCourseRepository())
}

func TestRosterService_CreateUser_Duplicate(t *testing.T) {
	svc := newTestRosterService()
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, "2024001", "张三")
	require.NoError(t, err)

	_, err = svc.CreateUser(ctx, "2024001", "someone else")
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperrors.ToDomainError(err).Code)
}

func TestRosterService_CreateUser_Validation(t *testing.T) {
	svc := newTestRosterService()

	_, err := svc.CreateUser(context.Background(), "  ", "张三")
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
}

func TestRosterService_ImportUsersCSV(t *testing.T) {
	svc := newTestRosterService()
	ctx := context.Background()

	imported, err := svc.ImportUsersCSV(ctx, "name,student_id\n张三,2024001\n李四,2024002\n")
	require.NoError(t, err)
	assert.Equal(t, 2, imported)

	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestRosterService_ImportUsersCSV_Errors(t *testing.T) {
	svc := newTestRosterService()
	ctx := context.Background()

	cases := []struct {
		name    string
		content string
	}{
		{"empty", ""},
		{"header only", "name,student_id"},
		{"wrong header", "student_id,name\n2024001,张三"},
		{"missing student id", "name,student_id\n张三,"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.ImportUsersCSV(ctx, tc.content)
			require.Error(t, err)
			assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
		})
	}
}

func TestRosterService_ImportCoursesCSV_NameDefaultsToID(t *testing.T) {
	svc := newTestRosterService()
	ctx := context.Background()

	imported, err := svc.ImportCoursesCSV(ctx, "course_id,course_name\nCS101,Intro\nCS102,\n")
	require.NoError(t, err)
	assert.Equal(t, 2, imported)

	courses, err := svc.ListCourses(ctx)
	require.NoError(t, err)
	names := map[string]string{}
	for _, course := range courses {
		names[course.CourseID] = course.CourseName
	}
	assert.Equal(t, "Intro", names["CS101"])
	assert.Equal(t, "CS102", names["CS102"])
}

func TestRosterService_BatchDeleteUsers_IgnoresUnknown(t *testing.T) {
	svc := newTestRosterService()
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, "2024001", "张三")
	require.NoError(t, err)

	deleted, err := svc.BatchDeleteUsers(ctx, []string{"2024001", "missing"})
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)
}

func TestRosterService_UpdateCourse_NotFound(t *testing.T) {
	svc := newTestRosterService()

	err := svc.UpdateCourse(context.Background(), "NOPE", "New Name")
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)
}
