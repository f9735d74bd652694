package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/classroom-chat/internal/config"
	"github.com/spec-kit/classroom-chat/internal/domain"
	"github.com/spec-kit/classroom-chat/internal/repository"
	apperrors "github.com/spec-kit/classroom-chat/pkg/util"
)

func newTestAuthService(t *testing.T) (*AuthService, repository.SessionRepository) {
	t.Helper()

	users := repository.NewMemoryUserRepository()
	courses := repository.NewMemoryCourseRepository()
	sessions := repository.NewMemorySessionRepository()
	settings := repository.NewMemorySettingsRepository()

	ctx := context.Background()
	require.NoError(t, users.Create(ctx, &domain.User{StudentID: "2024001", Name: "张三"}))
	require.NoError(t, courses.Create(ctx, &domain.Course{CourseID: "CS101", CourseName: "Intro to CS"}))

	svc := NewAuthService(config.AuthConfig{
		UserSessionTTLDays:   30,
		AdminSessionTTLHours: 12,
		BcryptCost:           4,
	}, AuthDependencies{
		UserRepo:     users,
		CourseRepo:   courses,
		SessionRepo:  sessions,
		SettingsRepo: settings,
	})
	require.NoError(t, svc.EnsureAdminPassword(ctx, "sekrit"))
	return svc, sessions
}

func TestAuthService_LoginUser_RoundTrip(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	identity, token, expiresAt, err := svc.LoginUser(ctx, " 张三 ", " 2024001 ", "CS101")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.WithinRange(t, expiresAt, time.Now().Add(29*24*time.Hour), time.Now().Add(31*24*time.Hour))

	verified, err := svc.VerifyUser(ctx, token)
	require.NoError(t, err)
	require.NotNil(t, verified)
	assert.Equal(t, identity, verified)
	assert.Equal(t, "2024001", verified.StudentID)
	assert.Equal(t, "CS101", verified.CourseID)
	assert.Equal(t, "张三", verified.Name)
}

func TestAuthService_LoginUser_InvalidCredentials(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	cases := []struct {
		name      string
		loginName string
		studentID string
	}{
		{"wrong name", "李四", "2024001"},
		{"wrong student id", "张三", "9999999"},
		{"both wrong", "李四", "9999999"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, token, _, err := svc.LoginUser(ctx, tc.loginName, tc.studentID, "CS101")
			require.Error(t, err)
			assert.Empty(t, token)
			domainErr := apperrors.ToDomainError(err)
			assert.Equal(t, "INVALID_CREDENTIALS", domainErr.Code)
		})
	}
}

func TestAuthService_LoginUser_UnknownCourse(t *testing.T) {
	svc, _ := newTestAuthService(t)

	_, token, _, err := svc.LoginUser(context.Background(), "张三", "2024001", "NOPE")
	require.Error(t, err)
	assert.Empty(t, token)
	assert.Equal(t, "UNKNOWN_COURSE", apperrors.ToDomainError(err).Code)
}

func TestAuthService_LoginUser_DistinctTokens(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	_, first, _, err := svc.LoginUser(ctx, "张三", "2024001", "CS101")
	require.NoError(t, err)
	_, second, _, err := svc.LoginUser(ctx, "张三", "2024001", "CS101")
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "a fresh login must mint a fresh token")

	// Both sessions stay live; logging in again does not refresh or revoke
	// the earlier one.
	identity, err := svc.VerifyUser(ctx, first)
	require.NoError(t, err)
	assert.NotNil(t, identity)
}

func TestAuthService_Logout_Idempotent(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	_, token, _, err := svc.LoginUser(ctx, "张三", "2024001", "CS101")
	require.NoError(t, err)

	require.NoError(t, svc.LogoutUser(ctx, token))

	identity, err := svc.VerifyUser(ctx, token)
	require.NoError(t, err)
	assert.Nil(t, identity, "token must not verify after logout")

	require.NoError(t, svc.LogoutUser(ctx, token), "second logout must not error")
	require.NoError(t, svc.LogoutUser(ctx, ""), "logout without a cookie is a no-op")
}

func TestAuthService_VerifyUser_ExpiredSessionPurged(t *testing.T) {
	svc, sessions := newTestAuthService(t)
	ctx := context.Background()

	expired := &domain.UserSession{
		Token:     "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
		StudentID: "2024001",
		CourseID:  "CS101",
		Name:      "张三",
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	require.NoError(t, sessions.CreateUserSession(ctx, expired))

	identity, err := svc.VerifyUser(ctx, expired.Token)
	require.NoError(t, err)
	assert.Nil(t, identity)

	// Second verify after the lazy purge behaves identically.
	identity, err = svc.VerifyUser(ctx, expired.Token)
	require.NoError(t, err)
	assert.Nil(t, identity)
}

func TestAuthService_LoginAdmin(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	_, _, err := svc.LoginAdmin(ctx, "wrong")
	require.Error(t, err)
	assert.Equal(t, "INVALID_CREDENTIALS", apperrors.ToDomainError(err).Code)

	token, expiresAt, err := svc.LoginAdmin(ctx, "sekrit")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.WithinRange(t, expiresAt, time.Now().Add(11*time.Hour), time.Now().Add(13*time.Hour))

	ok, err := svc.VerifyAdmin(ctx, token)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAuthService_VerifyAdmin_ExpiredSessionPurged(t *testing.T) {
	svc, sessions := newTestAuthService(t)
	ctx := context.Background()

	expired := &domain.AdminSession{
		Token:     "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb",
		ExpiresAt: time.Now().Add(-time.Second),
	}
	require.NoError(t, sessions.CreateAdminSession(ctx, expired))

	ok, err := svc.VerifyAdmin(ctx, expired.Token)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.VerifyAdmin(ctx, expired.Token)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAuthService_RolesDoNotCross(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	_, userToken, _, err := svc.LoginUser(ctx, "张三", "2024001", "CS101")
	require.NoError(t, err)
	adminToken, _, err := svc.LoginAdmin(ctx, "sekrit")
	require.NoError(t, err)

	ok, err := svc.VerifyAdmin(ctx, userToken)
	require.NoError(t, err)
	assert.False(t, ok, "user token must not verify as admin")

	identity, err := svc.VerifyUser(ctx, adminToken)
	require.NoError(t, err)
	assert.Nil(t, identity, "admin token must not verify as user")
}

func TestAuthService_EnsureAdminPassword_KeepsExisting(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	// A second bootstrap with a different password must not overwrite.
	require.NoError(t, svc.EnsureAdminPassword(ctx, "other"))

	_, _, err := svc.LoginAdmin(ctx, "sekrit")
	assert.NoError(t, err)
}
