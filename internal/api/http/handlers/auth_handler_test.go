package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/classroom-chat/internal/auth"
	"github.com/spec-kit/classroom-chat/internal/config"
	"github.com/spec-kit/classroom-chat/internal/domain"
	"github.com/spec-kit/classroom-chat/internal/ratelimit"
	"github.com/spec-kit/classroom-chat/internal/repository"
	"github.com/spec-kit/classroom-chat/internal/service"
	apperrors "github.com/spec-kit/classroom-chat/pkg/util"
)

// newTestApp wires a Fiber app with in-memory repositories, seeded with one
// student, one course and the admin secret.
func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	users := repository.NewMemoryUserRepository()
	courses := repository.NewMemoryCourseRepository()
	sessions := repository.NewMemorySessionRepository()
	settings := repository.NewMemorySettingsRepository()

	ctx := context.Background()
	require.NoError(t, users.Create(ctx, &domain.User{StudentID: "2024001", Name: "张三"}))
	require.NoError(t, courses.Create(ctx, &domain.Course{CourseID: "CS101", CourseName: "Intro"}))

	authService := service.NewAuthService(config.AuthConfig{
		UserSessionTTLDays:   30,
		AdminSessionTTLHours: 12,
		BcryptCost:           4,
	}, service.AuthDependencies{
		UserRepo:     users,
		CourseRepo:   courses,
		SessionRepo:  sessions,
		SettingsRepo: settings,
	})
	require.NoError(t, authService.EnsureAdminPassword(ctx, "sekrit"))

	logger := zap.NewNop()
	limiter := ratelimit.NewLoginLimiter(nil, logger, 0, 0)
	gate := auth.NewGate(authService)
	authHandler := NewAuthHandler(authService, limiter, false)
	chatService := service.NewChatService(repository.NewMemoryChatRepository(nil))
	exportHandler := NewExportHandler(chatService)

	app := fiber.New()
	app.Use(errorMapper())

	app.Post("/api/auth/login", authHandler.UserLogin)
	app.Post("/api/auth/logout", authHandler.UserLogout)
	app.Get("/api/auth/verify", authHandler.UserSession)
	app.Post("/api/auth/admin/login", authHandler.AdminLogin)
	app.Post("/api/auth/admin/logout", authHandler.AdminLogout)
	app.Get("/api/auth/admin/session", authHandler.AdminSession)

	app.Get("/api/protected", gate.RequireUser(), func(c *fiber.Ctx) error {
		identity, _ := auth.UserFromContext(c)
		return c.JSON(identity)
	})
	app.Get("/api/admin/export-chats", gate.RequireAdmin(), exportHandler.ExportChats)

	return app
}

// errorMapper mirrors the production error middleware closely enough for
// handler tests.
func errorMapper() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		if err == nil {
			return nil
		}
		var fiberErr *fiber.Error
		if ok := asFiberError(err, &fiberErr); ok {
			return c.Status(fiberErr.Code).JSON(fiber.Map{"error": fiberErr.Message})
		}
		domainErr := apperrors.ToDomainError(err)
		return c.Status(domainErr.HTTPStatus).JSON(fiber.Map{"error": fiber.Map{
			"code":    domainErr.Code,
			"message": domainErr.Message,
		}})
	}
}

func asFiberError(err error, target **fiber.Error) bool {
	fe, ok := err.(*fiber.Error)
	if ok {
		*target = fe
	}
	return ok
}

func jsonRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func sessionCookie(resp *http.Response, name string) *http.Cookie {
	for _, cookie := range resp.Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func loginUser(t *testing.T, app *fiber.App) *http.Cookie {
	t.Helper()
	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/auth/login",
		`{"name":"张三","studentId":"2024001","courseId":"CS101"}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cookie := sessionCookie(resp, auth.UserCookieName)
	require.NotNil(t, cookie)
	return cookie
}

func loginAdmin(t *testing.T, app *fiber.App) *http.Cookie {
	t.Helper()
	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/auth/admin/login", `{"password":"sekrit"}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cookie := sessionCookie(resp, auth.AdminCookieName)
	require.NotNil(t, cookie)
	return cookie
}

func TestUserLogin_SetsCookieAndVerifies(t *testing.T) {
	app := newTestApp(t)
	cookie := loginUser(t, app)

	assert.True(t, cookie.HttpOnly)
	assert.NotEmpty(t, cookie.Value)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/verify", nil)
	req.AddCookie(cookie)
	resp, err := app.Test(req)
	require.NoError(t, err)
	body := decodeBody(t, resp)
	assert.Equal(t, true, body["isLoggedIn"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "2024001", user["studentId"])
	assert.Equal(t, "CS101", user["courseId"])
	assert.Equal(t, "张三", user["name"])
}

func TestUserLogin_BadCredentials_NoCookie(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/auth/login",
		`{"name":"李四","studentId":"2024001","courseId":"CS101"}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Nil(t, sessionCookie(resp, auth.UserCookieName))

	resp, err = app.Test(jsonRequest(http.MethodPost, "/api/auth/login",
		`{"name":"张三","studentId":"2024001","courseId":"NOPE"}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Nil(t, sessionCookie(resp, auth.UserCookieName))
}

func TestVerify_WithoutCookie(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/auth/verify", nil))
	require.NoError(t, err)
	body := decodeBody(t, resp)
	assert.Equal(t, false, body["isLoggedIn"])
}

func TestProtectedRoute_RequiresUserSession(t *testing.T) {
	app := newTestApp(t)

	// No cookie.
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/protected", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Garbage cookie.
	req := httptest.NewRequest(http.MethodGet, "/api/protected", nil)
	req.AddCookie(&http.Cookie{Name: auth.UserCookieName, Value: "not-a-token"})
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Valid cookie.
	cookie := loginUser(t, app)
	req = httptest.NewRequest(http.MethodGet, "/api/protected", nil)
	req.AddCookie(cookie)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAdminToken_RejectedByUserGate(t *testing.T) {
	app := newTestApp(t)
	adminCookie := loginAdmin(t, app)

	// The admin token presented under the user cookie name must not pass
	// the user gate.
	req := httptest.NewRequest(http.MethodGet, "/api/protected", nil)
	req.AddCookie(&http.Cookie{Name: auth.UserCookieName, Value: adminCookie.Value})
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestUserToken_RejectedByAdminGate(t *testing.T) {
	app := newTestApp(t)
	userCookie := loginUser(t, app)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/export-chats", nil)
	req.AddCookie(&http.Cookie{Name: auth.AdminCookieName, Value: userCookie.Value})
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestUserLogout_InvalidatesSession(t *testing.T) {
	app := newTestApp(t)
	cookie := loginUser(t, app)

	req := jsonRequest(http.MethodPost, "/api/auth/logout", "")
	req.AddCookie(cookie)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cleared := sessionCookie(resp, auth.UserCookieName)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)

	req = httptest.NewRequest(http.MethodGet, "/api/protected", nil)
	req.AddCookie(cookie)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAdminLogin_WrongPassword(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/auth/admin/login", `{"password":"wrong"}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Nil(t, sessionCookie(resp, auth.AdminCookieName))
}

func TestAdminSession_Flow(t *testing.T) {
	app := newTestApp(t)
	cookie := loginAdmin(t, app)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/admin/session", nil)
	req.AddCookie(cookie)
	resp, err := app.Test(req)
	require.NoError(t, err)
	body := decodeBody(t, resp)
	assert.Equal(t, true, body["isLoggedIn"])

	// Logout, then the same token no longer verifies.
	logoutReq := jsonRequest(http.MethodPost, "/api/auth/admin/logout", "")
	logoutReq.AddCookie(cookie)
	resp, err = app.Test(logoutReq)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/api/auth/admin/session", nil)
	req.AddCookie(cookie)
	resp, err = app.Test(req)
	require.NoError(t, err)
	body = decodeBody(t, resp)
	assert.Equal(t, false, body["isLoggedIn"])
}

func TestLoginRateLimit_Disabled(t *testing.T) {
	app := newTestApp(t)

	// With no Redis client the limiter fails open; repeated logins all work.
	for i := 0; i < 5; i++ {
		resp, err := app.Test(jsonRequest(http.MethodPost, "/api/auth/login",
			`{"name":"张三","studentId":"2024001","courseId":"CS101"}`))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	}
}

func TestSessionCookie_MaxAgeTracksTTL(t *testing.T) {
	app := newTestApp(t)
	cookie := loginUser(t, app)

	// 30-day TTL, allow generous slack for test runtime.
	assert.InDelta(t, 30*24*time.Hour/time.Second, cookie.MaxAge, 60)
}
