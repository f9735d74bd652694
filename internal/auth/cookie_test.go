package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/classroom-chat/internal/domain"
)

func cookieFromResponse(t *testing.T, resp *http.Response, name string) *http.Cookie {
	t.Helper()
	for _, cookie := range resp.Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

func TestSetSessionCookie_Attributes(t *testing.T) {
	app := fiber.New()
	expiresAt := time.Now().Add(time.Hour)
	app.Get("/", func(c *fiber.Ctx) error {
		SetSessionCookie(c, domain.RoleUser, "tok-value", expiresAt, false)
		return c.SendStatus(http.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)

	cookie := cookieFromResponse(t, resp, UserCookieName)
	require.NotNil(t, cookie)
	assert.Equal(t, "tok-value", cookie.Value)
	assert.Equal(t, "/", cookie.Path)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	// MaxAge tracks the session expiry instead of a fixed constant.
	assert.InDelta(t, 3600, cookie.MaxAge, 5)
}

func TestSetSessionCookie_RoleNames(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		SetSessionCookie(c, domain.RoleUser, "user-tok", time.Now().Add(time.Hour), false)
		SetSessionCookie(c, domain.RoleAdmin, "admin-tok", time.Now().Add(time.Hour), false)
		return c.SendStatus(http.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)

	userCookie := cookieFromResponse(t, resp, UserCookieName)
	adminCookie := cookieFromResponse(t, resp, AdminCookieName)
	require.NotNil(t, userCookie)
	require.NotNil(t, adminCookie)
	assert.Equal(t, "user-tok", userCookie.Value)
	assert.Equal(t, "admin-tok", adminCookie.Value)
}

func TestClearSessionCookie(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		ClearSessionCookie(c, domain.RoleAdmin, false)
		return c.SendStatus(http.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)

	cookie := cookieFromResponse(t, resp, AdminCookieName)
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.Equal(t, "/", cookie.Path)
	assert.True(t, cookie.MaxAge < 0 || !cookie.Expires.After(time.Now()))
}
