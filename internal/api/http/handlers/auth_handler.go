package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/classroom-chat/internal/api/dto"
	"github.com/spec-kit/classroom-chat/internal/auth"
	"github.com/spec-kit/classroom-chat/internal/domain"
	"github.com/spec-kit/classroom-chat/internal/ratelimit"
	"github.com/spec-kit/classroom-chat/internal/service"
	apperrors "github.com/spec-kit/classroom-chat/pkg/util"
)

// AuthHandler exposes login, logout and session-check endpoints for both
// roles. Cookies carry only the opaque token; identity is always resolved
// server-side.
type AuthHandler struct {
	auth         *service.AuthService
	limiter      *ratelimit.LoginLimiter
	cookieSecure bool
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(authService *service.AuthService, limiter *ratelimit.LoginLimiter, cookieSecure bool) *AuthHandler {
	return &AuthHandler{auth: authService, limiter: limiter, cookieSecure: cookieSecure}
}

// UserLogin handles POST /api/auth/login.
func (h *AuthHandler) UserLogin(c *fiber.Ctx) error {
	var req dto.UserLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Name == "" || req.StudentID == "" || req.CourseID == "" {
		return fiber.NewError(http.StatusBadRequest, "name, studentId and courseId required")
	}
	if !h.limiter.Allow(c.UserContext(), "user", c.IP()) {
		return fiber.NewError(http.StatusTooManyRequests, "too many login attempts")
	}

	identity, token, expiresAt, err := h.auth.LoginUser(c.UserContext(), req.Name, req.StudentID, req.CourseID)
	if err != nil {
		return err
	}

	// The session row is already persisted; only now may the cookie go out.
	auth.SetSessionCookie(c, domain.RoleUser, token, expiresAt, h.cookieSecure)
	return c.JSON(fiber.Map{
		"success": true,
		"user":    identity,
	})
}

// UserLogout handles POST /api/auth/logout.
func (h *AuthHandler) UserLogout(c *fiber.Ctx) error {
	token := c.Cookies(auth.UserCookieName)
	if err := h.auth.LogoutUser(c.UserContext(), token); err != nil {
		return err
	}
	auth.ClearSessionCookie(c, domain.RoleUser, h.cookieSecure)
	return c.JSON(fiber.Map{"success": true})
}

// UserSession handles GET /api/auth/verify. It never errors; the UI only
// needs a yes/no plus the identity.
func (h *AuthHandler) UserSession(c *fiber.Ctx) error {
	identity, err := h.auth.VerifyUser(c.UserContext(), c.Cookies(auth.UserCookieName))
	if err != nil || identity == nil {
		return c.JSON(dto.SessionResponse{IsLoggedIn: false})
	}
	return c.JSON(dto.SessionResponse{IsLoggedIn: true, User: identity})
}

// AdminLogin handles POST /api/auth/admin/login.
func (h *AuthHandler) AdminLogin(c *fiber.Ctx) error {
	var req dto.AdminLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Password == "" {
		return fiber.NewError(http.StatusBadRequest, "password required")
	}
	if !h.limiter.Allow(c.UserContext(), "admin", c.IP()) {
		return fiber.NewError(http.StatusTooManyRequests, "too many login attempts")
	}

	token, expiresAt, err := h.auth.LoginAdmin(c.UserContext(), req.Password)
	if err != nil {
		return err
	}

	auth.SetSessionCookie(c, domain.RoleAdmin, token, expiresAt, h.cookieSecure)
	return c.JSON(fiber.Map{"success": true})
}

// AdminLogout handles POST /api/auth/admin/logout.
func (h *AuthHandler) AdminLogout(c *fiber.Ctx) error {
	token := c.Cookies(auth.AdminCookieName)
	if err := h.auth.LogoutAdmin(c.UserContext(), token); err != nil {
		return err
	}
	auth.ClearSessionCookie(c, domain.RoleAdmin, h.cookieSecure)
	return c.JSON(fiber.Map{"success": true})
}

// AdminSession handles GET /api/auth/admin/session.
func (h *AuthHandler) AdminSession(c *fiber.Ctx) error {
	ok, err := h.auth.VerifyAdmin(c.UserContext(), c.Cookies(auth.AdminCookieName))
	if err != nil {
		return apperrors.NewStoreUnavailable(err)
	}
	return c.JSON(fiber.Map{"isLoggedIn": ok})
}
