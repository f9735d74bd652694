package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/classroom-chat/internal/domain"
)

// Distinct cookie names per role so the two session kinds can never collide.
const (
	UserCookieName  = "user_session_token"
	AdminCookieName = "admin_session_token"
)

// CookieName returns the cookie carrying the given role's session token.
func CookieName(role domain.Role) string {
	if role == domain.RoleAdmin {
		return AdminCookieName
	}
	return UserCookieName
}

// SetSessionCookie hands the token to the browser. MaxAge is derived from
// the session expiry at issue time so the cookie never outlives the row.
func SetSessionCookie(c *fiber.Ctx, role domain.Role, token string, expiresAt time.Time, secure bool) {
	maxAge := int(time.Until(expiresAt).Seconds())
	if maxAge < 0 {
		maxAge = 0
	}
	c.Cookie(&fiber.Cookie{
		Name:     CookieName(role),
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		Expires:  expiresAt,
		HTTPOnly: true,
		Secure:   secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// ClearSessionCookie removes the cookie. Name, path and attributes must
// match the set call or browsers keep the stale cookie around.
func ClearSessionCookie(c *fiber.Ctx, role domain.Role, secure bool) {
	c.Cookie(&fiber.Cookie{
		Name:     CookieName(role),
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
