package auth

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/classroom-chat/internal/domain"
	apperrors "github.com/spec-kit/classroom-chat/pkg/util"
)

const principalKey = "auth_principal"

// SessionVerifier resolves an opaque token to a live identity. A nil result
// with a nil error means no valid session; an error means the store itself
// failed.
type SessionVerifier interface {
	VerifyUser(ctx context.Context, token string) (*domain.UserIdentity, error)
	VerifyAdmin(ctx context.Context, token string) (bool, error)
}

// Principal represents the authenticated caller for the current request.
type Principal struct {
	Role domain.Role
	User *domain.UserIdentity
}

// Gate is the per-request access-control check. Every privileged route runs
// through it; handlers never trust identity fields from the request body.
type Gate struct {
	verifier SessionVerifier
}

// NewGate constructs the gate around a verifier.
func NewGate(verifier SessionVerifier) *Gate {
	return &Gate{verifier: verifier}
}

// RequireUser admits only requests carrying a live student session. Missing,
// malformed, expired and wrong-role cookies all get the same rejection.
func (g *Gate) RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(UserCookieName)
		if token == "" {
			return apperrors.NewUnauthorized()
		}
		identity, err := g.verifier.VerifyUser(c.UserContext(), token)
		if err != nil {
			return apperrors.NewStoreUnavailable(err)
		}
		if identity == nil {
			return apperrors.NewUnauthorized()
		}
		c.Locals(principalKey, &Principal{Role: domain.RoleUser, User: identity})
		return c.Next()
	}
}

// RequireAdmin admits only requests carrying a live admin session.
func (g *Gate) RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(AdminCookieName)
		if token == "" {
			return apperrors.NewUnauthorized()
		}
		ok, err := g.verifier.VerifyAdmin(c.UserContext(), token)
		if err != nil {
			return apperrors.NewStoreUnavailable(err)
		}
		if !ok {
			return apperrors.NewUnauthorized()
		}
		c.Locals(principalKey, &Principal{Role: domain.RoleAdmin})
		return c.Next()
	}
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}

// UserFromContext returns the student identity bound by RequireUser.
func UserFromContext(c *fiber.Ctx) (*domain.UserIdentity, bool) {
	principal, ok := PrincipalFromContext(c)
	if !ok || principal.Role != domain.RoleUser || principal.User == nil {
		return nil, false
	}
	return principal.User, true
}
