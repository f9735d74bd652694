package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/spec-kit/classroom-chat/internal/domain"
)

// tokenBytes gives 256 bits of entropy, rendered as 64 hex characters.
const tokenBytes = 32

// TokenIssuer mints opaque session tokens. Tokens carry no claims; all
// session state lives server-side, so there is no signing secret to manage.
type TokenIssuer struct {
	userTTL  time.Duration
	adminTTL time.Duration
	now      func() time.Time
}

// NewTokenIssuer builds an issuer with role-specific TTLs.
func NewTokenIssuer(userTTL, adminTTL time.Duration) *TokenIssuer {
	return &TokenIssuer{userTTL: userTTL, adminTTL: adminTTL, now: time.Now}
}

// Issue generates a fresh token and its absolute expiry for the role. A new
// login always mints a new token; expiries never slide.
func (ti *TokenIssuer) Issue(role domain.Role) (string, time.Time, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", time.Time{}, fmt.Errorf("auth: generate token: %w", err)
	}

	ttl := ti.userTTL
	if role == domain.RoleAdmin {
		ttl = ti.adminTTL
	}
	return hex.EncodeToString(b), ti.now().Add(ttl), nil
}
