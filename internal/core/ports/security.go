package ports

import (
	"time"

	"github.com/autoresolve/helpdesk-accounts/internal/core/domain"
)

// PasswordHasher produces and checks one-way password digests.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	// Verify reports whether plain matches digest. Malformed digests yield false.
	Verify(plain, digest string) bool
	// VerifyDummy spends the same work as Verify against a fixed digest.
	VerifyDummy(plain string)
}

// IssuedToken is a freshly minted bearer token.
type IssuedToken struct {
	AccessToken string
	ExpiresAt   time.Time
	ExpiresIn   time.Duration
}

// TokenIssuer mints bearer tokens for authenticated users.
type TokenIssuer interface {
	Issue(user *domain.User) (IssuedToken, error)
}

// TokenVerifier checks a bearer token and returns its claims.
type TokenVerifier interface {
	Verify(token string) (*domain.Claims, error)
}
