package service

import (
	"time"

	"commtrack/internal/domain/entity"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims defines the custom claims carried by a session token.
type Claims struct {
	PrincipalID uuid.UUID
	Role        entity.Role
	jwt.RegisteredClaims
}

// TokenService defines the interface for minting and verifying session tokens.
// Tokens are signed, carry the principal id and role, and expire after a fixed
// lifetime. There is no server-side token state and no revocation path; a
// token's validity is entirely determined by its signature and expiry.
type TokenService interface {
	// IssueToken mints a signed token for the given principal and role.
	IssueToken(principalID uuid.UUID, role entity.Role) (string, error)

	// VerifyToken checks the signature and expiry of a token string and
	// returns its claims.
	VerifyToken(tokenString string) (*Claims, error)

	// TokenDuration returns the configured token lifetime.
	TokenDuration() time.Duration
}
