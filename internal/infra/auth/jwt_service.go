// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"commtrack/config"
	"commtrack/internal/domain/entity"
	domainerrors "commtrack/internal/domain/errors"
	"commtrack/internal/domain/service"
)

// jwtService is a concrete implementation of the TokenService interface using the JWT standard.
type jwtService struct {
	secret []byte        // Process-wide signing key, loaded once at startup.
	ttl    time.Duration // Fixed token lifetime.
}

// jwtClaims is the wire shape of the signed token payload.
type jwtClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// NewJWTService is the constructor for jwtService.
// It takes configuration values to create a new token service instance.
func NewJWTService(cfg *config.Config) (service.TokenService, error) {
	if cfg.Auth == nil || cfg.Auth.TokenSecret == "" {
		return nil, errors.New("jwt secret must be provided")
	}

	ttl := cfg.Auth.TokenTTL
	if ttl <= 0 {
		ttl = time.Hour
	}

	return &jwtService{
		secret: []byte(cfg.Auth.TokenSecret),
		ttl:    ttl,
	}, nil
}

// newJWTServiceWithTTL builds a token service with an explicit lifetime.
// Used by tests to exercise expiry without waiting.
func newJWTServiceWithTTL(secret string, ttl time.Duration) service.TokenService {
	return &jwtService{secret: []byte(secret), ttl: ttl}
}

// IssueToken creates a signed token carrying the principal id and role.
func (s *jwtService) IssueToken(principalID uuid.UUID, role entity.Role) (string, error) {
	now := time.Now()
	claims := jwtClaims{
		Role: role.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principalID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign token")
	}

	return signed, nil
}

// VerifyToken checks the signature and expiry of a token string.
// Expired tokens and signature failures map to the corresponding domain
// errors; everything else is reported as a malformed token.
func (s *jwtService) VerifyToken(tokenString string) (*service.Claims, error) {
	parsed := &jwtClaims{}

	token, err := jwt.ParseWithClaims(tokenString, parsed, func(token *jwt.Token) (any, error) {
		// Ensure the signing method is what we expect.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}

		return s.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, domainerrors.ErrTokenExpired.WrapMessage("token verification failed")
		case errors.Is(err, jwt.ErrSignatureInvalid):
			return nil, domainerrors.ErrTokenInvalid.WrapMessage("token signature verification failed")
		default:
			return nil, domainerrors.ErrTokenInvalid.WrapMessage("token parsing failed")
		}
	}
	if !token.Valid {
		return nil, domainerrors.ErrTokenInvalid.WrapMessage("token verification failed")
	}

	principalID, err := uuid.Parse(parsed.Subject)
	if err != nil {
		return nil, domainerrors.ErrTokenInvalid.WrapMessage("token subject is not a principal id")
	}

	role := entity.Role(parsed.Role)
	if !role.IsValid() {
		return nil, domainerrors.ErrTokenInvalid.WrapMessage("token carries an unknown role")
	}

	return &service.Claims{
		PrincipalID:      principalID,
		Role:             role,
		RegisteredClaims: parsed.RegisteredClaims,
	}, nil
}

// TokenDuration returns the configured token lifetime.
func (s *jwtService) TokenDuration() time.Duration {
	return s.ttl
}
