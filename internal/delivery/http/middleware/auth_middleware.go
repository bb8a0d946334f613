package middleware

import (
	"strings"

	"commtrack/internal/delivery/http/response"
	"commtrack/internal/domain/entity"
	domainerrors "commtrack/internal/domain/errors"
	"commtrack/internal/domain/service"

	"github.com/labstack/echo/v4"
)

// Context keys set by Authenticate for downstream handlers.
const (
	ContextKeyPrincipalID = "principalID"
	ContextKeyRole        = "role"
)

// AuthMiddleware provides middleware for token authentication and authorization.
type AuthMiddleware struct {
	tokenSvc service.TokenService
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(tokenSvc service.TokenService) *AuthMiddleware {
	return &AuthMiddleware{tokenSvc: tokenSvc}
}

// Authenticate is the core middleware function that validates the bearer token.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			return response.Unauthorized(c, "TOKEN_MISSING", "Authorization header is missing")
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			return response.Unauthorized(c, "TOKEN_INVALID", "Invalid token format, must be Bearer token")
		}

		claims, err := m.tokenSvc.VerifyToken(tokenString)
		if err != nil {
			// The verifier distinguishes expiry from signature failures; the
			// error middleware maps both to a 401 with the matching code.
			return err
		}

		// Set principal info on the context for handlers to use
		c.Set(ContextKeyPrincipalID, claims.PrincipalID)
		c.Set(ContextKeyRole, claims.Role)

		return next(c)
	}
}

// RequireRole is a middleware factory that checks if the session carries a specific role.
// It must be used AFTER the Authenticate middleware.
func (m *AuthMiddleware) RequireRole(requiredRole entity.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get(ContextKeyRole).(entity.Role)
			if !ok {
				return domainerrors.ErrForbidden.WithDetails("role information missing")
			}

			if role != requiredRole {
				return domainerrors.ErrForbidden.WithDetails("requires '" + requiredRole.String() + "' role")
			}

			return next(c)
		}
	}
}
