// Package handler contains the HTTP handlers for the application.
package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"commtrack/internal/delivery/http/middleware"
	"commtrack/internal/delivery/http/response"
	"commtrack/internal/domain/entity"
	"commtrack/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// IdentityHandler holds dependencies for registration and login handlers.
type IdentityHandler struct {
	uc     usecase.IdentityUsecase
	logger *slog.Logger
}

// NewIdentityHandler is the constructor for IdentityHandler, injected by Fx.
func NewIdentityHandler(uc usecase.IdentityUsecase, logger *slog.Logger) *IdentityHandler {
	return &IdentityHandler{
		uc:     uc,
		logger: logger,
	}
}

// registerRequest is the wire shape of a registration call. PersonalEmail is
// required for admins, but that rule lives in the usecase so its
// field-specific message reaches the caller.
type registerRequest struct {
	FullName      string `json:"fullName" validate:"required"`
	Email         string `json:"email" validate:"required"`
	Mobile        string `json:"mobile" validate:"required"`
	Password      string `json:"password" validate:"required"`
	Role          string `json:"role" validate:"required,oneof=user admin"`
	PersonalEmail string `json:"personalEmail"`
}

// loginRequest is the wire shape of a login call. FullName and PersonalEmail
// are the admin identity-confirmation fields; the usecase enforces them for
// admins with its own message.
type loginRequest struct {
	Email         string `json:"email" validate:"required"`
	Password      string `json:"password" validate:"required"`
	Role          string `json:"role" validate:"required,oneof=user admin"`
	FullName      string `json:"fullName"`
	PersonalEmail string `json:"personalEmail"`
}

// principalResponse is the caller-facing view of a principal. It never
// carries the password hash.
type principalResponse struct {
	ID            string `json:"id"`
	FullName      string `json:"fullName"`
	Email         string `json:"email"`
	Mobile        string `json:"mobile"`
	Role          string `json:"role"`
	PersonalEmail string `json:"personalEmail,omitempty"`
}

func toPrincipalResponse(p *entity.Principal) *principalResponse {
	return &principalResponse{
		ID:            p.ID.String(),
		FullName:      p.FullName,
		Email:         p.Email,
		Mobile:        p.Mobile,
		Role:          p.Role.String(),
		PersonalEmail: p.PersonalEmail,
	}
}

// Register handles the registration request for both roles.
func (h *IdentityHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid registration input")
	}
	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_FAILED", "All fields are required")
	}

	role := entity.Role(req.Role)
	_, err := h.uc.Register(c.Request().Context(), &usecase.RegisterInput{
		FullName:      req.FullName,
		Email:         req.Email,
		Mobile:        req.Mobile,
		Password:      req.Password,
		Role:          role,
		PersonalEmail: req.PersonalEmail,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	// The confirmation names the role; no token and no stored fields are returned.
	return response.Success(c, http.StatusCreated, nil, capitalizeRole(role)+" registered successfully!")
}

// Login handles the login request for both roles.
func (h *IdentityHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid login input")
	}
	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_FAILED", "All fields are required")
	}

	role := entity.Role(req.Role)
	output, err := h.uc.Login(c.Request().Context(), &usecase.LoginInput{
		Email:         req.Email,
		Password:      req.Password,
		Role:          role,
		FullName:      req.FullName,
		PersonalEmail: req.PersonalEmail,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]any{
		"token":     output.Token,
		"expiresIn": int64(output.ExpiresIn.Seconds()),
	}, capitalizeRole(role)+" login successful")
}

// GetProfile handles the request to get the current principal's profile.
func (h *IdentityHandler) GetProfile(c echo.Context) error {
	principalID, ok := c.Get(middleware.ContextKeyPrincipalID).(uuid.UUID)
	if !ok {
		return response.Unauthorized(c, "TOKEN_INVALID", "Invalid principal id in token")
	}

	principal, err := h.uc.GetProfile(c.Request().Context(), principalID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toPrincipalResponse(principal), "Profile retrieved successfully")
}

// AdminOverview is a role-gated endpoint proving the admin capability chain.
func (h *IdentityHandler) AdminOverview(c echo.Context) error {
	principalID, ok := c.Get(middleware.ContextKeyPrincipalID).(uuid.UUID)
	if !ok {
		return response.Unauthorized(c, "TOKEN_INVALID", "Invalid principal id in token")
	}

	return response.Success(c, http.StatusOK, map[string]string{
		"principalId": principalID.String(),
		"role":        entity.RoleAdmin.String(),
	}, "Admin overview retrieved successfully")
}

// HealthCheck is a simple handler to check if the service is up.
func HealthCheck(c echo.Context) error {
	return response.Success(c, http.StatusOK, map[string]string{"status": "ok"}, "Service is healthy")
}

func capitalizeRole(role entity.Role) string {
	s := role.String()
	if s == "" {
		return s
	}

	return strings.ToUpper(s[:1]) + s[1:]
}
