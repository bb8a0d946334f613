// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"
	"time"

	"commtrack/internal/domain/entity"

	"github.com/google/uuid"
)

// --- Input DTOs ---

// RegisterInput defines the data required to register a new principal.
// PersonalEmail is required when Role is admin and ignored otherwise.
type RegisterInput struct {
	FullName      string
	Email         string
	Mobile        string
	Password      string
	Role          entity.Role
	PersonalEmail string
}

// LoginInput defines the data required for a principal to log in.
// FullName and PersonalEmail are the admin identity-confirmation fields,
// required when Role is admin and ignored otherwise.
type LoginInput struct {
	Email         string
	Password      string
	Role          entity.Role
	FullName      string
	PersonalEmail string
}

// --- Output DTOs ---

// RegisterOutput returns the newly created principal. The caller must not
// expose the password hash; registration issues no token.
type RegisterOutput struct {
	Principal *entity.Principal
}

// LoginOutput returns the signed session token after a successful login,
// along with the fixed lifetime it was minted with.
type LoginOutput struct {
	Token     string
	ExpiresIn time.Duration
	Principal *entity.Principal
}

// IdentityUsecase defines the interface for registration and authentication.
// This is the contract that the delivery layer (e.g., HTTP handlers) will depend on.
type IdentityUsecase interface {
	// Register validates the input, enforces email uniqueness across both
	// collections, and creates the principal in the collection selected by
	// its role. No token is issued.
	Register(ctx context.Context, input *RegisterInput) (*RegisterOutput, error)

	// Login verifies role-specific credentials and, on success, mints a
	// signed session token. Admin logins additionally require the identity
	// confirmation fields to match the stored record exactly.
	Login(ctx context.Context, input *LoginInput) (*LoginOutput, error)

	// GetProfile returns the principal for an authenticated session.
	GetProfile(ctx context.Context, principalID uuid.UUID) (*entity.Principal, error)
}
