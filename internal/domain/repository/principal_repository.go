// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"errors"

	"commtrack/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrPrincipalNotFound is a domain-specific error returned when no principal
// exists for the given lookup key.
var ErrPrincipalNotFound = errors.New("principal not found")

// PrincipalRepository defines the standard operations for principal persistence.
// The store keeps two logical collections (users and admins) sharing an
// identical record shape; lookups are either role-scoped or span the union.
// The application layer depends on this interface, not the concrete implementation.
type PrincipalRepository interface {
	// FindByID retrieves a single principal by its unique ID, regardless of role.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Principal, error)

	// FindByEmail retrieves a principal by email from the collection selected
	// by role. Returns ErrPrincipalNotFound when the email is not present in
	// that collection, even if the other collection holds it.
	FindByEmail(ctx context.Context, role entity.Role, email string) (*entity.Principal, error)

	// FindAnyByEmail retrieves a principal by email from the union of both
	// collections. Used for the global uniqueness pre-check at registration.
	FindAnyByEmail(ctx context.Context, email string) (*entity.Principal, error)

	// Create persists a new principal into the collection selected by its
	// role. The store enforces email uniqueness across both collections as a
	// hard constraint; a violation surfaces as a conflict error independent
	// of any pre-check the caller performed.
	Create(ctx context.Context, principal *entity.Principal) error
}
