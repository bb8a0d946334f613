// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// Principal is the record stored per registrant, whether an ordinary user or
// an administrator. The role decides which logical collection holds it.
type Principal struct {
	ID            uuid.UUID // Opaque unique identifier, assigned by the store on creation. Immutable.
	FullName      string    // The registrant's full display name.
	Email         string    // Login identifier. Unique across the union of both collections.
	Mobile        string    // Contact number. No format constraint is enforced.
	PasswordHash  string    // Output of the credential hasher. Never the plaintext, never returned to clients.
	Role          Role      // Fixed at creation; selects the users or admins collection.
	PersonalEmail string    // Second identity check at admin login. Empty for user records.
	CreatedAt     time.Time // Timestamp of when this principal was created.
	UpdatedAt     time.Time // Timestamp of the last modification to this record.
}

// IsAdmin reports whether the principal belongs to the admins collection.
func (p *Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}
