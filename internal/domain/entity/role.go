// Package entity contains the core business objects of the project.
package entity

// Role represents the kind of principal: an ordinary user or an administrator.
type Role string

const (
	// RoleUser indicates a regular user principal.
	RoleUser Role = "user"
	// RoleAdmin indicates an administrator principal.
	RoleAdmin Role = "admin"
)

// String returns the string representation of the Role.
func (r Role) String() string {
	return string(r)
}

// IsValid checks if the Role is a valid value.
func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	default:
		return false
	}
}

// Collection returns the name of the logical record collection that stores
// principals of this role.
func (r Role) Collection() string {
	if r == RoleAdmin {
		return "admins"
	}

	return "users"
}
