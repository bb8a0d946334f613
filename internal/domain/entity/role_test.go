package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRole_IsValid(t *testing.T) {
	assert.True(t, RoleUser.IsValid())
	assert.True(t, RoleAdmin.IsValid())
	assert.False(t, Role("merchant").IsValid())
	assert.False(t, Role("").IsValid())
}

func TestRole_Collection(t *testing.T) {
	assert.Equal(t, "users", RoleUser.Collection())
	assert.Equal(t, "admins", RoleAdmin.Collection())
}

func TestPrincipal_IsAdmin(t *testing.T) {
	admin := &Principal{Role: RoleAdmin}
	user := &Principal{Role: RoleUser}

	assert.True(t, admin.IsAdmin())
	assert.False(t, user.IsAdmin())
}
