package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	assert.Equal(t, RoleAdmin, ParseRole("admin"))
	assert.Equal(t, RoleMember, ParseRole("member"))

	// Anything unknown degrades to member, never to admin.
	assert.Equal(t, RoleMember, ParseRole(""))
	assert.Equal(t, RoleMember, ParseRole("Admin"))
	assert.Equal(t, RoleMember, ParseRole("superuser"))
	assert.Equal(t, RoleMember, ParseRole("admin "))
}

func TestRoleOf_NilAuth(t *testing.T) {
	assert.Equal(t, RoleMember, RoleOf(nil))
}
