package handlers

import (
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
)

// Role is the enumerated dashboard role carried on auth records. Any
// unknown or empty role degrades to member; admin is never implied.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// ParseRole maps the free-form role field to an enumerated Role.
func ParseRole(value string) Role {
	if value == string(RoleAdmin) {
		return RoleAdmin
	}
	return RoleMember
}

// RoleOf reads the enumerated role off an auth record.
func RoleOf(auth *core.Record) Role {
	if auth == nil {
		return RoleMember
	}
	return ParseRole(auth.GetString("role"))
}

// RequireAuth rejects unauthenticated requests.
func RequireAuth(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Authentication required", nil)
	}
	return e.Next()
}

// RequireAdmin rejects requests whose auth record does not carry the
// admin role. Every admin route binds this server-side; nothing relies
// on the client hiding buttons.
func RequireAdmin(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Authentication required", nil)
	}
	if RoleOf(e.Auth) != RoleAdmin {
		return apis.NewForbiddenError("Admin access required", nil)
	}
	return e.Next()
}
