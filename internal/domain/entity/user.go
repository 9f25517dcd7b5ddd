package entity

import "time"

// Role of a user profile.
type Role string

const (
	RoleEmployee   Role = "employee"
	RoleSupervisor Role = "supervisor"
	// RoleUnknown missing profile or a role string this service does not recognize.
	RoleUnknown Role = ""
)

// ParseRole maps a stored role string; anything unrecognized is RoleUnknown.
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleEmployee, RoleSupervisor:
		return Role(s)
	default:
		return RoleUnknown
	}
}

// Identity authenticated user reference carried by the session token.
type Identity struct {
	ID    string
	Email string
}

// UserProfile stored per identity; created at sign-up, role mutated out-of-band only.
type UserProfile struct {
	ID           string
	Email        string
	Role         string // raw stored value, see ParseRole
	PasswordHash string // bcrypt, never leaves the auth use case
	CreatedAt    time.Time
}
