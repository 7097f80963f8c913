package domain

import "time"

// Role is the closed set of actor roles an identity can hold.
type Role string

const (
	RoleCitizen Role = "CITIZEN"
	RoleAgent   Role = "AGENT"
	RoleAdmin   Role = "ADMIN"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleCitizen, RoleAgent, RoleAdmin:
		return true
	}
	return false
}

// IsStaff reports whether r is a staff role.
func (r Role) IsStaff() bool {
	return r == RoleAgent || r == RoleAdmin
}

// User is an identity that can submit or handle complaints.
type User struct {
	ID           string
	Email        string
	Phone        *string
	PasswordHash string
	Roles        []Role
	Enabled      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasRole reports whether the user holds role.
func (u *User) HasRole(role Role) bool {
	if u == nil {
		return false
	}
	return HasRole(u.Roles, role)
}

// IsStaff reports whether the user holds AGENT or ADMIN.
func (u *User) IsStaff() bool {
	if u == nil {
		return false
	}
	for _, r := range u.Roles {
		if r.IsStaff() {
			return true
		}
	}
	return false
}

// HasRole reports whether role is present in roles.
func HasRole(roles []Role, role Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
