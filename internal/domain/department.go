package domain

import "time"

// Department represents a municipal unit that handles complaints.
type Department struct {
	ID          string
	Name        string
	Description string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// MemberRole is the role a staff user holds inside a department.
type MemberRole string

const (
	MemberRoleMember  MemberRole = "MEMBER"
	MemberRoleManager MemberRole = "MANAGER"
)

// Valid reports whether m is a known member role.
func (m MemberRole) Valid() bool {
	return m == MemberRoleMember || m == MemberRoleManager
}

// DepartmentMember links a staff user to a department. Rows are keyed by
// (DepartmentID, UserID) and are deactivated rather than deleted.
type DepartmentMember struct {
	ID           string
	DepartmentID string
	UserID       string
	Role         MemberRole
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Populated by list queries.
	UserEmail string
	UserPhone *string
}
