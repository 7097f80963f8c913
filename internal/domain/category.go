package domain

import "time"

// ComplaintCategory is reference data that routes new complaints to a default department.
type ComplaintCategory struct {
	ID                  string
	Name                string
	Description         string
	IsActive            bool
	DefaultDepartmentID *string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}
