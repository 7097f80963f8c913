package domain

import "time"

// ComplaintStatus enumerates lifecycle states for complaints.
type ComplaintStatus string

const (
	ComplaintStatusNew      ComplaintStatus = "NEW"
	ComplaintStatusInReview ComplaintStatus = "IN_REVIEW"
	ComplaintStatusResolved ComplaintStatus = "RESOLVED"
	ComplaintStatusClosed   ComplaintStatus = "CLOSED"
)

// Valid reports whether s is a known status.
func (s ComplaintStatus) Valid() bool {
	switch s {
	case ComplaintStatusNew, ComplaintStatusInReview, ComplaintStatusResolved, ComplaintStatusClosed:
		return true
	}
	return false
}

// Rateable reports whether citizens may leave feedback in this status.
func (s ComplaintStatus) Rateable() bool {
	return s == ComplaintStatusResolved || s == ComplaintStatusClosed
}

// Complaint is the aggregate for citizen complaints.
//
// TrackingCode is assigned before the first insert and never changes.
// PublicAnswer is only set together with ResolvedAt on the transition to RESOLVED.
type Complaint struct {
	ID           string
	TrackingCode string
	OwnerID      string
	CategoryID   string
	DepartmentID *string
	Title        string
	Description  string
	Status       ComplaintStatus
	Lat          *float64
	Lon          *float64
	PublicAnswer *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	ResolvedAt   *time.Time
	ClosedAt     *time.Time

	// Populated by read queries that join reference data.
	CategoryName   string
	DepartmentName string
	OwnerEmail     string
}

// PublicFeedRow is a resolved complaint joined with its rating aggregate.
type PublicFeedRow struct {
	ID             string
	TrackingCode   string
	Title          string
	CategoryName   string
	DepartmentName string
	Status         ComplaintStatus
	ResolvedAt     *time.Time
	PublicAnswer   *string
	Stats          FeedbackStats
}
