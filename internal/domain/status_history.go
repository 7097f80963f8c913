package domain

import "time"

// StatusHistory is an immutable audit trail entry. FromStatus is nil only for the
// entry written at creation.
type StatusHistory struct {
	ID          string
	ComplaintID string
	FromStatus  *ComplaintStatus
	ToStatus    ComplaintStatus
	ActorID     string
	Note        *string
	CreatedAt   time.Time
}
