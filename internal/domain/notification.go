package domain

import "time"

// Notification is a persisted message to a complaint owner.
type Notification struct {
	ID          string
	UserID      string
	ComplaintID string
	Title       string
	Body        string
	Link        string
	IsRead      bool
	CreatedAt   time.Time
}
