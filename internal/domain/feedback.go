package domain

import "time"

// Feedback is one citizen's rating of one complaint.
type Feedback struct {
	ID          string
	ComplaintID string
	CitizenID   string
	Rating      int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// FeedbackStats aggregates ratings for a complaint. Zero ratings yield Avg 0 and Count 0.
type FeedbackStats struct {
	Avg   float64
	Count int64
}
