package events

import (
	"time"

	"github.com/civicdesk/complaint-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventComplaintCreated       EventType = "complaint_created"
	EventComplaintStatusChanged EventType = "complaint_status_changed"
	EventFeedbackSubmitted      EventType = "feedback_submitted"
)

// Event represents a domain event emitted by services after commit.
type Event struct {
	ID          string      `json:"id"`
	Type        EventType   `json:"type"`
	ComplaintID string      `json:"complaint_id"`
	ActorID     string      `json:"actor_id"`
	Timestamp   time.Time   `json:"timestamp"`
	Payload     interface{} `json:"payload"`
}

// ComplaintCreatedPayload payload.
type ComplaintCreatedPayload struct {
	TrackingCode string `json:"tracking_code"`
	CategoryID   string `json:"category_id"`
	DepartmentID string `json:"department_id"`
}

// ComplaintStatusChangedPayload payload.
type ComplaintStatusChangedPayload struct {
	OldStatus    domain.ComplaintStatus `json:"old_status"`
	NewStatus    domain.ComplaintStatus `json:"new_status"`
	DepartmentID string                 `json:"department_id,omitempty"`
	Note         string                 `json:"note,omitempty"`
}

// FeedbackSubmittedPayload payload.
type FeedbackSubmittedPayload struct {
	Rating  int  `json:"rating"`
	Updated bool `json:"updated"`
}
