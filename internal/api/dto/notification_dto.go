package dto

import (
	"time"

	"github.com/civicdesk/complaint-service/internal/domain"
)

type NotificationResponse struct {
	ID          string    `json:"id"`
	ComplaintID string    `json:"complaintId"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	Link        string    `json:"link"`
	IsRead      bool      `json:"isRead"`
	CreatedAt   time.Time `json:"createdAt"`
}

func NewNotificationResponses(items []domain.Notification) []NotificationResponse {
	out := make([]NotificationResponse, 0, len(items))
	for _, n := range items {
		out = append(out, NotificationResponse{
			ID:          n.ID,
			ComplaintID: n.ComplaintID,
			Title:       n.Title,
			Body:        n.Body,
			Link:        n.Link,
			IsRead:      n.IsRead,
			CreatedAt:   n.CreatedAt,
		})
	}
	return out
}
