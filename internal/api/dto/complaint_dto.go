package dto

import (
	"time"

	"github.com/civicdesk/complaint-service/internal/domain"
)

// CreateComplaintRequest payload.
type CreateComplaintRequest struct {
	Title       string   `json:"title" validate:"required,max=200"`
	Description string   `json:"description" validate:"required,max=4000"`
	CategoryID  string   `json:"categoryId" validate:"required"`
	Lat         *float64 `json:"lat" validate:"omitempty,min=-90,max=90"`
	Lon         *float64 `json:"lon" validate:"omitempty,min=-180,max=180"`
}

// ChangeStatusRequest payload for staff status changes.
type ChangeStatusRequest struct {
	ToStatus     string  `json:"toStatus" validate:"required"`
	Note         *string `json:"note" validate:"omitempty,max=2000"`
	PublicAnswer *string `json:"publicAnswer" validate:"omitempty,max=4000"`
}

// ComplaintResponse is the full complaint view for owners and staff.
type ComplaintResponse struct {
	ID             string                 `json:"id"`
	TrackingCode   string                 `json:"trackingCode"`
	Title          string                 `json:"title"`
	Description    string                 `json:"description"`
	Status         domain.ComplaintStatus `json:"status"`
	CategoryID     string                 `json:"categoryId"`
	CategoryName   string                 `json:"categoryName,omitempty"`
	DepartmentID   *string                `json:"departmentId"`
	DepartmentName string                 `json:"departmentName,omitempty"`
	OwnerID        string                 `json:"ownerId"`
	OwnerEmail     string                 `json:"ownerEmail,omitempty"`
	Lat            *float64               `json:"lat,omitempty"`
	Lon            *float64               `json:"lon,omitempty"`
	PublicAnswer   *string                `json:"publicAnswer"`
	CreatedAt      time.Time              `json:"createdAt"`
	UpdatedAt      time.Time              `json:"updatedAt"`
	ResolvedAt     *time.Time             `json:"resolvedAt"`
	ClosedAt       *time.Time             `json:"closedAt"`
}

func NewComplaintResponse(c *domain.Complaint) ComplaintResponse {
	return ComplaintResponse{
		ID:             c.ID,
		TrackingCode:   c.TrackingCode,
		Title:          c.Title,
		Description:    c.Description,
		Status:         c.Status,
		CategoryID:     c.CategoryID,
		CategoryName:   c.CategoryName,
		DepartmentID:   c.DepartmentID,
		DepartmentName: c.DepartmentName,
		OwnerID:        c.OwnerID,
		OwnerEmail:     c.OwnerEmail,
		Lat:            c.Lat,
		Lon:            c.Lon,
		PublicAnswer:   c.PublicAnswer,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
		ResolvedAt:     c.ResolvedAt,
		ClosedAt:       c.ClosedAt,
	}
}

func NewComplaintResponses(items []domain.Complaint) []ComplaintResponse {
	out := make([]ComplaintResponse, 0, len(items))
	for i := range items {
		out = append(out, NewComplaintResponse(&items[i]))
	}
	return out
}

// TrackResponse is the anonymous tracking view.
type TrackResponse struct {
	TrackingCode   string                 `json:"trackingCode"`
	Status         domain.ComplaintStatus `json:"status"`
	DepartmentName string                 `json:"departmentName"`
}

// HistoryResponse is one audit entry.
type HistoryResponse struct {
	ID         string                  `json:"id"`
	FromStatus *domain.ComplaintStatus `json:"fromStatus"`
	ToStatus   domain.ComplaintStatus  `json:"toStatus"`
	ActorID    string                  `json:"actorId"`
	Note       *string                 `json:"note"`
	CreatedAt  time.Time               `json:"createdAt"`
}

func NewHistoryResponses(items []domain.StatusHistory) []HistoryResponse {
	out := make([]HistoryResponse, 0, len(items))
	for _, h := range items {
		out = append(out, HistoryResponse{
			ID:         h.ID,
			FromStatus: h.FromStatus,
			ToStatus:   h.ToStatus,
			ActorID:    h.ActorID,
			Note:       h.Note,
			CreatedAt:  h.CreatedAt,
		})
	}
	return out
}

// PageResponse wraps a paginated list.
type PageResponse[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Size  int `json:"size"`
}
