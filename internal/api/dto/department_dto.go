package dto

import (
	"time"

	"github.com/civicdesk/complaint-service/internal/domain"
)

// AddMemberRequest payload. Role defaults to MEMBER.
type AddMemberRequest struct {
	UserID string `json:"userId" validate:"required"`
	Role   string `json:"role" validate:"omitempty,max=16"`
}

// ChangeRoleRequest payload.
type ChangeRoleRequest struct {
	Role string `json:"role" validate:"required,max=16"`
}

type MemberResponse struct {
	ID           string            `json:"id"`
	DepartmentID string            `json:"departmentId"`
	UserID       string            `json:"userId"`
	UserEmail    string            `json:"userEmail,omitempty"`
	UserPhone    *string           `json:"userPhone,omitempty"`
	Role         domain.MemberRole `json:"role"`
	Active       bool              `json:"active"`
	UpdatedAt    time.Time         `json:"updatedAt"`
}

func NewMemberResponse(m *domain.DepartmentMember) MemberResponse {
	return MemberResponse{
		ID:           m.ID,
		DepartmentID: m.DepartmentID,
		UserID:       m.UserID,
		UserEmail:    m.UserEmail,
		UserPhone:    m.UserPhone,
		Role:         m.Role,
		Active:       m.Active,
		UpdatedAt:    m.UpdatedAt,
	}
}

type CategoryResponse struct {
	ID                  string  `json:"id"`
	Name                string  `json:"name"`
	Description         string  `json:"description,omitempty"`
	DefaultDepartmentID *string `json:"defaultDepartmentId"`
}

type DepartmentResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

func NewCategoryResponses(items []domain.ComplaintCategory) []CategoryResponse {
	out := make([]CategoryResponse, 0, len(items))
	for _, c := range items {
		out = append(out, CategoryResponse{ID: c.ID, Name: c.Name, Description: c.Description, DefaultDepartmentID: c.DefaultDepartmentID})
	}
	return out
}

func NewDepartmentResponses(items []domain.Department) []DepartmentResponse {
	out := make([]DepartmentResponse, 0, len(items))
	for _, d := range items {
		out = append(out, DepartmentResponse{ID: d.ID, Name: d.Name, Description: d.Description})
	}
	return out
}
