package dto

import (
	"time"

	"github.com/civicdesk/complaint-service/internal/domain"
)

// RegisterRequest payload for new citizens.
type RegisterRequest struct {
	Email    string  `json:"email" validate:"required,email,max=254"`
	Phone    *string `json:"phone" validate:"omitempty,max=32"`
	Password string  `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      UserResponse `json:"user"`
}

type UserResponse struct {
	ID    string        `json:"id"`
	Email string        `json:"email"`
	Phone *string       `json:"phone,omitempty"`
	Roles []domain.Role `json:"roles"`
}

func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{ID: u.ID, Email: u.Email, Phone: u.Phone, Roles: u.Roles}
}
