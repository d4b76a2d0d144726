// Package dto holds the request and response shapes of the HTTP API.
package dto

import (
	"time"

	"github.com/yukikurage/ndt-worklog/internal/constants"
	"github.com/yukikurage/ndt-worklog/internal/models"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID          uint64            `json:"id"`
	Username    string            `json:"username,omitempty"`
	Email       string            `json:"email,omitempty"`
	FirstName   string            `json:"first_name"`
	LastName    string            `json:"last_name"`
	DisplayName string            `json:"display_name"`
	Role        models.Role       `json:"role"`
	Enabled     bool              `json:"enabled"`
	AuthSource  models.AuthSource `json:"auth_source"`
	CreatedAt   time.Time         `json:"created_at"`
}

// UserSummaryDTO is the short form used inside other resources
type UserSummaryDTO struct {
	ID          uint64 `json:"id"`
	DisplayName string `json:"display_name"`
}

// RegisterRequest is the body of POST /auth/register
type RegisterRequest struct {
	Username  string `json:"username" binding:"required,min=3,max=50"`
	Password  string `json:"password" binding:"required,min=8"`
	Email     string `json:"email" binding:"omitempty,email"`
	FirstName string `json:"first_name" binding:"max=100"`
	LastName  string `json:"last_name" binding:"max=100"`
}

// CreateUserRequest is the body of POST /users
type CreateUserRequest struct {
	RegisterRequest
	Role models.Role `json:"role" binding:"omitempty,oneof=operator team_leader admin"`
}

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UpdateRoleRequest is the body of PUT /users/:id/role
type UpdateRoleRequest struct {
	Role models.Role `json:"role" binding:"required,oneof=operator team_leader admin"`
}

// UpdateStatusRequest is the body of PUT /users/:id/status
type UpdateStatusRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	dto := UserDTO{
		ID:          user.ID,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		DisplayName: user.DisplayName(),
		Role:        user.Role,
		Enabled:     user.Enabled,
		AuthSource:  user.AuthSource,
		CreatedAt:   user.CreatedAt,
	}
	if user.Username != nil {
		dto.Username = *user.Username
	}
	if user.Email != nil {
		dto.Email = *user.Email
	}
	return dto
}

// ToUserDTOs converts a slice of users
func ToUserDTOs(users []models.User) []UserDTO {
	out := make([]UserDTO, len(users))
	for i, u := range users {
		out[i] = ToUserDTO(u)
	}
	return out
}

// ToUserSummaryDTO returns nil for a missing user
func ToUserSummaryDTO(user *models.User) *UserSummaryDTO {
	if user == nil || user.ID == 0 {
		return nil
	}
	return &UserSummaryDTO{ID: user.ID, DisplayName: user.DisplayName()}
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(constants.DateLayout, s)
}

// ParseDatePtr parses an optional date; nil and empty strings yield nil.
func ParseDatePtr(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := ParseDate(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func formatDate(t time.Time) string {
	return t.Format(constants.DateLayout)
}

func formatDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatDate(*t)
	return &s
}
