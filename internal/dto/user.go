package dto

import (
	"time"

	"github.com/minase/task-backend/internal/models"
)

// UserRequest is the admin write shape for user accounts.
type UserRequest struct {
	Username    string   `json:"username" binding:"required,min=3,max=50"`
	Email       string   `json:"email" binding:"omitempty,email"`
	Password    string   `json:"password"`
	IsStaff     bool     `json:"is_staff"`
	IsSuperuser bool     `json:"is_superuser"`
	Groups      []uint64 `json:"groups"`
}

// UserDTO represents a user in API responses
type UserDTO struct {
	ID          uint64    `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	IsStaff     bool      `json:"is_staff"`
	IsSuperuser bool      `json:"is_superuser"`
	DateJoined  time.Time `json:"date_joined"`
	Groups      []uint64  `json:"groups"`
}

// ToUserDTO converts a User model to UserDTO. Groups must be preloaded for
// the membership ids to appear.
func ToUserDTO(user models.User) UserDTO {
	dto := UserDTO{
		ID:          user.ID,
		Username:    user.Username,
		Email:       user.Email,
		IsStaff:     user.IsStaff,
		IsSuperuser: user.IsSuperuser,
		DateJoined:  user.DateJoined,
	}

	dto.Groups = make([]uint64, len(user.Groups))
	for i, group := range user.Groups {
		dto.Groups[i] = group.ID
	}

	return dto
}

// ToUserDTOs converts a slice of users
func ToUserDTOs(users []models.User) []UserDTO {
	dtos := make([]UserDTO, len(users))
	for i, user := range users {
		dtos[i] = ToUserDTO(user)
	}
	return dtos
}
