package dto

import (
	"github.com/taskloom/taskloom-api/internal/models"
)

// UserDTO is the public view of a user in API responses
type UserDTO struct {
	ID    uint64 `json:"id"`
	Email string `json:"email"`
}

// AuthResponse pairs the public user view with a bearer token
type AuthResponse struct {
	User  UserDTO `json:"user"`
	Token string  `json:"token"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:    user.ID,
		Email: user.Email,
	}
}

// ToAuthResponse builds the response for register/login
func ToAuthResponse(user models.User, token string) AuthResponse {
	return AuthResponse{
		User:  ToUserDTO(user),
		Token: token,
	}
}
