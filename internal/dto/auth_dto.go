package dto

import "github.com/lumio-edu/lumio-api/internal/models"

// LoginRequest carries the credentials submitted to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse returns the signed token together with the user's profile.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// UserCreateRequest is an admin request to provision a teacher or student account.
type UserCreateRequest struct {
	Name string `json:"name" validate:"required,min=2"`
	Role string `json:"role" validate:"required,oneof=teacher student"`
}

// UserCreateResponse returns the new account with its generated one-time password.
type UserCreateResponse struct {
	User     UserResponse `json:"user"`
	Password string       `json:"password"`
}

// NewUserResponse converts a User model into its public DTO.
func NewUserResponse(model models.User) UserResponse {
	return UserResponse{
		ID:    model.ID,
		Name:  model.Name,
		Email: model.Email,
		Role:  model.Role,
	}
}

// NewUserResponseSlice converts user models into DTOs.
func NewUserResponseSlice(users []models.User) []UserResponse {
	responses := make([]UserResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, NewUserResponse(user))
	}
	return responses
}
