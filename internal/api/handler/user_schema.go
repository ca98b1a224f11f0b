package handler

import (
	"time"

	"github.com/identikit/identity-api/internal/core/domain"
	"github.com/identikit/identity-api/internal/core/ports"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// msgResponse carries a human-readable confirmation message.
type msgResponse struct {
	Msg string `json:"msg"`
}

// --- Request types ---

type loginRequest struct {
	// OAuth2 password-grant form compatibility: the email travels in the
	// "username" field.
	Email    string `json:"email" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

type createUserRequest struct {
	Email       string `json:"email" validate:"required,email"`
	FullName    string `json:"full_name"`
	Password    string `json:"password"`
	IsActive    *bool  `json:"is_active"`
	IsSuperuser *bool  `json:"is_superuser"`
}

func (r createUserRequest) toInput() ports.CreateUserInput {
	in := ports.CreateUserInput{
		Email:    r.Email,
		FullName: r.FullName,
		Password: r.Password,
		IsActive: true,
	}
	if r.IsActive != nil {
		in.IsActive = *r.IsActive
	}
	if r.IsSuperuser != nil {
		in.IsSuperuser = *r.IsSuperuser
	}
	return in
}

// openRegisterRequest is the self-service variant: no admin flags.
type openRegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	FullName string `json:"full_name"`
	Password string `json:"password"`
}

type updateUserRequest struct {
	Email       *string `json:"email" validate:"omitempty,email"`
	FullName    *string `json:"full_name"`
	Password    *string `json:"password"`
	IsActive    *bool   `json:"is_active"`
	IsSuperuser *bool   `json:"is_superuser"`
}

type updateMeRequest struct {
	FullName    *string `json:"full_name"`
	Password    *string `json:"password"`
	OldPassword string  `json:"old_password"`
}

type resetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required"`
}

// --- Response types ---

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type userResponse struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name,omitempty"`
	IsActive     bool      `json:"is_active"`
	IsSuperuser  bool      `json:"is_superuser"`
	PasswordSet  bool      `json:"password_set"`
	TimeCreation time.Time `json:"time_creation"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:           u.ID,
		Email:        u.Email,
		FullName:     u.FullName,
		IsActive:     u.IsActive,
		IsSuperuser:  u.IsSuperuser,
		PasswordSet:  u.PasswordSet,
		TimeCreation: u.TimeCreation,
	}
}

func toUserResponses(users []*domain.User) []userResponse {
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	return out
}
