package handler

import (
	"time"

	"github.com/autoresolve/helpdesk-accounts/internal/core/domain"
)

type registerRequest struct {
	Email    string  `json:"email" form:"email" validate:"required,max=254"`
	Username string  `json:"username" form:"username" validate:"required,min=3,max=20"`
	Password string  `json:"password" form:"password" validate:"required"`
	FullName *string `json:"full_name" form:"full_name" validate:"omitempty,max=255"`
}

// loginRequest accepts JSON or an OAuth2 password-grant form body. The
// username field may hold either a username or an email address. Empty
// fields are left to the service, which rejects them as bad credentials.
type loginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

type updateUserRequest struct {
	Email    *string `json:"email" validate:"omitempty,max=254"`
	FullName *string `json:"full_name" validate:"omitempty,max=255"`
	Password *string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// userResponse is the public view of an account.
type userResponse struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	FullName  *string   `json:"full_name"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		FullName:  u.FullName,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

// ErrorResponse is the envelope every failed request renders.
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}
