package ports

import (
	"context"

	"github.com/autoresolve/helpdesk-accounts/internal/core/domain"
)

// RegisterInput is the DTO passed from the transport layer on sign-up.
type RegisterInput struct {
	Email    string
	Username string
	Password string
	FullName *string
}

// UpdateInput carries the optional fields of a self-service profile update.
// A nil field is left unchanged; an empty FullName clears it.
type UpdateInput struct {
	Email    *string
	FullName *string
	Password *string
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token IssuedToken
	User  *domain.User
}

// AccountService defines the account use cases.
type AccountService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, identifier, password string) (*LoginResult, error)
	CurrentUser(ctx context.Context, claims *domain.Claims) (*domain.User, error)
	UpdateProfile(ctx context.Context, claims *domain.Claims, in UpdateInput) (*domain.User, error)
}
