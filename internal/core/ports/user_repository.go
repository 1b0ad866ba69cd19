package ports

import (
	"context"

	"github.com/autoresolve/helpdesk-accounts/internal/core/domain"
)

// UserRepository defines persistence operations for accounts. Lookups return
// domain.ErrUserNotFound when nothing matches; Create and Update return
// domain.ErrDuplicateEmail or domain.ErrDuplicateUsername on unique violations.
type UserRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	// FindByEmail matches case-insensitively.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// FindByUsernameOrEmail tries an exact username match first, then email.
	FindByUsernameOrEmail(ctx context.Context, identifier string) (*domain.User, error)
	// Create assigns ID and CreatedAt and returns the stored user.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	// Update persists Email, FullName and PasswordHash of an existing user.
	Update(ctx context.Context, user *domain.User) error
	Count(ctx context.Context) (int64, error)
	Ping(ctx context.Context) error
}
