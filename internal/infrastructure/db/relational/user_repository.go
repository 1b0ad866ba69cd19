package relational

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/autoresolve/helpdesk-accounts/internal/core/domain"
	"github.com/autoresolve/helpdesk-accounts/internal/core/ports"
)

const pgUniqueViolation = "23505"

type userRecord struct {
	ID             int64 `gorm:"primaryKey"`
	Email          string
	Username       string
	HashedPassword string
	FullName       *string
	Role           string
	IsActive       bool
	CreatedAt      time.Time
}

func (userRecord) TableName() string { return "users" }

func (r *userRecord) toDomain() *domain.User {
	return &domain.User{
		ID:           r.ID,
		Email:        r.Email,
		Username:     r.Username,
		PasswordHash: r.HashedPassword,
		FullName:     r.FullName,
		Role:         r.Role,
		IsActive:     r.IsActive,
		CreatedAt:    r.CreatedAt.UTC(),
	}
}

func fromDomain(u *domain.User) *userRecord {
	return &userRecord{
		ID:             u.ID,
		Email:          u.Email,
		Username:       u.Username,
		HashedPassword: u.PasswordHash,
		FullName:       u.FullName,
		Role:           u.Role,
		IsActive:       u.IsActive,
		CreatedAt:      u.CreatedAt,
	}
}

type userRepository struct {
	db      *gorm.DB
	timeout time.Duration
}

// NewUserRepository returns a UserRepository backed by db. Each call is
// bounded by timeout.
func NewUserRepository(db *gorm.DB, timeout time.Duration) ports.UserRepository {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &userRepository{db: db, timeout: timeout}
}

func (r *userRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, "username = ?", username)
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, "lower(email) = ?", domain.NormalizeEmail(email))
}

func (r *userRepository) FindByUsernameOrEmail(ctx context.Context, identifier string) (*domain.User, error) {
	u, err := r.FindByUsername(ctx, identifier)
	if err == nil || !errors.Is(err, domain.ErrUserNotFound) {
		return u, err
	}
	return r.FindByEmail(ctx, identifier)
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	rec := fromDomain(user)
	rec.ID = 0
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		if dup := classifyUnique(err); dup != nil {
			return nil, dup
		}
		return nil, fmt.Errorf("relational: create user: %w", err)
	}
	return rec.toDomain(), nil
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var fullName any
	if user.FullName != nil {
		fullName = *user.FullName
	}

	res := r.db.WithContext(ctx).
		Model(&userRecord{}).
		Where("id = ?", user.ID).
		Updates(map[string]any{
			"email":           user.Email,
			"full_name":       fullName,
			"hashed_password": user.PasswordHash,
		})
	if res.Error != nil {
		if dup := classifyUnique(res.Error); dup != nil {
			return dup
		}
		return fmt.Errorf("relational: update user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *userRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var n int64
	if err := r.db.WithContext(ctx).Model(&userRecord{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("relational: count users: %w", err)
	}
	return n, nil
}

func (r *userRepository) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *userRepository) findOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var rec userRecord
	err := r.db.WithContext(ctx).Where(query, arg).Take(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("relational: find user: %w", err)
	}
	return rec.toDomain(), nil
}

// classifyUnique maps a unique-constraint failure to the matching domain
// error, or returns nil when err is something else. Only the index or column
// name is inspected; driver messages may echo the duplicated value.
func classifyUnique(err error) error {
	var pgErr *pgconn.PgError
	switch {
	case errors.As(err, &pgErr):
		if pgErr.Code != pgUniqueViolation {
			return nil
		}
		switch pgErr.ConstraintName {
		case "ux_users_email":
			return domain.ErrDuplicateEmail
		case "ux_users_username":
			return domain.ErrDuplicateUsername
		}
		return domain.ErrUserExists
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return domain.ErrUserExists
	}

	// sqlite: "UNIQUE constraint failed: users.username" for column indexes,
	// "UNIQUE constraint failed: index 'ux_users_email'" for expression ones.
	target, ok := sqliteUniqueTarget(err.Error())
	if !ok {
		return nil
	}
	switch target {
	case "ux_users_email", "users.email":
		return domain.ErrDuplicateEmail
	case "ux_users_username", "users.username":
		return domain.ErrDuplicateUsername
	}
	return domain.ErrUserExists
}

func sqliteUniqueTarget(msg string) (string, bool) {
	_, target, ok := strings.Cut(msg, "UNIQUE constraint failed: ")
	if !ok {
		return "", false
	}
	target = strings.TrimPrefix(target, "index ")
	if i := strings.IndexAny(target, " ,"); i >= 0 {
		target = target[:i]
	}
	return strings.Trim(target, "'"), true
}
