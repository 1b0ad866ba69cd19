package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/autoresolve/helpdesk-accounts/internal/core/domain"
	"github.com/autoresolve/helpdesk-accounts/internal/core/ports"
)

// LoginLimiter abstracts the failed-login throttle (Redis).
type LoginLimiter interface {
	Blocked(ctx context.Context, key string) (bool, error)
	RecordFailure(ctx context.Context, key string) error
	Reset(ctx context.Context, key string) error
}

type noopLimiter struct{}

func (noopLimiter) Blocked(context.Context, string) (bool, error) { return false, nil }
func (noopLimiter) RecordFailure(context.Context, string) error   { return nil }
func (noopLimiter) Reset(context.Context, string) error           { return nil }

type accountService struct {
	repo    ports.UserRepository
	hasher  ports.PasswordHasher
	issuer  ports.TokenIssuer
	limiter LoginLimiter
	log     zerolog.Logger
	now     func() time.Time
}

// NewAccountService returns an AccountService implementation. limiter may be
// nil, in which case failed logins are not throttled.
func NewAccountService(
	repo ports.UserRepository,
	hasher ports.PasswordHasher,
	issuer ports.TokenIssuer,
	limiter LoginLimiter,
	log zerolog.Logger,
) ports.AccountService {
	if limiter == nil {
		limiter = noopLimiter{}
	}
	return &accountService{
		repo:    repo,
		hasher:  hasher,
		issuer:  issuer,
		limiter: limiter,
		log:     log,
		now:     time.Now,
	}
}

func (s *accountService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	email, err := domain.ValidateRegistration(domain.Registration{
		Email:    in.Email,
		Username: in.Username,
		Password: in.Password,
	})
	if err != nil {
		return nil, err
	}

	// Advisory only: the store's unique indexes decide races.
	if err := s.ensureEmailFree(ctx, email, 0); err != nil {
		return nil, err
	}
	if _, err := s.repo.FindByUsername(ctx, in.Username); err == nil {
		return nil, domain.ErrDuplicateUsername
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("register: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	created, err := s.repo.Create(ctx, &domain.User{
		Email:        email,
		Username:     in.Username,
		PasswordHash: hash,
		FullName:     cleanFullName(in.FullName),
		Role:         domain.RoleCustomer,
		IsActive:     true,
		CreatedAt:    s.now().UTC(),
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return nil, err
		}
		return nil, fmt.Errorf("register: %w", err)
	}

	s.log.Info().Int64("user_id", created.ID).Str("username", created.Username).Msg("user registered")
	return created, nil
}

func (s *accountService) Login(ctx context.Context, identifier, password string) (*ports.LoginResult, error) {
	if identifier == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}
	user, err := s.repo.FindByUsernameOrEmail(ctx, identifier)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, fmt.Errorf("login: %w", err)
		}
		user = nil
	}
	key := limiterKey(identifier, user)

	blocked, err := s.limiter.Blocked(ctx, key)
	if err != nil {
		s.log.Warn().Err(err).Msg("login limiter check failed, continuing")
	} else if blocked {
		return nil, domain.ErrTooManyAttempts
	}

	if user == nil {
		s.hasher.VerifyDummy(password)
		s.recordFailure(ctx, key)
		return nil, domain.ErrInvalidCredentials
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		s.recordFailure(ctx, key)
		return nil, domain.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, domain.ErrInactiveUser
	}

	if err := s.limiter.Reset(ctx, key); err != nil {
		s.log.Warn().Err(err).Msg("login limiter reset failed")
	}

	token, err := s.issuer.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("login: issue token: %w", err)
	}

	s.log.Info().Int64("user_id", user.ID).Msg("user logged in")
	return &ports.LoginResult{Token: token, User: user}, nil
}

func (s *accountService) CurrentUser(ctx context.Context, claims *domain.Claims) (*domain.User, error) {
	if claims == nil || claims.Subject == "" {
		return nil, domain.ErrUnauthorized
	}

	user, err := s.repo.FindByUsername(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("current user: %w", err)
	}
	if claims.UserID != 0 && claims.UserID != user.ID {
		return nil, domain.ErrUnauthorized
	}
	if !user.IsActive {
		return nil, domain.ErrInactiveUser
	}
	return user, nil
}

func (s *accountService) UpdateProfile(ctx context.Context, claims *domain.Claims, in ports.UpdateInput) (*domain.User, error) {
	user, err := s.CurrentUser(ctx, claims)
	if err != nil {
		return nil, err
	}

	if in.Email != nil {
		email, err := domain.ValidateEmail(*in.Email)
		if err != nil {
			return nil, err
		}
		if email != user.Email {
			if err := s.ensureEmailFree(ctx, email, user.ID); err != nil {
				return nil, err
			}
			user.Email = email
		}
	}

	if in.FullName != nil {
		user.FullName = cleanFullName(in.FullName)
	}

	if in.Password != nil {
		if err := domain.ValidatePassword(*in.Password); err != nil {
			return nil, err
		}
		hash, err := s.hasher.Hash(*in.Password)
		if err != nil {
			return nil, fmt.Errorf("update profile: hash password: %w", err)
		}
		user.PasswordHash = hash
	}

	if err := s.repo.Update(ctx, user); err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return nil, err
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}

	s.log.Info().Int64("user_id", user.ID).Msg("profile updated")
	return user, nil
}

// ensureEmailFree returns ErrDuplicateEmail when email belongs to an account
// other than self.
func (s *accountService) ensureEmailFree(ctx context.Context, email string, self int64) error {
	existing, err := s.repo.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("check email: %w", err)
	case existing.ID != self:
		return domain.ErrDuplicateEmail
	}
	return nil
}

func (s *accountService) recordFailure(ctx context.Context, key string) {
	if err := s.limiter.RecordFailure(ctx, key); err != nil {
		s.log.Warn().Err(err).Msg("login limiter record failed")
	}
}

// limiterKey identifies the failed-login counter. Known accounts are keyed by
// id so username and email logins share one counter and case-variant
// usernames, which are distinct accounts, never share one.
func limiterKey(identifier string, user *domain.User) string {
	if user != nil {
		return "user:" + strconv.FormatInt(user.ID, 10)
	}
	if strings.Contains(identifier, "@") {
		identifier = domain.NormalizeEmail(identifier)
	}
	return "unknown:" + identifier
}

func cleanFullName(name *string) *string {
	if name == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*name)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
