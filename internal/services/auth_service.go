package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/babycare/storefront/internal/domain/user"
	"github.com/babycare/storefront/internal/observability"
	"github.com/babycare/storefront/internal/security"
)

type UserStore interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
	Create(ctx context.Context, u user.User) (user.User, error)
}

type TokenIssuer interface {
	GenerateToken(email string) (string, error)
}

type AuthService struct {
	users  UserStore
	tokens TokenIssuer
	prom   *observability.Prom
	now    func() time.Time
}

func NewAuthService(users UserStore, tokens TokenIssuer, prom *observability.Prom) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		prom:   prom,
		now:    time.Now,
	}
}

// Register stores a new user with a bcrypt hash of the password.
// The lookup catches the common duplicate; the store's unique constraint catches the race.
func (s *AuthService) Register(ctx context.Context, req user.RegisterRequest) error {
	if len(req.Password) > user.MaxPasswordBytes {
		s.prom.ObserveAuth("register", "invalid")
		return user.ErrPasswordTooLong
	}

	_, err := s.users.GetByEmail(ctx, req.Email)

	if err == nil {
		s.prom.ObserveAuth("register", "conflict")
		return user.ErrEmailTaken
	}

	if !errors.Is(err, user.ErrNotFound) {
		s.prom.ObserveAuth("register", "error")
		return fmt.Errorf("lookup user: %w", err)
	}

	hash, err := security.HashPassword(req.Password)

	if err != nil {
		s.prom.ObserveAuth("register", "error")
		return fmt.Errorf("hash password: %w", err)
	}

	_, err = s.users.Create(ctx, user.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	})

	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			s.prom.ObserveAuth("register", "conflict")
			return user.ErrEmailTaken
		}

		s.prom.ObserveAuth("register", "error")
		return fmt.Errorf("create user: %w", err)
	}

	s.prom.ObserveAuth("register", "ok")

	return nil
}

// Login returns a signed token for valid credentials. Unknown email and wrong
// password both yield user.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, req user.LoginRequest) (string, error) {
	found, err := s.users.GetByEmail(ctx, req.Email)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			s.prom.ObserveAuth("login", "invalid")
			return "", user.ErrInvalidCredentials
		}

		s.prom.ObserveAuth("login", "error")
		return "", fmt.Errorf("lookup user: %w", err)
	}

	err = security.CheckPassword(found.PasswordHash, req.Password)

	if err != nil {
		s.prom.ObserveAuth("login", "invalid")
		return "", user.ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateToken(found.Email)

	if err != nil {
		s.prom.ObserveAuth("login", "error")
		return "", fmt.Errorf("sign token: %w", err)
	}

	s.prom.ObserveAuth("login", "ok")

	return token, nil
}
