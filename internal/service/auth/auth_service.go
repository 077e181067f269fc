package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/mkravets/flightdesk/internal/domain"
	"github.com/mkravets/flightdesk/internal/repository"
)

type AuthUseCase interface {
	CreateCustomer(ctx context.Context, username, password string, initBalance int) (*domain.User, error)
	Login(ctx context.Context, username, password string) (*domain.User, error)
}

type AuthService struct {
	users repository.UserRepository
}

func NewAuthService(users repository.UserRepository) *AuthService {
	return &AuthService{users: users}
}

// CreateCustomer registers a new account with the given starting balance.
// Passwords are stored as bcrypt hashes only.
func (s *AuthService) CreateCustomer(ctx context.Context, username, password string, initBalance int) (*domain.User, error) {
	if username == "" || initBalance < 0 {
		return nil, domain.ErrInvalidUser
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Username:       username,
		HashedPassword: hashed,
		Balance:        initBalance,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login checks the credentials. An unknown username and a wrong password are
// indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrLoginFailed) {
			return nil, domain.ErrLoginFailed
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword(user.HashedPassword, []byte(password)); err != nil {
		return nil, domain.ErrLoginFailed
	}
	return user, nil
}

var _ AuthUseCase = (*AuthService)(nil)
