// Package auth implements the mock authentication scheme: users resolved or
// created in the user repository, and tokens carrying only the user id and
// issue time. The token format is pluggable through TokenIssuer so the
// scheme can be swapped for a verifiable credential without touching the
// rest of the system.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrMissingRegisterFields = errors.New("name, email, password required")
)

// DemoUserID is the identity assumed for requests that carry no token and no
// user header.
const DemoUserID = "u1"

type Service struct {
	userRepo UserRepository
	tokens   TokenIssuer
}

func NewService(userRepo UserRepository, tokens TokenIssuer) *Service {
	return &Service{
		userRepo: userRepo,
		tokens:   tokens,
	}
}

func HashPassword(password string) (string, error) {
	bcryptHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	return string(bcryptHash), nil
}

func (svc *Service) Register(ctx context.Context, name, email, password string) (string, *User, error) {
	if name == "" || email == "" || password == "" {
		return "", nil, ErrMissingRegisterFields
	}

	_, err := svc.userRepo.FindByEmail(ctx, email)
	if err != nil {
		var notFoundErr UserByEmailNotFoundError
		if !errors.As(err, &notFoundErr) {
			return "", nil, fmt.Errorf("failed to check for existing user: %w", err)
		}
	} else {
		return "", nil, UserAlreadyExistsError{Email: email}
	}

	passwordHash, err := HashPassword(password)
	if err != nil {
		return "", nil, err
	}

	user := &User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		AvatarURL:    "https://i.pravatar.cc/80?u=" + url.QueryEscape(email),
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}

	err = svc.userRepo.Insert(ctx, user)
	if err != nil {
		return "", nil, fmt.Errorf("failed to insert user: %w", err)
	}

	token, err := svc.tokens.Issue(user.ID)
	if err != nil {
		return "", nil, fmt.Errorf("failed to issue token: %w", err)
	}

	return token, sanitized(user), nil
}

func (svc *Service) Login(ctx context.Context, email, password string) (string, *User, error) {
	user, err := svc.userRepo.FindByEmail(ctx, email)
	if err != nil {
		var notFoundErr UserByEmailNotFoundError
		if errors.As(err, &notFoundErr) {
			return "", nil, ErrInvalidCredentials
		}

		return "", nil, fmt.Errorf("failed to find user by email: %w", err)
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return "", nil, ErrInvalidCredentials
		}

		return "", nil, fmt.Errorf("failed to compare password hash: %w", err)
	}

	token, err := svc.tokens.Issue(user.ID)
	if err != nil {
		return "", nil, fmt.Errorf("failed to issue token: %w", err)
	}

	return token, sanitized(user), nil
}

// Refresh issues a fresh token for the current request identity.
func (svc *Service) Refresh(_ context.Context, userID string) (string, error) {
	token, err := svc.tokens.Issue(userID)
	if err != nil {
		return "", fmt.Errorf("failed to issue token: %w", err)
	}

	return token, nil
}

func (svc *Service) Me(ctx context.Context, userID string) (*User, error) {
	user, err := svc.userRepo.Find(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return sanitized(user), nil
}

// Subject resolves a token back to its user id.
func (svc *Service) Subject(token string) (string, error) {
	return svc.tokens.Subject(token)
}

// SeedDemoUser inserts the demo user when it is not already present, so the
// seeded post corpus always has a matching login.
func SeedDemoUser(ctx context.Context, userRepo UserRepository) error {
	_, err := userRepo.Find(ctx, DemoUserID)
	if err == nil {
		return nil
	}

	var notFoundErr UserNotFoundError
	if !errors.As(err, &notFoundErr) {
		return fmt.Errorf("failed to check for demo user: %w", err)
	}

	passwordHash, err := HashPassword("password")
	if err != nil {
		return err
	}

	user := &User{
		ID:           DemoUserID,
		Name:         "Alex Rivera",
		Email:        "alex@example.com",
		AvatarURL:    "https://i.pravatar.cc/80?img=1",
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}

	err = userRepo.Insert(ctx, user)
	if err != nil {
		return fmt.Errorf("failed to insert demo user: %w", err)
	}

	return nil
}

// sanitized returns a copy with no password material.
func sanitized(user *User) *User {
	out := *user
	out.PasswordHash = ""

	return &out
}
