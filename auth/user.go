package auth

import (
	"context"
	"fmt"
	"time"
)

type User struct {
	ID           string
	Name         string
	Email        string
	AvatarURL    string
	PasswordHash string
	CreatedAt    time.Time
}

type UserRepository interface {
	Insert(ctx context.Context, user *User) (err error)
	Find(ctx context.Context, userID string) (user *User, err error)
	FindByEmail(ctx context.Context, email string) (user *User, err error)
}

type UserNotFoundError struct {
	ID string
}

func (err UserNotFoundError) Error() string {
	return fmt.Sprintf("user with id %q not found", err.ID)
}

type UserByEmailNotFoundError struct {
	Email string
}

func (err UserByEmailNotFoundError) Error() string {
	return fmt.Sprintf("user with email %q not found", err.Email)
}

type UserAlreadyExistsError struct {
	Email string
}

func (err UserAlreadyExistsError) Error() string {
	return fmt.Sprintf("user with email %q already exists", err.Email)
}
