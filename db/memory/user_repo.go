package memory

import (
	"context"
	"sync"

	"github.com/avasquez/inkwell/auth"
)

type UserRepository struct {
	mu    sync.Mutex
	users map[string]*auth.User
}

var _ auth.UserRepository = (*UserRepository)(nil)

func NewUserRepository() *UserRepository {
	return &UserRepository{users: map[string]*auth.User{}}
}

func (repo *UserRepository) Insert(_ context.Context, user *auth.User) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	out := *user
	repo.users[user.ID] = &out

	return nil
}

func (repo *UserRepository) Find(_ context.Context, userID string) (*auth.User, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	user, ok := repo.users[userID]
	if !ok {
		return nil, auth.UserNotFoundError{ID: userID}
	}

	out := *user

	return &out, nil
}

func (repo *UserRepository) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	for _, user := range repo.users {
		if user.Email == email {
			out := *user

			return &out, nil
		}
	}

	return nil, auth.UserByEmailNotFoundError{Email: email}
}
