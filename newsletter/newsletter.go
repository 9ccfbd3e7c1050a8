// Package newsletter keeps the append-only subscription ledger.
package newsletter

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
)

type Subscription struct {
	Email     string
	CreatedAt time.Time
}

type SubscriptionRepository interface {
	Insert(ctx context.Context, sub *Subscription) (err error)
	Count(ctx context.Context) (count int, err error)
}

type InvalidEmailError struct {
	Email string
}

func (err InvalidEmailError) Error() string {
	return "invalid email"
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type Service struct {
	subRepo SubscriptionRepository
}

func NewService(subRepo SubscriptionRepository) *Service {
	return &Service{subRepo: subRepo}
}

// Subscribe appends the address to the ledger. Addresses are trimmed and
// lowercased; duplicates are not rejected.
func (svc *Service) Subscribe(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	if !emailPattern.MatchString(email) {
		return InvalidEmailError{Email: email}
	}

	sub := &Subscription{
		Email:     email,
		CreatedAt: time.Now(),
	}

	err := svc.subRepo.Insert(ctx, sub)
	if err != nil {
		return fmt.Errorf("failed to insert subscription: %w", err)
	}

	return nil
}

func (svc *Service) Count(ctx context.Context) (int, error) {
	count, err := svc.subRepo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count subscriptions: %w", err)
	}

	return count, nil
}
