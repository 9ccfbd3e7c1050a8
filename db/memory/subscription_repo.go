package memory

import (
	"context"
	"sync"

	"github.com/avasquez/inkwell/newsletter"
)

type SubscriptionRepository struct {
	mu   sync.Mutex
	subs []newsletter.Subscription
}

var _ newsletter.SubscriptionRepository = (*SubscriptionRepository)(nil)

func NewSubscriptionRepository() *SubscriptionRepository {
	return &SubscriptionRepository{subs: []newsletter.Subscription{}}
}

func (repo *SubscriptionRepository) Insert(_ context.Context, sub *newsletter.Subscription) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	repo.subs = append(repo.subs, *sub)

	return nil
}

func (repo *SubscriptionRepository) Count(_ context.Context) (int, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	return len(repo.subs), nil
}
