package sqlite3

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/avasquez/inkwell/newsletter"
)

const tableSubscriptions = "subscriptions"

type SubscriptionRepository struct {
	db *sql.DB
}

var _ newsletter.SubscriptionRepository = (*SubscriptionRepository)(nil)

func NewSubscriptionRepository(db *sql.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

func (repo *SubscriptionRepository) Insert(ctx context.Context, sub *newsletter.Subscription) error {
	q := sq.Insert(tableSubscriptions).
		Columns("email", "created_at").
		Values(sub.Email, sub.CreatedAt)

	_, err := q.RunWith(repo.db).ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to exec insert: %w", err)
	}

	return nil
}

func (repo *SubscriptionRepository) Count(ctx context.Context) (int, error) {
	var count int

	err := sq.Select("COUNT(*)").
		From(tableSubscriptions).
		RunWith(repo.db).
		QueryRowContext(ctx).
		Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count subscriptions: %w", err)
	}

	return count, nil
}
