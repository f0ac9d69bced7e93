package postgres

import (
	"context"
	"database/sql"
	"errors"

	"churchsite/internal/domain"
)

type subscriptionRepository struct {
	DB *sql.DB
}

func NewSubscriptionRepository(db *sql.DB) domain.SubscriptionRepository {
	return &subscriptionRepository{
		DB: db,
	}
}

// Create inserts a subscriber or reactivates a previously unsubscribed email.
// An email that is already active yields no row and maps to ErrAlreadySubscribed.
func (r *subscriptionRepository) Create(ctx context.Context, s *domain.Subscription) error {
	query := `
		INSERT INTO subscriptions (email, name, is_active, created_at)
		VALUES ($1, $2, TRUE, $3)
		ON CONFLICT (email) DO UPDATE
		SET is_active = TRUE, name = COALESCE(EXCLUDED.name, subscriptions.name)
		WHERE subscriptions.is_active = FALSE
		RETURNING id, is_active, created_at
	`
	err := r.DB.QueryRowContext(ctx, query, s.Email, s.Name, s.CreatedAt).Scan(&s.ID, &s.IsActive, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrAlreadySubscribed
		}
		return err
	}
	return nil
}

func (r *subscriptionRepository) Deactivate(ctx context.Context, email string) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE subscriptions SET is_active = FALSE WHERE email = $1 AND is_active = TRUE`, email)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *subscriptionRepository) List(ctx context.Context, activeOnly bool) ([]*domain.Subscription, error) {
	query := `SELECT id, email, name, is_active, created_at FROM subscriptions`
	if activeOnly {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY created_at DESC`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	subs := make([]*domain.Subscription, 0)
	for rows.Next() {
		s := &domain.Subscription{}
		var name sql.NullString
		if err := rows.Scan(&s.ID, &s.Email, &name, &s.IsActive, &s.CreatedAt); err != nil {
			return nil, err
		}
		s.Name = fromNullString(name)
		subs = append(subs, s)
	}
	return subs, rows.Err()
}
