// Package push delivers Web Push notifications to users' registered
// browser endpoints using VAPID.
package push

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Subscription is one browser push registration.
type Subscription struct {
	UserID   int64
	Endpoint string
	P256dh   string
	Auth     string
}

// SubscriptionStore persists push subscriptions, one per user (the newest
// browser registration wins).
type SubscriptionStore struct {
	pool *pgxpool.Pool
}

// NewSubscriptionStore creates a store over a shared pgx pool.
func NewSubscriptionStore(pool *pgxpool.Pool) *SubscriptionStore {
	return &SubscriptionStore{pool: pool}
}

// Upsert saves or replaces the user's subscription.
func (s *SubscriptionStore) Upsert(ctx context.Context, userID int64, endpoint, p256dh, auth string) error {
	_, err := s.pool.Exec(ctx, "subs_upsert", userID, endpoint, p256dh, auth)
	if err != nil {
		return fmt.Errorf("upsert subscription: %w", err)
	}
	return nil
}

// ForUser returns the user's registered endpoints.
func (s *SubscriptionStore) ForUser(ctx context.Context, userID int64) ([]Subscription, error) {
	rows, err := s.pool.Query(ctx, "subs_for_user", userID)
	if err != nil {
		return nil, fmt.Errorf("subscriptions for user: %w", err)
	}
	defer rows.Close()

	var subs []Subscription
	for rows.Next() {
		sub := Subscription{UserID: userID}
		if err := rows.Scan(&sub.Endpoint, &sub.P256dh, &sub.Auth); err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// All returns every registered subscription.
func (s *SubscriptionStore) All(ctx context.Context) ([]Subscription, error) {
	rows, err := s.pool.Query(ctx, "subs_all")
	if err != nil {
		return nil, fmt.Errorf("all subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []Subscription
	for rows.Next() {
		var sub Subscription
		if err := rows.Scan(&sub.UserID, &sub.Endpoint, &sub.P256dh, &sub.Auth); err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// Delete removes one of the user's endpoints, typically after the push
// service reported it gone.
func (s *SubscriptionStore) Delete(ctx context.Context, userID int64, endpoint string) error {
	_, err := s.pool.Exec(ctx, "subs_delete_endpoint", userID, endpoint)
	if err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}
	return nil
}

// EvictOthersOnEndpoint removes subscriptions other users left behind on
// the same browser endpoint, so a shared device only notifies whoever is
// signed in now.
func (s *SubscriptionStore) EvictOthersOnEndpoint(ctx context.Context, endpoint string, keepUserID int64) (int64, error) {
	tag, err := s.pool.Exec(ctx, "subs_evict_endpoint", endpoint, keepUserID)
	if err != nil {
		return 0, fmt.Errorf("evict subscriptions: %w", err)
	}
	return tag.RowsAffected(), nil
}

// DeleteStale removes subscriptions that have not been refreshed within
// the retention window.
func (s *SubscriptionStore) DeleteStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		"DELETE FROM push_subscriptions WHERE updated_at < NOW() - $1::interval",
		fmt.Sprintf("%d seconds", int(olderThan.Seconds())))
	if err != nil {
		return 0, fmt.Errorf("delete stale subscriptions: %w", err)
	}
	return tag.RowsAffected(), nil
}
