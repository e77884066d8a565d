package activity

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dickerchen-app/dickerchen/internal/notify"
)

// HistoryStore is the durable notification send history. Implements
// notify.HistoryStore; rows are append-only and pruned by age, so
// correctness does not depend on process lifetime.
type HistoryStore struct {
	pool *pgxpool.Pool
}

// NewHistoryStore creates a history store over a shared pgx pool.
func NewHistoryStore(pool *pgxpool.Pool) *HistoryStore {
	return &HistoryStore{pool: pool}
}

// CountSentToday returns how many notifications the user already received
// today in the given slot.
func (h *HistoryStore) CountSentToday(ctx context.Context, userID int64, localDate string, slot notify.TimeSlot) (int, error) {
	var n int
	err := h.pool.QueryRow(ctx, "notify_count_sent", userID, localDate, string(slot)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count sent today: %w", err)
	}
	return n, nil
}

// BodiesSentToday returns the set of message bodies sent to the user today
// across all slots.
func (h *HistoryStore) BodiesSentToday(ctx context.Context, userID int64, localDate string) (map[string]bool, error) {
	rows, err := h.pool.Query(ctx, "notify_bodies_sent", userID, localDate)
	if err != nil {
		return nil, fmt.Errorf("bodies sent today: %w", err)
	}
	defer rows.Close()

	bodies := make(map[string]bool)
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scan body: %w", err)
		}
		bodies[body] = true
	}
	return bodies, rows.Err()
}

// Record appends one confirmed send.
func (h *HistoryStore) Record(ctx context.Context, userID int64, localDate string, slot notify.TimeSlot, body string, sentAt time.Time) error {
	_, err := h.pool.Exec(ctx, "notify_record", userID, localDate, string(slot), body, sentAt)
	if err != nil {
		return fmt.Errorf("record notification: %w", err)
	}
	return nil
}

// Purge removes history older than the retention window. Only the last
// seven days matter for quota and repeat checks.
func (h *HistoryStore) Purge(ctx context.Context, olderThan time.Duration) (int64, error) {
	tag, err := h.pool.Exec(ctx,
		"DELETE FROM notification_log WHERE sent_at < NOW() - $1::interval",
		fmt.Sprintf("%d seconds", int(olderThan.Seconds())))
	if err != nil {
		return 0, fmt.Errorf("purge notification history: %w", err)
	}
	return tag.RowsAffected(), nil
}
