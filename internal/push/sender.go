package push

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"
)

// ErrNoSubscription is returned when the target user never registered a
// push subscription.
var ErrNoSubscription = errors.New("no push subscription")

// payload is what the service worker receives.
type payload struct {
	Title string         `json:"title"`
	Body  string         `json:"body"`
	Icon  string         `json:"icon"`
	Badge string         `json:"badge"`
	Data  map[string]any `json:"data,omitempty"`
}

// Sender delivers Web Push messages with VAPID authentication.
// Nil-safe: when VAPID keys are not configured, NewSender returns nil and
// callers skip notification features.
type Sender struct {
	store      *SubscriptionStore
	publicKey  string
	privateKey string
	subscriber string
	ttl        int
	logger     *slog.Logger
}

// NewSender creates a Web Push sender. Returns nil if either VAPID key is
// empty (notifications disabled).
func NewSender(store *SubscriptionStore, publicKey, privateKey, subscriber string, logger *slog.Logger) *Sender {
	if publicKey == "" || privateKey == "" {
		return nil
	}
	return &Sender{
		store:      store,
		publicKey:  publicKey,
		privateKey: privateKey,
		subscriber: subscriber,
		ttl:        3600,
		logger:     logger,
	}
}

// PublicKey returns the VAPID public key browsers subscribe with.
func (s *Sender) PublicKey() string { return s.publicKey }

// GenerateVAPIDKeys creates a fresh VAPID key pair.
func GenerateVAPIDKeys() (privateKey, publicKey string, err error) {
	return webpush.GenerateVAPIDKeys()
}

// Send pushes a title/body to all of the user's endpoints. Returns nil when
// at least one endpoint accepted the message. Endpoints the push service
// reports gone (404/410) are removed — the routine case for dead browser
// registrations.
func (s *Sender) Send(ctx context.Context, userID int64, title, body string) error {
	return s.SendWithData(ctx, userID, title, body, nil)
}

// SendWithData is Send with extra fields for the service worker, e.g. who
// triggered a user-to-user nudge.
func (s *Sender) SendWithData(ctx context.Context, userID int64, title, body string, data map[string]any) error {
	subs, err := s.store.ForUser(ctx, userID)
	if err != nil {
		return err
	}
	if len(subs) == 0 {
		return fmt.Errorf("user %d: %w", userID, ErrNoSubscription)
	}

	if data == nil {
		data = map[string]any{}
	}
	data["userId"] = userID
	msg, err := json.Marshal(payload{
		Title: title,
		Body:  body,
		Icon:  "/icon-192.svg",
		Badge: "/icon-192.svg",
		Data:  data,
	})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	delivered := 0
	for _, sub := range subs {
		if err := s.sendTo(ctx, sub, msg); err != nil {
			s.logger.Warn("push endpoint failed", "user_id", userID, "error", err)
			continue
		}
		delivered++
	}
	if delivered == 0 {
		return fmt.Errorf("all %d push endpoints failed for user %d", len(subs), userID)
	}
	return nil
}

// SendToAll pushes the same message to every registered subscription.
// Returns how many users were reached.
func (s *Sender) SendToAll(ctx context.Context, title, body string) (int, error) {
	subs, err := s.store.All(ctx)
	if err != nil {
		return 0, err
	}

	msg, err := json.Marshal(payload{
		Title: title,
		Body:  body,
		Icon:  "/icon-192.svg",
		Badge: "/icon-192.svg",
	})
	if err != nil {
		return 0, fmt.Errorf("marshal payload: %w", err)
	}

	sent := 0
	for _, sub := range subs {
		if err := s.sendTo(ctx, sub, msg); err != nil {
			s.logger.Warn("push endpoint failed", "user_id", sub.UserID, "error", err)
			continue
		}
		sent++
	}
	return sent, nil
}

func (s *Sender) sendTo(ctx context.Context, sub Subscription, msg []byte) error {
	resp, err := webpush.SendNotificationWithContext(ctx, msg, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys:     webpush.Keys{P256dh: sub.P256dh, Auth: sub.Auth},
	}, &webpush.Options{
		Subscriber:      s.subscriber,
		VAPIDPublicKey:  s.publicKey,
		VAPIDPrivateKey: s.privateKey,
		TTL:             s.ttl,
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		// Subscription expired on the push service; drop it.
		if delErr := s.store.Delete(ctx, sub.UserID, sub.Endpoint); delErr != nil {
			s.logger.Warn("delete expired subscription failed", "user_id", sub.UserID, "error", delErr)
		}
		return fmt.Errorf("subscription gone (%d)", resp.StatusCode)
	case resp.StatusCode >= 400:
		return fmt.Errorf("push service returned %d", resp.StatusCode)
	}
	return nil
}
