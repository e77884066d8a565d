package handler

import (
	"encoding/json"
	"net/http"

	"github.com/dickerchen-app/dickerchen/internal/api/respond"
)

// subscriptionPayload mirrors the browser PushSubscription JSON.
type subscriptionPayload struct {
	Endpoint string `json:"endpoint"`
	Keys     struct {
		P256dh string `json:"p256dh"`
		Auth   string `json:"auth"`
	} `json:"keys"`
}

// VAPIDPublicKey hands out the key browsers need to subscribe.
// @Summary VAPID public key
// @Tags push
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} respond.ErrorResponse
// @Router /api/vapid-public-key [get]
func (h *Handler) VAPIDPublicKey(w http.ResponseWriter, r *http.Request) {
	if h.sender == nil {
		respond.Error(w, http.StatusServiceUnavailable, "PUSH_DISABLED", "Push notifications are not configured")
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{"publicKey": h.sender.PublicKey()})
}

// Subscribe registers the device's push subscription for a user. One
// subscription per user; resubscribing replaces the old endpoint.
// @Summary Register push subscription
// @Tags push
// @Accept json
// @Produce json
// @Success 201 {object} map[string]any
// @Failure 400 {object} respond.ErrorResponse
// @Router /api/subscribe [post]
func (h *Handler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID       int64                `json:"userId"`
		Subscription *subscriptionPayload `json:"subscription"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "INVALID_BODY", "Request body must be valid JSON")
		return
	}
	if req.UserID <= 0 || req.Subscription == nil {
		respond.Error(w, http.StatusBadRequest, "MISSING_FIELDS", "Missing userId or subscription")
		return
	}
	sub := req.Subscription
	if sub.Endpoint == "" || sub.Keys.P256dh == "" || sub.Keys.Auth == "" {
		respond.Error(w, http.StatusBadRequest, "INVALID_SUBSCRIPTION", "Invalid subscription format")
		return
	}

	if err := h.subs.Upsert(r.Context(), req.UserID, sub.Endpoint, sub.Keys.P256dh, sub.Keys.Auth); err != nil {
		respond.Error(w, http.StatusInternalServerError, "DB_ERROR", "Failed to store subscription")
		return
	}
	respond.JSON(w, http.StatusCreated, map[string]any{"success": true})
}

// CleanupSubscriptions removes other users' subscriptions that share this
// device's endpoint, so only the current user gets notified here.
// @Summary Clean up stale device subscriptions
// @Tags push
// @Accept json
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 400 {object} respond.ErrorResponse
// @Router /api/cleanup-subscriptions [post]
func (h *Handler) CleanupSubscriptions(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CurrentUserID int64                `json:"currentUserId"`
		Subscription  *subscriptionPayload `json:"subscription"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "INVALID_BODY", "Request body must be valid JSON")
		return
	}
	if req.Subscription == nil || req.Subscription.Endpoint == "" {
		respond.Error(w, http.StatusBadRequest, "MISSING_ENDPOINT", "Subscription endpoint required")
		return
	}

	cleaned, err := h.subs.EvictOthersOnEndpoint(r.Context(), req.Subscription.Endpoint, req.CurrentUserID)
	if err != nil {
		respond.Error(w, http.StatusInternalServerError, "DB_ERROR", "Failed to cleanup subscriptions")
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"success": true, "cleaned": cleaned})
}
