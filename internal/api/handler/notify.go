package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dickerchen-app/dickerchen/internal/api/respond"
	"github.com/dickerchen-app/dickerchen/internal/notify"
	"github.com/dickerchen-app/dickerchen/internal/push"
)

const (
	defaultNotifyTitle = "Dickerchen"
	defaultNotifyBody  = "Zeit für deine Dicke! 💪"
)

// SendNotification pushes a message from one user to another.
// @Summary Send a user-to-user push notification
// @Tags push
// @Accept json
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 404 {object} respond.ErrorResponse
// @Router /api/send-notification [post]
func (h *Handler) SendNotification(w http.ResponseWriter, r *http.Request) {
	if h.sender == nil {
		respond.Error(w, http.StatusServiceUnavailable, "PUSH_DISABLED", "Push notifications are not configured")
		return
	}

	var req struct {
		UserID     int64  `json:"userId"`
		Title      string `json:"title"`
		Body       string `json:"body"`
		FromUserID int64  `json:"fromUserId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "INVALID_BODY", "Request body must be valid JSON")
		return
	}
	if req.UserID <= 0 {
		respond.Error(w, http.StatusBadRequest, "MISSING_USER_ID", "userId is required")
		return
	}

	title := req.Title
	if title == "" {
		title = defaultNotifyTitle
	}
	body := req.Body
	if body == "" {
		body = defaultNotifyBody
	}

	var data map[string]any
	if req.FromUserID > 0 {
		data = map[string]any{"fromUserId": req.FromUserID}
		if name, err := h.repo.UserName(r.Context(), req.FromUserID); err == nil {
			data["fromUserName"] = name
		}
	}

	if err := h.sender.SendWithData(r.Context(), req.UserID, title, body, data); err != nil {
		if errors.Is(err, push.ErrNoSubscription) {
			respond.Error(w, http.StatusNotFound, "NO_SUBSCRIPTION", "Subscription not found. User needs to enable notifications first.")
			return
		}
		respond.Error(w, http.StatusInternalServerError, "PUSH_ERROR", "Failed to send notification")
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"success": true})
}

// MotivateAll broadcasts a message to every subscribed user.
// @Summary Broadcast a push notification
// @Tags push
// @Accept json
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/motivate-all [post]
func (h *Handler) MotivateAll(w http.ResponseWriter, r *http.Request) {
	if h.sender == nil {
		respond.Error(w, http.StatusServiceUnavailable, "PUSH_DISABLED", "Push notifications are not configured")
		return
	}

	var req struct {
		Title string `json:"title"`
		Body  string `json:"body"`
	}
	// Body is optional, ignore decode errors from an empty body.
	_ = json.NewDecoder(r.Body).Decode(&req)
	if req.Title == "" {
		req.Title = defaultNotifyTitle
	}
	if req.Body == "" {
		req.Body = defaultNotifyBody
	}

	sent, err := h.sender.SendToAll(r.Context(), req.Title, req.Body)
	if err != nil {
		respond.Error(w, http.StatusInternalServerError, "PUSH_ERROR", "Failed to send notifications")
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"success": true, "sent": sent})
}

// RunNotifications triggers a motivation cycle, usually from an external
// scheduler. Without an explicit slot the afternoon cycle runs.
// @Summary Run a notification cycle
// @Tags push
// @Produce json
// @Param timeSlot path string false "morning, afternoon or evening"
// @Success 200 {object} notify.Report
// @Failure 400 {object} respond.ErrorResponse
// @Router /api/notifications/run/{timeSlot} [post]
func (h *Handler) RunNotifications(w http.ResponseWriter, r *http.Request) {
	if h.engine == nil {
		respond.Error(w, http.StatusServiceUnavailable, "PUSH_DISABLED", "Push notifications are not configured")
		return
	}

	slot := notify.SlotAfternoon
	if raw := chi.URLParam(r, "timeSlot"); raw != "" {
		parsed, ok := notify.ParseSlot(raw)
		if !ok {
			respond.Error(w, http.StatusBadRequest, "INVALID_TIME_SLOT", "timeSlot must be morning, afternoon or evening")
			return
		}
		slot = parsed
	}

	report, err := h.engine.RunCycle(r.Context(), slot)
	if err != nil {
		respond.Error(w, http.StatusInternalServerError, "NOTIFY_ERROR", "Notification cycle failed")
		return
	}
	respond.JSON(w, http.StatusOK, report)
}
