package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"

	"github.com/dickerchen-app/dickerchen/internal/api/respond"
)

var dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

type logPushupsRequest struct {
	UserID int64 `json:"userId"`
	Count  int   `json:"count"`
}

// LogPushups records a new set of pushups and kicks off the smart
// notification check.
// @Summary Log pushups
// @Tags pushups
// @Accept json
// @Produce json
// @Param request body logPushupsRequest true "Entry"
// @Success 200 {object} activity.Entry
// @Failure 400 {object} respond.ErrorResponse
// @Router /api/pushups [post]
func (h *Handler) LogPushups(w http.ResponseWriter, r *http.Request) {
	var req logPushupsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid JSON body")
		return
	}
	if req.UserID <= 0 || req.Count <= 0 {
		respond.Error(w, http.StatusBadRequest, "INVALID_ENTRY", "userId and a positive count are required")
		return
	}

	entry, err := h.repo.InsertEntry(r.Context(), req.UserID, req.Count, time.Now().UTC())
	if err != nil {
		respond.Error(w, http.StatusInternalServerError, "DB_ERROR", "Failed to log pushups")
		return
	}

	// Competitive nudges react to this entry; never on the request path.
	if h.smart != nil {
		go func(userID int64) {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			h.smart.EntryLogged(ctx, userID)
		}(req.UserID)
	}

	respond.JSON(w, http.StatusOK, entry)
}

type deletePushupsRequest struct {
	UserID int64 `json:"userId"`
}

// DeletePushups removes an entry. Only the owner may delete it.
// @Summary Delete a pushup entry
// @Tags pushups
// @Accept json
// @Produce json
// @Param pushupID path int true "Entry ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} respond.ErrorResponse
// @Failure 404 {object} respond.ErrorResponse
// @Router /api/pushups/{pushupID} [delete]
func (h *Handler) DeletePushups(w http.ResponseWriter, r *http.Request) {
	entryID, err := strconv.ParseInt(chi.URLParam(r, "pushupID"), 10, 64)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid entry id")
		return
	}

	var req deletePushupsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid JSON body")
		return
	}

	owner, err := h.repo.EntryOwner(r.Context(), entryID)
	if errors.Is(err, pgx.ErrNoRows) {
		respond.Error(w, http.StatusNotFound, "NOT_FOUND", "Push-up entry not found")
		return
	}
	if err != nil {
		respond.Error(w, http.StatusInternalServerError, "DB_ERROR", "Failed to check entry")
		return
	}
	if owner != req.UserID {
		respond.Error(w, http.StatusForbidden, "FORBIDDEN", "You can only delete your own push-up entries")
		return
	}

	deleted, err := h.repo.DeleteEntry(r.Context(), entryID)
	if err != nil {
		respond.Error(w, http.StatusInternalServerError, "DB_ERROR", "Failed to delete entry")
		return
	}

	respond.JSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"deleted": deleted,
	})
}

// TodayLog returns a user's entries and total for the current local date.
// @Summary Today's entries
// @Tags pushups
// @Produce json
// @Param userID path int true "User ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/pushups/{userID} [get]
func (h *Handler) TodayLog(w http.ResponseWriter, r *http.Request) {
	h.writeDayLog(w, r, h.localDate(time.Now()))
}

// DateLog returns a user's entries and total for a specific local date.
// @Summary Entries for a date
// @Tags pushups
// @Produce json
// @Param userID path int true "User ID"
// @Param date path string true "Date (YYYY-MM-DD)"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} respond.ErrorResponse
// @Router /api/pushups/{userID}/date/{date} [get]
func (h *Handler) DateLog(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	if !dateRe.MatchString(date) {
		respond.Error(w, http.StatusBadRequest, "INVALID_DATE", "Invalid date format. Use YYYY-MM-DD")
		return
	}
	h.writeDayLog(w, r, date)
}

func (h *Handler) writeDayLog(w http.ResponseWriter, r *http.Request, date string) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid user id")
		return
	}

	entries, total, err := h.repo.DayLog(r.Context(), userID, date)
	if err != nil {
		respond.Error(w, http.StatusInternalServerError, "DB_ERROR", "Failed to load entries")
		return
	}

	respond.JSON(w, http.StatusOK, map[string]interface{}{
		"total":   total,
		"pushups": entries,
		"date":    date,
	})
}

// LifetimeTotal returns the sum of everything a user ever logged.
// @Summary Lifetime total
// @Tags pushups
// @Produce json
// @Param userID path int true "User ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/pushups/{userID}/total [get]
func (h *Handler) LifetimeTotal(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid user id")
		return
	}

	total, err := h.repo.LifetimeTotal(r.Context(), userID)
	if err != nil {
		respond.Error(w, http.StatusInternalServerError, "DB_ERROR", "Failed to load total")
		return
	}
	respond.JSON(w, http.StatusOK, map[string]interface{}{"total": total})
}

// YearlyPotential reports how a user tracks against goal pace.
// @Summary Yearly potential
// @Tags pushups
// @Produce json
// @Param userID path int true "User ID"
// @Success 200 {object} activity.Potential
// @Router /api/pushups/{userID}/yearly-potential [get]
func (h *Handler) YearlyPotential(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid user id")
		return
	}

	p, err := h.repo.YearlyPotential(r.Context(), userID, time.Now().In(h.loc), h.cfg.DailyGoal)
	if err != nil {
		respond.Error(w, http.StatusInternalServerError, "DB_ERROR", "Failed to compute potential")
		return
	}
	if p == nil {
		respond.JSON(w, http.StatusOK, map[string]interface{}{
			"remaining": 0,
			"message":   "Noch keine Push-ups erfasst",
		})
		return
	}
	respond.JSON(w, http.StatusOK, p)
}
