package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dickerchen-app/dickerchen/internal/api/respond"
	"github.com/dickerchen-app/dickerchen/internal/cache"
)

// Calendar returns per-day totals for one user and month. Past months are
// immutable so they cache much longer than the current one.
// @Summary Monthly per-day totals
// @Tags calendar
// @Produce json
// @Param userID path int true "User ID"
// @Param year path int true "Year (e.g. 2025)"
// @Param month path int true "Month 1-12"
// @Success 200 {array} activity.DayTotal
// @Failure 400 {object} respond.ErrorResponse
// @Router /api/calendar/{userID}/{year}/{month} [get]
func (h *Handler) Calendar(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "INVALID_USER_ID", "User ID must be a number")
		return
	}
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil || year < 2000 || year > 2100 {
		respond.Error(w, http.StatusBadRequest, "INVALID_YEAR", "Year must be a four digit number")
		return
	}
	month, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil || month < 1 || month > 12 {
		respond.Error(w, http.StatusBadRequest, "INVALID_MONTH", "Month must be between 1 and 12")
		return
	}

	now := time.Now().In(h.loc)
	current := now.Year() == year && int(now.Month()) == month
	ttl := cache.TTLPastMonth
	if current {
		ttl = cache.TTLCurrentMonth
	}

	key := fmt.Sprintf("calendar:%d:%04d-%02d", userID, year, month)
	if data, etag, ok := h.cache.Get(key); ok {
		if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
			respond.NotModified(w, etag)
			return
		}
		respond.Cached(w, data, etag, ttl, true)
		return
	}

	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, h.loc)
	last := first.AddDate(0, 1, -1)
	totals, err := h.repo.MonthTotals(r.Context(), userID, first.Format("2006-01-02"), last.Format("2006-01-02"))
	if err != nil {
		respond.Error(w, http.StatusInternalServerError, "DB_ERROR", "Failed to load calendar data")
		return
	}

	data, err := json.Marshal(totals)
	if err != nil {
		respond.Error(w, http.StatusInternalServerError, "ENCODING_ERROR", "Failed to encode calendar data")
		return
	}
	etag := h.cache.Set(key, data, ttl)
	if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
		respond.NotModified(w, etag)
		return
	}
	respond.Cached(w, data, etag, ttl, false)
}
