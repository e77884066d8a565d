package handler

import (
	"net/http"
	"time"

	"github.com/dickerchen-app/dickerchen/internal/api/respond"
)

// Leaderboard returns today's standings: goal achievers first by when they
// got there, then everyone else by total.
// @Summary Daily leaderboard
// @Tags leaderboard
// @Produce json
// @Success 200 {array} activity.LeaderboardRow
// @Router /api/leaderboard [get]
func (h *Handler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	board, err := h.repo.LeaderboardToday(r.Context(), h.localDate(time.Now()), h.cfg.DailyGoal)
	if err != nil {
		respond.Error(w, http.StatusInternalServerError, "DB_ERROR", "Failed to compute leaderboard")
		return
	}
	respond.JSON(w, http.StatusOK, board)
}
