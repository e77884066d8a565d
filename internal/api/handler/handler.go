// Package handler provides HTTP handlers for all API endpoints.
// Handlers query Postgres via the activity repository and shared pgx pool;
// the notification engine is invoked as a library.
package handler

import (
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dickerchen-app/dickerchen/internal/activity"
	"github.com/dickerchen-app/dickerchen/internal/api/respond"
	"github.com/dickerchen-app/dickerchen/internal/cache"
	"github.com/dickerchen-app/dickerchen/internal/config"
	"github.com/dickerchen-app/dickerchen/internal/notify"
	"github.com/dickerchen-app/dickerchen/internal/push"
)

// Handler holds shared dependencies for all endpoint handlers.
// Engine, Sender and Smart may be nil when push is not configured; the
// affected endpoints then answer 503.
type Handler struct {
	pool   *pgxpool.Pool
	cache  *cache.Cache
	cfg    *config.Config
	repo   *activity.Repo
	subs   *push.SubscriptionStore
	sender *push.Sender
	engine *notify.Engine
	smart  *notify.SmartNotifier
	loc    *time.Location
}

// New creates a Handler with shared dependencies.
func New(pool *pgxpool.Pool, c *cache.Cache, cfg *config.Config, repo *activity.Repo, subs *push.SubscriptionStore, sender *push.Sender, engine *notify.Engine, smart *notify.SmartNotifier) *Handler {
	return &Handler{
		pool:   pool,
		cache:  c,
		cfg:    cfg,
		repo:   repo,
		subs:   subs,
		sender: sender,
		engine: engine,
		smart:  smart,
		loc:    cfg.Location(),
	}
}

// localDate formats an instant as the app's local calendar date.
func (h *Handler) localDate(t time.Time) string {
	return t.In(h.loc).Format("2006-01-02")
}

// Root serves API info at /.
// @Summary API root info
// @Tags meta
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, map[string]interface{}{
		"name":    "Dickerchen API",
		"version": "1.0.0",
		"status":  "running",
		"docs":    "/docs",
	})
}

// HealthCheck returns basic health status.
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckDB verifies database connectivity.
// @Summary Database health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health/db [get]
func (h *Handler) HealthCheckDB(w http.ResponseWriter, r *http.Request) {
	var n int
	err := h.pool.QueryRow(r.Context(), "health_check").Scan(&n)
	if err != nil {
		respond.JSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":    "unhealthy",
			"database":  "disconnected",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	respond.JSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"database":  "connected",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckCache returns cache statistics.
// @Summary Cache health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health/cache [get]
func (h *Handler) HealthCheckCache(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"cache":     h.cache.Stats(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
