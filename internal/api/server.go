package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	corslib "github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/dickerchen-app/dickerchen/internal/api/handler"
	"github.com/dickerchen-app/dickerchen/internal/config"
)

// NewRouter creates and configures the Chi router with all middleware and routes.
func NewRouter(h *handler.Handler, cfg *config.Config) *chi.Mux {
	r := chi.NewRouter()

	// --- Middleware stack ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(TimingMiddleware)
	r.Use(middleware.Compress(5)) // gzip

	// CORS
	c := corslib.New(corslib.Options{
		AllowedOrigins:   cfg.CORSAllowOrigins,
		AllowedMethods:   []string{"GET", "HEAD", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Accept-Encoding", "Authorization", "Content-Type", "If-None-Match", "Cache-Control"},
		ExposedHeaders:   []string{"X-Process-Time", "X-Cache", "ETag"},
		AllowCredentials: false,
	})
	r.Use(c.Handler)

	// Rate limiting
	if cfg.RateLimitEnabled {
		r.Use(RateLimitMiddleware(cfg.RateLimitRequests, cfg.RateLimitWindow))
	}

	// --- Routes ---

	// Root
	r.Get("/", h.Root)

	// Health checks
	r.Route("/health", func(r chi.Router) {
		r.Get("/", h.HealthCheck)
		r.Get("/db", h.HealthCheckDB)
		r.Get("/cache", h.HealthCheckCache)
	})

	// Swagger UI
	r.Get("/docs/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/doc.json"),
	))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Users
		r.Get("/users", h.ListUsers)
		r.Post("/users", h.CreateUser)

		// Leaderboard
		r.Get("/leaderboard", h.Leaderboard)

		// Pushup entries
		r.Post("/pushups", h.LogPushups)
		r.Delete("/pushups/{pushupID}", h.DeletePushups)
		r.Get("/pushups/{userID}", h.TodayLog)
		r.Get("/pushups/{userID}/date/{date}", h.DateLog)
		r.Get("/pushups/{userID}/total", h.LifetimeTotal)
		r.Get("/pushups/{userID}/yearly-potential", h.YearlyPotential)

		// Calendar
		r.Get("/calendar/{userID}/{year}/{month}", h.Calendar)

		// Push subscriptions
		r.Get("/vapid-public-key", h.VAPIDPublicKey)
		r.Post("/subscribe", h.Subscribe)
		r.Post("/cleanup-subscriptions", h.CleanupSubscriptions)

		// Direct pushes (user-to-user motivation)
		r.Post("/send-notification", h.SendNotification)
		r.Post("/motivate-all", h.MotivateAll)

		// Notification engine trigger (cron / admin)
		r.Route("/notifications", func(r chi.Router) {
			r.Use(RequireSecret(cfg.NotificationSecret))
			r.Post("/run", h.RunNotifications)
			r.Post("/run/{timeSlot}", h.RunNotifications)
		})
	})

	return r
}
