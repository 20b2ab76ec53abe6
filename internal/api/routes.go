package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// SetupRoutes configures all HTTP routes and returns the router.
//
// Route structure:
//
//	GET  /                      Web form
//	POST /                      Form submission (calculate / send reminders)
//	GET  /health                Liveness check
//	GET  /api/v1/zakat/dates    Project due dates for an anchor date
//	GET  /api/v1/nisaab         Current Nisaab value
//	POST /api/v1/reminders      Register an email for reminders
func SetupRoutes(handlers *Handlers, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(RecoveryMiddleware(logger))
	r.Use(RequestIDMiddleware())
	r.Use(LoggingMiddleware(logger))
	r.Use(CORSMiddleware())

	r.Get("/", handlers.Index)
	r.Post("/", handlers.IndexSubmit)
	r.Get("/health", handlers.HealthCheck)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/zakat/dates", handlers.GetZakatDates)
		r.Get("/nisaab", handlers.GetNisaab)
		r.Post("/reminders", handlers.CreateReminder)
	})

	return r
}
