package routes

import (
	"net/http"

	"github.com/AnshRaj112/feedback-tracker/internal/handlers"
	"github.com/go-chi/chi/v5"
)

// SetupRoutes registers the API. askLimit, when non-nil, wraps only /api/ask.
func SetupRoutes(r chi.Router, h *handlers.Handler, askLimit func(http.Handler) http.Handler) {
	r.Get("/api/health", h.Health)

	// Feedback routes
	r.Route("/api/feedback", func(r chi.Router) {
		r.Get("/", h.ListFeedback)
		r.Post("/", h.CreateFeedback)
		r.Get("/export", h.ExportFeedback)
		r.Post("/export", h.UploadExport)
		r.Put("/{id}", h.UpdateFeedback)
		r.Delete("/{id}", h.DeleteFeedback)
	})
	r.Get("/api/stats", h.GetStats)

	// Assistant
	r.Group(func(r chi.Router) {
		if askLimit != nil {
			r.Use(askLimit)
		}
		r.Post("/api/ask", h.Ask)
	})

	// Live feed
	r.Get("/ws/feedback", h.FeedWebSocket)
}
