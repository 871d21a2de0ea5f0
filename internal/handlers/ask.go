package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

type AskRequest struct {
	Question string `json:"question"`
}

// HealthResponse reports liveness plus which answering path is available.
type HealthResponse struct {
	Status           string    `json:"status"`
	Timestamp        time.Time `json:"timestamp"`
	RemoteConfigured bool      `json:"remoteConfigured"`
	Models           []string  `json:"models"`
	Store            string    `json:"store"`
}

// Ask handles POST /api/ask. It always answers, remotely or locally.
func (h *Handler) Ask(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	question := strings.TrimSpace(req.Question)
	if question == "" {
		writeError(w, http.StatusBadRequest, "Question is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.askTimeout)
	defer cancel()

	answer := h.resolver.Resolve(ctx, question)
	h.logger.Info("question answered",
		zap.String("source", answer.Source),
		zap.String("model", answer.ModelUsed),
		zap.Bool("cached", answer.Cached),
	)
	writeJSON(w, http.StatusOK, answer)
}

// Health handles GET /api/health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	models := h.resolver.Models()
	if models == nil {
		models = []string{}
	}
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:           "OK",
		Timestamp:        h.now(),
		RemoteConfigured: h.resolver.RemoteConfigured(),
		Models:           models,
		Store:            h.store.BackendName(),
	})
}
