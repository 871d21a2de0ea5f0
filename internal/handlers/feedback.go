package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/AnshRaj112/feedback-tracker/internal/models"
	"github.com/AnshRaj112/feedback-tracker/internal/services"
	"github.com/AnshRaj112/feedback-tracker/pkg/clientip"
	"github.com/go-chi/chi/v5"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// DeleteFeedbackResponse is returned after a successful delete.
type DeleteFeedbackResponse struct {
	Message        string `json:"message"`
	DeletedID      string `json:"deletedId"`
	RemainingCount int    `json:"remainingCount"`
}

// ListFeedback handles GET /api/feedback.
// Query params:
//
//	page   (optional, default 1)
//	limit  (optional, default 10, max 100)
//	rating (optional, 1-5; anything else is ignored)
//	search (optional, case-insensitive match on name and message)
func (h *Handler) ListFeedback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	opts := services.QueryOptions{
		Search:   q.Get("search"),
		Page:     1,
		PageSize: defaultPageSize,
	}
	if p, err := strconv.Atoi(q.Get("page")); err == nil {
		opts.Page = p
	}
	if l, err := strconv.Atoi(q.Get("limit")); err == nil {
		opts.PageSize = min(l, maxPageSize)
	}
	if rv, err := strconv.Atoi(strings.TrimSpace(q.Get("rating"))); err == nil && rv >= 1 && rv <= 5 {
		opts.Rating = &rv
	}

	col := h.store.Load(r.Context())
	writeJSON(w, http.StatusOK, services.Query(col.Feedback, opts))
}

// CreateFeedback handles POST /api/feedback.
func (h *Handler) CreateFeedback(w http.ResponseWriter, r *http.Request) {
	var in models.FeedbackInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	record, err := h.store.Create(r.Context(), in, clientip.RealClientIP(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.publish(r, services.FeedEvent{Type: services.EventFeedbackCreated, Feedback: &record, ID: record.ID})
	writeJSON(w, http.StatusCreated, record)
}

// UpdateFeedback handles PUT /api/feedback/{id}.
func (h *Handler) UpdateFeedback(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var in models.FeedbackInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	record, err := h.store.Update(r.Context(), id, in)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.publish(r, services.FeedEvent{Type: services.EventFeedbackUpdated, Feedback: &record, ID: record.ID})
	writeJSON(w, http.StatusOK, record)
}

// DeleteFeedback handles DELETE /api/feedback/{id}.
func (h *Handler) DeleteFeedback(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	remaining, err := h.store.Delete(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.publish(r, services.FeedEvent{Type: services.EventFeedbackDeleted, ID: id})
	writeJSON(w, http.StatusOK, DeleteFeedbackResponse{
		Message:        "Feedback deleted successfully",
		DeletedID:      id,
		RemainingCount: remaining,
	})
}

// GetStats handles GET /api/stats.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	col := h.store.Load(r.Context())
	writeJSON(w, http.StatusOK, services.ComputeStats(col.Feedback, h.now()))
}

func (h *Handler) publish(r *http.Request, event services.FeedEvent) {
	if h.hub == nil {
		return
	}
	event.Timestamp = h.now()
	h.hub.Publish(r.Context(), event)
}
