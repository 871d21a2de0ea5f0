package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/AnshRaj112/feedback-tracker/internal/services"
	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"
)

const defaultAskTimeout = 20 * time.Second

// Exporter uploads a serialized snapshot and returns where it can be fetched.
type Exporter interface {
	UploadSnapshot(ctx context.Context, data []byte, at time.Time) (string, error)
}

// Options are the dependencies of a Handler. Exporter may be nil.
type Options struct {
	Store      *services.Store
	Resolver   *services.Resolver
	Hub        *services.FeedHub
	Exporter   Exporter
	Logger     *zap.Logger
	AskTimeout time.Duration
	Now        func() time.Time
}

// Handler serves the HTTP API. All dependencies are passed in, nothing is global.
type Handler struct {
	store      *services.Store
	resolver   *services.Resolver
	hub        *services.FeedHub
	exporter   Exporter
	logger     *zap.Logger
	askTimeout time.Duration
	now        func() time.Time
}

func New(opts Options) *Handler {
	h := &Handler{
		store:      opts.Store,
		resolver:   opts.Resolver,
		hub:        opts.Hub,
		exporter:   opts.Exporter,
		logger:     opts.Logger,
		askTimeout: opts.AskTimeout,
		now:        opts.Now,
	}
	if h.logger == nil {
		h.logger = zap.NewNop()
	}
	if h.askTimeout <= 0 {
		h.askTimeout = defaultAskTimeout
	}
	if h.now == nil {
		h.now = func() time.Time { return time.Now().UTC() }
	}
	return h
}

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// writeServiceError maps the service error taxonomy onto HTTP statuses.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *services.ValidationError
	var notFoundErr *services.NotFoundError

	switch {
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: validationErr.Message, Field: validationErr.Field})
	case errors.As(err, &notFoundErr):
		writeError(w, http.StatusNotFound, "Feedback not found")
	default:
		h.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		if hub := sentry.GetHubFromContext(r.Context()); hub != nil {
			hub.CaptureException(err)
		} else {
			sentry.CaptureException(err)
		}

		message := "Internal server error"
		var persistErr *services.PersistenceError
		if errors.As(err, &persistErr) {
			message = "Failed to save feedback"
		}
		writeError(w, http.StatusInternalServerError, message)
	}
}
