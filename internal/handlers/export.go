package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

type ExportResponse struct {
	Message string `json:"message"`
	URL     string `json:"url"`
	Count   int    `json:"count"`
}

// ExportFeedback handles GET /api/feedback/export and streams the collection as a download.
func (h *Handler) ExportFeedback(w http.ResponseWriter, r *http.Request) {
	col := h.store.Load(r.Context())
	data, err := json.MarshalIndent(col, "", "  ")
	if err != nil {
		h.writeServiceError(w, r, fmt.Errorf("encode export: %w", err))
		return
	}

	filename := "feedback-" + h.now().Format("20060102-150405") + ".json"
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// UploadExport handles POST /api/feedback/export and stores a snapshot in Cloudinary.
func (h *Handler) UploadExport(w http.ResponseWriter, r *http.Request) {
	if h.exporter == nil {
		writeError(w, http.StatusServiceUnavailable, "Export storage is not configured")
		return
	}

	col := h.store.Load(r.Context())
	data, err := json.MarshalIndent(col, "", "  ")
	if err != nil {
		h.writeServiceError(w, r, fmt.Errorf("encode export: %w", err))
		return
	}

	url, err := h.exporter.UploadSnapshot(r.Context(), data, h.now())
	if err != nil {
		h.writeServiceError(w, r, fmt.Errorf("upload export: %w", err))
		return
	}

	h.logger.Info("feedback snapshot exported", zap.String("url", url), zap.Int("count", len(col.Feedback)))
	writeJSON(w, http.StatusOK, ExportResponse{
		Message: "Snapshot uploaded successfully",
		URL:     url,
		Count:   len(col.Feedback),
	})
}
