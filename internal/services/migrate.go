package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/AnshRaj112/feedback-tracker/internal/models"
)

var errUnknownFormat = errors.New("unrecognized feedback document")

// LegacyRecord is one entry of the original flat-array file. Ids were numeric
// millisecond timestamps and the creation time lived in "timestamp".
type LegacyRecord struct {
	ID           json.RawMessage `json:"id"`
	Name         string          `json:"name"`
	Email        string          `json:"email"`
	Message      string          `json:"message"`
	Rating       json.RawMessage `json:"rating"`
	Timestamp    time.Time       `json:"timestamp"`
	CreatedAt    time.Time       `json:"createdAt"`
	LastModified *time.Time      `json:"lastModified,omitempty"`
	OriginIP     string          `json:"originIP"`
}

// decodeDocument parses a persisted payload. legacy is true when the payload
// was a bare array; the returned collection then carries only the upgraded
// records and a zero envelope.
func decodeDocument(data []byte, now time.Time, newID func() string) (col models.FeedbackCollection, legacy bool, err error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return col, false, errUnknownFormat
	}

	switch trimmed[0] {
	case '[':
		var old []LegacyRecord
		if err := json.Unmarshal(trimmed, &old); err != nil {
			return col, false, err
		}
		col.Feedback = UpgradeLegacy(old, now, newID)
		return col, true, nil
	case '{':
		if err := json.Unmarshal(trimmed, &col); err != nil {
			return models.FeedbackCollection{}, false, err
		}
		if col.Feedback == nil {
			col.Feedback = []models.Feedback{}
		}
		return col, false, nil
	default:
		return col, false, errUnknownFormat
	}
}

// UpgradeLegacy converts flat-array records to the current shape. Ids become
// strings, duplicates and blanks get a fresh id, out-of-range ratings become 5.
func UpgradeLegacy(old []LegacyRecord, now time.Time, newID func() string) []models.Feedback {
	out := make([]models.Feedback, 0, len(old))
	seen := make(map[string]struct{}, len(old))

	for _, o := range old {
		id := legacyID(o.ID)
		if _, dup := seen[id]; id == "" || dup {
			id = newID()
		}
		seen[id] = struct{}{}

		created := o.CreatedAt
		if created.IsZero() {
			created = o.Timestamp
		}
		if created.IsZero() {
			created = now
		}

		rating := defaultRating
		var in models.RatingInput
		if err := in.UnmarshalJSON(o.Rating); err == nil && in.Set && validRating(in.Value) {
			rating = in.Value
		}

		out = append(out, models.Feedback{
			ID:           id,
			Name:         strings.TrimSpace(o.Name),
			Email:        strings.TrimSpace(o.Email),
			Message:      strings.TrimSpace(o.Message),
			Rating:       rating,
			CreatedAt:    created,
			LastModified: o.LastModified,
			OriginIP:     o.OriginIP,
		})
	}
	return out
}

func legacyID(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
		return strings.TrimSpace(s)
	}
	// numbers keep their literal text, e.g. 1718000000000
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return ""
	}
	return n.String()
}
