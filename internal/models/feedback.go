package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// CollectionVersion is the envelope version tag written on every save.
const CollectionVersion = "1.0"

type Feedback struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
	Rating  int    `json:"rating"`

	CreatedAt    time.Time  `json:"createdAt"`
	LastModified *time.Time `json:"lastModified,omitempty"`

	// Optional: IP address for diagnostics (not personal info)
	OriginIP string `json:"originIP,omitempty"`
}

// Metadata describes the collection as a whole. Recomputed on every write.
type Metadata struct {
	LastModified time.Time `json:"lastModified"`
	Version      string    `json:"version"`
	Count        int       `json:"count"`
}

// FeedbackCollection is the persisted envelope.
type FeedbackCollection struct {
	Feedback []Feedback `json:"feedback"`
	Metadata Metadata   `json:"metadata"`
}

// FeedbackInput is the body of create and update requests.
type FeedbackInput struct {
	Name    string      `json:"name"`
	Email   string      `json:"email"`
	Message string      `json:"message"`
	Rating  RatingInput `json:"rating"`
}

// RatingInput accepts a JSON number, a numeric string, null or nothing at all.
// Set is false when no usable integer was supplied.
type RatingInput struct {
	Value int
	Set   bool
}

// Rating returns a RatingInput holding v.
func Rating(v int) RatingInput {
	return RatingInput{Value: v, Set: true}
}

func (r *RatingInput) UnmarshalJSON(data []byte) error {
	*r = RatingInput{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	raw := string(data)
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		raw = strings.TrimSpace(s)
	}

	if n, err := strconv.Atoi(raw); err == nil {
		*r = RatingInput{Value: n, Set: true}
		return nil
	}
	// 4.0 style numbers are accepted when they are whole.
	if f, err := strconv.ParseFloat(raw, 64); err == nil && f == float64(int(f)) {
		*r = RatingInput{Value: int(f), Set: true}
	}
	return nil
}

func (r RatingInput) MarshalJSON() ([]byte, error) {
	if !r.Set {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(r.Value)), nil
}
