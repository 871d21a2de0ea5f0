package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRatingInputUnmarshal(t *testing.T) {
	tests := []struct {
		name string
		body string
		want RatingInput
	}{
		{"number", `{"rating":4}`, Rating(4)},
		{"numeric string", `{"rating":"3"}`, Rating(3)},
		{"padded string", `{"rating":" 2 "}`, Rating(2)},
		{"whole float", `{"rating":5.0}`, Rating(5)},
		{"out of range kept for validation", `{"rating":9}`, Rating(9)},
		{"absent", `{}`, RatingInput{}},
		{"null", `{"rating":null}`, RatingInput{}},
		{"empty string", `{"rating":""}`, RatingInput{}},
		{"garbage string", `{"rating":"five"}`, RatingInput{}},
		{"fraction", `{"rating":3.5}`, RatingInput{}},
		{"bool", `{"rating":true}`, RatingInput{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var in FeedbackInput
			require.NoError(t, json.Unmarshal([]byte(tt.body), &in))
			assert.Equal(t, tt.want, in.Rating)
		})
	}
}

func TestFeedbackJSONOmitsUnsetOptionalFields(t *testing.T) {
	f := Feedback{
		ID:        "abc",
		Name:      "Ann",
		Message:   "hi",
		Rating:    5,
		CreatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	data, err := json.Marshal(f)
	require.NoError(t, err)

	assert.NotContains(t, string(data), "lastModified")
	assert.NotContains(t, string(data), "originIP")
	assert.Contains(t, string(data), `"createdAt":"2024-01-02T03:04:05Z"`)
}
