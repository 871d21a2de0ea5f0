package services

import (
	"testing"
	"time"

	"github.com/AnshRaj112/feedback-tracker/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestComputeStatsEmpty(t *testing.T) {
	stats := ComputeStats(nil, time.Now())

	assert.Equal(t, 0, stats.Total)
	assert.Equal(t, 0.0, stats.AverageRating)
	assert.Equal(t, 0, stats.RecentCount)
	assert.Equal(t, map[string]int{"1": 0, "2": 0, "3": 0, "4": 0, "5": 0}, stats.RatingDistribution)
}

func TestComputeStats(t *testing.T) {
	now := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	records := []models.Feedback{
		{Rating: 5, CreatedAt: now.Add(-time.Hour)},
		{Rating: 4, CreatedAt: now.Add(-7 * 24 * time.Hour)},
		{Rating: 4, CreatedAt: now.Add(-8 * 24 * time.Hour)},
		{Rating: 1, CreatedAt: now.Add(time.Hour)},
	}

	stats := ComputeStats(records, now)

	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 3.5, stats.AverageRating)
	assert.Equal(t, map[string]int{"1": 1, "2": 0, "3": 0, "4": 2, "5": 1}, stats.RatingDistribution)
	assert.Equal(t, 2, stats.RecentCount, "window is [now-7d, now]")
}

func TestComputeStatsRoundsToOneDecimal(t *testing.T) {
	records := []models.Feedback{{Rating: 5}, {Rating: 4}, {Rating: 4}}

	stats := ComputeStats(records, time.Now())

	assert.Equal(t, 4.3, stats.AverageRating)
}
