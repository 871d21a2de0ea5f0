package services

import (
	"math"
	"strconv"
	"time"

	"github.com/AnshRaj112/feedback-tracker/internal/models"
)

const recentWindow = 7 * 24 * time.Hour

type Stats struct {
	Total              int            `json:"total"`
	AverageRating      float64        `json:"averageRating"`
	RatingDistribution map[string]int `json:"ratingDistribution"`
	RecentCount        int            `json:"recentCount"`
}

// ComputeStats aggregates the full record set as of now.
func ComputeStats(records []models.Feedback, now time.Time) Stats {
	dist := make(map[string]int, maxRating)
	for r := minRating; r <= maxRating; r++ {
		dist[strconv.Itoa(r)] = 0
	}

	sum := 0
	recent := 0
	cutoff := now.Add(-recentWindow)
	for _, f := range records {
		sum += f.Rating
		if validRating(f.Rating) {
			dist[strconv.Itoa(f.Rating)]++
		}
		if !f.CreatedAt.Before(cutoff) && !f.CreatedAt.After(now) {
			recent++
		}
	}

	avg := 0.0
	if len(records) > 0 {
		avg = math.Round(float64(sum)/float64(len(records))*10) / 10
	}

	return Stats{
		Total:              len(records),
		AverageRating:      avg,
		RatingDistribution: dist,
		RecentCount:        recent,
	}
}
