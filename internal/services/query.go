package services

import (
	"sort"
	"strings"

	"github.com/AnshRaj112/feedback-tracker/internal/models"
)

// QueryOptions selects a page of feedback. Rating nil and Search "" mean no filter.
type QueryOptions struct {
	Rating   *int
	Search   string
	Page     int
	PageSize int
}

type Pagination struct {
	CurrentPage  int  `json:"currentPage"`
	TotalPages   int  `json:"totalPages"`
	TotalItems   int  `json:"totalItems"`
	ItemsPerPage int  `json:"itemsPerPage"`
	HasNext      bool `json:"hasNext"`
	HasPrev      bool `json:"hasPrev"`
}

type QueryResult struct {
	Items      []models.Feedback `json:"feedback"`
	Pagination Pagination        `json:"pagination"`
}

// Query filters, sorts newest first and paginates a snapshot. records is not modified.
func Query(records []models.Feedback, opts QueryOptions) QueryResult {
	page := max(opts.Page, 1)
	size := max(opts.PageSize, 1)
	term := strings.ToLower(strings.TrimSpace(opts.Search))

	// Walk backwards so that, after the stable sort, equal timestamps list the
	// most recently inserted record first.
	filtered := make([]models.Feedback, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		r := records[i]
		if opts.Rating != nil && r.Rating != *opts.Rating {
			continue
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(r.Name), term) &&
			!strings.Contains(strings.ToLower(r.Message), term) {
			continue
		}
		filtered = append(filtered, r)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
	})

	total := len(filtered)
	totalPages := total / size
	if total%size != 0 {
		totalPages++
	}

	// page <= totalPages keeps (page-1)*size within total, so it cannot overflow.
	items := []models.Feedback{}
	if page <= totalPages {
		start := (page - 1) * size
		end := min(start+size, total)
		items = filtered[start:end]
	}

	return QueryResult{
		Items: items,
		Pagination: Pagination{
			CurrentPage:  page,
			TotalPages:   totalPages,
			TotalItems:   total,
			ItemsPerPage: size,
			HasNext:      page < totalPages,
			HasPrev:      page > 1,
		},
	}
}
