package store

import (
	"context"

	"hirefeed/internal/models"
)

// Store persists job postings keyed on their tweet id. Saving a posting
// whose id is already stored is not an error.
type Store interface {
	SaveJobPostings(ctx context.Context, postings []*models.JobPosting) (SaveResult, error)
	CountJobPostings(ctx context.Context) (int, error)
	Close() error
}

type SaveResult struct {
	// Saved holds the postings that were new, in input order.
	Saved      []*models.JobPosting
	Duplicates int
	Failed     int
}

func (r SaveResult) Inserted() int {
	return len(r.Saved)
}
