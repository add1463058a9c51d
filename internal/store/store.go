// Package store keeps job records. MemoryStore is the default; SQLiteStore
// persists the same records behind the same interface.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/maxth/mediadl/internal/domain"
)

var ErrJobNotFound = errors.New("job not found")

// Mutator changes a job record in place. Returning an error aborts the
// update and leaves the stored record untouched.
type Mutator func(job *domain.Job) error

// JobStore owns all job records.
type JobStore interface {
	// Create allocates a record with status "starting" and a fresh id.
	Create(ctx context.Context, platform domain.Platform, url string) (*domain.Job, error)
	// Get returns a point-in-time copy of the record.
	Get(ctx context.Context, id string) (*domain.Job, error)
	// Update applies fn to the record and returns the result.
	Update(ctx context.Context, id string, fn Mutator) (*domain.Job, error)
	// Evict removes terminal jobs last updated before cutoff.
	Evict(ctx context.Context, cutoff time.Time) (int, error)
	Count(ctx context.Context) (int, error)
	Close() error
}

// ApplyUpdate returns a Mutator that folds u into the record.
func ApplyUpdate(u domain.Update) Mutator {
	return func(job *domain.Job) error {
		return job.Apply(u, time.Now().UTC())
	}
}
