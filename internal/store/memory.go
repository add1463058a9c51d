package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/maxth/mediadl/internal/domain"
)

// MemoryStore keeps records in a map for the life of the process.
type MemoryStore struct {
	jobs map[string]*domain.Job
	mu   sync.RWMutex
}

var _ JobStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		jobs: make(map[string]*domain.Job),
	}
}

func (s *MemoryStore) Create(ctx context.Context, platform domain.Platform, url string) (*domain.Job, error) {
	now := time.Now()
	job := &domain.Job{
		Platform:  platform,
		URL:       url,
		Status:    domain.JobStatusStarting,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// uuid collisions are practically impossible, but the id must be unique
	// for the process lifetime.
	for {
		job.ID = uuid.New().String()
		if _, exists := s.jobs[job.ID]; !exists {
			break
		}
	}
	s.jobs[job.ID] = job

	return job.Clone(), nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*domain.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, ErrJobNotFound
	}
	return job.Clone(), nil
}

func (s *MemoryStore) Update(ctx context.Context, id string, fn Mutator) (*domain.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, ErrJobNotFound
	}

	draft := job.Clone()
	if err := fn(draft); err != nil {
		return nil, err
	}
	s.jobs[id] = draft

	return draft.Clone(), nil
}

func (s *MemoryStore) Evict(ctx context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, job := range s.jobs {
		if job.Status.IsTerminal() && job.UpdatedAt.Before(cutoff) {
			delete(s.jobs, id)
			removed++
		}
	}
	return removed, nil
}

func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs), nil
}

func (s *MemoryStore) Close() error {
	return nil
}
