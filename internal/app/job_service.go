package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/maxth/mediadl/internal/backend"
	"github.com/maxth/mediadl/internal/domain"
	"github.com/maxth/mediadl/internal/logger"
	"github.com/maxth/mediadl/internal/store"
)

var (
	ErrMissingFields   = errors.New("URL and platform required")
	ErrInvalidPlatform = errors.New("Invalid platform")
	errNoResult        = errors.New("download finished without a result")
)

// updateBuffer lets a backend run slightly ahead of the store.
const updateBuffer = 8

// JobService accepts download requests and runs each one in its own
// goroutine. Jobs are never cancelled; Wait blocks until they finish.
type JobService struct {
	Store    store.JobStore
	Invokers map[domain.Platform]backend.Invoker
	Logger   *logger.Logger
	wg       sync.WaitGroup
}

func NewJobService(st store.JobStore, invokers map[domain.Platform]backend.Invoker, log *logger.Logger) *JobService {
	if log == nil {
		log = logger.Default()
	}
	return &JobService{
		Store:    st,
		Invokers: invokers,
		Logger:   log.WithComponent("jobs"),
	}
}

// Submit validates the request, records a new job and starts it. The job
// runs detached from ctx.
func (s *JobService) Submit(ctx context.Context, url, platform string) (*domain.Job, error) {
	if url == "" || platform == "" {
		return nil, ErrMissingFields
	}
	p, ok := domain.ParsePlatform(platform)
	if !ok {
		return nil, ErrInvalidPlatform
	}
	inv, ok := s.Invokers[p]
	if !ok {
		return nil, ErrInvalidPlatform
	}

	job, err := s.Store.Create(ctx, p, url)
	if err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}
	s.Logger.Info("Job started", "job_id", job.ID, "platform", job.Platform, "url", job.URL)

	s.wg.Add(1)
	go s.run(inv, *job)

	return job, nil
}

// Get returns a snapshot of the job, or store.ErrJobNotFound.
func (s *JobService) Get(ctx context.Context, id string) (*domain.Job, error) {
	return s.Store.Get(ctx, id)
}

// Wait blocks until every started job has finished or ctx is done.
func (s *JobService) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *JobService) run(inv backend.Invoker, job domain.Job) {
	defer s.wg.Done()

	ctx := context.Background()
	log := s.Logger.WithJob(job.ID, job.Platform.String())

	updates := make(chan domain.Update, updateBuffer)
	pumped := make(chan bool)
	go func() {
		terminal := false
		for u := range updates {
			if s.apply(ctx, log, job.ID, u) && u.IsTerminal() {
				terminal = true
			}
		}
		pumped <- terminal
	}()

	err := invoke(ctx, inv, job, updates)
	close(updates)
	terminal := <-pumped

	switch {
	case err != nil:
		log.Error("Job failed", "error", err)
		s.apply(ctx, log, job.ID, domain.Failed(err))
	case !terminal:
		log.Error("Job failed", "error", errNoResult)
		s.apply(ctx, log, job.ID, domain.Failed(errNoResult))
	default:
		log.Info("Job completed")
	}
}

// invoke runs the backend, turning a panic into an error.
func invoke(ctx context.Context, inv backend.Invoker, job domain.Job, updates chan<- domain.Update) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return inv.Run(ctx, job, updates)
}

func (s *JobService) apply(ctx context.Context, log *logger.Logger, id string, u domain.Update) bool {
	if _, err := s.Store.Update(ctx, id, store.ApplyUpdate(u)); err != nil {
		if errors.Is(err, domain.ErrJobTerminal) {
			log.Warn("Dropped update for finished job", "status", u.Status)
		} else {
			log.Error("Failed to update job", "status", u.Status, "error", err)
		}
		return false
	}
	log.Debug("Job updated", "status", u.Status)
	return true
}
