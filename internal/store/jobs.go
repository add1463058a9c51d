package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/maxth/mediadl/internal/domain"
)

const jobColumns = `id, platform, url, status, error, title, output_path, files, created_at, updated_at`

// SQLiteStore keeps job records in a SQLite database.
type SQLiteStore struct {
	db *DB
}

var _ JobStore = (*SQLiteStore)(nil)

func NewSQLiteStore(db *DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Create(ctx context.Context, platform domain.Platform, url string) (*domain.Job, error) {
	now := time.Now().UTC()
	job := &domain.Job{
		ID:        uuid.New().String(),
		Platform:  platform,
		URL:       url,
		Status:    domain.JobStatusStarting,
		CreatedAt: now,
		UpdatedAt: now,
	}

	query := `INSERT INTO jobs (` + jobColumns + `)
		VALUES (:id, :platform, :url, :status, :error, :title, :output_path, :files, :created_at, :updated_at)`

	if _, err := s.db.NamedExecContext(ctx, query, job); err != nil {
		return nil, fmt.Errorf("failed to insert job: %w", err)
	}
	return job, nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*domain.Job, error) {
	job := &domain.Job{}
	err := s.db.GetContext(ctx, job, `SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return job, nil
}

func (s *SQLiteStore) Update(ctx context.Context, id string, fn Mutator) (*domain.Job, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	job := &domain.Job{}
	err = tx.GetContext(ctx, job, `SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	if err := fn(job); err != nil {
		return nil, err
	}

	query := `UPDATE jobs SET status = :status, error = :error, title = :title,
		output_path = :output_path, files = :files, updated_at = :updated_at
		WHERE id = :id`
	if _, err := tx.NamedExecContext(ctx, query, job); err != nil {
		return nil, fmt.Errorf("failed to update job: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit job update: %w", err)
	}
	return job, nil
}

func (s *SQLiteStore) Evict(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM jobs WHERE status IN (?, ?) AND updated_at < ?`,
		domain.JobStatusCompleted, domain.JobStatusError, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to evict jobs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM jobs`)
	return count, err
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
