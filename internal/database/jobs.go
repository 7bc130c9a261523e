// jobs.go handles asynchronous extraction job records.
package database

import (
	"context"
	"fmt"

	"github.com/Shimizu-Technology/paperhub-api/internal/apperrors"
	"github.com/Shimizu-Technology/paperhub-api/internal/models"
	"github.com/Shimizu-Technology/paperhub-api/internal/store"
)

// CreateJob inserts a pending extraction job.
func (db *DB) CreateJob(ctx context.Context, j *models.ExtractionJob) error {
	if j.Status == "" {
		j.Status = models.JobPending
	}
	err := db.QueryRowContext(ctx, `
		INSERT INTO extraction_jobs (owner_uid, filename, status, page_count, result, failure_reason)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`,
		j.OwnerUID, j.Filename, j.Status, j.PageCount, j.Result, j.FailureReason,
	).Scan(&j.ID, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create extraction job: %w", err)
	}
	return nil
}

// UpdateJob records progress or the outcome of a job.
func (db *DB) UpdateJob(ctx context.Context, j *models.ExtractionJob) error {
	if !validID(j.ID) {
		return apperrors.NewNotFoundError("extraction job not found")
	}
	err := db.QueryRowContext(ctx, `
		UPDATE extraction_jobs
		SET status = $2, page_count = $3, result = $4, failure_reason = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		j.ID, j.Status, j.PageCount, j.Result, j.FailureReason,
	).Scan(&j.UpdatedAt)
	if err != nil {
		return notFound("extraction job", err)
	}
	return nil
}

// GetJob retrieves a job by ID.
func (db *DB) GetJob(ctx context.Context, id string) (*models.ExtractionJob, error) {
	if !validID(id) {
		return nil, apperrors.NewNotFoundError("extraction job not found")
	}
	var j models.ExtractionJob
	if err := db.GetContext(ctx, &j, `SELECT * FROM extraction_jobs WHERE id = $1`, id); err != nil {
		return nil, notFound("extraction job", err)
	}
	return &j, nil
}

// ListJobsByOwner returns the newest jobs of one user.
func (db *DB) ListJobsByOwner(ctx context.Context, ownerUID string, limit int) ([]models.ExtractionJob, error) {
	if !validID(ownerUID) {
		return []models.ExtractionJob{}, nil
	}
	jobs := []models.ExtractionJob{}
	err := db.SelectContext(ctx, &jobs,
		`SELECT * FROM extraction_jobs WHERE owner_uid = $1 ORDER BY created_at DESC LIMIT $2`,
		ownerUID, store.NormalizeLimit(limit, store.DefaultJobsLimit))
	if err != nil {
		return nil, fmt.Errorf("failed to list extraction jobs: %w", err)
	}
	return jobs, nil
}
