// Package store declares the persistence contract shared by the Postgres,
// MongoDB and in-memory backends.
//
// Go Pattern: Small interfaces defined where they are consumed. Services
// depend on the narrow interface they need (PaperStore, AnswerStore...);
// main wires one concrete Store that satisfies all of them.
//
// Every backend must:
//   - assign IDs and server timestamps on create and bump UpdatedAt on update
//   - return an error wrapping apperrors.ErrNotFound for missing records
//   - order lists newest first (CreatedAt descending)
package store

import (
	"context"

	"github.com/Shimizu-Technology/paperhub-api/internal/models"
)

const (
	// DefaultPublishedLimit caps the public paper listing.
	DefaultPublishedLimit = 100
	// DefaultSearchLimit caps search results.
	DefaultSearchLimit = 12
	// DefaultJobsLimit caps the live list of a user's extraction jobs.
	DefaultJobsLimit = 20
)

// PaperStore persists exam papers.
type PaperStore interface {
	CreatePaper(ctx context.Context, p *models.PaperDoc) error
	// UpdatePaper rewrites every editable field of an existing paper.
	// OwnerUID and CreatedAt are never changed.
	UpdatePaper(ctx context.Context, p *models.PaperDoc) error
	GetPaper(ctx context.Context, id string) (*models.PaperDoc, error)
	DeletePaper(ctx context.Context, id string) error
	ListPapersByOwner(ctx context.Context, ownerUID string) ([]models.PaperDoc, error)
	ListPublishedPapers(ctx context.Context, limit int) ([]models.PaperDoc, error)
	// SearchPublishedPapers matches published papers whose course code,
	// course name or university name starts with term, ignoring case.
	SearchPublishedPapers(ctx context.Context, term string, limit int) ([]models.PaperDoc, error)
}

// AnswerStore persists workspace answer documents.
type AnswerStore interface {
	CreateAnswer(ctx context.Context, a *models.AnswerDoc) error
	// UpdateAnswer writes only Answers and Title.
	UpdateAnswer(ctx context.Context, a *models.AnswerDoc) error
	GetAnswer(ctx context.Context, id string) (*models.AnswerDoc, error)
	DeleteAnswer(ctx context.Context, id string) error
	ListAnswersByOwner(ctx context.Context, ownerUID string) ([]models.AnswerDoc, error)
	// FindAnswerByOwnerAndPaper returns the most recent AnswerDoc of that
	// owner for that paper, or an ErrNotFound error.
	FindAnswerByOwnerAndPaper(ctx context.Context, ownerUID, paperID string) (*models.AnswerDoc, error)
}

// UniversityStore persists the admin-managed university catalogue.
type UniversityStore interface {
	CreateUniversity(ctx context.Context, u *models.University) error
	// UpdateUniversity writes Name and Courses.
	UpdateUniversity(ctx context.Context, u *models.University) error
	GetUniversity(ctx context.Context, id string) (*models.University, error)
	DeleteUniversity(ctx context.Context, id string) error
	// ListUniversities is ordered by name.
	ListUniversities(ctx context.Context) ([]models.University, error)
}

// UserStore persists accounts and profiles.
type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	// UpdateProfile writes Name, PhotoURL, University, Course and ProfileCompleted.
	UpdateProfile(ctx context.Context, u *models.User) error
}

// JobStore persists asynchronous extraction jobs.
type JobStore interface {
	CreateJob(ctx context.Context, j *models.ExtractionJob) error
	UpdateJob(ctx context.Context, j *models.ExtractionJob) error
	GetJob(ctx context.Context, id string) (*models.ExtractionJob, error)
	// ListJobsByOwner returns a user's most recent jobs, newest first.
	ListJobsByOwner(ctx context.Context, ownerUID string, limit int) ([]models.ExtractionJob, error)
}

// Store is everything the application persists.
type Store interface {
	PaperStore
	AnswerStore
	UniversityStore
	UserStore
	JobStore

	HealthCheck(ctx context.Context) error
	Close() error
}

// NormalizeLimit applies a default and a hard ceiling to list limits.
func NormalizeLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > 500 {
		return 500
	}
	return limit
}
