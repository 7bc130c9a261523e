package mongostore

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Shimizu-Technology/paperhub-api/internal/apperrors"
	"github.com/Shimizu-Technology/paperhub-api/internal/models"
	"github.com/Shimizu-Technology/paperhub-api/internal/store"
)

// --- Universities ---

func (s *Store) CreateUniversity(ctx context.Context, u *models.University) error {
	u.ID = newID()
	u.CreatedAt = now()
	u.UpdatedAt = u.CreatedAt
	if u.Courses == nil {
		u.Courses = models.Courses{}
	}
	if _, err := s.universities.InsertOne(ctx, u); err != nil {
		return fmt.Errorf("failed to create university: %w", err)
	}
	return nil
}

func (s *Store) UpdateUniversity(ctx context.Context, u *models.University) error {
	courses := u.Courses
	if courses == nil {
		courses = models.Courses{}
	}
	set := bson.M{"name": u.Name, "courses": courses, "updatedAt": now()}
	return updateOne(ctx, s.universities, "university", u.ID, set, u)
}

func (s *Store) GetUniversity(ctx context.Context, id string) (*models.University, error) {
	var u models.University
	if err := s.universities.FindOne(ctx, byID(id)).Decode(&u); err != nil {
		return nil, mapNotFound("university", err)
	}
	return &u, nil
}

func (s *Store) DeleteUniversity(ctx context.Context, id string) error {
	return deleteOne(ctx, s.universities, "university", id)
}

func (s *Store) ListUniversities(ctx context.Context) ([]models.University, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "name", Value: 1}}).
		SetCollation(&options.Collation{Locale: "en", Strength: 2})
	return findAll[models.University](ctx, s.universities, bson.M{}, opts)
}

// --- Users ---

// CreateUser relies on the unique email index. Emails are stored lowercase.
func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	u.ID = newID()
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.CreatedAt = now()
	u.UpdatedAt = u.CreatedAt

	if _, err := s.users.InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.NewConflictError("an account with this email already exists")
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	filter := bson.M{"email": strings.ToLower(strings.TrimSpace(email))}
	if err := s.users.FindOne(ctx, filter).Decode(&u); err != nil {
		return nil, mapNotFound("user", err)
	}
	return &u, nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := s.users.FindOne(ctx, byID(id)).Decode(&u); err != nil {
		return nil, mapNotFound("user", err)
	}
	return &u, nil
}

func (s *Store) UpdateProfile(ctx context.Context, u *models.User) error {
	set := bson.M{
		"name":       u.Name,
		"photoURL":   u.PhotoURL,
		"university": u.University,
		"course":     u.Course,
		"completed":  u.ProfileCompleted,
		"updatedAt":  now(),
	}
	return updateOne(ctx, s.users, "user", u.ID, set, u)
}

// --- Extraction jobs ---

func (s *Store) CreateJob(ctx context.Context, j *models.ExtractionJob) error {
	if j.ID == "" {
		j.ID = newID()
	}
	if j.Status == "" {
		j.Status = models.JobPending
	}
	j.CreatedAt = now()
	j.UpdatedAt = j.CreatedAt
	if _, err := s.jobs.InsertOne(ctx, j); err != nil {
		return fmt.Errorf("failed to create extraction job: %w", err)
	}
	return nil
}

func (s *Store) UpdateJob(ctx context.Context, j *models.ExtractionJob) error {
	set := bson.M{
		"status":        j.Status,
		"pageCount":     j.PageCount,
		"result":        j.Result,
		"failureReason": j.FailureReason,
		"updatedAt":     now(),
	}
	return updateOne(ctx, s.jobs, "extraction job", j.ID, set, j)
}

func (s *Store) GetJob(ctx context.Context, id string) (*models.ExtractionJob, error) {
	var j models.ExtractionJob
	if err := s.jobs.FindOne(ctx, byID(id)).Decode(&j); err != nil {
		return nil, mapNotFound("extraction job", err)
	}
	return &j, nil
}

func (s *Store) ListJobsByOwner(ctx context.Context, ownerUID string, limit int) ([]models.ExtractionJob, error) {
	limit = store.NormalizeLimit(limit, store.DefaultJobsLimit)
	return findAll[models.ExtractionJob](ctx, s.jobs, bson.M{"ownerUid": ownerUID}, newestFirst(limit))
}
