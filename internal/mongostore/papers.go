package mongostore

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/Shimizu-Technology/paperhub-api/internal/models"
	"github.com/Shimizu-Technology/paperhub-api/internal/store"
)

func (s *Store) CreatePaper(ctx context.Context, p *models.PaperDoc) error {
	p.ID = newID()
	p.CreatedAt = now()
	p.UpdatedAt = p.CreatedAt
	p.Questions = models.NormalizeQuestions(p.Questions)

	if _, err := s.papers.InsertOne(ctx, p); err != nil {
		return fmt.Errorf("failed to create paper: %w", err)
	}
	return nil
}

func (s *Store) UpdatePaper(ctx context.Context, p *models.PaperDoc) error {
	set := bson.M{
		"title":          p.Title,
		"courseCode":     p.CourseCode,
		"courseName":     p.CourseName,
		"examDate":       p.ExamDate,
		"examYear":       p.ExamYear,
		"status":         p.Status,
		"ownerName":      p.OwnerName,
		"ownerPhotoURL":  p.OwnerPhotoURL,
		"questions":      models.NormalizeQuestions(p.Questions),
		"universityId":   p.UniversityID,
		"universityName": p.UniversityName,
		"updatedAt":      now(),
	}
	return updateOne(ctx, s.papers, "paper", p.ID, set, p)
}

func (s *Store) GetPaper(ctx context.Context, id string) (*models.PaperDoc, error) {
	var p models.PaperDoc
	if err := s.papers.FindOne(ctx, byID(id)).Decode(&p); err != nil {
		return nil, mapNotFound("paper", err)
	}
	return &p, nil
}

func (s *Store) DeletePaper(ctx context.Context, id string) error {
	return deleteOne(ctx, s.papers, "paper", id)
}

func (s *Store) ListPapersByOwner(ctx context.Context, ownerUID string) ([]models.PaperDoc, error) {
	return findAll[models.PaperDoc](ctx, s.papers, bson.M{"ownerUid": ownerUID}, newestFirst(0))
}

func (s *Store) ListPublishedPapers(ctx context.Context, limit int) ([]models.PaperDoc, error) {
	limit = store.NormalizeLimit(limit, store.DefaultPublishedLimit)
	return findAll[models.PaperDoc](ctx, s.papers, bson.M{"status": models.PaperPublished}, newestFirst(limit))
}

// SearchPublishedPapers uses one $or query over the three prefix fields.
func (s *Store) SearchPublishedPapers(ctx context.Context, term string, limit int) ([]models.PaperDoc, error) {
	limit = store.NormalizeLimit(limit, store.DefaultSearchLimit)
	term = strings.TrimSpace(term)
	if term == "" {
		return s.ListPublishedPapers(ctx, limit)
	}

	filter := bson.M{
		"status": models.PaperPublished,
		"$or": bson.A{
			bson.M{"courseCode": prefixRegex(term)},
			bson.M{"courseName": prefixRegex(term)},
			bson.M{"universityName": prefixRegex(term)},
		},
	}
	return findAll[models.PaperDoc](ctx, s.papers, filter, newestFirst(limit))
}
