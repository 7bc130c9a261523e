package mongostore

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Shimizu-Technology/paperhub-api/internal/models"
)

func (s *Store) CreateAnswer(ctx context.Context, a *models.AnswerDoc) error {
	a.ID = newID()
	a.CreatedAt = now()
	a.UpdatedAt = a.CreatedAt
	if a.Answers == nil {
		a.Answers = models.Answers{}
	}

	if _, err := s.answers.InsertOne(ctx, a); err != nil {
		return fmt.Errorf("failed to create answer: %w", err)
	}
	return nil
}

// UpdateAnswer writes only answers and title.
func (s *Store) UpdateAnswer(ctx context.Context, a *models.AnswerDoc) error {
	set := bson.M{
		"answers":   a.Answers,
		"title":     a.Title,
		"updatedAt": now(),
	}
	return updateOne(ctx, s.answers, "answer", a.ID, set, a)
}

func (s *Store) GetAnswer(ctx context.Context, id string) (*models.AnswerDoc, error) {
	var a models.AnswerDoc
	if err := s.answers.FindOne(ctx, byID(id)).Decode(&a); err != nil {
		return nil, mapNotFound("answer", err)
	}
	return &a, nil
}

func (s *Store) DeleteAnswer(ctx context.Context, id string) error {
	return deleteOne(ctx, s.answers, "answer", id)
}

func (s *Store) ListAnswersByOwner(ctx context.Context, ownerUID string) ([]models.AnswerDoc, error) {
	return findAll[models.AnswerDoc](ctx, s.answers, bson.M{"ownerUid": ownerUID}, newestFirst(0))
}

func (s *Store) FindAnswerByOwnerAndPaper(ctx context.Context, ownerUID, paperID string) (*models.AnswerDoc, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	var a models.AnswerDoc
	err := s.answers.FindOne(ctx, bson.M{"ownerUid": ownerUID, "paperId": paperID}, opts).Decode(&a)
	if err != nil {
		return nil, mapNotFound("answer", err)
	}
	return &a, nil
}
