// answers.go handles workspace AnswerDoc persistence.
package database

import (
	"context"
	"fmt"

	"github.com/Shimizu-Technology/paperhub-api/internal/apperrors"
	"github.com/Shimizu-Technology/paperhub-api/internal/models"
)

// CreateAnswer inserts a new AnswerDoc skeleton.
func (db *DB) CreateAnswer(ctx context.Context, a *models.AnswerDoc) error {
	query := `
		INSERT INTO paper_answers (paper_id, owner_uid, owner_name, owner_photo_url, title,
			course_code, course_name, exam_date, exam_year, university_id, university_name, answers)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at`

	err := db.QueryRowContext(ctx, query,
		a.PaperID, a.OwnerUID, a.OwnerName, a.OwnerPhotoURL, a.Title,
		a.CourseCode, a.CourseName, a.ExamDate, a.ExamYear,
		a.UniversityID, a.UniversityName, a.Answers,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create answer: %w", err)
	}
	return nil
}

// UpdateAnswer writes only the answers and the title.
func (db *DB) UpdateAnswer(ctx context.Context, a *models.AnswerDoc) error {
	if !validID(a.ID) {
		return apperrors.NewNotFoundError("answer not found")
	}
	err := db.QueryRowContext(ctx, `
		UPDATE paper_answers SET answers = $2, title = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		a.ID, a.Answers, a.Title,
	).Scan(&a.UpdatedAt)
	if err != nil {
		return notFound("answer", err)
	}
	return nil
}

// GetAnswer retrieves a single AnswerDoc by ID.
func (db *DB) GetAnswer(ctx context.Context, id string) (*models.AnswerDoc, error) {
	if !validID(id) {
		return nil, apperrors.NewNotFoundError("answer not found")
	}
	var a models.AnswerDoc
	if err := db.GetContext(ctx, &a, `SELECT * FROM paper_answers WHERE id = $1`, id); err != nil {
		return nil, notFound("answer", err)
	}
	return &a, nil
}

// DeleteAnswer removes an AnswerDoc.
func (db *DB) DeleteAnswer(ctx context.Context, id string) error {
	if !validID(id) {
		return apperrors.NewNotFoundError("answer not found")
	}
	result, err := db.ExecContext(ctx, `DELETE FROM paper_answers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete answer: %w", err)
	}
	return expectOneRow(result, "answer")
}

// ListAnswersByOwner returns a user's workspace, newest first.
func (db *DB) ListAnswersByOwner(ctx context.Context, ownerUID string) ([]models.AnswerDoc, error) {
	if !validID(ownerUID) {
		return []models.AnswerDoc{}, nil
	}
	answers := []models.AnswerDoc{}
	err := db.SelectContext(ctx, &answers,
		`SELECT * FROM paper_answers WHERE owner_uid = $1 ORDER BY created_at DESC`, ownerUID)
	if err != nil {
		return nil, fmt.Errorf("failed to list answers: %w", err)
	}
	return answers, nil
}

// FindAnswerByOwnerAndPaper backs the "already in your workspace" check.
func (db *DB) FindAnswerByOwnerAndPaper(ctx context.Context, ownerUID, paperID string) (*models.AnswerDoc, error) {
	if !validID(ownerUID) || !validID(paperID) {
		return nil, apperrors.NewNotFoundError("answer not found")
	}
	var a models.AnswerDoc
	err := db.GetContext(ctx, &a, `
		SELECT * FROM paper_answers
		WHERE owner_uid = $1 AND paper_id = $2
		ORDER BY created_at DESC
		LIMIT 1`, ownerUID, paperID)
	if err != nil {
		return nil, notFound("answer", err)
	}
	return &a, nil
}
