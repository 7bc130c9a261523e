// papers.go handles exam paper persistence.
package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/Shimizu-Technology/paperhub-api/internal/apperrors"
	"github.com/Shimizu-Technology/paperhub-api/internal/models"
	"github.com/Shimizu-Technology/paperhub-api/internal/store"
)

// CreatePaper inserts a new paper.
// The database assigns the ID and both timestamps.
func (db *DB) CreatePaper(ctx context.Context, p *models.PaperDoc) error {
	query := `
		INSERT INTO papers (title, course_code, course_name, exam_date, exam_year, status,
			owner_uid, owner_name, owner_photo_url, questions, university_id, university_name)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at`

	// QueryRowContext executes a query that returns a single row.
	// Scan() reads the returned columns into our struct fields.
	err := db.QueryRowContext(ctx, query,
		p.Title, p.CourseCode, p.CourseName, p.ExamDate, p.ExamYear, p.Status,
		p.OwnerUID, p.OwnerName, p.OwnerPhotoURL, p.Questions, p.UniversityID, p.UniversityName,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create paper: %w", err)
	}
	return nil
}

// UpdatePaper rewrites a paper's content. owner_uid and created_at stay put.
func (db *DB) UpdatePaper(ctx context.Context, p *models.PaperDoc) error {
	if !validID(p.ID) {
		return apperrors.NewNotFoundError("paper not found")
	}

	query := `
		UPDATE papers
		SET title = $2, course_code = $3, course_name = $4, exam_date = $5, exam_year = $6,
			status = $7, owner_name = $8, owner_photo_url = $9, questions = $10,
			university_id = $11, university_name = $12, updated_at = NOW()
		WHERE id = $1
		RETURNING owner_uid, created_at, updated_at`

	err := db.QueryRowContext(ctx, query,
		p.ID, p.Title, p.CourseCode, p.CourseName, p.ExamDate, p.ExamYear,
		p.Status, p.OwnerName, p.OwnerPhotoURL, p.Questions,
		p.UniversityID, p.UniversityName,
	).Scan(&p.OwnerUID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return notFound("paper", err)
	}
	return nil
}

// GetPaper retrieves a single paper by ID.
func (db *DB) GetPaper(ctx context.Context, id string) (*models.PaperDoc, error) {
	if !validID(id) {
		return nil, apperrors.NewNotFoundError("paper not found")
	}

	var p models.PaperDoc
	// GetContext is sqlx's convenience method: it scans directly into a struct
	// using the `db:"column_name"` tags we defined on the model.
	if err := db.GetContext(ctx, &p, `SELECT * FROM papers WHERE id = $1`, id); err != nil {
		return nil, notFound("paper", err)
	}
	return &p, nil
}

// DeletePaper removes a paper. AnswerDocs adopted from it are kept.
func (db *DB) DeletePaper(ctx context.Context, id string) error {
	if !validID(id) {
		return apperrors.NewNotFoundError("paper not found")
	}
	result, err := db.ExecContext(ctx, `DELETE FROM papers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete paper: %w", err)
	}
	return expectOneRow(result, "paper")
}

// ListPapersByOwner returns every paper (draft or published) of one user.
func (db *DB) ListPapersByOwner(ctx context.Context, ownerUID string) ([]models.PaperDoc, error) {
	if !validID(ownerUID) {
		return []models.PaperDoc{}, nil
	}
	papers := []models.PaperDoc{}
	err := db.SelectContext(ctx, &papers,
		`SELECT * FROM papers WHERE owner_uid = $1 ORDER BY created_at DESC`, ownerUID)
	if err != nil {
		return nil, fmt.Errorf("failed to list papers: %w", err)
	}
	return papers, nil
}

// ListPublishedPapers returns the latest published papers.
func (db *DB) ListPublishedPapers(ctx context.Context, limit int) ([]models.PaperDoc, error) {
	limit = store.NormalizeLimit(limit, store.DefaultPublishedLimit)
	papers := []models.PaperDoc{}
	err := db.SelectContext(ctx, &papers,
		`SELECT * FROM papers WHERE status = $1 ORDER BY created_at DESC LIMIT $2`,
		models.PaperPublished, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list published papers: %w", err)
	}
	return papers, nil
}

// SearchPublishedPapers does a case-insensitive prefix match on course code,
// course name and university name. One query covers all three fields, so
// there is nothing to merge or de-duplicate afterwards.
func (db *DB) SearchPublishedPapers(ctx context.Context, term string, limit int) ([]models.PaperDoc, error) {
	limit = store.NormalizeLimit(limit, store.DefaultSearchLimit)
	term = strings.TrimSpace(term)
	if term == "" {
		return db.ListPublishedPapers(ctx, limit)
	}

	papers := []models.PaperDoc{}
	err := db.SelectContext(ctx, &papers, `
		SELECT * FROM papers
		WHERE status = $1
		  AND (lower(course_code) LIKE $2
		       OR lower(course_name) LIKE $2
		       OR lower(COALESCE(university_name, '')) LIKE $2)
		ORDER BY created_at DESC
		LIMIT $3`,
		models.PaperPublished, prefixPattern(term), limit)
	if err != nil {
		return nil, fmt.Errorf("search query failed: %w", err)
	}
	return papers, nil
}
