// universities.go handles the university catalogue.
package database

import (
	"context"
	"fmt"

	"github.com/Shimizu-Technology/paperhub-api/internal/apperrors"
	"github.com/Shimizu-Technology/paperhub-api/internal/models"
)

// CreateUniversity inserts a university with its (possibly empty) course list.
func (db *DB) CreateUniversity(ctx context.Context, u *models.University) error {
	if u.Courses == nil {
		u.Courses = models.Courses{}
	}
	err := db.QueryRowContext(ctx,
		`INSERT INTO universities (name, courses) VALUES ($1, $2) RETURNING id, created_at, updated_at`,
		u.Name, u.Courses,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create university: %w", err)
	}
	return nil
}

// UpdateUniversity writes the name and the course list.
func (db *DB) UpdateUniversity(ctx context.Context, u *models.University) error {
	if !validID(u.ID) {
		return apperrors.NewNotFoundError("university not found")
	}
	err := db.QueryRowContext(ctx,
		`UPDATE universities SET name = $2, courses = $3, updated_at = NOW() WHERE id = $1 RETURNING updated_at`,
		u.ID, u.Name, u.Courses,
	).Scan(&u.UpdatedAt)
	if err != nil {
		return notFound("university", err)
	}
	return nil
}

// GetUniversity retrieves one university.
func (db *DB) GetUniversity(ctx context.Context, id string) (*models.University, error) {
	if !validID(id) {
		return nil, apperrors.NewNotFoundError("university not found")
	}
	var u models.University
	if err := db.GetContext(ctx, &u, `SELECT * FROM universities WHERE id = $1`, id); err != nil {
		return nil, notFound("university", err)
	}
	return &u, nil
}

// DeleteUniversity removes a university. Papers keep their universityName.
func (db *DB) DeleteUniversity(ctx context.Context, id string) error {
	if !validID(id) {
		return apperrors.NewNotFoundError("university not found")
	}
	result, err := db.ExecContext(ctx, `DELETE FROM universities WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete university: %w", err)
	}
	return expectOneRow(result, "university")
}

// ListUniversities returns the catalogue ordered by name.
func (db *DB) ListUniversities(ctx context.Context) ([]models.University, error) {
	unis := []models.University{}
	if err := db.SelectContext(ctx, &unis, `SELECT * FROM universities ORDER BY lower(name)`); err != nil {
		return nil, fmt.Errorf("failed to list universities: %w", err)
	}
	return unis, nil
}
