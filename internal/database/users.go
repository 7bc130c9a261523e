// users.go handles user-related database operations.
package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/Shimizu-Technology/paperhub-api/internal/apperrors"
	"github.com/Shimizu-Technology/paperhub-api/internal/models"
)

// CreateUser inserts a new user record.
func (db *DB) CreateUser(ctx context.Context, u *models.User) error {
	query := `
		INSERT INTO users (email, password_hash, name, photo_url, is_admin)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`

	err := db.QueryRowContext(ctx, query,
		u.Email, u.PasswordHash, u.Name, u.PhotoURL, u.IsAdmin,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		// idx_users_email is unique on lower(email)
		if strings.Contains(err.Error(), "idx_users_email") {
			return apperrors.NewConflictError("an account with this email already exists")
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUserByEmail retrieves a user by email address, ignoring case.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := db.GetContext(ctx, &u, `SELECT * FROM users WHERE lower(email) = lower($1)`, email)
	if err != nil {
		return nil, notFound("user", err)
	}
	return &u, nil
}

// GetUserByID retrieves a user by ID.
func (db *DB) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	if !validID(id) {
		return nil, apperrors.NewNotFoundError("user not found")
	}
	var u models.User
	if err := db.GetContext(ctx, &u, `SELECT * FROM users WHERE id = $1`, id); err != nil {
		return nil, notFound("user", err)
	}
	return &u, nil
}

// UpdateProfile saves the profile-completion fields.
func (db *DB) UpdateProfile(ctx context.Context, u *models.User) error {
	if !validID(u.ID) {
		return apperrors.NewNotFoundError("user not found")
	}
	err := db.QueryRowContext(ctx, `
		UPDATE users
		SET name = $2, photo_url = $3, university = $4, course = $5,
			profile_completed = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		u.ID, u.Name, u.PhotoURL, u.University, u.Course, u.ProfileCompleted,
	).Scan(&u.UpdatedAt)
	if err != nil {
		return notFound("user", err)
	}
	return nil
}
