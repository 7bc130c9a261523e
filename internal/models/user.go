package models

import "time"

// User represents a registered user account.
type User struct {
	ID               string    `json:"id" db:"id" bson:"_id"`
	Email            string    `json:"email" db:"email" bson:"email"`
	PasswordHash     string    `json:"-" db:"password_hash" bson:"passwordHash"` // json:"-" = never serialize
	Name             string    `json:"name" db:"name" bson:"name"`
	PhotoURL         *string   `json:"photoURL" db:"photo_url" bson:"photoURL"`
	University       string    `json:"university" db:"university" bson:"university"`
	Course           string    `json:"course" db:"course" bson:"course"`
	ProfileCompleted bool      `json:"completed" db:"profile_completed" bson:"completed"`
	IsAdmin          bool      `json:"isAdmin" db:"is_admin" bson:"isAdmin"`
	CreatedAt        time.Time `json:"createdAt" db:"created_at" bson:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt" db:"updated_at" bson:"updatedAt"`
}

// Identity is the authenticated caller as the domain services see it.
type Identity struct {
	UID         string
	DisplayName *string
	PhotoURL    *string
	Email       string
}

// Identity derives the caller identity from a user account.
func (u *User) Identity() *Identity {
	if u == nil {
		return nil
	}
	var name *string
	if u.Name != "" {
		n := u.Name
		name = &n
	}
	return &Identity{
		UID:         u.ID,
		DisplayName: name,
		PhotoURL:    u.PhotoURL,
		Email:       u.Email,
	}
}

// RegisterRequest is the request body for user registration.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name" binding:"required"`
}

// LoginRequest is the request body for user login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ProfileRequest completes or edits the caller's profile.
type ProfileRequest struct {
	Name       string  `json:"name" binding:"required"`
	University string  `json:"university" binding:"required"`
	Course     string  `json:"course" binding:"required"`
	PhotoURL   *string `json:"photoURL"`
}

// AuthResponse is returned on successful login/register.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
