package models

import (
	"strings"
	"time"
)

// University is an admin-managed institution with its course list.
type University struct {
	ID        string    `json:"id" db:"id" bson:"_id"`
	Name      string    `json:"name" db:"name" bson:"name"`
	Courses   Courses   `json:"courses" db:"courses" bson:"courses"`
	CreatedAt time.Time `json:"createdAt" db:"created_at" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at" bson:"updatedAt"`
}

// Has reports whether the list already holds name, ignoring case.
func (c Courses) Has(name string) bool {
	for _, existing := range c {
		if strings.EqualFold(existing, name) {
			return true
		}
	}
	return false
}
