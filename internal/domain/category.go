package domain

import (
	"time"
)

// Category represents a book category. Titles are unique across the store
// and the slug is the stable lookup identity derived from the title.
type Category struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
