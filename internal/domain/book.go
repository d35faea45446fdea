package domain

import (
	"time"
)

// Book represents a book in the catalog.
type Book struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	Price       int64     `json:"price"`
	CategoryID  string    `json:"category_id"`
	ImageURL    *string   `json:"image_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// BookDetail is a book together with its review and engagement aggregates,
// returned by the detail endpoint.
type BookDetail struct {
	Book
	Reviews       []Review `json:"reviews"`
	AverageRating float64  `json:"average_rating"`
	ReviewCount   int      `json:"review_count"`
	LikeCount     int      `json:"like_count"`
}

// Book ordering fields accepted by the list endpoint.
const (
	BookOrderTitle = "title"
	BookOrderPrice = "price"
)

// IsValidBookOrdering checks whether the given field is a valid book ordering field.
func IsValidBookOrdering(field string) bool {
	return field == BookOrderTitle || field == BookOrderPrice
}
