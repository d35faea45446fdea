package domain

import (
	"time"
)

// Rating bounds for reviews.
const (
	MinRating = 1
	MaxRating = 5
)

// Review represents a book review submitted by a user. A user may leave at
// most one review per book.
type Review struct {
	ID        string       `json:"id"`
	BookID    string       `json:"book_id"`
	AuthorID  string       `json:"author_id"`
	Author    ReviewAuthor `json:"author"`
	Text      string       `json:"text"`
	Rating    int          `json:"rating"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// ReviewAuthor is the public representation of a review's author.
type ReviewAuthor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ReviewSummary contains aggregate review statistics for a book.
type ReviewSummary struct {
	AverageRating float64 `json:"average_rating"`
	TotalCount    int     `json:"total_count"`
}

// IsValidRating checks whether the rating is within the allowed range.
func IsValidRating(rating int) bool {
	return rating >= MinRating && rating <= MaxRating
}
