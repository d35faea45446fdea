package domain

import (
	"time"
)

// WishlistEntry records whether a user likes a book. Un-liking keeps the
// row and flips IsLiked to false, so the entry doubles as a history of the
// user having ever marked the book.
type WishlistEntry struct {
	UserID    string    `json:"user_id"`
	BookID    string    `json:"book_id"`
	IsLiked   bool      `json:"is_liked"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FavouriteEntry marks a book as a favourite of a user. Un-favouriting
// deletes the row outright.
type FavouriteEntry struct {
	UserID    string    `json:"user_id"`
	BookID    string    `json:"book_id"`
	CreatedAt time.Time `json:"created_at"`
}
