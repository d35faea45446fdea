package repository

import (
	"context"
	"time"

	"github.com/KGODTAO/bookshop-api/internal/domain"
)

// BookFilter defines filter criteria for listing books.
type BookFilter struct {
	CategoryID  *string
	// Category matches either the category's ID or its slug.
	Category    *string
	Title       *string
	Description *string
	Search      *string
	PriceFrom   *int64
	PriceTo     *int64
	OrderBy     string
	Descending  bool
	Page        int
	PerPage     int
}

// OrderFilter defines filter criteria for listing orders.
type OrderFilter struct {
	UserID        *string
	Status        *string
	TotalSumFrom  *int64
	TotalSumTo    *int64
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
	BookTitle     *string
	Page          int
	PerPage       int
}

// BookRepository defines the interface for book persistence operations.
type BookRepository interface {
	// Create inserts a new book into the store.
	Create(ctx context.Context, book *domain.Book) error

	// GetByID retrieves a book by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Book, error)

	// GetBySlug retrieves a book by its URL-friendly slug.
	GetBySlug(ctx context.Context, slug string) (*domain.Book, error)

	// List returns books matching the given filter along with the total count.
	List(ctx context.Context, filter BookFilter) ([]domain.Book, int, error)

	// GetPrices resolves current unit prices for the given book IDs.
	// Missing IDs are absent from the returned map.
	GetPrices(ctx context.Context, ids []string) (map[string]int64, error)

	// Update modifies an existing book in the store.
	Update(ctx context.Context, book *domain.Book) error

	// Delete removes a book from the store by its identifier.
	Delete(ctx context.Context, id string) error
}

// CategoryRepository defines the interface for category persistence operations.
type CategoryRepository interface {
	// Create inserts a new category into the store.
	Create(ctx context.Context, category *domain.Category) error

	// GetByID retrieves a category by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Category, error)

	// GetBySlug retrieves a category by its URL-friendly slug.
	GetBySlug(ctx context.Context, slug string) (*domain.Category, error)

	// ListAll returns all categories ordered by title.
	ListAll(ctx context.Context) ([]domain.Category, error)

	// Update modifies an existing category in the store.
	Update(ctx context.Context, category *domain.Category) error

	// Delete removes a category from the store by its identifier.
	Delete(ctx context.Context, id string) error
}

// ReviewRepository defines the interface for review persistence operations.
type ReviewRepository interface {
	// Create inserts a new review into the store. A unique constraint on
	// (author_id, book_id) rejects duplicate reviews.
	Create(ctx context.Context, review *domain.Review) error

	// GetByID retrieves a review by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Review, error)

	// ListByBook returns all reviews for a book, newest first, with author names.
	ListByBook(ctx context.Context, bookID string) ([]domain.Review, error)

	// GetSummary returns aggregate rating statistics for a book.
	GetSummary(ctx context.Context, bookID string) (*domain.ReviewSummary, error)

	// ExistsForAuthor checks whether the author already reviewed the book.
	ExistsForAuthor(ctx context.Context, authorID, bookID string) (bool, error)

	// Update modifies the text and rating of an existing review.
	Update(ctx context.Context, review *domain.Review) error

	// Delete removes a review from the store by its identifier.
	Delete(ctx context.Context, id string) error
}

// EngagementRepository defines the interface for wishlist and favourite
// persistence operations.
type EngagementRepository interface {
	// GetWishlistEntry retrieves the wishlist entry for (user, book).
	GetWishlistEntry(ctx context.Context, userID, bookID string) (*domain.WishlistEntry, error)

	// UpsertWishlistEntry inserts the entry or, when the (user, book) row
	// already exists, updates its is_liked flag.
	UpsertWishlistEntry(ctx context.Context, entry *domain.WishlistEntry) error

	// LikeCount returns the number of users currently liking the book.
	LikeCount(ctx context.Context, bookID string) (int, error)

	// AddFavourite inserts a favourite entry (idempotent).
	AddFavourite(ctx context.Context, userID, bookID string) error

	// RemoveFavourite deletes a favourite entry. It reports whether a row
	// was removed.
	RemoveFavourite(ctx context.Context, userID, bookID string) (bool, error)

	// FavouriteExists checks whether the book is among the user's favourites.
	FavouriteExists(ctx context.Context, userID, bookID string) (bool, error)

	// ListFavourites returns the user's favourite books.
	ListFavourites(ctx context.Context, userID string) ([]domain.Book, error)
}

// OrderRepository defines the interface for order persistence operations.
type OrderRepository interface {
	// Create inserts a new order and its lines into the store atomically.
	Create(ctx context.Context, order *domain.Order) error

	// GetByID retrieves an order by its unique identifier, including lines.
	GetByID(ctx context.Context, id string) (*domain.Order, error)

	// List returns orders matching the given filter along with the total count.
	List(ctx context.Context, filter OrderFilter) ([]domain.Order, int, error)

	// UpdateStatus changes the status of an order.
	UpdateStatus(ctx context.Context, id string, status string) error

	// UpdateNotes changes the notes of an order.
	UpdateNotes(ctx context.Context, id string, notes string) error
}

// UserRepository defines the interface for user persistence operations.
type UserRepository interface {
	// Create inserts a new user into the store.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique identifier.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByEmail retrieves a user by their email address.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}
