package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/KGODTAO/bookshop-api/pkg/database"
	apperrors "github.com/KGODTAO/bookshop-api/pkg/errors"

	"github.com/KGODTAO/bookshop-api/internal/domain"
)

// EngagementRepository implements repository.EngagementRepository using PostgreSQL.
type EngagementRepository struct {
	pool database.DBTX
}

// NewEngagementRepository creates a new PostgreSQL-backed engagement repository.
func NewEngagementRepository(pool database.DBTX) *EngagementRepository {
	return &EngagementRepository{pool: pool}
}

// GetWishlistEntry retrieves the wishlist entry for (user, book).
func (r *EngagementRepository) GetWishlistEntry(ctx context.Context, userID, bookID string) (*domain.WishlistEntry, error) {
	query := `
		SELECT user_id, book_id, is_liked, created_at, updated_at
		FROM wishlist_entries
		WHERE user_id = $1 AND book_id = $2`

	var e domain.WishlistEntry
	err := r.pool.QueryRow(ctx, query, userID, bookID).Scan(
		&e.UserID,
		&e.BookID,
		&e.IsLiked,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan wishlist entry: %w", err)
	}

	return &e, nil
}

// UpsertWishlistEntry inserts the entry or updates its is_liked flag when
// the (user, book) row already exists. The ON CONFLICT clause makes the
// operation safe under concurrent first-toggle races: the loser of the
// insert race degrades to an update.
func (r *EngagementRepository) UpsertWishlistEntry(ctx context.Context, e *domain.WishlistEntry) error {
	query := `
		INSERT INTO wishlist_entries (user_id, book_id, is_liked, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, book_id)
		DO UPDATE SET is_liked = EXCLUDED.is_liked, updated_at = EXCLUDED.updated_at`

	_, err := r.pool.Exec(ctx, query, e.UserID, e.BookID, e.IsLiked, e.CreatedAt, e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert wishlist entry: %w", err)
	}

	return nil
}

// LikeCount returns the number of users currently liking the book.
func (r *EngagementRepository) LikeCount(ctx context.Context, bookID string) (int, error) {
	query := `SELECT COUNT(*) FROM wishlist_entries WHERE book_id = $1 AND is_liked`

	var count int
	if err := r.pool.QueryRow(ctx, query, bookID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count likes: %w", err)
	}

	return count, nil
}

// AddFavourite inserts a favourite entry.
// Uses ON CONFLICT DO NOTHING for idempotent behavior.
func (r *EngagementRepository) AddFavourite(ctx context.Context, userID, bookID string) error {
	query := `
		INSERT INTO favourite_entries (user_id, book_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, book_id) DO NOTHING`

	_, err := r.pool.Exec(ctx, query, userID, bookID)
	if err != nil {
		return fmt.Errorf("add favourite: %w", err)
	}

	return nil
}

// RemoveFavourite deletes a favourite entry and reports whether a row was removed.
func (r *EngagementRepository) RemoveFavourite(ctx context.Context, userID, bookID string) (bool, error) {
	query := `DELETE FROM favourite_entries WHERE user_id = $1 AND book_id = $2`

	ct, err := r.pool.Exec(ctx, query, userID, bookID)
	if err != nil {
		return false, fmt.Errorf("remove favourite: %w", err)
	}

	return ct.RowsAffected() > 0, nil
}

// FavouriteExists checks whether the book is among the user's favourites.
func (r *EngagementRepository) FavouriteExists(ctx context.Context, userID, bookID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM favourite_entries WHERE user_id = $1 AND book_id = $2)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, userID, bookID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check favourite existence: %w", err)
	}

	return exists, nil
}

// ListFavourites returns the user's favourite books, most recently added first.
func (r *EngagementRepository) ListFavourites(ctx context.Context, userID string) ([]domain.Book, error) {
	query := `
		SELECT b.id, b.title, b.slug, b.description, b.price, b.category_id, b.image_url, b.created_at, b.updated_at
		FROM favourite_entries f
		JOIN books b ON b.id = f.book_id
		WHERE f.user_id = $1
		ORDER BY f.created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list favourites: %w", err)
	}
	defer rows.Close()

	books := make([]domain.Book, 0)
	for rows.Next() {
		var b domain.Book
		if err := rows.Scan(
			&b.ID,
			&b.Title,
			&b.Slug,
			&b.Description,
			&b.Price,
			&b.CategoryID,
			&b.ImageURL,
			&b.CreatedAt,
			&b.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan favourite book row: %w", err)
		}
		books = append(books, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate favourite rows: %w", err)
	}

	return books, nil
}
