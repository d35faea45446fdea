package postgres

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/jackc/pgx/v5"

	"github.com/KGODTAO/bookshop-api/pkg/database"
	apperrors "github.com/KGODTAO/bookshop-api/pkg/errors"

	"github.com/KGODTAO/bookshop-api/internal/domain"
)

// ReviewRepository implements repository.ReviewRepository using PostgreSQL.
type ReviewRepository struct {
	pool database.DBTX
}

// NewReviewRepository creates a new PostgreSQL-backed review repository.
func NewReviewRepository(pool database.DBTX) *ReviewRepository {
	return &ReviewRepository{pool: pool}
}

// Create inserts a new review into the database. The unique constraint on
// (author_id, book_id) is the final arbiter against duplicate reviews.
func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	query := `
		INSERT INTO reviews (id, book_id, author_id, text, rating, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.pool.Exec(ctx, query,
		review.ID,
		review.BookID,
		review.AuthorID,
		review.Text,
		review.Rating,
		review.CreatedAt,
		review.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Validation("book", "you have already reviewed this book")
		}
		return fmt.Errorf("insert review: %w", err)
	}

	return nil
}

// GetByID retrieves a review by its ID, including the author's display name.
func (r *ReviewRepository) GetByID(ctx context.Context, id string) (*domain.Review, error) {
	query := `
		SELECT r.id, r.book_id, r.author_id, r.text, r.rating, r.created_at, r.updated_at,
		       u.first_name, u.last_name
		FROM reviews r
		JOIN users u ON u.id = r.author_id
		WHERE r.id = $1`

	var (
		rv                  domain.Review
		firstName, lastName string
	)

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&rv.ID,
		&rv.BookID,
		&rv.AuthorID,
		&rv.Text,
		&rv.Rating,
		&rv.CreatedAt,
		&rv.UpdatedAt,
		&firstName,
		&lastName,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan review: %w", err)
	}

	rv.Author = domain.ReviewAuthor{ID: rv.AuthorID, Name: domain.AuthorDisplayName(firstName, lastName)}

	return &rv, nil
}

// ListByBook returns all reviews for a book, newest first, with author names.
func (r *ReviewRepository) ListByBook(ctx context.Context, bookID string) ([]domain.Review, error) {
	query := `
		SELECT r.id, r.book_id, r.author_id, r.text, r.rating, r.created_at, r.updated_at,
		       u.first_name, u.last_name
		FROM reviews r
		JOIN users u ON u.id = r.author_id
		WHERE r.book_id = $1
		ORDER BY r.created_at DESC`

	rows, err := r.pool.Query(ctx, query, bookID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	reviews := make([]domain.Review, 0)
	for rows.Next() {
		var (
			rv                  domain.Review
			firstName, lastName string
		)

		if err := rows.Scan(
			&rv.ID,
			&rv.BookID,
			&rv.AuthorID,
			&rv.Text,
			&rv.Rating,
			&rv.CreatedAt,
			&rv.UpdatedAt,
			&firstName,
			&lastName,
		); err != nil {
			return nil, fmt.Errorf("scan review row: %w", err)
		}

		rv.Author = domain.ReviewAuthor{ID: rv.AuthorID, Name: domain.AuthorDisplayName(firstName, lastName)}
		reviews = append(reviews, rv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate review rows: %w", err)
	}

	return reviews, nil
}

// GetSummary returns aggregate rating statistics for a book. Books without
// reviews yield an average of zero.
func (r *ReviewRepository) GetSummary(ctx context.Context, bookID string) (*domain.ReviewSummary, error) {
	query := `
		SELECT COALESCE(AVG(rating), 0), COUNT(*)
		FROM reviews
		WHERE book_id = $1`

	var summary domain.ReviewSummary
	err := r.pool.QueryRow(ctx, query, bookID).Scan(&summary.AverageRating, &summary.TotalCount)
	if err != nil {
		return nil, fmt.Errorf("scan review summary: %w", err)
	}

	// Round to one decimal place.
	summary.AverageRating = math.Round(summary.AverageRating*10) / 10

	return &summary, nil
}

// ExistsForAuthor checks whether the author already reviewed the book.
func (r *ReviewRepository) ExistsForAuthor(ctx context.Context, authorID, bookID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM reviews WHERE author_id = $1 AND book_id = $2)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, authorID, bookID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check review existence: %w", err)
	}

	return exists, nil
}

// Update modifies the text and rating of an existing review. Author and
// book bindings are immutable.
func (r *ReviewRepository) Update(ctx context.Context, review *domain.Review) error {
	query := `
		UPDATE reviews
		SET text = $1, rating = $2, updated_at = $3
		WHERE id = $4`

	ct, err := r.pool.Exec(ctx, query, review.Text, review.Rating, review.UpdatedAt, review.ID)
	if err != nil {
		return fmt.Errorf("update review: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("review", review.ID)
	}

	return nil
}

// Delete removes a review by its ID.
func (r *ReviewRepository) Delete(ctx context.Context, id string) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("review", id)
	}

	return nil
}
