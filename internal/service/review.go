package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/KGODTAO/bookshop-api/pkg/errors"

	"github.com/KGODTAO/bookshop-api/internal/cache"
	"github.com/KGODTAO/bookshop-api/internal/domain"
	"github.com/KGODTAO/bookshop-api/internal/event"
	"github.com/KGODTAO/bookshop-api/internal/policy"
	"github.com/KGODTAO/bookshop-api/internal/repository"
)

// ReviewService implements the business logic for book reviews.
type ReviewService struct {
	reviews   repository.ReviewRepository
	books     repository.BookRepository
	summaries *cache.ReviewSummaryCache
	producer  *event.Producer
	logger    *slog.Logger
}

// NewReviewService creates a new review service.
func NewReviewService(
	reviews repository.ReviewRepository,
	books repository.BookRepository,
	summaries *cache.ReviewSummaryCache,
	producer *event.Producer,
	logger *slog.Logger,
) *ReviewService {
	return &ReviewService{
		reviews:   reviews,
		books:     books,
		summaries: summaries,
		producer:  producer,
		logger:    logger,
	}
}

// CreateReviewInput holds the parameters for creating a review.
type CreateReviewInput struct {
	BookID string
	Text   string
	Rating int
}

// CreateReview adds a review authored by the acting user. Each user may
// review a book at most once.
func (s *ReviewService) CreateReview(ctx context.Context, actor policy.Actor, input CreateReviewInput) (*domain.Review, error) {
	if err := policy.Authorize(actor, policy.ActionReviewCreate, ""); err != nil {
		return nil, err
	}

	if !domain.IsValidRating(input.Rating) {
		return nil, apperrors.Validation("rating", fmt.Sprintf("must be between %d and %d", domain.MinRating, domain.MaxRating))
	}

	if _, err := s.books.GetByID(ctx, input.BookID); err != nil {
		return nil, fmt.Errorf("get book for review: %w", err)
	}

	exists, err := s.reviews.ExistsForAuthor(ctx, actor.UserID, input.BookID)
	if err != nil {
		return nil, fmt.Errorf("check existing review: %w", err)
	}
	if exists {
		return nil, apperrors.Validation("book", "you have already reviewed this book")
	}

	now := time.Now().UTC()
	review := &domain.Review{
		ID:        uuid.New().String(),
		BookID:    input.BookID,
		AuthorID:  actor.UserID,
		Text:      input.Text,
		Rating:    input.Rating,
		CreatedAt: now,
		UpdatedAt: now,
	}

	// The unique constraint catches the race where two requests pass the
	// existence check concurrently.
	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}

	if err := s.summaries.Invalidate(ctx, input.BookID); err != nil {
		s.logger.WarnContext(ctx, "review summary cache invalidation failed",
			slog.String("book_id", input.BookID),
			slog.String("error", err.Error()),
		)
	}

	if err := s.producer.PublishReviewCreated(ctx, review); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish review.created event",
			slog.String("review_id", review.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "review created",
		slog.String("review_id", review.ID),
		slog.String("book_id", review.BookID),
		slog.Int("rating", review.Rating),
	)

	return review, nil
}

// ListReviews returns all reviews for a book, newest first.
func (s *ReviewService) ListReviews(ctx context.Context, bookID string) ([]domain.Review, error) {
	reviews, err := s.reviews.ListByBook(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, nil
}

// GetSummary returns the aggregate rating statistics for a book.
func (s *ReviewService) GetSummary(ctx context.Context, bookID string) (*domain.ReviewSummary, error) {
	summary, err := s.summaries.Get(ctx, bookID)
	if err != nil {
		s.logger.WarnContext(ctx, "review summary cache read failed",
			slog.String("book_id", bookID),
			slog.String("error", err.Error()),
		)
		summary = nil
	}
	if summary != nil {
		return summary, nil
	}

	summary, err = s.reviews.GetSummary(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("get review summary: %w", err)
	}

	if err := s.summaries.Set(ctx, bookID, summary); err != nil {
		s.logger.WarnContext(ctx, "review summary cache write failed",
			slog.String("book_id", bookID),
			slog.String("error", err.Error()),
		)
	}

	return summary, nil
}

// UpdateReviewInput holds the updatable review fields. The author and the
// book are immutable.
type UpdateReviewInput struct {
	Text   *string
	Rating *int
}

// UpdateReview modifies a review's text and/or rating. Only the author or
// an admin may update it.
func (s *ReviewService) UpdateReview(ctx context.Context, actor policy.Actor, id string, input UpdateReviewInput) (*domain.Review, error) {
	if err := policy.Authenticate(actor); err != nil {
		return nil, err
	}

	review, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get review for update: %w", err)
	}

	if err := policy.Authorize(actor, policy.ActionReviewMutate, review.AuthorID); err != nil {
		return nil, err
	}

	if input.Text != nil {
		review.Text = *input.Text
	}
	if input.Rating != nil {
		if !domain.IsValidRating(*input.Rating) {
			return nil, apperrors.Validation("rating", fmt.Sprintf("must be between %d and %d", domain.MinRating, domain.MaxRating))
		}
		review.Rating = *input.Rating
	}
	review.UpdatedAt = time.Now().UTC()

	if err := s.reviews.Update(ctx, review); err != nil {
		return nil, fmt.Errorf("update review: %w", err)
	}

	if err := s.summaries.Invalidate(ctx, review.BookID); err != nil {
		s.logger.WarnContext(ctx, "review summary cache invalidation failed",
			slog.String("book_id", review.BookID),
			slog.String("error", err.Error()),
		)
	}

	return review, nil
}

// DeleteReview removes a review. Only the author or an admin may delete it.
func (s *ReviewService) DeleteReview(ctx context.Context, actor policy.Actor, id string) error {
	if err := policy.Authenticate(actor); err != nil {
		return err
	}

	review, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get review for delete: %w", err)
	}

	if err := policy.Authorize(actor, policy.ActionReviewMutate, review.AuthorID); err != nil {
		return err
	}

	if err := s.reviews.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete review: %w", err)
	}

	if err := s.summaries.Invalidate(ctx, review.BookID); err != nil {
		s.logger.WarnContext(ctx, "review summary cache invalidation failed",
			slog.String("book_id", review.BookID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "review deleted",
		slog.String("review_id", id),
		slog.String("book_id", review.BookID),
	)

	return nil
}
