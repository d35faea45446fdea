package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	apperrors "github.com/KGODTAO/bookshop-api/pkg/errors"

	"github.com/KGODTAO/bookshop-api/internal/domain"
	"github.com/KGODTAO/bookshop-api/internal/policy"
	"github.com/KGODTAO/bookshop-api/internal/repository"
)

// EngagementService implements likes and favourites for books.
type EngagementService struct {
	engagement repository.EngagementRepository
	books      repository.BookRepository
	logger     *slog.Logger
}

// NewEngagementService creates a new engagement service.
func NewEngagementService(engagement repository.EngagementRepository, books repository.BookRepository, logger *slog.Logger) *EngagementService {
	return &EngagementService{
		engagement: engagement,
		books:      books,
		logger:     logger,
	}
}

// ToggleLike flips the acting user's like on a book and reports the new
// state. Unliking keeps the wishlist row around with the flag lowered, so
// re-liking is an update rather than an insert.
func (s *EngagementService) ToggleLike(ctx context.Context, actor policy.Actor, bookID string) (bool, error) {
	if err := policy.Authorize(actor, policy.ActionEngagementToggle, ""); err != nil {
		return false, err
	}

	if _, err := s.books.GetByID(ctx, bookID); err != nil {
		return false, fmt.Errorf("get book for like: %w", err)
	}

	now := time.Now().UTC()
	entry, err := s.engagement.GetWishlistEntry(ctx, actor.UserID, bookID)
	switch {
	case err == nil:
		entry.IsLiked = !entry.IsLiked
		entry.UpdatedAt = now
	case errors.Is(err, apperrors.ErrNotFound):
		entry = &domain.WishlistEntry{
			UserID:    actor.UserID,
			BookID:    bookID,
			IsLiked:   true,
			CreatedAt: now,
			UpdatedAt: now,
		}
	default:
		return false, fmt.Errorf("get wishlist entry: %w", err)
	}

	// The upsert absorbs the race where two first-toggle requests both miss
	// the read: the losing insert degrades to an update of the same row.
	if err := s.engagement.UpsertWishlistEntry(ctx, entry); err != nil {
		return false, fmt.Errorf("upsert wishlist entry: %w", err)
	}

	s.logger.InfoContext(ctx, "like toggled",
		slog.String("user_id", actor.UserID),
		slog.String("book_id", bookID),
		slog.Bool("is_liked", entry.IsLiked),
	)

	return entry.IsLiked, nil
}

// ToggleFavourite flips the acting user's favourite mark on a book and
// reports the new state. Unlike likes, removing a favourite deletes the
// row entirely.
func (s *EngagementService) ToggleFavourite(ctx context.Context, actor policy.Actor, bookID string) (bool, error) {
	if err := policy.Authorize(actor, policy.ActionEngagementToggle, ""); err != nil {
		return false, err
	}

	if _, err := s.books.GetByID(ctx, bookID); err != nil {
		return false, fmt.Errorf("get book for favourite: %w", err)
	}

	removed, err := s.engagement.RemoveFavourite(ctx, actor.UserID, bookID)
	if err != nil {
		return false, fmt.Errorf("remove favourite: %w", err)
	}
	if removed {
		s.logger.InfoContext(ctx, "favourite removed",
			slog.String("user_id", actor.UserID),
			slog.String("book_id", bookID),
		)
		return false, nil
	}

	// Nothing to remove, so this toggle adds. The insert is idempotent and
	// absorbs concurrent toggles of the same pair.
	if err := s.engagement.AddFavourite(ctx, actor.UserID, bookID); err != nil {
		return false, fmt.Errorf("add favourite: %w", err)
	}

	s.logger.InfoContext(ctx, "favourite added",
		slog.String("user_id", actor.UserID),
		slog.String("book_id", bookID),
	)

	return true, nil
}

// ListFavourites returns the acting user's favourite books.
func (s *EngagementService) ListFavourites(ctx context.Context, actor policy.Actor) ([]domain.Book, error) {
	if err := policy.Authorize(actor, policy.ActionFavouriteList, ""); err != nil {
		return nil, err
	}

	books, err := s.engagement.ListFavourites(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("list favourites: %w", err)
	}

	return books, nil
}

// LikeCount returns the number of users currently liking a book.
func (s *EngagementService) LikeCount(ctx context.Context, bookID string) (int, error) {
	count, err := s.engagement.LikeCount(ctx, bookID)
	if err != nil {
		return 0, fmt.Errorf("count likes: %w", err)
	}
	return count, nil
}
