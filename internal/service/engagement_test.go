package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/KGODTAO/bookshop-api/pkg/errors"

	"github.com/KGODTAO/bookshop-api/internal/domain"
	"github.com/KGODTAO/bookshop-api/internal/policy"
)

func newTestEngagementService(engagement *mockEngagementRepository, books *mockBookRepository) *EngagementService {
	return NewEngagementService(engagement, books, newTestLogger())
}

// --- ToggleLike Tests ---

func TestToggleLike_FirstToggleCreatesLikedEntry(t *testing.T) {
	engagement := new(mockEngagementRepository)
	books := new(mockBookRepository)
	svc := newTestEngagementService(engagement, books)
	ctx := context.Background()

	books.On("GetByID", ctx, "book-1").Return(&domain.Book{ID: "book-1"}, nil)
	engagement.On("GetWishlistEntry", ctx, "user-123", "book-1").
		Return(nil, apperrors.NotFound("wishlist entry", "book-1"))
	engagement.On("UpsertWishlistEntry", ctx, mock.MatchedBy(func(e *domain.WishlistEntry) bool {
		return e.UserID == "user-123" && e.BookID == "book-1" && e.IsLiked
	})).Return(nil)

	liked, err := svc.ToggleLike(ctx, customerActor("user-123"), "book-1")

	require.NoError(t, err)
	assert.True(t, liked)
	engagement.AssertExpectations(t)
}

func TestToggleLike_SecondToggleLowersFlagButKeepsRow(t *testing.T) {
	engagement := new(mockEngagementRepository)
	books := new(mockBookRepository)
	svc := newTestEngagementService(engagement, books)
	ctx := context.Background()

	existing := &domain.WishlistEntry{UserID: "user-123", BookID: "book-1", IsLiked: true}
	books.On("GetByID", ctx, "book-1").Return(&domain.Book{ID: "book-1"}, nil)
	engagement.On("GetWishlistEntry", ctx, "user-123", "book-1").Return(existing, nil)
	engagement.On("UpsertWishlistEntry", ctx, mock.MatchedBy(func(e *domain.WishlistEntry) bool {
		return !e.IsLiked
	})).Return(nil)

	liked, err := svc.ToggleLike(ctx, customerActor("user-123"), "book-1")

	require.NoError(t, err)
	assert.False(t, liked)
	engagement.AssertExpectations(t)
}

func TestToggleLike_ThirdToggleRaisesFlagAgain(t *testing.T) {
	engagement := new(mockEngagementRepository)
	books := new(mockBookRepository)
	svc := newTestEngagementService(engagement, books)
	ctx := context.Background()

	existing := &domain.WishlistEntry{UserID: "user-123", BookID: "book-1", IsLiked: false}
	books.On("GetByID", ctx, "book-1").Return(&domain.Book{ID: "book-1"}, nil)
	engagement.On("GetWishlistEntry", ctx, "user-123", "book-1").Return(existing, nil)
	engagement.On("UpsertWishlistEntry", ctx, mock.MatchedBy(func(e *domain.WishlistEntry) bool {
		return e.IsLiked
	})).Return(nil)

	liked, err := svc.ToggleLike(ctx, customerActor("user-123"), "book-1")

	require.NoError(t, err)
	assert.True(t, liked)
}

func TestToggleLike_Anonymous(t *testing.T) {
	engagement := new(mockEngagementRepository)
	books := new(mockBookRepository)
	svc := newTestEngagementService(engagement, books)
	ctx := context.Background()

	liked, err := svc.ToggleLike(ctx, policy.Anonymous(), "book-1")

	assert.False(t, liked)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	engagement.AssertNotCalled(t, "UpsertWishlistEntry", mock.Anything, mock.Anything)
}

func TestToggleLike_UnknownBook(t *testing.T) {
	engagement := new(mockEngagementRepository)
	books := new(mockBookRepository)
	svc := newTestEngagementService(engagement, books)
	ctx := context.Background()

	books.On("GetByID", ctx, "missing").Return(nil, apperrors.NotFound("book", "missing"))

	liked, err := svc.ToggleLike(ctx, customerActor("user-123"), "missing")

	assert.False(t, liked)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

// --- ToggleFavourite Tests ---

func TestToggleFavourite_AddsWhenAbsent(t *testing.T) {
	engagement := new(mockEngagementRepository)
	books := new(mockBookRepository)
	svc := newTestEngagementService(engagement, books)
	ctx := context.Background()

	books.On("GetByID", ctx, "book-1").Return(&domain.Book{ID: "book-1"}, nil)
	engagement.On("RemoveFavourite", ctx, "user-123", "book-1").Return(false, nil)
	engagement.On("AddFavourite", ctx, "user-123", "book-1").Return(nil)

	favourited, err := svc.ToggleFavourite(ctx, customerActor("user-123"), "book-1")

	require.NoError(t, err)
	assert.True(t, favourited)
	engagement.AssertExpectations(t)
}

func TestToggleFavourite_RemovesWhenPresent(t *testing.T) {
	engagement := new(mockEngagementRepository)
	books := new(mockBookRepository)
	svc := newTestEngagementService(engagement, books)
	ctx := context.Background()

	books.On("GetByID", ctx, "book-1").Return(&domain.Book{ID: "book-1"}, nil)
	engagement.On("RemoveFavourite", ctx, "user-123", "book-1").Return(true, nil)

	favourited, err := svc.ToggleFavourite(ctx, customerActor("user-123"), "book-1")

	require.NoError(t, err)
	assert.False(t, favourited)
	engagement.AssertNotCalled(t, "AddFavourite", mock.Anything, mock.Anything, mock.Anything)
}

func TestToggleFavourite_Anonymous(t *testing.T) {
	engagement := new(mockEngagementRepository)
	books := new(mockBookRepository)
	svc := newTestEngagementService(engagement, books)
	ctx := context.Background()

	favourited, err := svc.ToggleFavourite(ctx, policy.Anonymous(), "book-1")

	assert.False(t, favourited)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

// --- ListFavourites Tests ---

func TestListFavourites_ReturnsActorsBooks(t *testing.T) {
	engagement := new(mockEngagementRepository)
	books := new(mockBookRepository)
	svc := newTestEngagementService(engagement, books)
	ctx := context.Background()

	engagement.On("ListFavourites", ctx, "user-123").Return([]domain.Book{
		{ID: "book-1", Title: "Dune"},
		{ID: "book-2", Title: "Neuromancer"},
	}, nil)

	favourites, err := svc.ListFavourites(ctx, customerActor("user-123"))

	require.NoError(t, err)
	assert.Len(t, favourites, 2)
	engagement.AssertExpectations(t)
}

func TestListFavourites_Anonymous(t *testing.T) {
	engagement := new(mockEngagementRepository)
	books := new(mockBookRepository)
	svc := newTestEngagementService(engagement, books)
	ctx := context.Background()

	favourites, err := svc.ListFavourites(ctx, policy.Anonymous())

	assert.Nil(t, favourites)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	engagement.AssertNotCalled(t, "ListFavourites", mock.Anything, mock.Anything)
}
