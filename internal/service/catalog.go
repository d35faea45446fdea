package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/KGODTAO/bookshop-api/pkg/errors"
	"github.com/KGODTAO/bookshop-api/pkg/slug"

	"github.com/KGODTAO/bookshop-api/internal/cache"
	"github.com/KGODTAO/bookshop-api/internal/domain"
	"github.com/KGODTAO/bookshop-api/internal/event"
	"github.com/KGODTAO/bookshop-api/internal/policy"
	"github.com/KGODTAO/bookshop-api/internal/repository"
)

// CatalogService implements the business logic for books and categories.
type CatalogService struct {
	books      repository.BookRepository
	categories repository.CategoryRepository
	reviews    repository.ReviewRepository
	engagement repository.EngagementRepository
	summaries  *cache.ReviewSummaryCache
	producer   *event.Producer
	logger     *slog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(
	books repository.BookRepository,
	categories repository.CategoryRepository,
	reviews repository.ReviewRepository,
	engagement repository.EngagementRepository,
	summaries *cache.ReviewSummaryCache,
	producer *event.Producer,
	logger *slog.Logger,
) *CatalogService {
	return &CatalogService{
		books:      books,
		categories: categories,
		reviews:    reviews,
		engagement: engagement,
		summaries:  summaries,
		producer:   producer,
		logger:     logger,
	}
}

// --- Books ---

// ListBooks returns a filtered, paginated list of books. Invalid ordering
// fields fall back to the default (title, price) ordering.
func (s *CatalogService) ListBooks(ctx context.Context, filter repository.BookFilter) ([]domain.Book, int, error) {
	if filter.OrderBy != "" && !domain.IsValidBookOrdering(filter.OrderBy) {
		return nil, 0, apperrors.Validation("ordering", fmt.Sprintf("unknown ordering field %q", filter.OrderBy))
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PerPage <= 0 {
		filter.PerPage = 20
	}
	if filter.PerPage > 100 {
		filter.PerPage = 100
	}

	books, total, err := s.books.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list books: %w", err)
	}

	return books, total, nil
}

// SearchBooks returns books whose title or description contains the query.
func (s *CatalogService) SearchBooks(ctx context.Context, query string, page, perPage int) ([]domain.Book, int, error) {
	filter := repository.BookFilter{Page: page, PerPage: perPage}
	if query != "" {
		filter.Search = &query
	}
	return s.ListBooks(ctx, filter)
}

// GetBookDetail retrieves a book by ID or slug together with its reviews,
// average rating and like count. The review summary is served from the
// Redis cache when warm.
func (s *CatalogService) GetBookDetail(ctx context.Context, idOrSlug string) (*domain.BookDetail, error) {
	book, err := s.books.GetByID(ctx, idOrSlug)
	if err != nil {
		// Fall back to slug lookup for human-friendly URLs.
		book, err = s.books.GetBySlug(ctx, idOrSlug)
		if err != nil {
			return nil, fmt.Errorf("get book: %w", err)
		}
	}

	reviews, err := s.reviews.ListByBook(ctx, book.ID)
	if err != nil {
		return nil, fmt.Errorf("list book reviews: %w", err)
	}

	summary, err := s.summaries.Get(ctx, book.ID)
	if err != nil {
		s.logger.WarnContext(ctx, "review summary cache read failed",
			slog.String("book_id", book.ID),
			slog.String("error", err.Error()),
		)
		summary = nil
	}
	if summary == nil {
		summary, err = s.reviews.GetSummary(ctx, book.ID)
		if err != nil {
			return nil, fmt.Errorf("get review summary: %w", err)
		}
		if err := s.summaries.Set(ctx, book.ID, summary); err != nil {
			s.logger.WarnContext(ctx, "review summary cache write failed",
				slog.String("book_id", book.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	likeCount, err := s.engagement.LikeCount(ctx, book.ID)
	if err != nil {
		return nil, fmt.Errorf("count likes: %w", err)
	}

	return &domain.BookDetail{
		Book:          *book,
		Reviews:       reviews,
		AverageRating: summary.AverageRating,
		ReviewCount:   summary.TotalCount,
		LikeCount:     likeCount,
	}, nil
}

// CreateBookInput holds the parameters for creating a book.
type CreateBookInput struct {
	Title       string
	Description string
	Price       int64
	CategoryID  string
	ImageURL    *string
}

// CreateBook adds a book to the catalog. Admin only.
func (s *CatalogService) CreateBook(ctx context.Context, actor policy.Actor, input CreateBookInput) (*domain.Book, error) {
	if err := policy.Authorize(actor, policy.ActionBookWrite, ""); err != nil {
		return nil, err
	}

	if input.Price < 0 {
		return nil, apperrors.Validation("price", "must not be negative")
	}

	if _, err := s.categories.GetByID(ctx, input.CategoryID); err != nil {
		return nil, apperrors.Validation("category", fmt.Sprintf("unknown category %s", input.CategoryID))
	}

	now := time.Now().UTC()
	book := &domain.Book{
		ID:          uuid.New().String(),
		Title:       input.Title,
		Slug:        slug.Generate(input.Title),
		Description: input.Description,
		Price:       input.Price,
		CategoryID:  input.CategoryID,
		ImageURL:    input.ImageURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.books.Create(ctx, book); err != nil {
		return nil, fmt.Errorf("create book: %w", err)
	}

	if err := s.producer.PublishBookChanged(ctx, event.TopicBookCreated, book); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish book.created event",
			slog.String("book_id", book.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "book created",
		slog.String("book_id", book.ID),
		slog.String("title", book.Title),
	)

	return book, nil
}

// UpdateBookInput holds the updatable book fields. Nil fields are left unchanged.
type UpdateBookInput struct {
	Title       *string
	Description *string
	Price       *int64
	CategoryID  *string
	ImageURL    *string
}

// UpdateBook modifies a book in the catalog. Admin only.
func (s *CatalogService) UpdateBook(ctx context.Context, actor policy.Actor, id string, input UpdateBookInput) (*domain.Book, error) {
	if err := policy.Authorize(actor, policy.ActionBookWrite, ""); err != nil {
		return nil, err
	}

	book, err := s.books.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get book for update: %w", err)
	}

	if input.Title != nil {
		book.Title = *input.Title
		book.Slug = slug.Generate(*input.Title)
	}
	if input.Description != nil {
		book.Description = *input.Description
	}
	if input.Price != nil {
		if *input.Price < 0 {
			return nil, apperrors.Validation("price", "must not be negative")
		}
		book.Price = *input.Price
	}
	if input.CategoryID != nil {
		if _, err := s.categories.GetByID(ctx, *input.CategoryID); err != nil {
			return nil, apperrors.Validation("category", fmt.Sprintf("unknown category %s", *input.CategoryID))
		}
		book.CategoryID = *input.CategoryID
	}
	if input.ImageURL != nil {
		book.ImageURL = input.ImageURL
	}
	book.UpdatedAt = time.Now().UTC()

	if err := s.books.Update(ctx, book); err != nil {
		return nil, fmt.Errorf("update book: %w", err)
	}

	if err := s.producer.PublishBookChanged(ctx, event.TopicBookUpdated, book); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish book.updated event",
			slog.String("book_id", book.ID),
			slog.String("error", err.Error()),
		)
	}

	return book, nil
}

// DeleteBook removes a book from the catalog. Admin only.
func (s *CatalogService) DeleteBook(ctx context.Context, actor policy.Actor, id string) error {
	if err := policy.Authorize(actor, policy.ActionBookWrite, ""); err != nil {
		return err
	}

	book, err := s.books.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get book for delete: %w", err)
	}

	if err := s.books.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete book: %w", err)
	}

	if err := s.producer.PublishBookChanged(ctx, event.TopicBookDeleted, book); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish book.deleted event",
			slog.String("book_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "book deleted", slog.String("book_id", id))

	return nil
}

// --- Categories ---

// ListCategories returns all categories.
func (s *CatalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	categories, err := s.categories.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// GetCategory retrieves a category by its slug.
func (s *CatalogService) GetCategory(ctx context.Context, categorySlug string) (*domain.Category, error) {
	category, err := s.categories.GetBySlug(ctx, categorySlug)
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	return category, nil
}

// CreateCategory adds a category. Admin only. Titles must be unique.
func (s *CatalogService) CreateCategory(ctx context.Context, actor policy.Actor, title string) (*domain.Category, error) {
	if err := policy.Authorize(actor, policy.ActionCategoryWrite, ""); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	category := &domain.Category{
		ID:        uuid.New().String(),
		Title:     title,
		Slug:      slug.Generate(title),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.categories.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}

	s.logger.InfoContext(ctx, "category created",
		slog.String("category_id", category.ID),
		slog.String("title", category.Title),
	)

	return category, nil
}

// UpdateCategory renames a category. Admin only. The slug is regenerated
// from the new title.
func (s *CatalogService) UpdateCategory(ctx context.Context, actor policy.Actor, id, title string) (*domain.Category, error) {
	if err := policy.Authorize(actor, policy.ActionCategoryWrite, ""); err != nil {
		return nil, err
	}

	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get category for update: %w", err)
	}

	category.Title = title
	category.Slug = slug.Generate(title)
	category.UpdatedAt = time.Now().UTC()

	if err := s.categories.Update(ctx, category); err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}

	return category, nil
}

// DeleteCategory removes a category. Admin only.
func (s *CatalogService) DeleteCategory(ctx context.Context, actor policy.Actor, id string) error {
	if err := policy.Authorize(actor, policy.ActionCategoryWrite, ""); err != nil {
		return err
	}

	if err := s.categories.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}

	s.logger.InfoContext(ctx, "category deleted", slog.String("category_id", id))

	return nil
}
