package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/KGODTAO/bookshop-api/pkg/database"
	apperrors "github.com/KGODTAO/bookshop-api/pkg/errors"

	"github.com/KGODTAO/bookshop-api/internal/domain"
	"github.com/KGODTAO/bookshop-api/internal/repository"
)

// BookRepository implements repository.BookRepository using PostgreSQL.
type BookRepository struct {
	pool database.DBTX
}

// NewBookRepository creates a new PostgreSQL-backed book repository.
func NewBookRepository(pool database.DBTX) *BookRepository {
	return &BookRepository{pool: pool}
}

const bookColumns = "id, title, slug, description, price, category_id, image_url, created_at, updated_at"

// Create inserts a new book into the database.
func (r *BookRepository) Create(ctx context.Context, b *domain.Book) error {
	query := `
		INSERT INTO books (id, title, slug, description, price, category_id, image_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.pool.Exec(ctx, query,
		b.ID,
		b.Title,
		b.Slug,
		b.Description,
		b.Price,
		b.CategoryID,
		b.ImageURL,
		b.CreatedAt,
		b.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("book", "slug", b.Slug)
		}
		return fmt.Errorf("insert book: %w", err)
	}

	return nil
}

// GetByID retrieves a book by its ID.
func (r *BookRepository) GetByID(ctx context.Context, id string) (*domain.Book, error) {
	query := fmt.Sprintf(`SELECT %s FROM books WHERE id = $1`, bookColumns)
	return r.getOne(ctx, query, id)
}

// GetBySlug retrieves a book by its slug.
func (r *BookRepository) GetBySlug(ctx context.Context, slug string) (*domain.Book, error) {
	query := fmt.Sprintf(`SELECT %s FROM books WHERE slug = $1`, bookColumns)
	return r.getOne(ctx, query, slug)
}

func (r *BookRepository) getOne(ctx context.Context, query string, arg any) (*domain.Book, error) {
	var b domain.Book
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&b.ID,
		&b.Title,
		&b.Slug,
		&b.Description,
		&b.Price,
		&b.CategoryID,
		&b.ImageURL,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan book: %w", err)
	}

	return &b, nil
}

// List returns books matching the given filter with the total count.
func (r *BookRepository) List(ctx context.Context, filter repository.BookFilter) ([]domain.Book, int, error) {
	var (
		conditions []string
		args       []any
		argIndex   int = 1
	)

	if filter.CategoryID != nil {
		conditions = append(conditions, fmt.Sprintf("category_id = $%d", argIndex))
		args = append(args, *filter.CategoryID)
		argIndex++
	}

	if filter.Category != nil {
		// The value may be a category ID or its slug.
		conditions = append(conditions, fmt.Sprintf("category_id IN (SELECT id FROM categories WHERE id::text = $%d OR slug = $%d)", argIndex, argIndex))
		args = append(args, *filter.Category)
		argIndex++
	}

	if filter.Title != nil {
		conditions = append(conditions, fmt.Sprintf("title ILIKE '%%' || $%d || '%%'", argIndex))
		args = append(args, *filter.Title)
		argIndex++
	}

	if filter.Description != nil {
		conditions = append(conditions, fmt.Sprintf("description ILIKE '%%' || $%d || '%%'", argIndex))
		args = append(args, *filter.Description)
		argIndex++
	}

	if filter.Search != nil {
		conditions = append(conditions, fmt.Sprintf("(title ILIKE '%%' || $%d || '%%' OR description ILIKE '%%' || $%d || '%%')", argIndex, argIndex))
		args = append(args, *filter.Search)
		argIndex++
	}

	if filter.PriceFrom != nil {
		conditions = append(conditions, fmt.Sprintf("price >= $%d", argIndex))
		args = append(args, *filter.PriceFrom)
		argIndex++
	}

	if filter.PriceTo != nil {
		conditions = append(conditions, fmt.Sprintf("price <= $%d", argIndex))
		args = append(args, *filter.PriceTo)
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	// Ordering fields are validated upstream; never interpolate raw input.
	orderClause := "ORDER BY title ASC, price ASC"
	switch filter.OrderBy {
	case domain.BookOrderTitle:
		orderClause = "ORDER BY title ASC, price ASC"
		if filter.Descending {
			orderClause = "ORDER BY title DESC, price ASC"
		}
	case domain.BookOrderPrice:
		orderClause = "ORDER BY price ASC, title ASC"
		if filter.Descending {
			orderClause = "ORDER BY price DESC, title ASC"
		}
	}

	// Use count(*) OVER() for total count in a single query.
	query := fmt.Sprintf(`
		SELECT %s,
			   count(*) OVER() AS total_count
		FROM books
		%s
		%s
		LIMIT $%d OFFSET $%d`,
		bookColumns, whereClause, orderClause, argIndex, argIndex+1,
	)

	limit := filter.PerPage
	if limit <= 0 {
		limit = 20
	}
	offset := 0
	if filter.Page > 1 {
		offset = (filter.Page - 1) * limit
	}

	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	var totalCount int
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
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan book row: %w", err)
		}
		books = append(books, b)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate book rows: %w", err)
	}

	return books, totalCount, nil
}

// GetPrices resolves current unit prices for the given book IDs.
func (r *BookRepository) GetPrices(ctx context.Context, ids []string) (map[string]int64, error) {
	query := `SELECT id, price FROM books WHERE id = ANY($1)`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("query book prices: %w", err)
	}
	defer rows.Close()

	prices := make(map[string]int64, len(ids))
	for rows.Next() {
		var (
			id    string
			price int64
		)
		if err := rows.Scan(&id, &price); err != nil {
			return nil, fmt.Errorf("scan book price: %w", err)
		}
		prices[id] = price
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate book price rows: %w", err)
	}

	return prices, nil
}

// Update modifies an existing book.
func (r *BookRepository) Update(ctx context.Context, b *domain.Book) error {
	query := `
		UPDATE books
		SET title = $1, slug = $2, description = $3, price = $4, category_id = $5, image_url = $6, updated_at = $7
		WHERE id = $8`

	ct, err := r.pool.Exec(ctx, query,
		b.Title,
		b.Slug,
		b.Description,
		b.Price,
		b.CategoryID,
		b.ImageURL,
		b.UpdatedAt,
		b.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("book", "slug", b.Slug)
		}
		return fmt.Errorf("update book: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("book", b.ID)
	}

	return nil
}

// Delete removes a book by its ID.
func (r *BookRepository) Delete(ctx context.Context, id string) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("book", id)
	}

	return nil
}
