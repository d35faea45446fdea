package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/KGODTAO/bookshop-api/pkg/database"
	apperrors "github.com/KGODTAO/bookshop-api/pkg/errors"

	"github.com/KGODTAO/bookshop-api/internal/domain"
	"github.com/KGODTAO/bookshop-api/internal/repository"
)

// OrderRepository implements repository.OrderRepository using PostgreSQL.
type OrderRepository struct {
	pool database.DBTX
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool database.DBTX) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create inserts a new order and its lines atomically within a transaction.
// Any failure rolls back the whole order so no partial rows survive.
func (r *OrderRepository) Create(ctx context.Context, o *domain.Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	orderQuery := `
		INSERT INTO orders (id, user_id, status, total_sum, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err = tx.Exec(ctx, orderQuery,
		o.ID,
		o.UserID,
		o.Status,
		o.TotalSum,
		o.Notes,
		o.CreatedAt,
		o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	lineQuery := `
		INSERT INTO order_lines (id, order_id, book_id, price, quantity)
		VALUES ($1, $2, $3, $4, $5)`

	for _, line := range o.Lines {
		_, err = tx.Exec(ctx, lineQuery,
			line.ID,
			line.OrderID,
			line.BookID,
			line.Price,
			line.Quantity,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return apperrors.Validation("lines", "duplicate book in order lines")
			}
			return fmt.Errorf("insert order line: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// GetByID retrieves an order by its ID, eagerly loading its lines.
// Lines are aggregated in a single query using LEFT JOIN + JSONB_AGG to
// avoid a second round trip.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	orderQuery := `
		SELECT
			o.id, o.user_id, o.status, o.total_sum, o.notes, o.created_at, o.updated_at,
			COALESCE(
				JSONB_AGG(
					JSONB_BUILD_OBJECT(
						'id', ol.id,
						'order_id', ol.order_id,
						'book_id', ol.book_id,
						'book_title', b.title,
						'price', ol.price,
						'quantity', ol.quantity
					) ORDER BY b.title
				) FILTER (WHERE ol.id IS NOT NULL),
				'[]'::jsonb
			) AS lines
		FROM orders o
		LEFT JOIN order_lines ol ON o.id = ol.order_id
		LEFT JOIN books b ON b.id = ol.book_id
		WHERE o.id = $1
		GROUP BY o.id, o.user_id, o.status, o.total_sum, o.notes, o.created_at, o.updated_at`

	var (
		o         domain.Order
		linesJSON []byte
	)

	err := r.pool.QueryRow(ctx, orderQuery, id).Scan(
		&o.ID,
		&o.UserID,
		&o.Status,
		&o.TotalSum,
		&o.Notes,
		&o.CreatedAt,
		&o.UpdatedAt,
		&linesJSON,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan order: %w", err)
	}

	// The query coalesces to '[]'::jsonb, so this also covers line-less orders.
	o.Lines = []domain.OrderLine{}
	if err := json.Unmarshal(linesJSON, &o.Lines); err != nil {
		return nil, fmt.Errorf("unmarshal order lines: %w", err)
	}

	return &o, nil
}

// List returns orders matching the given filter with the total count.
// Owner scoping arrives through filter.UserID and lands in the WHERE
// clause, so a restricted caller can never page into foreign orders.
func (r *OrderRepository) List(ctx context.Context, filter repository.OrderFilter) ([]domain.Order, int, error) {
	var (
		conditions []string
		args       []any
		argIndex   int = 1
	)

	if filter.UserID != nil {
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", argIndex))
		args = append(args, *filter.UserID)
		argIndex++
	}

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIndex))
		args = append(args, *filter.Status)
		argIndex++
	}

	if filter.TotalSumFrom != nil {
		conditions = append(conditions, fmt.Sprintf("total_sum >= $%d", argIndex))
		args = append(args, *filter.TotalSumFrom)
		argIndex++
	}

	if filter.TotalSumTo != nil {
		conditions = append(conditions, fmt.Sprintf("total_sum <= $%d", argIndex))
		args = append(args, *filter.TotalSumTo)
		argIndex++
	}

	if filter.CreatedAfter != nil {
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", argIndex))
		args = append(args, *filter.CreatedAfter)
		argIndex++
	}

	if filter.CreatedBefore != nil {
		conditions = append(conditions, fmt.Sprintf("created_at <= $%d", argIndex))
		args = append(args, *filter.CreatedBefore)
		argIndex++
	}

	if filter.BookTitle != nil {
		conditions = append(conditions, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM order_lines ol JOIN books b ON b.id = ol.book_id WHERE ol.order_id = orders.id AND b.title ILIKE '%%' || $%d || '%%')",
			argIndex))
		args = append(args, *filter.BookTitle)
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	// Use count(*) OVER() for total count in a single query.
	query := fmt.Sprintf(`
		SELECT id, user_id, status, total_sum, notes, created_at, updated_at,
			   count(*) OVER() AS total_count
		FROM orders
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		whereClause, argIndex, argIndex+1,
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
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var totalCount int
	orders := make([]domain.Order, 0)

	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(
			&o.ID,
			&o.UserID,
			&o.Status,
			&o.TotalSum,
			&o.Notes,
			&o.CreatedAt,
			&o.UpdatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate order rows: %w", err)
	}

	// Batch-load lines for all orders in a single query to avoid N+1.
	if len(orders) > 0 {
		orderIDs := make([]string, len(orders))
		for i := range orders {
			orderIDs[i] = orders[i].ID
		}

		linesQuery := `
			SELECT ol.id, ol.order_id, ol.book_id, b.title, ol.price, ol.quantity
			FROM order_lines ol
			JOIN books b ON b.id = ol.book_id
			WHERE ol.order_id = ANY($1)
			ORDER BY ol.id`

		lineRows, err := r.pool.Query(ctx, linesQuery, orderIDs)
		if err != nil {
			return nil, 0, fmt.Errorf("batch load order lines: %w", err)
		}
		defer lineRows.Close()

		linesByOrderID := make(map[string][]domain.OrderLine, len(orders))
		for lineRows.Next() {
			var line domain.OrderLine
			if err := lineRows.Scan(
				&line.ID,
				&line.OrderID,
				&line.BookID,
				&line.BookTitle,
				&line.Price,
				&line.Quantity,
			); err != nil {
				return nil, 0, fmt.Errorf("scan order line: %w", err)
			}
			linesByOrderID[line.OrderID] = append(linesByOrderID[line.OrderID], line)
		}
		if err := lineRows.Err(); err != nil {
			return nil, 0, fmt.Errorf("iterate batch order line rows: %w", err)
		}

		for i := range orders {
			if lines, ok := linesByOrderID[orders[i].ID]; ok {
				orders[i].Lines = lines
			} else {
				orders[i].Lines = []domain.OrderLine{}
			}
		}
	}

	return orders, totalCount, nil
}

// UpdateStatus changes the status of an order.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, status string) error {
	query := `
		UPDATE orders
		SET status = $1, updated_at = $2
		WHERE id = $3`

	ct, err := r.pool.Exec(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("order", id)
	}

	return nil
}

// UpdateNotes changes the notes of an order.
func (r *OrderRepository) UpdateNotes(ctx context.Context, id string, notes string) error {
	query := `
		UPDATE orders
		SET notes = $1, updated_at = $2
		WHERE id = $3`

	ct, err := r.pool.Exec(ctx, query, notes, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update order notes: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("order", id)
	}

	return nil
}
