package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/KGODTAO/bookshop-api/pkg/errors"

	"github.com/KGODTAO/bookshop-api/internal/domain"
	"github.com/KGODTAO/bookshop-api/internal/event"
	"github.com/KGODTAO/bookshop-api/internal/policy"
	"github.com/KGODTAO/bookshop-api/internal/repository"
)

// OrderService implements the business logic for order operations.
type OrderService struct {
	orders   repository.OrderRepository
	books    repository.BookRepository
	producer *event.Producer
	logger   *slog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(orders repository.OrderRepository, books repository.BookRepository, producer *event.Producer, logger *slog.Logger) *OrderService {
	return &OrderService{
		orders:   orders,
		books:    books,
		producer: producer,
		logger:   logger,
	}
}

// CreateOrderLineInput holds the parameters for an order line.
type CreateOrderLineInput struct {
	BookID   string
	Quantity int
}

// CreateOrderInput holds the parameters for creating an order.
type CreateOrderInput struct {
	Lines []CreateOrderLineInput
	Notes string
}

// CreateOrder creates a new order for the acting user. The order owner is
// always the actor; unit prices are read from the catalog at creation time
// and the total is derived from them. All validation happens before any
// write, and the order with its lines is persisted atomically.
func (s *OrderService) CreateOrder(ctx context.Context, actor policy.Actor, input CreateOrderInput) (*domain.Order, error) {
	if err := policy.Authorize(actor, policy.ActionOrderCreate, ""); err != nil {
		return nil, err
	}

	if len(input.Lines) == 0 {
		return nil, apperrors.Validation("lines", "order must contain at least one line")
	}

	bookIDs := make([]string, 0, len(input.Lines))
	seen := make(map[string]bool, len(input.Lines))
	for _, line := range input.Lines {
		if line.Quantity < 1 {
			return nil, apperrors.Validation("quantity", "must be at least 1")
		}
		if seen[line.BookID] {
			return nil, apperrors.Validation("lines", fmt.Sprintf("duplicate book %s in order lines", line.BookID))
		}
		seen[line.BookID] = true
		bookIDs = append(bookIDs, line.BookID)
	}

	prices, err := s.books.GetPrices(ctx, bookIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve book prices: %w", err)
	}

	now := time.Now().UTC()
	orderID := uuid.New().String()

	// Build order lines and derive the total from current catalog prices.
	var totalSum int64
	lines := make([]domain.OrderLine, len(input.Lines))
	for i, lineInput := range input.Lines {
		price, ok := prices[lineInput.BookID]
		if !ok {
			return nil, apperrors.Validation("lines", fmt.Sprintf("unknown book %s", lineInput.BookID))
		}
		lines[i] = domain.OrderLine{
			ID:       uuid.New().String(),
			OrderID:  orderID,
			BookID:   lineInput.BookID,
			Price:    price,
			Quantity: lineInput.Quantity,
		}
		totalSum += lines[i].LineTotal()
	}

	order := &domain.Order{
		ID:        orderID,
		UserID:    actor.UserID,
		Status:    domain.OrderStatusNew,
		Lines:     lines,
		TotalSum:  totalSum,
		Notes:     input.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	if err := s.producer.PublishOrderCreated(ctx, order); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.created event",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
		// Do not fail the operation if event publishing fails.
	}

	s.logger.InfoContext(ctx, "order created",
		slog.String("order_id", order.ID),
		slog.String("user_id", order.UserID),
		slog.Int64("total_sum", order.TotalSum),
	)

	return order, nil
}

// GetOrder retrieves an order by its ID for the acting user. Only the
// owner or an admin may see it.
func (s *OrderService) GetOrder(ctx context.Context, actor policy.Actor, id string) (*domain.Order, error) {
	if err := policy.Authenticate(actor); err != nil {
		return nil, err
	}

	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order by id: %w", err)
	}

	if err := policy.Authorize(actor, policy.ActionOrderRead, order.UserID); err != nil {
		return nil, err
	}

	return order, nil
}

// ListOrders returns a filtered, paginated list of orders. Non-admin
// actors are restricted to their own orders at the query level, whatever
// the incoming filter says.
func (s *OrderService) ListOrders(ctx context.Context, actor policy.Actor, filter repository.OrderFilter) ([]domain.Order, int, error) {
	if err := policy.Authorize(actor, policy.ActionOrderList, ""); err != nil {
		return nil, 0, err
	}

	if !actor.IsAdmin() {
		userID := actor.UserID
		filter.UserID = &userID
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

	orders, total, err := s.orders.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}

	return orders, total, nil
}

// UpdateOrderInput holds the updatable order fields. The owner and the
// total are immutable for everyone.
type UpdateOrderInput struct {
	Status *string
	Notes  *string
}

// UpdateOrder updates an order's status and/or notes. Admin only.
func (s *OrderService) UpdateOrder(ctx context.Context, actor policy.Actor, id string, input UpdateOrderInput) (*domain.Order, error) {
	if err := policy.Authorize(actor, policy.ActionOrderUpdate, ""); err != nil {
		return nil, err
	}

	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order for update: %w", err)
	}

	if input.Status != nil {
		newStatus := *input.Status
		if !domain.IsValidStatus(newStatus) {
			return nil, apperrors.Validation("status", fmt.Sprintf("invalid status %q, must be one of: %s", newStatus, strings.Join(domain.ValidStatuses(), ", ")))
		}

		oldStatus := order.Status
		if err := s.orders.UpdateStatus(ctx, id, newStatus); err != nil {
			return nil, fmt.Errorf("update order status: %w", err)
		}

		if oldStatus != newStatus {
			if err := s.producer.PublishOrderStatusChanged(ctx, id, oldStatus, newStatus); err != nil {
				s.logger.ErrorContext(ctx, "failed to publish order.status_changed event",
					slog.String("order_id", id),
					slog.String("error", err.Error()),
				)
			}
		}

		s.logger.InfoContext(ctx, "order status updated",
			slog.String("order_id", id),
			slog.String("old_status", oldStatus),
			slog.String("new_status", newStatus),
		)

		order.Status = newStatus
	}

	if input.Notes != nil {
		if err := s.orders.UpdateNotes(ctx, id, *input.Notes); err != nil {
			return nil, fmt.Errorf("update order notes: %w", err)
		}
		order.Notes = *input.Notes
	}

	return order, nil
}

// DeleteOrder always refuses: orders are never deleted, not even by admins.
func (s *OrderService) DeleteOrder(ctx context.Context, actor policy.Actor, id string) error {
	return policy.Authorize(actor, policy.ActionOrderDelete, "")
}
