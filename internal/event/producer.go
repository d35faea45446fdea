package event

import (
	"context"
	"fmt"
	"log/slog"

	pkgkafka "github.com/KGODTAO/bookshop-api/pkg/kafka"

	"github.com/KGODTAO/bookshop-api/internal/domain"
)

// Kafka topic constants for bookshop domain events.
const (
	TopicOrderCreated       = "bookshop.order.created"
	TopicOrderStatusChanged = "bookshop.order.status_changed"
	TopicReviewCreated      = "bookshop.review.created"
	TopicBookCreated        = "bookshop.book.created"
	TopicBookUpdated        = "bookshop.book.updated"
	TopicBookDeleted        = "bookshop.book.deleted"
)

// Aggregate type constants.
const (
	AggregateTypeOrder  = "order"
	AggregateTypeReview = "review"
	AggregateTypeBook   = "book"
)

// Source identifier for events originating from this service.
const SourceBookshopAPI = "bookshop-api"

// OrderCreatedData is the payload for an order.created event (full order snapshot).
type OrderCreatedData struct {
	ID       string          `json:"id"`
	UserID   string          `json:"user_id"`
	Status   string          `json:"status"`
	Lines    []OrderLineData `json:"lines"`
	TotalSum int64           `json:"total_sum"`
	Notes    string          `json:"notes,omitempty"`
}

// OrderLineData is the event payload for an order line.
type OrderLineData struct {
	ID       string `json:"id"`
	BookID   string `json:"book_id"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
}

// OrderStatusChangedData is the payload for an order.status_changed event.
type OrderStatusChangedData struct {
	OrderID   string `json:"order_id"`
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
}

// ReviewCreatedData is the payload for a review.created event.
type ReviewCreatedData struct {
	ReviewID string `json:"review_id"`
	BookID   string `json:"book_id"`
	AuthorID string `json:"author_id"`
	Rating   int    `json:"rating"`
}

// BookChangedData is the payload for book.created/updated/deleted events.
type BookChangedData struct {
	BookID     string `json:"book_id"`
	Title      string `json:"title,omitempty"`
	CategoryID string `json:"category_id,omitempty"`
	Price      int64  `json:"price,omitempty"`
}

// Producer publishes bookshop domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishOrderCreated publishes an order.created event with the full order snapshot.
func (p *Producer) PublishOrderCreated(ctx context.Context, order *domain.Order) error {
	lines := make([]OrderLineData, len(order.Lines))
	for i, line := range order.Lines {
		lines[i] = OrderLineData{
			ID:       line.ID,
			BookID:   line.BookID,
			Price:    line.Price,
			Quantity: line.Quantity,
		}
	}

	data := OrderCreatedData{
		ID:       order.ID,
		UserID:   order.UserID,
		Status:   order.Status,
		Lines:    lines,
		TotalSum: order.TotalSum,
		Notes:    order.Notes,
	}

	event, err := pkgkafka.NewEvent(TopicOrderCreated, order.ID, AggregateTypeOrder, SourceBookshopAPI, data)
	if err != nil {
		return fmt.Errorf("create order.created event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicOrderCreated, event); err != nil {
		return fmt.Errorf("publish order.created event: %w", err)
	}

	p.logger.DebugContext(ctx, "published order.created event",
		slog.String("order_id", order.ID),
		slog.String("user_id", order.UserID),
	)

	return nil
}

// PublishOrderStatusChanged publishes an order.status_changed event.
func (p *Producer) PublishOrderStatusChanged(ctx context.Context, orderID, oldStatus, newStatus string) error {
	data := OrderStatusChangedData{
		OrderID:   orderID,
		OldStatus: oldStatus,
		NewStatus: newStatus,
	}

	event, err := pkgkafka.NewEvent(TopicOrderStatusChanged, orderID, AggregateTypeOrder, SourceBookshopAPI, data)
	if err != nil {
		return fmt.Errorf("create order.status_changed event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicOrderStatusChanged, event); err != nil {
		return fmt.Errorf("publish order.status_changed event: %w", err)
	}

	p.logger.DebugContext(ctx, "published order.status_changed event",
		slog.String("order_id", orderID),
		slog.String("old_status", oldStatus),
		slog.String("new_status", newStatus),
	)

	return nil
}

// PublishReviewCreated publishes a review.created event.
func (p *Producer) PublishReviewCreated(ctx context.Context, review *domain.Review) error {
	data := ReviewCreatedData{
		ReviewID: review.ID,
		BookID:   review.BookID,
		AuthorID: review.AuthorID,
		Rating:   review.Rating,
	}

	event, err := pkgkafka.NewEvent(TopicReviewCreated, review.ID, AggregateTypeReview, SourceBookshopAPI, data)
	if err != nil {
		return fmt.Errorf("create review.created event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicReviewCreated, event); err != nil {
		return fmt.Errorf("publish review.created event: %w", err)
	}

	p.logger.DebugContext(ctx, "published review.created event",
		slog.String("review_id", review.ID),
		slog.String("book_id", review.BookID),
	)

	return nil
}

// PublishBookChanged publishes a book.created/updated/deleted event.
func (p *Producer) PublishBookChanged(ctx context.Context, topic string, book *domain.Book) error {
	data := BookChangedData{
		BookID:     book.ID,
		Title:      book.Title,
		CategoryID: book.CategoryID,
		Price:      book.Price,
	}

	event, err := pkgkafka.NewEvent(topic, book.ID, AggregateTypeBook, SourceBookshopAPI, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published book event",
		slog.String("topic", topic),
		slog.String("book_id", book.ID),
	)

	return nil
}
