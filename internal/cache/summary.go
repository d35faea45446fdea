// Package cache holds Redis-backed read caches for hot aggregate queries.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/KGODTAO/bookshop-api/internal/domain"
)

// DefaultSummaryTTL bounds staleness of cached review summaries.
const DefaultSummaryTTL = 5 * time.Minute

// ReviewSummaryCache caches per-book review summaries in Redis. A nil
// cache is valid and degrades to a no-op, so callers do not need to guard
// for disabled caching.
type ReviewSummaryCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewReviewSummaryCache creates a review summary cache with the given TTL.
// Pass a zero TTL to use the default.
func NewReviewSummaryCache(client *redis.Client, ttl time.Duration) *ReviewSummaryCache {
	if ttl <= 0 {
		ttl = DefaultSummaryTTL
	}
	return &ReviewSummaryCache{client: client, ttl: ttl}
}

func summaryKey(bookID string) string {
	return "bookshop:review_summary:" + bookID
}

// Get returns the cached summary for a book, or (nil, nil) on a miss.
func (c *ReviewSummaryCache) Get(ctx context.Context, bookID string) (*domain.ReviewSummary, error) {
	if c == nil || c.client == nil {
		return nil, nil
	}

	data, err := c.client.Get(ctx, summaryKey(bookID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cached review summary: %w", err)
	}

	var summary domain.ReviewSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, fmt.Errorf("unmarshal cached review summary: %w", err)
	}

	return &summary, nil
}

// Set stores the summary for a book.
func (c *ReviewSummaryCache) Set(ctx context.Context, bookID string, summary *domain.ReviewSummary) error {
	if c == nil || c.client == nil {
		return nil
	}

	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshal review summary: %w", err)
	}

	if err := c.client.Set(ctx, summaryKey(bookID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("set cached review summary: %w", err)
	}

	return nil
}

// Invalidate drops the cached summary for a book after a review write.
func (c *ReviewSummaryCache) Invalidate(ctx context.Context, bookID string) error {
	if c == nil || c.client == nil {
		return nil
	}

	if err := c.client.Del(ctx, summaryKey(bookID)).Err(); err != nil {
		return fmt.Errorf("invalidate cached review summary: %w", err)
	}

	return nil
}
