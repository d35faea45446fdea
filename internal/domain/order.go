package domain

import "time"

// Order status constants.
const (
	OrderStatusNew        = "new"
	OrderStatusInProgress = "in_progress"
	OrderStatusDone       = "done"
	OrderStatusCanceled   = "canceled"
)

// Order represents a customer order. TotalSum is computed from the line
// items at creation time and never recalculated afterwards.
type Order struct {
	ID        string      `json:"id"`
	UserID    string      `json:"user_id"`
	Status    string      `json:"status"`
	Lines     []OrderLine `json:"lines"`
	TotalSum  int64       `json:"total_sum"`
	Notes     string      `json:"notes,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// ValidStatuses returns all valid order statuses.
func ValidStatuses() []string {
	return []string{
		OrderStatusNew,
		OrderStatusInProgress,
		OrderStatusDone,
		OrderStatusCanceled,
	}
}

// IsValidStatus checks if a status string is valid.
func IsValidStatus(status string) bool {
	for _, s := range ValidStatuses() {
		if s == status {
			return true
		}
	}
	return false
}
