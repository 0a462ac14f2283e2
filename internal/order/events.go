package order

import "time"

const (
	EventOrderCreated       = "OrderCreated"
	EventOrderStatusChanged = "OrderStatusChanged"
)

// Event is the envelope published to Kafka on order changes
type Event struct {
	EventType  string    `json:"event_type"`
	OrderID    string    `json:"order_id"`
	UserID     string    `json:"user_id"`
	Status     Status    `json:"status"`
	Total      int64     `json:"total"`
	Items      []Item    `json:"items,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
