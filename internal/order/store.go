package order

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/example/storefront/internal/infrastructure/store"
)

// Publisher emits order lifecycle events. The Kafka producer satisfies
// this; a nil Publisher disables publishing.
type Publisher interface {
	Publish(ctx context.Context, key string, message any) error
}

// Store persists orders in the document store. Put is an idempotent
// upsert keyed by order id, so re-submitting the same order after a
// transient failure results in one record. Reads and status updates
// are last-write-wins.
type Store struct {
	docs      store.DocumentStore
	publisher Publisher
}

func NewStore(docs store.DocumentStore, publisher Publisher) *Store {
	return &Store{docs: docs, publisher: publisher}
}

// Put upserts the order record. Safe to call repeatedly with the same
// order id; the downstream document stores overwrite in place.
func (s *Store) Put(ctx context.Context, o *Order) error {
	if len(o.Items) == 0 {
		return ErrEmptyOrder
	}

	if err := s.docs.Put(ctx, store.CollectionOrders, o.ID, o); err != nil {
		return fmt.Errorf("failed to save order: %w", err)
	}

	s.publish(ctx, Event{
		EventType:  EventOrderCreated,
		OrderID:    o.ID,
		UserID:     o.UserID,
		Status:     o.Status,
		Total:      o.Total,
		Items:      o.Items,
		OccurredAt: time.Now(),
	})
	return nil
}

// UpdateStatus transitions an order, enforcing ownership and the status
// machine. ownerID acts as the ownership key from the original contract.
func (s *Store) UpdateStatus(ctx context.Context, orderID, ownerID string, target Status) (*Order, error) {
	o, err := s.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != ownerID {
		return nil, ErrNotOwner
	}

	if !o.CanTransitionTo(target) {
		return nil, o.transitionError(target)
	}

	o.Status = target
	o.UpdatedAt = time.Now()

	if err := s.docs.Put(ctx, store.CollectionOrders, o.ID, o); err != nil {
		return nil, fmt.Errorf("failed to save order: %w", err)
	}

	s.publish(ctx, Event{
		EventType:  EventOrderStatusChanged,
		OrderID:    o.ID,
		UserID:     o.UserID,
		Status:     o.Status,
		Total:      o.Total,
		OccurredAt: time.Now(),
	})
	return o, nil
}

func (s *Store) Get(ctx context.Context, orderID string) (*Order, error) {
	raw, ok, err := s.docs.Get(ctx, store.CollectionOrders, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if !ok {
		return nil, ErrOrderNotFound
	}

	var o Order
	if err := json.Unmarshal(raw, &o); err != nil {
		return nil, fmt.Errorf("failed to unmarshal order: %w", err)
	}
	return &o, nil
}

func (s *Store) ListByUser(ctx context.Context, userID string) ([]*Order, error) {
	all, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	orders := make([]*Order, 0)
	for _, o := range all {
		if o.UserID == userID {
			orders = append(orders, o)
		}
	}
	return orders, nil
}

// ListAll returns every order (for admin use)
func (s *Store) ListAll(ctx context.Context) ([]*Order, error) {
	raws, err := s.docs.List(ctx, store.CollectionOrders)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	orders := make([]*Order, 0, len(raws))
	for _, raw := range raws {
		var o Order
		if err := json.Unmarshal(raw, &o); err != nil {
			continue
		}
		orders = append(orders, &o)
	}
	return orders, nil
}

// publish emits an event, logging failures instead of failing the write.
// The order record is the source of truth; events only drive
// notifications.
func (s *Store) publish(ctx context.Context, event Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event.OrderID, event); err != nil {
		log.Printf("[Order] Failed to publish %s for order %s: %v", event.EventType, event.OrderID, err)
	}
}
