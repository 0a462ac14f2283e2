package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/example/storefront/internal/infrastructure/store"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrInvalidProduct  = errors.New("product_id is required")
)

// Subscriber is notified after a cart mutation has been persisted
type Subscriber func(*Cart)

// Service owns cart state: it loads the ledger, applies a mutation,
// writes the result through the document store, then notifies
// subscribers. Persistence is a side effect of every mutation, not a
// property of the Cart itself.
type Service struct {
	docs        store.DocumentStore
	subscribers []Subscriber
}

func NewService(docs store.DocumentStore) *Service {
	return &Service{docs: docs}
}

// Subscribe registers a callback invoked after every persisted mutation.
// Not safe to call once the service is serving requests.
func (s *Service) Subscribe(fn Subscriber) {
	s.subscribers = append(s.subscribers, fn)
}

// Get loads the owner's cart, returning an empty cart if none exists yet
func (s *Service) Get(ctx context.Context, ownerID string) (*Cart, error) {
	raw, ok, err := s.docs.Get(ctx, store.CollectionCarts, CartID(ownerID))
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if !ok {
		return NewCart(ownerID), nil
	}

	var c Cart
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cart: %w", err)
	}
	if c.Items == nil {
		c.Items = []LineItem{}
	}
	return &c, nil
}

func (s *Service) AddItem(ctx context.Context, ownerID string, p ProductSnapshot, quantity int) (*Cart, error) {
	if p.ID == "" {
		return nil, ErrInvalidProduct
	}
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	c, err := s.Get(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	c.AddItem(p, quantity)
	if err := s.persist(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) RemoveItem(ctx context.Context, ownerID, productID string) (*Cart, error) {
	if productID == "" {
		return nil, ErrInvalidProduct
	}

	c, err := s.Get(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	c.RemoveItem(productID)
	if err := s.persist(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) UpdateQuantity(ctx context.Context, ownerID, productID string, quantity int) (*Cart, error) {
	if productID == "" {
		return nil, ErrInvalidProduct
	}

	c, err := s.Get(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	c.UpdateQuantity(productID, quantity)
	if err := s.persist(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) Clear(ctx context.Context, ownerID string) (*Cart, error) {
	c, err := s.Get(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	c.Clear()
	if err := s.persist(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) persist(ctx context.Context, c *Cart) error {
	if err := s.docs.Put(ctx, store.CollectionCarts, c.ID, c); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	for _, fn := range s.subscribers {
		fn(c)
	}
	return nil
}

// LogChanges is a Subscriber that logs cart totals after each mutation
func LogChanges(c *Cart) {
	log.Printf("[Cart] %s now holds %d items, total %d", c.ID, c.ItemCount(), c.Total)
}
