package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/example/storefront/internal/infrastructure/store"
	"github.com/google/uuid"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidPrice    = errors.New("price must be positive")
	ErrInvalidName     = errors.New("name is required")
)

// Product is a catalog entry. Price is in integer minor units.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       int64     `json:"price"`
	Stock       int       `json:"stock"`
	Images      []string  `json:"images,omitempty"`
	CategoryID  string    `json:"category_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Source supplies product data at add-to-cart time. The cart keeps a
// snapshot of what it returns and never re-validates it.
type Source interface {
	GetProduct(ctx context.Context, id string) (*Product, error)
}

// Service handles catalog operations backed by the document store
type Service struct {
	docs store.DocumentStore
}

func NewService(docs store.DocumentStore) *Service {
	return &Service{docs: docs}
}

func (s *Service) CreateProduct(ctx context.Context, name, description string, price int64, stock int, images []string, categoryID string) (*Product, error) {
	if name == "" {
		return nil, ErrInvalidName
	}
	if price <= 0 {
		return nil, ErrInvalidPrice
	}

	now := time.Now()
	p := &Product{
		ID:          uuid.New().String(),
		Name:        name,
		Description: description,
		Price:       price,
		Stock:       stock,
		Images:      images,
		CategoryID:  categoryID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.docs.Put(ctx, store.CollectionProducts, p.ID, p); err != nil {
		return nil, fmt.Errorf("failed to save product: %w", err)
	}
	return p, nil
}

func (s *Service) UpdateProduct(ctx context.Context, id, name, description string, price int64, stock int, images []string, categoryID string) (*Product, error) {
	if name == "" {
		return nil, ErrInvalidName
	}
	if price <= 0 {
		return nil, ErrInvalidPrice
	}

	p, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	p.Name = name
	p.Description = description
	p.Price = price
	p.Stock = stock
	p.Images = images
	p.CategoryID = categoryID
	p.UpdatedAt = time.Now()

	if err := s.docs.Put(ctx, store.CollectionProducts, p.ID, p); err != nil {
		return nil, fmt.Errorf("failed to save product: %w", err)
	}
	return p, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	return s.docs.Delete(ctx, store.CollectionProducts, id)
}

func (s *Service) GetProduct(ctx context.Context, id string) (*Product, error) {
	raw, ok, err := s.docs.Get(ctx, store.CollectionProducts, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if !ok {
		return nil, ErrProductNotFound
	}

	var p Product
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal product: %w", err)
	}
	return &p, nil
}

func (s *Service) ListProducts(ctx context.Context) ([]*Product, error) {
	raws, err := s.docs.List(ctx, store.CollectionProducts)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	products := make([]*Product, 0, len(raws))
	for _, raw := range raws {
		var p Product
		if err := json.Unmarshal(raw, &p); err != nil {
			continue
		}
		products = append(products, &p)
	}
	return products, nil
}
