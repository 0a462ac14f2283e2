package store

import (
	"context"
	"encoding/json"
)

// DocumentStore is the persistence contract shared by all backends.
// Put is an idempotent upsert: writing the same id twice leaves one document.
type DocumentStore interface {
	Put(ctx context.Context, collection, id string, doc any) error
	Get(ctx context.Context, collection, id string) (json.RawMessage, bool, error)
	List(ctx context.Context, collection string) ([]json.RawMessage, error)
	Delete(ctx context.Context, collection, id string) error
}

// Collection names used across the application.
const (
	CollectionProducts   = "products"
	CollectionCategories = "categories"
	CollectionCarts      = "carts"
	CollectionOrders     = "orders"
	CollectionUsers      = "users"
	CollectionUserEmails = "user_emails"
)
