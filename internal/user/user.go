package user

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/storefront/internal/auth"
	"github.com/example/storefront/internal/infrastructure/store"
	"github.com/google/uuid"
)

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidEmail       = errors.New("email is required")
)

// User is a shopper or admin account. PasswordHash never leaves the
// service through the API layer.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"password_hash"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// emailIndex maps a normalized email to a user id so logins avoid a
// collection scan
type emailIndex struct {
	UserID string `json:"user_id"`
}

type Service struct {
	docs store.DocumentStore
}

func NewService(docs store.DocumentStore) *Service {
	return &Service{docs: docs}
}

func (s *Service) Register(ctx context.Context, email, name, password string) (*User, error) {
	email = normalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, ErrInvalidEmail
	}

	if _, ok, err := s.docs.Get(ctx, store.CollectionUserEmails, email); err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	} else if ok {
		return nil, ErrEmailTaken
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &User{
		ID:           uuid.New().String(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Role:         RoleCustomer,
		CreatedAt:    time.Now(),
	}

	if err := s.docs.Put(ctx, store.CollectionUsers, u.ID, u); err != nil {
		return nil, fmt.Errorf("failed to save user: %w", err)
	}
	if err := s.docs.Put(ctx, store.CollectionUserEmails, email, emailIndex{UserID: u.ID}); err != nil {
		return nil, fmt.Errorf("failed to save email index: %w", err)
	}
	return u, nil
}

// Authenticate checks credentials and returns the user. Unknown emails
// and wrong passwords return the same error.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	u, err := s.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !auth.CheckPassword(password, u.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*User, error) {
	raw, ok, err := s.docs.Get(ctx, store.CollectionUsers, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if !ok {
		return nil, ErrUserNotFound
	}

	var u User
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user: %w", err)
	}
	return &u, nil
}

func (s *Service) GetByEmail(ctx context.Context, email string) (*User, error) {
	raw, ok, err := s.docs.Get(ctx, store.CollectionUserEmails, normalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("failed to get email index: %w", err)
	}
	if !ok {
		return nil, ErrUserNotFound
	}

	var idx emailIndex
	if err := json.Unmarshal(raw, &idx); err != nil {
		return nil, fmt.Errorf("failed to unmarshal email index: %w", err)
	}
	return s.GetByID(ctx, idx.UserID)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
