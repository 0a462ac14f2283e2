package catalog

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/example/storefront/internal/infrastructure/store"
	"github.com/google/uuid"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrInvalidSlug      = errors.New("invalid slug format")
	ErrEmptyImport      = errors.New("import contains no categories")
)

// slugRegex validates slug format (lowercase letters, numbers, hyphens)
var slugRegex = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Category represents a product category
type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (s *Service) CreateCategory(ctx context.Context, name, slug, description string) (*Category, error) {
	if name == "" {
		return nil, ErrInvalidName
	}
	if slug == "" {
		slug = generateSlug(name)
	}
	if !slugRegex.MatchString(slug) {
		return nil, ErrInvalidSlug
	}

	now := time.Now()
	c := &Category{
		ID:          uuid.New().String(),
		Name:        name,
		Slug:        slug,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.docs.Put(ctx, store.CollectionCategories, c.ID, c); err != nil {
		return nil, fmt.Errorf("failed to save category: %w", err)
	}
	return c, nil
}

func (s *Service) DeleteCategory(ctx context.Context, id string) error {
	return s.docs.Delete(ctx, store.CollectionCategories, id)
}

func (s *Service) GetCategory(ctx context.Context, id string) (*Category, error) {
	raw, ok, err := s.docs.Get(ctx, store.CollectionCategories, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	if !ok {
		return nil, ErrCategoryNotFound
	}

	var c Category
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal category: %w", err)
	}
	return &c, nil
}

func (s *Service) ListCategories(ctx context.Context) ([]*Category, error) {
	raws, err := s.docs.List(ctx, store.CollectionCategories)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	categories := make([]*Category, 0, len(raws))
	for _, raw := range raws {
		var c Category
		if err := json.Unmarshal(raw, &c); err != nil {
			continue
		}
		categories = append(categories, &c)
	}
	return categories, nil
}

// ImportCategoriesCSV bulk-creates categories from CSV input.
// Expected columns: name, slug (optional), description (optional).
// A header row starting with "name" is skipped. The whole import fails
// on the first invalid row; nothing before it is rolled back.
func (s *Service) ImportCategoriesCSV(ctx context.Context, r io.Reader) ([]*Category, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // rows may omit trailing columns

	var imported []*Category
	for line := 1; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("invalid CSV at line %d: %w", line, err)
		}
		if len(record) == 0 {
			continue
		}

		name := strings.TrimSpace(record[0])
		if line == 1 && strings.EqualFold(name, "name") {
			continue
		}
		if name == "" {
			continue
		}

		var slug, description string
		if len(record) > 1 {
			slug = strings.TrimSpace(record[1])
		}
		if len(record) > 2 {
			description = strings.TrimSpace(record[2])
		}

		c, err := s.CreateCategory(ctx, name, slug, description)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		imported = append(imported, c)
	}

	if len(imported) == 0 {
		return nil, ErrEmptyImport
	}
	return imported, nil
}

// generateSlug derives a URL-safe slug from a category name
func generateSlug(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.Join(strings.Fields(slug), "-")
	var b strings.Builder
	lastHyphen := false
	for _, r := range slug {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			lastHyphen = false
		case r == '-' && !lastHyphen:
			b.WriteRune(r)
			lastHyphen = true
		}
	}
	return strings.Trim(b.String(), "-")
}
