package catalog

import (
	"context"
	"strings"
	"testing"

	"github.com/example/storefront/internal/infrastructure/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() *Service {
	return NewService(store.NewMemoryStore())
}

// ============================================
// Product Tests
// ============================================

func TestService_CreateProduct_Success(t *testing.T) {
	service := newTestService()
	ctx := context.Background()

	p, err := service.CreateProduct(ctx, "Walnut Desk", "Solid walnut writing desk", 125000, 10, []string{"desk.jpg"}, "")

	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "Walnut Desk", p.Name)
	assert.Equal(t, int64(125000), p.Price)
	assert.Equal(t, 10, p.Stock)
	assert.False(t, p.CreatedAt.IsZero())
}

func TestService_CreateProduct_EmptyName(t *testing.T) {
	service := newTestService()

	_, err := service.CreateProduct(context.Background(), "", "desc", 1000, 5, nil, "")

	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestService_CreateProduct_InvalidPrice(t *testing.T) {
	service := newTestService()

	_, err := service.CreateProduct(context.Background(), "Desk", "desc", 0, 5, nil, "")

	assert.ErrorIs(t, err, ErrInvalidPrice)
}

func TestService_GetProduct_NotFound(t *testing.T) {
	service := newTestService()

	_, err := service.GetProduct(context.Background(), "missing")

	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestService_UpdateProduct(t *testing.T) {
	service := newTestService()
	ctx := context.Background()

	p, err := service.CreateProduct(ctx, "Desk", "desc", 1000, 5, nil, "")
	require.NoError(t, err)

	updated, err := service.UpdateProduct(ctx, p.ID, "Desk v2", "better desc", 1200, 3, nil, "")
	require.NoError(t, err)
	assert.Equal(t, p.ID, updated.ID)
	assert.Equal(t, "Desk v2", updated.Name)
	assert.Equal(t, int64(1200), updated.Price)

	got, err := service.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Desk v2", got.Name)
}

func TestService_DeleteProduct(t *testing.T) {
	service := newTestService()
	ctx := context.Background()

	p, err := service.CreateProduct(ctx, "Desk", "desc", 1000, 5, nil, "")
	require.NoError(t, err)

	require.NoError(t, service.DeleteProduct(ctx, p.ID))

	_, err = service.GetProduct(ctx, p.ID)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestService_ListProducts(t *testing.T) {
	service := newTestService()
	ctx := context.Background()

	_, err := service.CreateProduct(ctx, "Desk", "", 1000, 5, nil, "")
	require.NoError(t, err)
	_, err = service.CreateProduct(ctx, "Chair", "", 500, 20, nil, "")
	require.NoError(t, err)

	products, err := service.ListProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 2)
}

// ============================================
// Category Tests
// ============================================

func TestService_CreateCategory_GeneratesSlug(t *testing.T) {
	service := newTestService()

	c, err := service.CreateCategory(context.Background(), "Home & Office", "", "")

	require.NoError(t, err)
	assert.Equal(t, "home-office", c.Slug)
}

func TestService_CreateCategory_InvalidSlug(t *testing.T) {
	service := newTestService()

	_, err := service.CreateCategory(context.Background(), "Office", "Not A Slug!", "")

	assert.ErrorIs(t, err, ErrInvalidSlug)
}

func TestService_ImportCategoriesCSV(t *testing.T) {
	service := newTestService()
	ctx := context.Background()

	input := strings.NewReader(
		"name,slug,description\n" +
			"Desks,desks,Writing and standing desks\n" +
			"Chairs,,Office chairs\n" +
			"Storage\n")

	imported, err := service.ImportCategoriesCSV(ctx, input)

	require.NoError(t, err)
	require.Len(t, imported, 3)
	assert.Equal(t, "desks", imported[0].Slug)
	assert.Equal(t, "chairs", imported[1].Slug)
	assert.Equal(t, "storage", imported[2].Slug)

	categories, err := service.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, categories, 3)
}

func TestService_ImportCategoriesCSV_InvalidRow(t *testing.T) {
	service := newTestService()

	input := strings.NewReader("name,slug\nDesks,BAD SLUG\n")

	_, err := service.ImportCategoriesCSV(context.Background(), input)

	assert.ErrorIs(t, err, ErrInvalidSlug)
}

func TestService_ImportCategoriesCSV_Empty(t *testing.T) {
	service := newTestService()

	_, err := service.ImportCategoriesCSV(context.Background(), strings.NewReader("name,slug\n"))

	assert.ErrorIs(t, err, ErrEmptyImport)
}

func TestGenerateSlug(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple", "Desks", "desks"},
		{"spaces", "Standing Desks", "standing-desks"},
		{"punctuation", "Home & Office", "home-office"},
		{"leading and trailing space", "  Chairs  ", "chairs"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, generateSlug(tt.input))
		})
	}
}
