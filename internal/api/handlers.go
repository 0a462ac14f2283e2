package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/example/storefront/internal/api/middleware"
	"github.com/example/storefront/internal/cart"
	"github.com/example/storefront/internal/catalog"
	"github.com/example/storefront/internal/checkout"
	"github.com/example/storefront/internal/order"
)

type Handlers struct {
	catalog  *catalog.Service
	carts    *cart.Service
	orders   *order.Store
	checkout *checkout.Controller
}

func NewHandlers(catalogService *catalog.Service, carts *cart.Service, orders *order.Store, checkoutController *checkout.Controller) *Handlers {
	return &Handlers{
		catalog:  catalogService,
		carts:    carts,
		orders:   orders,
		checkout: checkoutController,
	}
}

// Product Handlers

// ProductRequest is the admin create/update payload. Price is in
// integer minor units.
type ProductRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       int64    `json:"price"`
	Stock       int      `json:"stock"`
	Images      []string `json:"images,omitempty"`
	CategoryID  string   `json:"category_id,omitempty"`
}

func (h *Handlers) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	p, err := h.catalog.CreateProduct(r.Context(), req.Name, req.Description, req.Price, req.Stock, req.Images, req.CategoryID)
	if err != nil {
		respondJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	respondJSON(w, http.StatusCreated, p)
}

func (h *Handlers) GetProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListProducts(r.Context())
	if err != nil {
		respondJSONError(w, "Failed to fetch products", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, products)
}

func (h *Handlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/products/")
	p, err := h.catalog.GetProduct(r.Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			respondJSONError(w, "Product not found", http.StatusNotFound)
			return
		}
		respondJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (h *Handlers) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/products/")

	var req ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	p, err := h.catalog.UpdateProduct(r.Context(), id, req.Name, req.Description, req.Price, req.Stock, req.Images, req.CategoryID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			respondJSONError(w, "Product not found", http.StatusNotFound)
			return
		}
		respondJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	respondJSON(w, http.StatusOK, p)
}

func (h *Handlers) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/products/")

	if err := h.catalog.DeleteProduct(r.Context(), id); err != nil {
		respondJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Product deleted"})
}

// Cart Handlers

func (h *Handlers) GetCart(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	c, err := h.carts.Get(r.Context(), userID)
	if err != nil {
		respondJSONError(w, "Failed to load cart", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (h *Handlers) AddToCart(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req struct {
		ProductID string `json:"product_id"`
		Quantity  int    `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	// Snapshot the product at add time; the cart never re-fetches it
	p, err := h.catalog.GetProduct(r.Context(), req.ProductID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			respondJSONError(w, "Product not found", http.StatusNotFound)
			return
		}
		respondJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	snapshot := cart.ProductSnapshot{
		ID:    p.ID,
		Name:  p.Name,
		Price: p.Price,
		Stock: p.Stock,
	}
	if len(p.Images) > 0 {
		snapshot.Image = p.Images[0]
	}

	// The ledger merges repeated adds, so the stock ceiling applies to
	// the post-merge quantity. Enforced here, not inside the ledger.
	ledger, err := h.carts.Get(r.Context(), userID)
	if err != nil {
		respondJSONError(w, "Failed to load cart", http.StatusInternalServerError)
		return
	}
	held := 0
	ceiling := snapshot.Stock
	for _, li := range ledger.Items {
		if li.ProductID == p.ID {
			held = li.Quantity
			ceiling = li.Product.Stock
		}
	}
	if req.Quantity > 0 && held+req.Quantity > ceiling {
		respondStockExceeded(w, ceiling)
		return
	}

	c, err := h.carts.AddItem(r.Context(), userID, snapshot, req.Quantity)
	if err != nil {
		respondJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	respondJSON(w, http.StatusOK, c)
}

func (h *Handlers) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	productID := extractPathParam(r.URL.Path, "/cart/items/")

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	// Absolute sets are capped by the snapshot's stock ceiling.
	// Zero or less falls through to the ledger's remove semantics.
	if req.Quantity > 0 {
		ledger, err := h.carts.Get(r.Context(), userID)
		if err != nil {
			respondJSONError(w, "Failed to load cart", http.StatusInternalServerError)
			return
		}
		for _, li := range ledger.Items {
			if li.ProductID == productID && req.Quantity > li.Product.Stock {
				respondStockExceeded(w, li.Product.Stock)
				return
			}
		}
	}

	c, err := h.carts.UpdateQuantity(r.Context(), userID, productID, req.Quantity)
	if err != nil {
		respondJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	respondJSON(w, http.StatusOK, c)
}

func (h *Handlers) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	productID := extractPathParam(r.URL.Path, "/cart/items/")

	c, err := h.carts.RemoveItem(r.Context(), userID, productID)
	if err != nil {
		respondJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	respondJSON(w, http.StatusOK, c)
}

func (h *Handlers) ClearCart(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	c, err := h.carts.Clear(r.Context(), userID)
	if err != nil {
		respondJSONError(w, "Failed to clear cart", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, c)
}

// Order Handlers

func (h *Handlers) GetOrders(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	orders, err := h.orders.ListByUser(r.Context(), userID)
	if err != nil {
		respondJSONError(w, "Failed to fetch orders", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

func (h *Handlers) GetOrder(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/orders/")
	id = strings.TrimSuffix(id, "/cancel")

	o, err := h.orders.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			respondJSONError(w, "Order not found", http.StatusNotFound)
			return
		}
		respondJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	// Users can only access their own orders; admins can access all
	userID := middleware.GetUserID(r.Context())
	if o.UserID != userID && !middleware.IsAdmin(r.Context()) {
		respondJSONError(w, "Forbidden", http.StatusForbidden)
		return
	}

	respondJSON(w, http.StatusOK, o)
}

func (h *Handlers) CancelOrder(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/orders/")
	id := strings.TrimSuffix(path, "/cancel")
	userID := middleware.GetUserID(r.Context())

	o, err := h.orders.UpdateStatus(r.Context(), id, userID, order.StatusCancelled)
	if err != nil {
		respondOrderError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, o)
}

// Admin Handlers

func (h *Handlers) GetAllOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListAll(r.Context())
	if err != nil {
		respondJSONError(w, "Failed to fetch orders", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

// UpdateOrderStatus advances an order through fulfillment (admin only).
// The transition runs under the owner's key; the status machine still
// applies.
func (h *Handlers) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/admin/orders/")
	id := strings.TrimSuffix(path, "/status")

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	o, err := h.orders.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			respondJSONError(w, "Order not found", http.StatusNotFound)
			return
		}
		respondJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	updated, err := h.orders.UpdateStatus(r.Context(), id, o.UserID, order.Status(req.Status))
	if err != nil {
		respondOrderError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, updated)
}

// Helper functions

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondJSONError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func respondStockExceeded(w http.ResponseWriter, stock int) {
	respondJSONError(w, fmt.Sprintf("quantity exceeds available stock (%d)", stock), http.StatusBadRequest)
}

func respondOrderError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, order.ErrOrderNotFound):
		respondJSONError(w, "Order not found", http.StatusNotFound)
	case errors.Is(err, order.ErrNotOwner):
		respondJSONError(w, "Forbidden", http.StatusForbidden)
	case errors.Is(err, order.ErrInvalidStatus),
		errors.Is(err, order.ErrOrderAlreadyPaid),
		errors.Is(err, order.ErrOrderCancelled):
		respondJSONError(w, err.Error(), http.StatusConflict)
	default:
		respondJSONError(w, err.Error(), http.StatusInternalServerError)
	}
}

func extractPathParam(path, prefix string) string {
	return strings.TrimPrefix(path, prefix)
}
