package cart

import (
	"time"
)

// ProductSnapshot is catalog data captured at add-to-cart time. It is
// never re-fetched; a stale price or stock ceiling is accepted until the
// line item is removed.
type ProductSnapshot struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price int64  `json:"price"` // unit price, minor units
	Stock int    `json:"stock"` // stock ceiling at add time
	Image string `json:"image,omitempty"`
}

// LineItem is one product+quantity pairing. A cart holds at most one
// line item per product id.
type LineItem struct {
	ProductID string          `json:"product_id"`
	Product   ProductSnapshot `json:"product"`
	Quantity  int             `json:"quantity"`
}

// Cart is the durable ledger of line items for one shopper.
// Total is always recomputed from the items, never patched in place.
type Cart struct {
	ID        string     `json:"id"`
	OwnerID   string     `json:"owner_id"`
	Items     []LineItem `json:"items"`
	Total     int64      `json:"total"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// CartID returns the cart id for an owner (owner id doubles as the key)
func CartID(ownerID string) string {
	return "cart-" + ownerID
}

func NewCart(ownerID string) *Cart {
	return &Cart{
		ID:      CartID(ownerID),
		OwnerID: ownerID,
		Items:   []LineItem{},
	}
}

// AddItem merges into an existing line item for the same product or
// appends a new one. The stock ceiling is not enforced here; callers
// check it against the snapshot before calling.
func (c *Cart) AddItem(p ProductSnapshot, quantity int) {
	for i := range c.Items {
		if c.Items[i].ProductID == p.ID {
			c.Items[i].Quantity += quantity
			c.recompute()
			return
		}
	}
	c.Items = append(c.Items, LineItem{
		ProductID: p.ID,
		Product:   p,
		Quantity:  quantity,
	})
	c.recompute()
}

// RemoveItem deletes the matching line item. Removing an absent product
// is a no-op, not an error.
func (c *Cart) RemoveItem(productID string) {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			break
		}
	}
	c.recompute()
}

// UpdateQuantity sets a line item's quantity to an absolute value.
// A quantity of zero or less removes the item. Updating an absent
// product is a no-op.
func (c *Cart) UpdateQuantity(productID string, quantity int) {
	if quantity <= 0 {
		c.RemoveItem(productID)
		return
	}
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity = quantity
			break
		}
	}
	c.recompute()
}

// Clear empties the cart
func (c *Cart) Clear() {
	c.Items = []LineItem{}
	c.recompute()
}

// ItemCount returns the total quantity across all line items,
// as opposed to the number of distinct products.
func (c *Cart) ItemCount() int {
	count := 0
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

// recompute rebuilds Total from scratch after every mutation
func (c *Cart) recompute() {
	var total int64
	for _, item := range c.Items {
		total += item.Product.Price * int64(item.Quantity)
	}
	c.Total = total
	c.UpdatedAt = time.Now()
}
