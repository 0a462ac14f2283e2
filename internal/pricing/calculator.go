package pricing

import (
	"errors"
	"math"
)

var ErrNegativeSubtotal = errors.New("subtotal must not be negative")

// Quote is a full checkout breakdown. All amounts are integer minor units
// (cents), so the amount displayed to the shopper and the amount sent to
// the payment gateway are always the same number.
type Quote struct {
	Subtotal int64 `json:"subtotal"`
	Shipping int64 `json:"shipping"`
	Tax      int64 `json:"tax"`
	Total    int64 `json:"total"`
}

// Calculator derives a Quote from a cart subtotal using a flat shipping
// cost and a fractional tax rate.
type Calculator struct {
	shippingCost int64
	taxRate      float64
}

func NewCalculator(shippingCost int64, taxRate float64) *Calculator {
	return &Calculator{
		shippingCost: shippingCost,
		taxRate:      taxRate,
	}
}

// Quote computes the breakdown for a subtotal. Tax is rounded to the
// nearest minor unit once, here; no other rounding happens anywhere.
func (c *Calculator) Quote(subtotal int64) (Quote, error) {
	if subtotal < 0 {
		return Quote{}, ErrNegativeSubtotal
	}

	tax := int64(math.Round(float64(subtotal) * c.taxRate))
	return Quote{
		Subtotal: subtotal,
		Shipping: c.shippingCost,
		Tax:      tax,
		Total:    subtotal + c.shippingCost + tax,
	}, nil
}
