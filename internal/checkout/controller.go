package checkout

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/example/storefront/internal/cart"
	"github.com/example/storefront/internal/order"
	"github.com/example/storefront/internal/payment"
	"github.com/example/storefront/internal/pricing"
	"github.com/google/uuid"
)

// Controller drives a shopper through shipping -> payment ->
// confirmation, orchestrating the order store and payment gateway.
// Collaborator failures are converted into single errors here; nothing
// escapes silently and nothing retries automatically.
type Controller struct {
	carts    *cart.Service
	orders   *order.Store
	gateway  payment.Gateway
	calc     *pricing.Calculator
	currency string

	mu       sync.Mutex
	sessions map[string]*Session // userID -> transient session
}

func NewController(carts *cart.Service, orders *order.Store, gateway payment.Gateway, calc *pricing.Calculator, currency string) *Controller {
	return &Controller{
		carts:    carts,
		orders:   orders,
		gateway:  gateway,
		calc:     calc,
		currency: currency,
		sessions: make(map[string]*Session),
	}
}

// Session returns the shopper's checkout session, creating one at the
// shipping step if none exists.
func (c *Controller) Session(userID string) *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	sess, ok := c.sessions[userID]
	if !ok {
		sess = NewSession(userID)
		c.sessions[userID] = sess
	}
	return sess
}

// Reset abandons the session. Any order already submitted stays
// pending in the store; reconciliation happens out-of-band.
func (c *Controller) Reset(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sessions, userID)
}

// SetShippingAddress validates and stores the address, advancing
// shipping -> payment. Re-submitting while still at shipping replaces
// the address.
func (c *Controller) SetShippingAddress(userID string, addr Address) (*Session, error) {
	sess := c.Session(userID)
	if sess.Step != StepShipping {
		return nil, ErrWrongStep
	}
	if err := addr.Validate(); err != nil {
		return nil, err
	}

	sess.Address = &addr
	sess.Step = StepPayment
	return sess, nil
}

// Back returns from payment to shipping. The address is retained.
func (c *Controller) Back(userID string) (*Session, error) {
	sess := c.Session(userID)
	if sess.Step != StepPayment {
		return nil, ErrWrongStep
	}
	sess.Step = StepShipping
	return sess, nil
}

// SubmitPayment freezes the totals, upserts a pending order and creates
// a gateway session, strictly in that sequence. On any failure the
// session stays at the payment step with its order id and quote intact,
// so a manual re-invocation reuses them and the order store sees an
// idempotent upsert rather than a duplicate.
func (c *Controller) SubmitPayment(ctx context.Context, userID string) (*payment.Session, error) {
	sess := c.Session(userID)
	if sess.Step != StepPayment {
		return nil, ErrWrongStep
	}
	if sess.inFlight {
		return nil, ErrSubmitInFlight
	}
	sess.inFlight = true
	defer func() { sess.inFlight = false }()

	ledger, err := c.carts.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if len(ledger.Items) == 0 {
		return nil, order.ErrEmptyOrder
	}

	// Freeze totals on first submission; retries charge the same amount
	if sess.Quote == nil {
		quote, err := c.calc.Quote(ledger.Total)
		if err != nil {
			return nil, err
		}
		sess.Quote = &quote
	}
	if sess.OrderID == "" {
		sess.OrderID = uuid.New().String()
	}

	now := time.Now()
	items := make([]order.Item, 0, len(ledger.Items))
	for _, li := range ledger.Items {
		items = append(items, order.Item{
			ProductID: li.ProductID,
			Name:      li.Product.Name,
			Quantity:  li.Quantity,
			Price:     li.Product.Price,
		})
	}

	o := &order.Order{
		ID:        sess.OrderID,
		UserID:    userID,
		Items:     items,
		Subtotal:  sess.Quote.Subtotal,
		Shipping:  sess.Quote.Shipping,
		Tax:       sess.Quote.Tax,
		Total:     sess.Quote.Total,
		Status:    order.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := c.orders.Put(ctx, o); err != nil {
		log.Printf("[Checkout] Order submission failed for %s: %v", sess.OrderID, err)
		return nil, fmt.Errorf("failed to submit order: %w", err)
	}

	gwSession, err := c.gateway.CreateSession(ctx, sess.Quote.Total, c.currency, sess.OrderID)
	if err != nil {
		log.Printf("[Checkout] Payment session creation failed for order %s: %v", sess.OrderID, err)
		return nil, fmt.Errorf("failed to create payment session: %w", err)
	}

	sess.GatewaySession = gwSession
	return gwSession, nil
}

// CompleteCheckout consumes the hosted gateway's tagged result. Only a
// Confirmed result with a valid signature moves the order to paid,
// clears the cart and advances to confirmation. Every other outcome
// leaves the session at payment with the pending order untouched.
func (c *Controller) CompleteCheckout(ctx context.Context, userID string, result payment.Result) (*Session, error) {
	sess := c.Session(userID)
	if sess.Step != StepPayment {
		return nil, ErrWrongStep
	}
	if sess.GatewaySession == nil {
		return nil, ErrNoPaymentSession
	}

	switch result.Status {
	case payment.ResultCancelled:
		return nil, ErrPaymentCancelled
	case payment.ResultFailed:
		return nil, fmt.Errorf("%w: %s", ErrPaymentFailed, result.Reason)
	case payment.ResultConfirmed:
		// continue below
	default:
		return nil, fmt.Errorf("%w: unknown result %q", ErrPaymentFailed, result.Status)
	}

	// A signed confirmation proves a payment happened, not that it paid
	// for this order. Bind it to the session created for this submission
	// before trusting the signature.
	if result.Confirmation.SessionID != sess.GatewaySession.ID {
		log.Printf("[Checkout] Confirmation for session %s rejected, order %s expects session %s",
			result.Confirmation.SessionID, sess.OrderID, sess.GatewaySession.ID)
		return nil, ErrSessionMismatch
	}

	if err := c.gateway.VerifyPayment(ctx, result.Confirmation); err != nil {
		log.Printf("[Checkout] Payment verification rejected for order %s: %v", sess.OrderID, err)
		return nil, err
	}

	if _, err := c.orders.UpdateStatus(ctx, sess.OrderID, userID, order.StatusPaid); err != nil {
		log.Printf("[Checkout] Failed to mark order %s paid: %v", sess.OrderID, err)
		return nil, fmt.Errorf("failed to update order: %w", err)
	}

	// The order is paid at this point; a failed cart clear must not
	// resurface as a payment failure.
	if _, err := c.carts.Clear(ctx, userID); err != nil {
		log.Printf("[Checkout] Failed to clear cart for %s after payment: %v", userID, err)
	}

	sess.Step = StepConfirmation
	return sess, nil
}
