package checkout

import (
	"context"
	"testing"

	"github.com/example/storefront/internal/cart"
	"github.com/example/storefront/internal/infrastructure/store/mocks"
	"github.com/example/storefront/internal/order"
	"github.com/example/storefront/internal/payment"
	"github.com/example/storefront/internal/pricing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const gatewaySecret = "test-gateway-secret"

// mockGateway fakes the hosted payment gateway
type mockGateway struct {
	createCalls []createCall
	createErr   error
	nextID      string
}

type createCall struct {
	Amount    int64
	Currency  string
	ReceiptID string
}

func (g *mockGateway) CreateSession(ctx context.Context, amount int64, currency, receiptID string) (*payment.Session, error) {
	g.createCalls = append(g.createCalls, createCall{Amount: amount, Currency: currency, ReceiptID: receiptID})
	if g.createErr != nil {
		return nil, g.createErr
	}
	id := g.nextID
	if id == "" {
		id = "sess_test"
	}
	return &payment.Session{ID: id, Amount: amount, Currency: currency}, nil
}

func (g *mockGateway) VerifyPayment(ctx context.Context, c payment.Confirmation) error {
	if !payment.VerifySignature(gatewaySecret, c.SessionID, c.PaymentID, c.Signature) {
		return payment.ErrInvalidSignature
	}
	return nil
}

type fixture struct {
	controller *Controller
	carts      *cart.Service
	orders     *order.Store
	gateway    *mockGateway
	docs       *mocks.MockDocumentStore
}

func newFixture() *fixture {
	docs := mocks.NewMockDocumentStore()
	carts := cart.NewService(docs)
	orders := order.NewStore(docs, nil)
	gateway := &mockGateway{}
	calc := pricing.NewCalculator(999, 0.08)
	return &fixture{
		controller: NewController(carts, orders, gateway, calc, "USD"),
		carts:      carts,
		orders:     orders,
		gateway:    gateway,
		docs:       docs,
	}
}

var validAddress = Address{
	FullName:   "Avery Shopper",
	Line1:      "12 Main St",
	City:       "Springfield",
	PostalCode: "12345",
	Country:    "US",
}

// fillCart seeds a two-item cart with subtotal 10000 minor units
func (f *fixture) fillCart(t *testing.T, userID string) {
	t.Helper()
	ctx := context.Background()
	_, err := f.carts.AddItem(ctx, userID, cart.ProductSnapshot{ID: "prod-1", Name: "Walnut Desk", Price: 7500, Stock: 10}, 1)
	require.NoError(t, err)
	_, err = f.carts.AddItem(ctx, userID, cart.ProductSnapshot{ID: "prod-2", Name: "Office Chair", Price: 1250, Stock: 25}, 2)
	require.NoError(t, err)
}

// toPayment walks the session to the payment step
func (f *fixture) toPayment(t *testing.T, userID string) {
	t.Helper()
	_, err := f.controller.SetShippingAddress(userID, validAddress)
	require.NoError(t, err)
}

func confirmedResult(sessionID, orderID string) payment.Result {
	return payment.Confirmed(payment.Confirmation{
		OrderID:   orderID,
		PaymentID: "pay_789",
		SessionID: sessionID,
		Signature: payment.Sign(gatewaySecret, sessionID, "pay_789"),
	})
}

// ============================================
// Step Transition Tests
// ============================================

func TestController_NewSessionStartsAtShipping(t *testing.T) {
	f := newFixture()

	sess := f.controller.Session("user-123")

	assert.Equal(t, StepShipping, sess.Step)
	assert.Nil(t, sess.Address)
}

func TestController_SetShippingAddress_Advances(t *testing.T) {
	f := newFixture()

	sess, err := f.controller.SetShippingAddress("user-123", validAddress)

	require.NoError(t, err)
	assert.Equal(t, StepPayment, sess.Step)
	assert.Equal(t, "Avery Shopper", sess.Address.FullName)
}

func TestController_SetShippingAddress_ValidationErrors(t *testing.T) {
	f := newFixture()

	_, err := f.controller.SetShippingAddress("user-123", Address{Line2: "Apt 4"})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "full_name")
	assert.Contains(t, verr.Fields, "line1")
	assert.Contains(t, verr.Fields, "city")
	assert.Contains(t, verr.Fields, "postal_code")
	assert.Contains(t, verr.Fields, "country")

	// Session did not advance and no side effects happened
	assert.Equal(t, StepShipping, f.controller.Session("user-123").Step)
	assert.Empty(t, f.docs.PutCalls)
}

func TestController_SetShippingAddress_BadPostalFormat(t *testing.T) {
	f := newFixture()

	addr := validAddress
	addr.PostalCode = "!!"
	_, err := f.controller.SetShippingAddress("user-123", addr)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "postal_code")
}

func TestController_Back_RetainsAddress(t *testing.T) {
	f := newFixture()
	f.toPayment(t, "user-123")

	sess, err := f.controller.Back("user-123")

	require.NoError(t, err)
	assert.Equal(t, StepShipping, sess.Step)
	require.NotNil(t, sess.Address)
	assert.Equal(t, "Avery Shopper", sess.Address.FullName)
}

func TestController_Back_FromShippingRejected(t *testing.T) {
	f := newFixture()

	_, err := f.controller.Back("user-123")

	assert.ErrorIs(t, err, ErrWrongStep)
}

// ============================================
// SubmitPayment Tests
// ============================================

func TestController_SubmitPayment_Sequence(t *testing.T) {
	f := newFixture()
	f.fillCart(t, "user-123")
	f.toPayment(t, "user-123")

	gwSession, err := f.controller.SubmitPayment(context.Background(), "user-123")

	require.NoError(t, err)
	sess := f.controller.Session("user-123")

	// Quote frozen: subtotal 10000, shipping 999, tax 800, total 11799
	require.NotNil(t, sess.Quote)
	assert.Equal(t, pricing.Quote{Subtotal: 10000, Shipping: 999, Tax: 800, Total: 11799}, *sess.Quote)

	// Order persisted as pending before the gateway was called
	o, err := f.orders.Get(context.Background(), sess.OrderID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusPending, o.Status)
	assert.Len(t, o.Items, 2)
	assert.Equal(t, int64(11799), o.Total)

	// Gateway charged exactly the frozen total, receipted by order id
	require.Len(t, f.gateway.createCalls, 1)
	assert.Equal(t, int64(11799), f.gateway.createCalls[0].Amount)
	assert.Equal(t, "USD", f.gateway.createCalls[0].Currency)
	assert.Equal(t, sess.OrderID, f.gateway.createCalls[0].ReceiptID)
	assert.Equal(t, gwSession, sess.GatewaySession)
}

func TestController_SubmitPayment_EmptyCart(t *testing.T) {
	f := newFixture()
	f.toPayment(t, "user-123")

	_, err := f.controller.SubmitPayment(context.Background(), "user-123")

	assert.ErrorIs(t, err, order.ErrEmptyOrder)
}

func TestController_SubmitPayment_WrongStep(t *testing.T) {
	f := newFixture()
	f.fillCart(t, "user-123")

	_, err := f.controller.SubmitPayment(context.Background(), "user-123")

	assert.ErrorIs(t, err, ErrWrongStep)
}

func TestController_SubmitPayment_InFlightGuard(t *testing.T) {
	f := newFixture()
	f.fillCart(t, "user-123")
	f.toPayment(t, "user-123")

	f.controller.Session("user-123").inFlight = true
	_, err := f.controller.SubmitPayment(context.Background(), "user-123")

	assert.ErrorIs(t, err, ErrSubmitInFlight)
}

func TestController_SubmitPayment_RetryReusesOrderID(t *testing.T) {
	f := newFixture()
	f.fillCart(t, "user-123")
	f.toPayment(t, "user-123")
	ctx := context.Background()

	// First attempt fails on a transient order-store error
	f.docs.PutErrOnce = assert.AnError
	_, err := f.controller.SubmitPayment(ctx, "user-123")
	require.Error(t, err)

	firstOrderID := f.controller.Session("user-123").OrderID
	require.NotEmpty(t, firstOrderID)

	// Manual retry succeeds with the same order id
	_, err = f.controller.SubmitPayment(ctx, "user-123")
	require.NoError(t, err)
	assert.Equal(t, firstOrderID, f.controller.Session("user-123").OrderID)

	// Exactly one order record exists
	assert.Equal(t, 1, f.docs.Count("orders"))
}

func TestController_SubmitPayment_GatewayFailureKeepsPendingOrder(t *testing.T) {
	f := newFixture()
	f.fillCart(t, "user-123")
	f.toPayment(t, "user-123")
	ctx := context.Background()

	f.gateway.createErr = assert.AnError
	_, err := f.controller.SubmitPayment(ctx, "user-123")
	require.Error(t, err)

	// The pending order is not rolled back
	sess := f.controller.Session("user-123")
	o, err := f.orders.Get(ctx, sess.OrderID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusPending, o.Status)
	assert.Equal(t, StepPayment, sess.Step)
}

// ============================================
// CompleteCheckout Tests
// ============================================

func TestController_CompleteCheckout_HappyPath(t *testing.T) {
	f := newFixture()
	f.fillCart(t, "user-123")
	f.toPayment(t, "user-123")
	ctx := context.Background()

	gwSession, err := f.controller.SubmitPayment(ctx, "user-123")
	require.NoError(t, err)
	orderID := f.controller.Session("user-123").OrderID

	sess, err := f.controller.CompleteCheckout(ctx, "user-123", confirmedResult(gwSession.ID, orderID))

	require.NoError(t, err)
	assert.Equal(t, StepConfirmation, sess.Step)

	o, err := f.orders.Get(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusPaid, o.Status)

	ledger, err := f.carts.Get(ctx, "user-123")
	require.NoError(t, err)
	assert.Empty(t, ledger.Items)
	assert.Equal(t, int64(0), ledger.Total)
}

func TestController_CompleteCheckout_TamperedSignature(t *testing.T) {
	f := newFixture()
	f.fillCart(t, "user-123")
	f.toPayment(t, "user-123")
	ctx := context.Background()

	gwSession, err := f.controller.SubmitPayment(ctx, "user-123")
	require.NoError(t, err)
	orderID := f.controller.Session("user-123").OrderID

	tampered := payment.Confirmed(payment.Confirmation{
		OrderID:   orderID,
		PaymentID: "pay_789",
		SessionID: gwSession.ID,
		Signature: "deadbeef",
	})
	_, err = f.controller.CompleteCheckout(ctx, "user-123", tampered)

	assert.ErrorIs(t, err, payment.ErrInvalidSignature)

	// Order stays pending, step stays payment, cart is not cleared
	o, err := f.orders.Get(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusPending, o.Status)
	assert.Equal(t, StepPayment, f.controller.Session("user-123").Step)

	ledger, err := f.carts.Get(ctx, "user-123")
	require.NoError(t, err)
	assert.Len(t, ledger.Items, 2)
}

func TestController_CompleteCheckout_ReplayedConfirmationRejected(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	// Pay for a cheap order and keep its signed confirmation
	_, err := f.carts.AddItem(ctx, "user-123", cart.ProductSnapshot{ID: "prod-cheap", Name: "Sticker", Price: 100, Stock: 10}, 1)
	require.NoError(t, err)
	f.toPayment(t, "user-123")
	firstSession, err := f.controller.SubmitPayment(ctx, "user-123")
	require.NoError(t, err)
	cheapConfirmation := confirmedResult(firstSession.ID, f.controller.Session("user-123").OrderID)
	_, err = f.controller.CompleteCheckout(ctx, "user-123", cheapConfirmation)
	require.NoError(t, err)

	// Start a fresh, more expensive checkout
	f.controller.Reset("user-123")
	f.fillCart(t, "user-123")
	f.toPayment(t, "user-123")
	f.gateway.nextID = "sess_second"
	_, err = f.controller.SubmitPayment(ctx, "user-123")
	require.NoError(t, err)
	expensiveOrderID := f.controller.Session("user-123").OrderID

	// Replaying the cheap order's confirmation must not pay this one,
	// even though its signature is genuine
	_, err = f.controller.CompleteCheckout(ctx, "user-123", cheapConfirmation)

	assert.ErrorIs(t, err, ErrSessionMismatch)
	o, err := f.orders.Get(ctx, expensiveOrderID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusPending, o.Status)
	assert.Equal(t, StepPayment, f.controller.Session("user-123").Step)
}

func TestController_CompleteCheckout_FailedResult(t *testing.T) {
	f := newFixture()
	f.fillCart(t, "user-123")
	f.toPayment(t, "user-123")
	ctx := context.Background()

	_, err := f.controller.SubmitPayment(ctx, "user-123")
	require.NoError(t, err)

	_, err = f.controller.CompleteCheckout(ctx, "user-123", payment.Failed("card declined"))

	assert.ErrorIs(t, err, ErrPaymentFailed)
	assert.Equal(t, StepPayment, f.controller.Session("user-123").Step)
}

func TestController_CompleteCheckout_CancelledResult(t *testing.T) {
	f := newFixture()
	f.fillCart(t, "user-123")
	f.toPayment(t, "user-123")
	ctx := context.Background()

	_, err := f.controller.SubmitPayment(ctx, "user-123")
	require.NoError(t, err)

	_, err = f.controller.CompleteCheckout(ctx, "user-123", payment.Cancelled())

	assert.ErrorIs(t, err, ErrPaymentCancelled)
	assert.Equal(t, StepPayment, f.controller.Session("user-123").Step)
}

func TestController_CompleteCheckout_WithoutSubmission(t *testing.T) {
	f := newFixture()
	f.toPayment(t, "user-123")

	_, err := f.controller.CompleteCheckout(context.Background(), "user-123", payment.Cancelled())

	assert.ErrorIs(t, err, ErrNoPaymentSession)
}

func TestController_Reset_AbandonsSession(t *testing.T) {
	f := newFixture()
	f.fillCart(t, "user-123")
	f.toPayment(t, "user-123")
	ctx := context.Background()

	_, err := f.controller.SubmitPayment(ctx, "user-123")
	require.NoError(t, err)
	orderID := f.controller.Session("user-123").OrderID

	f.controller.Reset("user-123")

	// Fresh session; the abandoned order stays pending in the store
	sess := f.controller.Session("user-123")
	assert.Equal(t, StepShipping, sess.Step)
	assert.Empty(t, sess.OrderID)

	o, err := f.orders.Get(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusPending, o.Status)
}
