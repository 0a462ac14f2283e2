package payment

import (
	"context"
	"errors"
)

var (
	ErrInvalidSignature = errors.New("invalid payment signature")
	ErrSessionFailed    = errors.New("payment session creation failed")
)

// Session is a remote payment session created with the gateway before
// its hosted UI takes over.
type Session struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"` // minor units
	Currency string `json:"currency"`
}

// Confirmation is the opaque payload the gateway's hosted UI hands back
// after the shopper completes payment.
type Confirmation struct {
	OrderID   string `json:"order_id"`
	PaymentID string `json:"payment_id"`
	SessionID string `json:"session_id"` // gateway session id
	Signature string `json:"signature"`
}

// ResultStatus tags the outcome of the hosted gateway interaction
type ResultStatus string

const (
	ResultConfirmed ResultStatus = "confirmed"
	ResultFailed    ResultStatus = "failed"
	ResultCancelled ResultStatus = "cancelled"
)

// Result is the awaited outcome of the hosted payment UI, modeled as a
// tagged value instead of a fire-and-forget callback so checkout logic
// stays linear.
type Result struct {
	Status       ResultStatus
	Confirmation Confirmation // set when Status is ResultConfirmed
	Reason       string       // set when Status is ResultFailed
}

func Confirmed(c Confirmation) Result {
	return Result{Status: ResultConfirmed, Confirmation: c}
}

func Failed(reason string) Result {
	return Result{Status: ResultFailed, Reason: reason}
}

func Cancelled() Result {
	return Result{Status: ResultCancelled}
}

// Gateway is the payment collaborator contract
type Gateway interface {
	// CreateSession registers a charge with the gateway. receiptID is
	// the order id and doubles as the idempotency key downstream.
	CreateSession(ctx context.Context, amount int64, currency, receiptID string) (*Session, error)

	// VerifyPayment checks the confirmation signature against the
	// shared secret. Returns ErrInvalidSignature on mismatch.
	VerifyPayment(ctx context.Context, c Confirmation) error
}
