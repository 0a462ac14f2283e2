package checkout

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/example/storefront/internal/payment"
	"github.com/example/storefront/internal/pricing"
)

// Step is the checkout progress marker. Forward-advancing under normal
// flow; the only backward move is payment -> shipping via an explicit
// user action.
type Step string

const (
	StepShipping     Step = "shipping"
	StepPayment      Step = "payment"
	StepConfirmation Step = "confirmation"
)

var (
	ErrWrongStep        = errors.New("operation not allowed in current checkout step")
	ErrSubmitInFlight   = errors.New("payment submission already in progress")
	ErrNoPaymentSession = errors.New("no payment session to confirm")
	ErrSessionMismatch  = errors.New("confirmation does not match the payment session")
	ErrPaymentFailed    = errors.New("payment failed")
	ErrPaymentCancelled = errors.New("payment cancelled")
)

// postalRegex accepts common postal code shapes (digits, letters,
// spaces, hyphens)
var postalRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9 -]{2,9}$`)

// Address is the shipping destination collected in the first step
type Address struct {
	FullName   string `json:"full_name"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// ValidationError carries per-field messages for the shipping form
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	return fmt.Sprintf("invalid shipping address: %s", strings.Join(keys, ", "))
}

// Validate checks presence of required fields and the postal code
// format. No cross-field business rules.
func (a Address) Validate() error {
	fields := make(map[string]string)
	if strings.TrimSpace(a.FullName) == "" {
		fields["full_name"] = "full name is required"
	}
	if strings.TrimSpace(a.Line1) == "" {
		fields["line1"] = "address line is required"
	}
	if strings.TrimSpace(a.City) == "" {
		fields["city"] = "city is required"
	}
	if strings.TrimSpace(a.Country) == "" {
		fields["country"] = "country is required"
	}
	if strings.TrimSpace(a.PostalCode) == "" {
		fields["postal_code"] = "postal code is required"
	} else if !postalRegex.MatchString(a.PostalCode) {
		fields["postal_code"] = "postal code format is invalid"
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// Session is the transient (never persisted) state of one shopper's
// checkout. The order id and quote are frozen on first submission so a
// manual retry reuses them.
type Session struct {
	UserID         string           `json:"user_id"`
	Step           Step             `json:"step"`
	Address        *Address         `json:"address,omitempty"`
	Quote          *pricing.Quote   `json:"quote,omitempty"`
	OrderID        string           `json:"order_id,omitempty"`
	GatewaySession *payment.Session `json:"gateway_session,omitempty"`

	// inFlight guards against re-entrant submission while a gateway
	// call is pending. Not a lock; mutations arrive serialized per
	// shopper.
	inFlight bool
}

func NewSession(userID string) *Session {
	return &Session{
		UserID: userID,
		Step:   StepShipping,
	}
}
