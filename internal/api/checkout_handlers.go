package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/example/storefront/internal/api/middleware"
	"github.com/example/storefront/internal/checkout"
	"github.com/example/storefront/internal/order"
	"github.com/example/storefront/internal/payment"
)

// GetCheckoutSession returns the shopper's checkout session, creating
// one at the shipping step if none exists
func (h *Handlers) GetCheckoutSession(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	respondJSON(w, http.StatusOK, h.checkout.Session(userID))
}

// SetShippingAddress stores the validated address and advances to the
// payment step
func (h *Handlers) SetShippingAddress(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var addr checkout.Address
	if err := json.NewDecoder(r.Body).Decode(&addr); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	sess, err := h.checkout.SetShippingAddress(userID, addr)
	if err != nil {
		var vErr *checkout.ValidationError
		if errors.As(err, &vErr) {
			respondJSON(w, http.StatusBadRequest, map[string]any{
				"error":  "invalid shipping address",
				"fields": vErr.Fields,
			})
			return
		}
		respondCheckoutError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, sess)
}

// CheckoutBack returns from payment to shipping, keeping the address
func (h *Handlers) CheckoutBack(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	sess, err := h.checkout.Back(userID)
	if err != nil {
		respondCheckoutError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, sess)
}

// SubmitPayment freezes the totals, records a pending order and opens a
// payment session with the gateway
func (h *Handlers) SubmitPayment(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	gwSession, err := h.checkout.SubmitPayment(r.Context(), userID)
	if err != nil {
		respondCheckoutError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, gwSession)
}

// CompleteCheckout consumes the gateway's result payload. A confirmed,
// verified payment moves the order to paid and advances to confirmation.
func (h *Handlers) CompleteCheckout(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req struct {
		Status       payment.ResultStatus `json:"status"`
		Confirmation payment.Confirmation `json:"confirmation"`
		Reason       string               `json:"reason,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result := payment.Result{
		Status:       req.Status,
		Confirmation: req.Confirmation,
		Reason:       req.Reason,
	}

	sess, err := h.checkout.CompleteCheckout(r.Context(), userID, result)
	if err != nil {
		respondCheckoutError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, sess)
}

// ResetCheckout abandons the session and starts over at shipping
func (h *Handlers) ResetCheckout(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	h.checkout.Reset(userID)
	respondJSON(w, http.StatusOK, h.checkout.Session(userID))
}

func respondCheckoutError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, checkout.ErrWrongStep):
		respondJSONError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, checkout.ErrSubmitInFlight):
		respondJSONError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, checkout.ErrNoPaymentSession):
		respondJSONError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, order.ErrEmptyOrder):
		respondJSONError(w, "cart is empty", http.StatusBadRequest)
	case errors.Is(err, checkout.ErrPaymentCancelled):
		respondJSONError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, checkout.ErrSessionMismatch):
		respondJSONError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, checkout.ErrPaymentFailed):
		respondJSONError(w, err.Error(), http.StatusPaymentRequired)
	case errors.Is(err, payment.ErrInvalidSignature):
		respondJSONError(w, err.Error(), http.StatusBadRequest)
	default:
		respondJSONError(w, err.Error(), http.StatusInternalServerError)
	}
}
