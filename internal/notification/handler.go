package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/example/storefront/internal/email"
	"github.com/example/storefront/internal/order"
	"github.com/example/storefront/internal/user"
)

// ReceiptSender delivers the payment receipt. The SMTP email service
// satisfies this.
type ReceiptSender interface {
	SendPaymentReceipt(to, orderID string, total int64, items []email.OrderItem) error
}

// Handler turns order events into customer notifications
type Handler struct {
	sender ReceiptSender
	users  *user.Service
	orders *order.Store
}

func NewHandler(sender ReceiptSender, users *user.Service, orders *order.Store) *Handler {
	return &Handler{
		sender: sender,
		users:  users,
		orders: orders,
	}
}

// HandleEvent processes a single order event from Kafka. Only the
// transition to paid triggers a mail; other events are acknowledged
// and skipped.
func (h *Handler) HandleEvent(ctx context.Context, key, value []byte) error {
	var event order.Event
	if err := json.Unmarshal(value, &event); err != nil {
		return fmt.Errorf("failed to unmarshal event: %w", err)
	}

	if event.EventType != order.EventOrderStatusChanged || event.Status != order.StatusPaid {
		log.Printf("[Notifier] Skipping %s (status %s) for order %s", event.EventType, event.Status, event.OrderID)
		return nil
	}

	return h.sendPaymentReceipt(ctx, event)
}

func (h *Handler) sendPaymentReceipt(ctx context.Context, event order.Event) error {
	u, err := h.users.GetByID(ctx, event.UserID)
	if err != nil {
		return fmt.Errorf("failed to look up user %s: %w", event.UserID, err)
	}

	// Status events carry no items, so reload the order record
	o, err := h.orders.Get(ctx, event.OrderID)
	if err != nil {
		return fmt.Errorf("failed to load order %s: %w", event.OrderID, err)
	}

	items := make([]email.OrderItem, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, email.OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}

	if err := h.sender.SendPaymentReceipt(u.Email, o.ID, o.Total, items); err != nil {
		return fmt.Errorf("failed to send receipt for order %s: %w", o.ID, err)
	}

	log.Printf("[Notifier] Sent payment receipt for order %s to %s", o.ID, u.Email)
	return nil
}
