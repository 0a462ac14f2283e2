package email

import (
	"fmt"
	"strings"
)

// OrderItem represents an item in an order for email purposes
type OrderItem struct {
	ProductID string
	Name      string
	Quantity  int
	Price     int64 // unit price, minor units
}

// FormatAmount renders minor units as a dollar amount
func FormatAmount(minorUnits int64) string {
	sign := ""
	if minorUnits < 0 {
		sign = "-"
		minorUnits = -minorUnits
	}
	return fmt.Sprintf("%s$%d.%02d", sign, minorUnits/100, minorUnits%100)
}

// BuildPaymentReceiptBody builds the HTML body for the payment receipt
func BuildPaymentReceiptBody(orderID string, total int64, items []OrderItem) string {
	var rows strings.Builder
	for _, item := range items {
		name := item.Name
		if name == "" {
			name = item.ProductID
		}
		rows.WriteString(fmt.Sprintf(
			`<tr>
				<td style="padding: 8px; border-bottom: 1px solid #eee;">%s</td>
				<td style="padding: 8px; border-bottom: 1px solid #eee; text-align: center;">%d</td>
				<td style="padding: 8px; border-bottom: 1px solid #eee; text-align: right;">%s</td>
			</tr>`,
			name,
			item.Quantity,
			FormatAmount(item.Price*int64(item.Quantity)),
		))
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: -apple-system, 'Segoe UI', Roboto, sans-serif; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
	<h1 style="font-size: 22px;">Thanks for your order</h1>
	<p>We received your payment. Your order is on its way to fulfillment.</p>

	<p style="font-size: 14px; color: #666; margin-bottom: 4px;">Order number</p>
	<p style="font-family: monospace; font-size: 16px; margin-top: 0;">%s</p>

	<table style="width: 100%%; border-collapse: collapse; margin: 20px 0;">
		<thead>
			<tr style="text-align: left; border-bottom: 2px solid #333;">
				<th style="padding: 8px;">Item</th>
				<th style="padding: 8px; text-align: center;">Qty</th>
				<th style="padding: 8px; text-align: right;">Amount</th>
			</tr>
		</thead>
		<tbody>%s</tbody>
	</table>

	<p style="text-align: right; font-size: 18px;"><strong>Total charged: %s</strong></p>
</body>
</html>`, orderID, rows.String(), FormatAmount(total))
}
