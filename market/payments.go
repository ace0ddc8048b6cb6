package market

import (
	"context"
	"strings"

	"github.com/MrEthical07/goSession/api"
)

// PaymentResult is the confirmation returned by the payment gateway.
type PaymentResult struct {
	PaymentKey  string `json:"paymentKey"`
	OrderID     string `json:"orderId"`
	TotalAmount int64  `json:"totalAmount"`
	Status      string `json:"status"`
}

type Payments struct {
	c *api.Client
}

// Confirm approves a payment the gateway authorized. Missing parameters fail
// with ErrMissingPaymentParams before any request is sent.
func (p *Payments) Confirm(ctx context.Context, paymentKey, orderID string, amount int64) (PaymentResult, error) {
	paymentKey = strings.TrimSpace(paymentKey)
	orderID = strings.TrimSpace(orderID)
	if paymentKey == "" || orderID == "" || amount == 0 {
		return PaymentResult{}, ErrMissingPaymentParams
	}
	body := map[string]any{
		"paymentKey": paymentKey,
		"orderId":    orderID,
		"amount":     amount,
	}
	return api.Post[PaymentResult](ctx, p.c, "/api/payments/confirm", body)
}
