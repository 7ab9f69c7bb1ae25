// Package payment defines the payment gateway port and its adapters.
// The orchestrator trusts a capture result as the sole proof of payment.
package payment

import (
	"context"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Metadata travels with a gateway order so the coin amount can be
// recovered at capture time without trusting client-supplied values.
type Metadata struct {
	CoinAmount decimal.Decimal
}

// Order is a created-but-uncaptured gateway order.
type Order struct {
	OrderID string
	Raw     json.RawMessage // gateway response, kept for diagnostics
}

// CaptureResult reports the gateway's verdict on a capture attempt.
// Status is compared against SuccessStatus with exact string equality;
// anything else, including pending-like states, counts as failure.
type CaptureResult struct {
	Status   string
	Metadata Metadata
	Raw      json.RawMessage
}

// Gateway is the payment processor adapter.
type Gateway interface {
	// CreateOrder registers an order for the given total and embeds the
	// metadata so CaptureOrder can return it.
	CreateOrder(ctx context.Context, total decimal.Decimal, currency string, meta Metadata) (*Order, error)

	// CaptureOrder captures a previously created order. A returned
	// CaptureResult with a non-success status is not an error at this
	// layer; the caller decides.
	CaptureOrder(ctx context.Context, orderID string) (*CaptureResult, error)

	// SuccessStatus is the exact capture status string that proves payment.
	SuccessStatus() string
}
