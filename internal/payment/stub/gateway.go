// Package stub provides a fake payment gateway for tests and for
// running the server without processor credentials.
package stub

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"presale-backend/internal/payment"
)

// Gateway is an in-memory payment.Gateway. Orders are held until
// captured; CaptureStatus controls the verdict reported for captures.
type Gateway struct {
	mu     sync.Mutex
	seq    int
	orders map[string]payment.Metadata

	// CaptureStatus is returned for every capture. Defaults to the
	// success sentinel.
	CaptureStatus string

	// CreateErr / CaptureErr, when set, fail the corresponding call.
	CreateErr  error
	CaptureErr error
}

// New creates a stub gateway that reports successful captures.
func New() *Gateway {
	return &Gateway{
		orders:        make(map[string]payment.Metadata),
		CaptureStatus: "COMPLETED",
	}
}

var _ payment.Gateway = (*Gateway)(nil)

// SuccessStatus returns the stub's success sentinel.
func (g *Gateway) SuccessStatus() string {
	return "COMPLETED"
}

// CreateOrder records the order and returns a generated id.
func (g *Gateway) CreateOrder(_ context.Context, total decimal.Decimal, currency string, meta payment.Metadata) (*payment.Order, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.CreateErr != nil {
		return nil, g.CreateErr
	}

	g.seq++
	orderID := fmt.Sprintf("STUB-%06d", g.seq)
	g.orders[orderID] = meta
	raw := fmt.Sprintf(`{"id":%q,"status":"CREATED","amount":%q,"currency":%q}`, orderID, total.StringFixed(2), currency)

	return &payment.Order{OrderID: orderID, Raw: []byte(raw)}, nil
}

// CaptureOrder returns the configured status and the stored metadata.
func (g *Gateway) CaptureOrder(_ context.Context, orderID string) (*payment.CaptureResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.CaptureErr != nil {
		return nil, g.CaptureErr
	}

	meta, exists := g.orders[orderID]
	if !exists {
		return nil, fmt.Errorf("unknown order %s", orderID)
	}

	return &payment.CaptureResult{
		Status:   g.CaptureStatus,
		Metadata: meta,
		Raw:      []byte(fmt.Sprintf(`{"id":%q,"status":%q}`, orderID, g.CaptureStatus)),
	}, nil
}

// SetMetadata overwrites stored order metadata, for tamper-style tests.
func (g *Gateway) SetMetadata(orderID string, meta payment.Metadata) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.orders[orderID] = meta
}
