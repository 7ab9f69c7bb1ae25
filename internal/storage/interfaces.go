package storage

import (
	"context"

	"github.com/shopspring/decimal"

	"presale-backend/internal/domain"
)

// ConfigStore provides access to the campaign configuration.
type ConfigStore interface {
	// Get retrieves the campaign config. Returns ErrNotFound if none is
	// configured. Defaulting is the caller's job via CampaignConfig.Normalize.
	Get(ctx context.Context) (*domain.CampaignConfig, error)
}

// LedgerStore provides access to the purchase ledger and its aggregate.
// All operations must be invocable inside the orchestrator's commit
// critical section.
type LedgerStore interface {
	// AppendPurchase adds a completed purchase. Returns ErrDuplicateKey
	// if the purchase ID already exists. The ledger is append-only.
	AppendPurchase(ctx context.Context, p *domain.Purchase) error

	// ListPurchasesOnDay retrieves purchases whose timestamp falls on the
	// given sale day, ordered by timestamp ASC.
	ListPurchasesOnDay(ctx context.Context, day string) ([]*domain.Purchase, error)

	// ListPurchases retrieves the full ledger, ordered by timestamp ASC.
	ListPurchases(ctx context.Context) ([]*domain.Purchase, error)

	// ReadStats retrieves the running aggregate. Returns zero-valued
	// stats (not ErrNotFound) when nothing has been committed yet.
	ReadStats(ctx context.Context) (*domain.SaleStats, error)

	// WriteStats replaces the running aggregate.
	WriteStats(ctx context.Context, s *domain.SaleStats) error
}

// PriceCacheStore memoizes one unit price per sale day.
type PriceCacheStore interface {
	// ReadForDay retrieves the cached price for a sale day.
	// Returns ErrNotFound if the day has not been priced.
	ReadForDay(ctx context.Context, day string) (decimal.Decimal, error)

	// WriteForDay stores the price for a sale day. Returns ErrDuplicateKey
	// if the day is already priced: the first writer wins and later
	// writers must re-read. This is the compare-and-set contract the
	// pricing engine relies on.
	WriteForDay(ctx context.Context, day string, price decimal.Decimal) error
}
