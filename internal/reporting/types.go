package reporting

import (
	"time"

	"github.com/shopspring/decimal"

	"presale-backend/internal/domain"
)

// Report is a point-in-time export of the sale: the running aggregate,
// a per-day rollup and the full purchase ledger.
type Report struct {
	GeneratedAt time.Time
	Stats       domain.SaleStats
	Days        []DailySummaryRow
	Purchases   []*domain.Purchase
}

// DailySummaryRow is one sale day of the rollup.
type DailySummaryRow struct {
	SaleDay       string
	CoinsSold     decimal.Decimal
	RaisedEur     decimal.Decimal
	PurchaseCount int

	// UnitPrice is the day's cached curve price. Zero with
	// HasUnitPrice=false when the day was never priced, which happens
	// on days that only saw traffic through pre-warmed caches.
	UnitPrice    decimal.Decimal
	HasUnitPrice bool
}
