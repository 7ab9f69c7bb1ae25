package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleStats is the running aggregate over all committed purchases.
// Invariant: equals the fold (sum coins, sum eur, count) over the ledger.
// Mutated only by the orchestrator inside its commit critical section.
type SaleStats struct {
	TotalCoinsSold     decimal.Decimal
	TotalRaisedEur     decimal.Decimal
	TotalPurchaseCount int64
	LastUpdated        time.Time
}

// Apply folds a committed purchase into the aggregate.
func (s *SaleStats) Apply(p *Purchase) {
	s.TotalCoinsSold = s.TotalCoinsSold.Add(p.CoinAmount)
	s.TotalRaisedEur = s.TotalRaisedEur.Add(p.TotalPriceEur)
	s.TotalPurchaseCount++
	s.LastUpdated = p.Timestamp
}
