// Package limits enforces the rolling daily spend cap.
package limits

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"presale-backend/internal/domain"
	"presale-backend/internal/storage"
)

// DefaultDailyCapEur is the aggregate purchase value admitted per sale day.
var DefaultDailyCapEur = decimal.NewFromInt(500000)

// Result is the advisory outcome of a daily limit check. The caller
// decides what to do with a rejection; the guard has no side effects.
type Result struct {
	Allowed    bool
	DailyTotal decimal.Decimal // committed same-day total, excluding the candidate
	Limit      decimal.Decimal
}

// Guard checks candidate purchases against the daily cap by summing
// same-day ledger entries. The full-ledger-day scan is O(n) per check,
// which is fine at presale scale; it is the reference semantics the
// tests pin, so a running per-day counter must stay sum-equivalent.
type Guard struct {
	ledger storage.LedgerStore
	clock  *domain.Clock
	cap    decimal.Decimal
}

// NewGuard creates a daily limit guard. A non-positive cap falls back
// to DefaultDailyCapEur.
func NewGuard(ledger storage.LedgerStore, clock *domain.Clock, capEur decimal.Decimal) *Guard {
	if capEur.Sign() <= 0 {
		capEur = DefaultDailyCapEur
	}
	return &Guard{
		ledger: ledger,
		clock:  clock,
		cap:    capEur,
	}
}

// Check reports whether admitting candidateTotal at instant `at` keeps
// the sale day's committed sum within the cap. Call it inside the same
// critical section as the commit: the admission decision is only as
// good as its snapshot of the ledger.
func (g *Guard) Check(ctx context.Context, candidateTotal decimal.Decimal, at time.Time) (*Result, error) {
	day := g.clock.DayOf(at)

	purchases, err := g.ledger.ListPurchasesOnDay(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("list purchases on %s: %w", day, err)
	}

	dailyTotal := decimal.Zero
	for _, p := range purchases {
		dailyTotal = dailyTotal.Add(p.TotalPriceEur)
	}

	return &Result{
		Allowed:    dailyTotal.Add(candidateTotal).Cmp(g.cap) <= 0,
		DailyTotal: dailyTotal,
		Limit:      g.cap,
	}, nil
}
