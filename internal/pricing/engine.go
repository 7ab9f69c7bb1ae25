// Package pricing computes the presale unit price from the linear
// bonding curve and pins it per sale day through the price cache.
package pricing

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"presale-backend/internal/domain"
	"presale-backend/internal/storage"
)

// UnitPriceFor evaluates the linear bonding curve:
//
//	price = startPrice + (raisedSoFar / fundingGoal) * (endPrice - startPrice)
//
// A non-positive funding goal falls back to startPrice instead of
// dividing by zero; negative raisedSoFar is treated as zero. When
// raisedSoFar exceeds the goal the price legitimately exceeds endPrice.
func UnitPriceFor(cfg *domain.CampaignConfig, raisedSoFar decimal.Decimal) decimal.Decimal {
	if cfg.FundingGoalEur.Sign() <= 0 {
		return cfg.StartPrice
	}
	if raisedSoFar.Sign() < 0 {
		raisedSoFar = decimal.Zero
	}

	spread := cfg.EndPrice.Sub(cfg.StartPrice)
	return cfg.StartPrice.Add(raisedSoFar.Div(cfg.FundingGoalEur).Mul(spread))
}

// Engine resolves the current unit price, caching one value per sale
// day. The cached value snapshots totalRaisedEur at the first pricing
// of the day; later commits never move the price until the next day.
type Engine struct {
	configs storage.ConfigStore
	ledger  storage.LedgerStore
	cache   storage.PriceCacheStore
	clock   *domain.Clock

	// Serializes read-or-compute-and-store so two first-of-the-day
	// requests cannot both compute. The store-level CAS covers writers
	// outside this process.
	mu sync.Mutex
}

// NewEngine creates a pricing engine.
func NewEngine(configs storage.ConfigStore, ledger storage.LedgerStore, cache storage.PriceCacheStore, clock *domain.Clock) *Engine {
	return &Engine{
		configs: configs,
		ledger:  ledger,
		cache:   cache,
		clock:   clock,
	}
}

// CurrentUnitPrice returns today's unit price, computing and durably
// caching it if today has not been priced yet.
func (e *Engine) CurrentUnitPrice(ctx context.Context) (decimal.Decimal, error) {
	day := e.clock.Today()

	e.mu.Lock()
	defer e.mu.Unlock()

	price, err := e.cache.ReadForDay(ctx, day)
	if err == nil {
		return price, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return decimal.Decimal{}, fmt.Errorf("read price cache for %s: %w", day, err)
	}

	cfg, err := e.loadConfig(ctx)
	if err != nil {
		return decimal.Decimal{}, err
	}

	stats, err := e.ledger.ReadStats(ctx)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("read sale stats: %w", err)
	}

	price = UnitPriceFor(cfg, stats.TotalRaisedEur)

	if err := e.cache.WriteForDay(ctx, day, price); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			// Another writer priced the day first; its value is authoritative.
			return e.cache.ReadForDay(ctx, day)
		}
		return decimal.Decimal{}, fmt.Errorf("write price cache for %s: %w", day, err)
	}

	return price, nil
}

// QuoteFor prices a coin amount at today's unit price.
func (e *Engine) QuoteFor(ctx context.Context, coinAmount decimal.Decimal) (*Quote, error) {
	unitPrice, err := e.CurrentUnitPrice(ctx)
	if err != nil {
		return nil, err
	}

	cfg, err := e.loadConfig(ctx)
	if err != nil {
		return nil, err
	}

	q := NewQuote(unitPrice, coinAmount, cfg.Currency)
	return &q, nil
}

// Config returns the normalized, validated campaign config.
func (e *Engine) Config(ctx context.Context) (*domain.CampaignConfig, error) {
	return e.loadConfig(ctx)
}

func (e *Engine) loadConfig(ctx context.Context) (*domain.CampaignConfig, error) {
	cfg, err := e.configs.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("read campaign config: %w", err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("campaign config invalid: %w", err)
	}
	return cfg, nil
}
