package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// CampaignConfig holds the presale campaign parameters.
// Read-mostly: the core never writes it; an operator updates it out-of-band.
type CampaignConfig struct {
	StartPrice       decimal.Decimal // unit price at zero raised
	EndPrice         decimal.Decimal // unit price at funding goal
	FundingGoalEur   decimal.Decimal
	MinPurchaseEur   decimal.Decimal // minimum total per purchase
	MaxPurchaseCoins decimal.Decimal // maximum coins per purchase; zero = no cap
	SaleEnd          time.Time
	Currency         string
}

// Defaults applied by Normalize. Documented here so the fallback set
// lives in exactly one place.
var (
	// DefaultFundingGoal replaces a missing or non-positive funding goal
	// so the pricing formula never divides by zero.
	DefaultFundingGoal = decimal.NewFromInt(1)

	// DefaultCurrency is the single ISO code used when none is configured.
	DefaultCurrency = "EUR"

	// DefaultSaleEnd replaces a zero sale end (campaign open until configured).
	DefaultSaleEnd = time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC)
)

// Normalize applies the documented default set in place and returns the config.
// All defaulting happens here; call sites never fall back on their own.
func (c *CampaignConfig) Normalize() *CampaignConfig {
	if c.FundingGoalEur.Sign() <= 0 {
		c.FundingGoalEur = DefaultFundingGoal
	}
	if c.MinPurchaseEur.Sign() < 0 {
		c.MinPurchaseEur = decimal.Zero
	}
	if c.MaxPurchaseCoins.Sign() < 0 {
		c.MaxPurchaseCoins = decimal.Zero
	}
	if c.Currency == "" {
		c.Currency = DefaultCurrency
	}
	if c.SaleEnd.IsZero() {
		c.SaleEnd = DefaultSaleEnd
	}
	return c
}

// Validate checks campaign invariants. Returns nil if the config is usable.
func (c *CampaignConfig) Validate() error {
	if c.StartPrice.Sign() < 0 {
		return fmt.Errorf("start price must be non-negative, got %s", c.StartPrice)
	}
	if c.EndPrice.Cmp(c.StartPrice) < 0 {
		return fmt.Errorf("end price %s below start price %s", c.EndPrice, c.StartPrice)
	}
	return nil
}
