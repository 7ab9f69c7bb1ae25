package postgres

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"presale-backend/internal/domain"
	"presale-backend/internal/storage"
)

// ConfigStore implements storage.ConfigStore using PostgreSQL. The
// campaign config lives in a single fixed row.
type ConfigStore struct {
	pool *Pool
}

// NewConfigStore creates a new ConfigStore.
func NewConfigStore(pool *Pool) *ConfigStore {
	return &ConfigStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ConfigStore = (*ConfigStore)(nil)

// Get retrieves the campaign config. Returns ErrNotFound if none is configured.
func (s *ConfigStore) Get(ctx context.Context) (*domain.CampaignConfig, error) {
	query := `
		SELECT start_price::text, end_price::text, funding_goal_eur::text,
		       min_purchase_eur::text, max_purchase_coins::text, sale_end, currency
		FROM campaign_config
		WHERE id = 1
	`

	var (
		start, end, goal, min, max string
		cfg                        domain.CampaignConfig
	)
	err := s.pool.QueryRow(ctx, query).Scan(&start, &end, &goal, &min, &max, &cfg.SaleEnd, &cfg.Currency)
	if isNotFoundError(err) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read campaign config: %w", err)
	}

	fields := []struct {
		dst  *decimal.Decimal
		src  string
		name string
	}{
		{&cfg.StartPrice, start, "start price"},
		{&cfg.EndPrice, end, "end price"},
		{&cfg.FundingGoalEur, goal, "funding goal"},
		{&cfg.MinPurchaseEur, min, "min purchase"},
		{&cfg.MaxPurchaseCoins, max, "max purchase coins"},
	}
	for _, f := range fields {
		if *f.dst, err = decimal.NewFromString(f.src); err != nil {
			return nil, fmt.Errorf("parse %s: %w", f.name, err)
		}
	}
	cfg.SaleEnd = cfg.SaleEnd.UTC()

	return &cfg, nil
}

// Put replaces the campaign config. Operator path, not part of the
// storage.ConfigStore port.
func (s *ConfigStore) Put(ctx context.Context, cfg *domain.CampaignConfig) error {
	if cfg == nil {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO campaign_config (
			id, start_price, end_price, funding_goal_eur,
			min_purchase_eur, max_purchase_coins, sale_end, currency
		) VALUES (1, $1::numeric, $2::numeric, $3::numeric, $4::numeric, $5::numeric, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			start_price = EXCLUDED.start_price,
			end_price = EXCLUDED.end_price,
			funding_goal_eur = EXCLUDED.funding_goal_eur,
			min_purchase_eur = EXCLUDED.min_purchase_eur,
			max_purchase_coins = EXCLUDED.max_purchase_coins,
			sale_end = EXCLUDED.sale_end,
			currency = EXCLUDED.currency
	`

	_, err := s.pool.Exec(ctx, query,
		cfg.StartPrice.String(),
		cfg.EndPrice.String(),
		cfg.FundingGoalEur.String(),
		cfg.MinPurchaseEur.String(),
		cfg.MaxPurchaseCoins.String(),
		cfg.SaleEnd,
		cfg.Currency,
	)
	if err != nil {
		return fmt.Errorf("write campaign config: %w", err)
	}
	return nil
}
