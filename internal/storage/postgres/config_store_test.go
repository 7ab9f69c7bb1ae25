package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"presale-backend/internal/domain"
	"presale-backend/internal/storage"
)

func TestConfigStore_GetNotConfigured(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewConfigStore(pool)

	_, err := store.Get(context.Background())
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestConfigStore_PutGetRoundTrip(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewConfigStore(pool)
	ctx := context.Background()

	cfg := (&domain.CampaignConfig{
		StartPrice:       decimal.RequireFromString("0.02"),
		EndPrice:         decimal.RequireFromString("0.10"),
		FundingGoalEur:   decimal.RequireFromString("5500000"),
		MinPurchaseEur:   decimal.RequireFromString("10"),
		MaxPurchaseCoins: decimal.RequireFromString("100000"),
		SaleEnd:          time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC),
	}).Normalize()
	require.NoError(t, store.Put(ctx, cfg))

	got, err := store.Get(ctx)
	require.NoError(t, err)
	assert.True(t, got.StartPrice.Equal(cfg.StartPrice))
	assert.True(t, got.EndPrice.Equal(cfg.EndPrice))
	assert.True(t, got.FundingGoalEur.Equal(cfg.FundingGoalEur))
	assert.True(t, got.MinPurchaseEur.Equal(cfg.MinPurchaseEur))
	assert.True(t, got.MaxPurchaseCoins.Equal(cfg.MaxPurchaseCoins))
	assert.True(t, got.SaleEnd.Equal(cfg.SaleEnd))
	assert.Equal(t, cfg.Currency, got.Currency)

	// Put replaces the single row.
	cfg.EndPrice = decimal.RequireFromString("0.20")
	require.NoError(t, store.Put(ctx, cfg))

	got, err = store.Get(ctx)
	require.NoError(t, err)
	assert.True(t, got.EndPrice.Equal(decimal.RequireFromString("0.20")))
}
