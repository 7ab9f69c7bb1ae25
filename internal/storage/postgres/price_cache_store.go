package postgres

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"presale-backend/internal/storage"
)

// PriceCacheStore implements storage.PriceCacheStore using PostgreSQL.
// The first-writer-wins contract rides on the sale_day primary key.
type PriceCacheStore struct {
	pool *Pool
}

// NewPriceCacheStore creates a new PriceCacheStore.
func NewPriceCacheStore(pool *Pool) *PriceCacheStore {
	return &PriceCacheStore{pool: pool}
}

// Compile-time interface check.
var _ storage.PriceCacheStore = (*PriceCacheStore)(nil)

// ReadForDay retrieves the cached price for a sale day.
func (s *PriceCacheStore) ReadForDay(ctx context.Context, day string) (decimal.Decimal, error) {
	query := `
		SELECT unit_price::text
		FROM price_cache
		WHERE sale_day = $1
	`

	var raw string
	err := s.pool.QueryRow(ctx, query, day).Scan(&raw)
	if isNotFoundError(err) {
		return decimal.Decimal{}, storage.ErrNotFound
	}
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("read price for day %s: %w", day, err)
	}

	price, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parse price for day %s: %w", day, err)
	}
	return price, nil
}

// WriteForDay stores the price for a sale day. Returns ErrDuplicateKey if
// the day is already priced. ON CONFLICT DO NOTHING makes concurrent
// writers race safely: exactly one insert lands and everyone else sees
// zero rows affected.
func (s *PriceCacheStore) WriteForDay(ctx context.Context, day string, price decimal.Decimal) error {
	query := `
		INSERT INTO price_cache (sale_day, unit_price)
		VALUES ($1, $2::numeric)
		ON CONFLICT (sale_day) DO NOTHING
	`

	tag, err := s.pool.Exec(ctx, query, day, price.String())
	if err != nil {
		return fmt.Errorf("write price for day %s: %w", day, err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrDuplicateKey
	}
	return nil
}
