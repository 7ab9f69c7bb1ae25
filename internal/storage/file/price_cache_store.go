package file

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/shopspring/decimal"

	"presale-backend/internal/storage"
)

// PriceCacheStore persists the day-to-price map as price_cache.json.
type PriceCacheStore struct {
	mu     sync.Mutex
	path   string
	prices map[string]decimal.Decimal
}

// NewPriceCacheStore loads price_cache.json from dir if present.
func NewPriceCacheStore(dir string) (*PriceCacheStore, error) {
	if err := ensureDir(dir); err != nil {
		return nil, err
	}

	s := &PriceCacheStore{
		path:   filepath.Join(dir, priceCacheFile),
		prices: make(map[string]decimal.Decimal),
	}
	if _, err := readSnapshot(s.path, &s.prices); err != nil {
		return nil, err
	}
	return s, nil
}

// ReadForDay retrieves the cached price for a sale day.
func (s *PriceCacheStore) ReadForDay(_ context.Context, day string) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	price, ok := s.prices[day]
	if !ok {
		return decimal.Decimal{}, storage.ErrNotFound
	}
	return price, nil
}

// WriteForDay stores the price for a sale day. Returns ErrDuplicateKey
// if the day is already priced: the first persisted writer wins.
func (s *PriceCacheStore) WriteForDay(_ context.Context, day string, price decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.prices[day]; exists {
		return storage.ErrDuplicateKey
	}

	s.prices[day] = price
	if err := writeSnapshot(s.path, s.prices); err != nil {
		delete(s.prices, day)
		return err
	}
	return nil
}

var _ storage.PriceCacheStore = (*PriceCacheStore)(nil)
