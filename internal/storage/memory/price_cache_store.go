package memory

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"presale-backend/internal/storage"
)

// PriceCacheStore is an in-memory implementation of storage.PriceCacheStore.
type PriceCacheStore struct {
	mu   sync.RWMutex
	data map[string]decimal.Decimal // keyed by sale day
}

// NewPriceCacheStore creates a new in-memory price cache store.
func NewPriceCacheStore() *PriceCacheStore {
	return &PriceCacheStore{
		data: make(map[string]decimal.Decimal),
	}
}

// ReadForDay retrieves the cached price. Returns ErrNotFound if the day is unpriced.
func (s *PriceCacheStore) ReadForDay(_ context.Context, day string) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	price, exists := s.data[day]
	if !exists {
		return decimal.Decimal{}, storage.ErrNotFound
	}
	return price, nil
}

// WriteForDay stores the day's price. Returns ErrDuplicateKey if already priced.
func (s *PriceCacheStore) WriteForDay(_ context.Context, day string, price decimal.Decimal) error {
	if day == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[day]; exists {
		return storage.ErrDuplicateKey
	}
	s.data[day] = price
	return nil
}

var _ storage.PriceCacheStore = (*PriceCacheStore)(nil)
