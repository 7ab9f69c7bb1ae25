package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"presale-backend/internal/domain"
	"presale-backend/internal/storage"
)

// LedgerStore is an in-memory implementation of storage.LedgerStore.
type LedgerStore struct {
	mu        sync.RWMutex
	purchases []*domain.Purchase
	byID      map[uuid.UUID]struct{}
	stats     domain.SaleStats
	clock     *domain.Clock
}

// NewLedgerStore creates a new in-memory ledger store. The clock
// defines the sale-day boundaries for ListPurchasesOnDay.
func NewLedgerStore(clock *domain.Clock) *LedgerStore {
	return &LedgerStore{
		byID:  make(map[uuid.UUID]struct{}),
		clock: clock,
	}
}

// AppendPurchase adds a completed purchase. Returns ErrDuplicateKey if the ID exists.
func (s *LedgerStore) AppendPurchase(_ context.Context, p *domain.Purchase) error {
	if p == nil || p.ID == uuid.Nil {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[p.ID]; exists {
		return storage.ErrDuplicateKey
	}

	copy := *p
	s.purchases = append(s.purchases, &copy)
	s.byID[p.ID] = struct{}{}
	return nil
}

// ListPurchasesOnDay retrieves purchases on the given sale day, ordered by timestamp ASC.
func (s *LedgerStore) ListPurchasesOnDay(_ context.Context, day string) ([]*domain.Purchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Purchase
	for _, p := range s.purchases {
		if s.clock.DayOf(p.Timestamp) == day {
			copy := *p
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Timestamp.Before(result[j].Timestamp)
	})

	return result, nil
}

// ListPurchases retrieves the full ledger, ordered by timestamp ASC.
func (s *LedgerStore) ListPurchases(_ context.Context) ([]*domain.Purchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Purchase, 0, len(s.purchases))
	for _, p := range s.purchases {
		copy := *p
		result = append(result, &copy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Timestamp.Before(result[j].Timestamp)
	})

	return result, nil
}

// ReadStats retrieves the running aggregate; zero stats before the first commit.
func (s *LedgerStore) ReadStats(_ context.Context) (*domain.SaleStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	copy := s.stats
	return &copy, nil
}

// WriteStats replaces the running aggregate.
func (s *LedgerStore) WriteStats(_ context.Context, stats *domain.SaleStats) error {
	if stats == nil {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.stats = *stats
	return nil
}

var _ storage.LedgerStore = (*LedgerStore)(nil)
