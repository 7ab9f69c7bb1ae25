package file

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/google/uuid"

	"presale-backend/internal/domain"
	"presale-backend/internal/storage"
)

// LedgerStore persists purchases as one JSON object per line in
// purchases.jsonl and the aggregate stats as a stats.json snapshot.
// The ledger file is append-only; existing lines are never rewritten.
type LedgerStore struct {
	mu        sync.Mutex
	dir       string
	ledger    *os.File
	purchases []*domain.Purchase
	byID      map[uuid.UUID]struct{}
	stats     domain.SaleStats
	hasStats  bool
	clock     *domain.Clock
}

// NewLedgerStore opens (or creates) the ledger files under dir and
// loads all existing purchases into memory. The clock defines the
// sale-day boundaries for ListPurchasesOnDay.
func NewLedgerStore(dir string, clock *domain.Clock) (*LedgerStore, error) {
	if err := ensureDir(dir); err != nil {
		return nil, err
	}

	s := &LedgerStore{
		dir:   dir,
		byID:  make(map[uuid.UUID]struct{}),
		clock: clock,
	}

	path := filepath.Join(dir, purchasesFile)
	if err := s.loadPurchases(path); err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open ledger %s: %w", path, err)
	}
	s.ledger = f

	s.hasStats, err = readSnapshot(filepath.Join(dir, statsFile), &s.stats)
	if err != nil {
		f.Close()
		return nil, err
	}

	return s, nil
}

func (s *LedgerStore) loadPurchases(path string) error {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open ledger %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		p := new(domain.Purchase)
		if err := json.Unmarshal(raw, p); err != nil {
			return fmt.Errorf("parse ledger %s line %d: %w", path, line, err)
		}
		s.purchases = append(s.purchases, p)
		s.byID[p.ID] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan ledger %s: %w", path, err)
	}
	return nil
}

// Close closes the underlying ledger file.
func (s *LedgerStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Close()
}

// AppendPurchase writes the purchase as a new JSONL line. Returns
// ErrDuplicateKey if the ID exists.
func (s *LedgerStore) AppendPurchase(_ context.Context, p *domain.Purchase) error {
	if p == nil || p.ID == uuid.Nil {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[p.ID]; exists {
		return storage.ErrDuplicateKey
	}

	line, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal purchase %s: %w", p.ID, err)
	}
	if _, err := s.ledger.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("append purchase %s: %w", p.ID, err)
	}

	copy := *p
	s.purchases = append(s.purchases, &copy)
	s.byID[p.ID] = struct{}{}
	return nil
}

// ListPurchasesOnDay retrieves purchases on the given sale day, ordered by timestamp ASC.
func (s *LedgerStore) ListPurchasesOnDay(_ context.Context, day string) ([]*domain.Purchase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

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
	s.mu.Lock()
	defer s.mu.Unlock()

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

// ReadStats retrieves the persisted aggregate; zero stats before the first write.
func (s *LedgerStore) ReadStats(_ context.Context) (*domain.SaleStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.hasStats {
		return &domain.SaleStats{}, nil
	}
	copy := s.stats
	return &copy, nil
}

// WriteStats replaces the persisted aggregate snapshot.
func (s *LedgerStore) WriteStats(_ context.Context, stats *domain.SaleStats) error {
	if stats == nil {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := writeSnapshot(filepath.Join(s.dir, statsFile), stats); err != nil {
		return err
	}
	s.stats = *stats
	s.hasStats = true
	return nil
}

var _ storage.LedgerStore = (*LedgerStore)(nil)
