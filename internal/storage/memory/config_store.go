package memory

import (
	"context"
	"sync"

	"presale-backend/internal/domain"
	"presale-backend/internal/storage"
)

// ConfigStore is an in-memory implementation of storage.ConfigStore.
type ConfigStore struct {
	mu  sync.RWMutex
	cfg *domain.CampaignConfig
}

// NewConfigStore creates a config store seeded with cfg (nil = unconfigured).
func NewConfigStore(cfg *domain.CampaignConfig) *ConfigStore {
	s := &ConfigStore{}
	if cfg != nil {
		copy := *cfg
		s.cfg = &copy
	}
	return s
}

// Get retrieves the campaign config. Returns ErrNotFound if none is set.
func (s *ConfigStore) Get(_ context.Context) (*domain.CampaignConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.cfg == nil {
		return nil, storage.ErrNotFound
	}

	copy := *s.cfg
	return &copy, nil
}

// Put replaces the campaign config. Operator path, not used by the core.
func (s *ConfigStore) Put(_ context.Context, cfg *domain.CampaignConfig) error {
	if cfg == nil {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copy := *cfg
	s.cfg = &copy
	return nil
}

var _ storage.ConfigStore = (*ConfigStore)(nil)
