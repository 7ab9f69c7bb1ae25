package file

import (
	"context"
	"path/filepath"
	"sync"

	"presale-backend/internal/domain"
	"presale-backend/internal/storage"
)

// ConfigStore persists the campaign config as campaign.json under the
// data directory.
type ConfigStore struct {
	mu   sync.Mutex
	path string
	cfg  *domain.CampaignConfig
}

// NewConfigStore loads campaign.json from dir if present.
func NewConfigStore(dir string) (*ConfigStore, error) {
	if err := ensureDir(dir); err != nil {
		return nil, err
	}

	s := &ConfigStore{path: filepath.Join(dir, campaignFile)}

	var cfg domain.CampaignConfig
	found, err := readSnapshot(s.path, &cfg)
	if err != nil {
		return nil, err
	}
	if found {
		s.cfg = &cfg
	}
	return s, nil
}

// Get retrieves the campaign config. Returns ErrNotFound if none has
// been written yet.
func (s *ConfigStore) Get(_ context.Context) (*domain.CampaignConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cfg == nil {
		return nil, storage.ErrNotFound
	}
	copy := *s.cfg
	return &copy, nil
}

// Put replaces the campaign config. Operator path, not part of the
// storage.ConfigStore port.
func (s *ConfigStore) Put(_ context.Context, cfg *domain.CampaignConfig) error {
	if cfg == nil {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := writeSnapshot(s.path, cfg); err != nil {
		return err
	}
	copy := *cfg
	s.cfg = &copy
	return nil
}

var _ storage.ConfigStore = (*ConfigStore)(nil)
