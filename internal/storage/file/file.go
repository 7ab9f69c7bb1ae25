// Package file provides flat-file storage implementations backed by a
// data directory: an append-only JSONL ledger plus small JSON snapshot
// files for stats, the campaign config and the daily price cache. State
// is loaded once at open and served from memory; every mutation is
// persisted before it is acknowledged.
package file

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	purchasesFile  = "purchases.jsonl"
	statsFile      = "stats.json"
	campaignFile   = "campaign.json"
	priceCacheFile = "price_cache.json"
)

// writeSnapshot writes v as JSON to path via a temp file and rename, so
// a crash mid-write never leaves a truncated snapshot behind.
func writeSnapshot(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", filepath.Base(path), err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename %s: %w", filepath.Base(path), err)
	}
	return nil
}

// readSnapshot reads path into v. Reports found=false when the file
// does not exist yet.
func readSnapshot(path string, v any) (bool, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return true, nil
}

func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create data dir %s: %w", dir, err)
	}
	return nil
}
