package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"presale-backend/internal/storage"
)

func TestPriceCacheStore_ReadWrite(t *testing.T) {
	store := NewPriceCacheStore()
	ctx := context.Background()

	_, err := store.ReadForDay(ctx, "2026-03-01")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	price := decimal.RequireFromString("0.0412")
	if err := store.WriteForDay(ctx, "2026-03-01", price); err != nil {
		t.Fatalf("WriteForDay failed: %v", err)
	}

	got, err := store.ReadForDay(ctx, "2026-03-01")
	if err != nil {
		t.Fatalf("ReadForDay failed: %v", err)
	}
	if !got.Equal(price) {
		t.Errorf("price mismatch: got %s, want %s", got, price)
	}
}

func TestPriceCacheStore_CompareAndSet(t *testing.T) {
	store := NewPriceCacheStore()
	ctx := context.Background()

	first := decimal.RequireFromString("0.02")
	if err := store.WriteForDay(ctx, "2026-03-01", first); err != nil {
		t.Fatalf("first write failed: %v", err)
	}

	// Second writer loses and must re-read the winner's value.
	err := store.WriteForDay(ctx, "2026-03-01", decimal.RequireFromString("0.03"))
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}

	got, err := store.ReadForDay(ctx, "2026-03-01")
	if err != nil {
		t.Fatalf("ReadForDay failed: %v", err)
	}
	if !got.Equal(first) {
		t.Errorf("expected first writer's price %s, got %s", first, got)
	}
}
