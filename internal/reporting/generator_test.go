package reporting

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"presale-backend/internal/domain"
	"presale-backend/internal/storage/memory"
)

func seedLedger(t *testing.T, clock *domain.Clock) *memory.LedgerStore {
	t.Helper()

	ledger := memory.NewLedgerStore(clock)
	ctx := context.Background()
	stats := &domain.SaleStats{}

	entries := []struct {
		ts    time.Time
		coins string
		total string
	}{
		{time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC), "1000", "20.00"},
		{time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC), "500", "10.00"},
		{time.Date(2026, 3, 2, 7, 0, 0, 0, time.UTC), "2000", "44.00"},
	}
	for _, e := range entries {
		p := &domain.Purchase{
			ID:            uuid.New(),
			WalletAddress: "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin",
			WalletType:    domain.WalletTypeSolana,
			CoinAmount:    decimal.RequireFromString(e.coins),
			TotalPriceEur: decimal.RequireFromString(e.total),
			PaymentMethod: domain.PaymentMethodOther,
			Timestamp:     e.ts,
			Status:        domain.PurchaseStatusCompleted,
		}
		if err := ledger.AppendPurchase(ctx, p); err != nil {
			t.Fatalf("seed append failed: %v", err)
		}
		stats.Apply(p)
	}
	if err := ledger.WriteStats(ctx, stats); err != nil {
		t.Fatalf("seed stats failed: %v", err)
	}

	return ledger
}

func TestGenerator_DailyRollup(t *testing.T) {
	clock := domain.NewClock(time.UTC)
	ledger := seedLedger(t, clock)

	cache := memory.NewPriceCacheStore()
	ctx := context.Background()
	if err := cache.WriteForDay(ctx, "2026-03-01", decimal.RequireFromString("0.02")); err != nil {
		t.Fatalf("seed price failed: %v", err)
	}

	gen := NewGenerator(ledger, cache, clock).
		WithClock(func() time.Time { return time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC) })

	report, err := gen.Generate(ctx)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if report.Stats.TotalPurchaseCount != 3 {
		t.Errorf("TotalPurchaseCount = %d, want 3", report.Stats.TotalPurchaseCount)
	}
	if len(report.Purchases) != 3 {
		t.Errorf("Purchases = %d entries, want 3", len(report.Purchases))
	}
	if len(report.Days) != 2 {
		t.Fatalf("Days = %d, want 2", len(report.Days))
	}

	first := report.Days[0]
	if first.SaleDay != "2026-03-01" {
		t.Errorf("Days[0].SaleDay = %s, want 2026-03-01", first.SaleDay)
	}
	if first.PurchaseCount != 2 {
		t.Errorf("Days[0].PurchaseCount = %d, want 2", first.PurchaseCount)
	}
	if !first.RaisedEur.Equal(decimal.RequireFromString("30.00")) {
		t.Errorf("Days[0].RaisedEur = %s, want 30.00", first.RaisedEur)
	}
	if !first.HasUnitPrice || !first.UnitPrice.Equal(decimal.RequireFromString("0.02")) {
		t.Errorf("Days[0] unit price = %s (set=%v), want 0.02", first.UnitPrice, first.HasUnitPrice)
	}

	second := report.Days[1]
	if second.SaleDay != "2026-03-02" {
		t.Errorf("Days[1].SaleDay = %s, want 2026-03-02", second.SaleDay)
	}
	if second.HasUnitPrice {
		t.Error("Days[1] should have no cached unit price")
	}
}

func TestGenerator_WriteFiles(t *testing.T) {
	clock := domain.NewClock(time.UTC)
	ledger := seedLedger(t, clock)
	gen := NewGenerator(ledger, memory.NewPriceCacheStore(), clock)

	report, err := gen.Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	dir := t.TempDir()
	if err := gen.WriteFiles(report, filepath.Join(dir, "out")); err != nil {
		t.Fatalf("WriteFiles failed: %v", err)
	}

	purchasesData, err := os.ReadFile(filepath.Join(dir, "out", "purchases.csv"))
	if err != nil {
		t.Fatalf("read purchases.csv: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(purchasesData)), "\n")
	if len(lines) != 4 { // header + 3 rows
		t.Errorf("purchases.csv has %d lines, want 4", len(lines))
	}
	if !strings.HasPrefix(lines[0], "id,timestamp,wallet_address") {
		t.Errorf("unexpected purchases.csv header: %s", lines[0])
	}

	dailyData, err := os.ReadFile(filepath.Join(dir, "out", "daily_summary.csv"))
	if err != nil {
		t.Fatalf("read daily_summary.csv: %v", err)
	}
	lines = strings.Split(strings.TrimSpace(string(dailyData)), "\n")
	if len(lines) != 3 { // header + 2 days
		t.Errorf("daily_summary.csv has %d lines, want 3", len(lines))
	}
	if !strings.HasPrefix(lines[0], "sale_day,unit_price") {
		t.Errorf("unexpected daily_summary.csv header: %s", lines[0])
	}
}
