package reporting

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"presale-backend/internal/domain"
	"presale-backend/internal/storage"
)

// Generator produces sale reports from stored data.
type Generator struct {
	ledger storage.LedgerStore
	cache  storage.PriceCacheStore
	clock  *domain.Clock
	now    func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator. The price cache is
// optional; without it the daily rollup omits unit prices.
func NewGenerator(ledger storage.LedgerStore, cache storage.PriceCacheStore, clock *domain.Clock) *Generator {
	return &Generator{
		ledger: ledger,
		cache:  cache,
		clock:  clock,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate builds a complete sale report.
func (g *Generator) Generate(ctx context.Context) (*Report, error) {
	purchases, err := g.ledger.ListPurchases(ctx)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}

	stats, err := g.ledger.ReadStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("load stats: %w", err)
	}

	days, err := g.generateDailyRollup(ctx, purchases)
	if err != nil {
		return nil, err
	}

	return &Report{
		GeneratedAt: g.now(),
		Stats:       *stats,
		Days:        days,
		Purchases:   purchases,
	}, nil
}

// generateDailyRollup folds the ledger into per-day totals and attaches
// each day's cached unit price where one exists.
func (g *Generator) generateDailyRollup(ctx context.Context, purchases []*domain.Purchase) ([]DailySummaryRow, error) {
	byDay := make(map[string]*DailySummaryRow)
	for _, p := range purchases {
		day := g.clock.DayOf(p.Timestamp)
		row := byDay[day]
		if row == nil {
			row = &DailySummaryRow{SaleDay: day}
			byDay[day] = row
		}
		row.CoinsSold = row.CoinsSold.Add(p.CoinAmount)
		row.RaisedEur = row.RaisedEur.Add(p.TotalPriceEur)
		row.PurchaseCount++
	}

	rows := make([]DailySummaryRow, 0, len(byDay))
	for _, row := range byDay {
		if g.cache != nil {
			price, err := g.cache.ReadForDay(ctx, row.SaleDay)
			switch {
			case err == nil:
				row.UnitPrice = price
				row.HasUnitPrice = true
			case errors.Is(err, storage.ErrNotFound):
				// day never priced
			default:
				return nil, fmt.Errorf("read cached price for %s: %w", row.SaleDay, err)
			}
		}
		rows = append(rows, *row)
	}

	sort.Slice(rows, func(i, j int) bool {
		return rows[i].SaleDay < rows[j].SaleDay
	})

	return rows, nil
}

// WriteFiles renders the report and writes purchases.csv and
// daily_summary.csv into outputDir.
func (g *Generator) WriteFiles(report *Report, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	purchasesPath := filepath.Join(outputDir, "purchases.csv")
	if err := os.WriteFile(purchasesPath, []byte(RenderPurchasesCSV(report.Purchases)), 0644); err != nil {
		return fmt.Errorf("write purchases.csv: %w", err)
	}

	dailyPath := filepath.Join(outputDir, "daily_summary.csv")
	if err := os.WriteFile(dailyPath, []byte(RenderDailySummaryCSV(report.Days)), 0644); err != nil {
		return fmt.Errorf("write daily_summary.csv: %w", err)
	}

	return nil
}
