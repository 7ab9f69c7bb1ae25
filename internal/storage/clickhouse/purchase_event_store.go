package clickhouse

import (
	"context"
	"fmt"
	"time"

	"presale-backend/internal/domain"
)

// PurchaseEventStore mirrors committed purchases into ClickHouse for
// analytics. It is a write-behind copy of the ledger: the postgres (or
// file) ledger stays authoritative and this table may lag it.
type PurchaseEventStore struct {
	conn  *Conn
	clock *domain.Clock
}

// NewPurchaseEventStore creates a new PurchaseEventStore.
func NewPurchaseEventStore(conn *Conn, clock *domain.Clock) *PurchaseEventStore {
	return &PurchaseEventStore{conn: conn, clock: clock}
}

// Insert mirrors one committed purchase. Amounts are stored as Float64;
// exact decimals live only in the authoritative ledger.
func (s *PurchaseEventStore) Insert(ctx context.Context, p *domain.Purchase) error {
	query := `
		INSERT INTO purchase_events (
			purchase_id, sale_day, wallet_address, wallet_type,
			coin_amount, total_price_eur, payment_method, purchased_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	err := s.conn.Exec(ctx, query,
		p.ID.String(),
		s.clock.DayOf(p.Timestamp),
		p.WalletAddress,
		p.WalletType,
		p.CoinAmount.InexactFloat64(),
		p.TotalPriceEur.InexactFloat64(),
		string(p.PaymentMethod),
		p.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert purchase event: %w", err)
	}
	return nil
}

// DailyTotal is one row of the per-day sales rollup.
type DailyTotal struct {
	SaleDay       string
	CoinsSold     float64
	RaisedEur     float64
	PurchaseCount uint64
	FirstPurchase time.Time
	LastPurchase  time.Time
}

// DailyTotals aggregates mirrored purchases per sale day, newest first.
func (s *PurchaseEventStore) DailyTotals(ctx context.Context) ([]*DailyTotal, error) {
	query := `
		SELECT sale_day,
		       sum(coin_amount) AS coins_sold,
		       sum(total_price_eur) AS raised_eur,
		       count() AS purchase_count,
		       min(purchased_at) AS first_purchase,
		       max(purchased_at) AS last_purchase
		FROM purchase_events
		GROUP BY sale_day
		ORDER BY sale_day DESC
	`

	rows, err := s.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query daily totals: %w", err)
	}
	defer rows.Close()

	var totals []*DailyTotal
	for rows.Next() {
		var t DailyTotal
		err := rows.Scan(
			&t.SaleDay, &t.CoinsSold, &t.RaisedEur,
			&t.PurchaseCount, &t.FirstPurchase, &t.LastPurchase,
		)
		if err != nil {
			return nil, fmt.Errorf("scan daily total row: %w", err)
		}
		totals = append(totals, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate daily total rows: %w", err)
	}

	return totals, nil
}
