package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"presale-backend/internal/domain"
	"presale-backend/internal/storage"
)

// LedgerStore implements storage.LedgerStore using PostgreSQL. Decimal
// columns travel as text in both directions to keep NUMERIC values exact.
type LedgerStore struct {
	pool  *Pool
	clock *domain.Clock
}

// NewLedgerStore creates a new LedgerStore. The clock defines the
// sale-day boundaries for ListPurchasesOnDay.
func NewLedgerStore(pool *Pool, clock *domain.Clock) *LedgerStore {
	return &LedgerStore{pool: pool, clock: clock}
}

// Compile-time interface check.
var _ storage.LedgerStore = (*LedgerStore)(nil)

// AppendPurchase adds a completed purchase. Returns ErrDuplicateKey if the ID exists.
func (s *LedgerStore) AppendPurchase(ctx context.Context, p *domain.Purchase) error {
	query := `
		INSERT INTO purchases (
			id, wallet_address, wallet_type, buyer_email,
			coin_amount, total_price_eur, payment_method,
			external_order_id, purchased_at, status
		) VALUES ($1, $2, $3, $4, $5::numeric, $6::numeric, $7, $8, $9, $10)
	`

	_, err := s.pool.Exec(ctx, query,
		p.ID,
		p.WalletAddress,
		p.WalletType,
		p.BuyerEmail,
		p.CoinAmount.String(),
		p.TotalPriceEur.String(),
		string(p.PaymentMethod),
		p.ExternalOrderID,
		p.Timestamp,
		p.Status,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert purchase: %w", err)
	}
	return nil
}

// ListPurchasesOnDay retrieves purchases whose timestamp falls on the given
// sale day, ordered by timestamp ASC. The day is resolved to a half-open
// timestamp range in the ledger's timezone.
func (s *LedgerStore) ListPurchasesOnDay(ctx context.Context, day string) ([]*domain.Purchase, error) {
	start, end, err := s.clock.BoundsOf(day)
	if err != nil {
		return nil, fmt.Errorf("resolve sale day %q: %w", day, err)
	}

	query := purchaseSelect + `
		WHERE purchased_at >= $1 AND purchased_at < $2
		ORDER BY purchased_at ASC, id ASC
	`

	rows, err := s.pool.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("get purchases by day: %w", err)
	}
	defer rows.Close()

	return scanPurchases(rows)
}

// ListPurchases retrieves the full ledger, ordered by timestamp ASC.
func (s *LedgerStore) ListPurchases(ctx context.Context) ([]*domain.Purchase, error) {
	query := purchaseSelect + `
		ORDER BY purchased_at ASC, id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get purchases: %w", err)
	}
	defer rows.Close()

	return scanPurchases(rows)
}

// ReadStats retrieves the running aggregate; zero stats before the first commit.
func (s *LedgerStore) ReadStats(ctx context.Context) (*domain.SaleStats, error) {
	query := `
		SELECT total_coins_sold::text, total_raised_eur::text,
		       total_purchase_count, last_updated
		FROM sale_stats
		WHERE id = 1
	`

	var (
		coins, raised string
		stats         domain.SaleStats
	)
	err := s.pool.QueryRow(ctx, query).Scan(&coins, &raised, &stats.TotalPurchaseCount, &stats.LastUpdated)
	if isNotFoundError(err) {
		return &domain.SaleStats{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read sale stats: %w", err)
	}

	if stats.TotalCoinsSold, err = decimal.NewFromString(coins); err != nil {
		return nil, fmt.Errorf("parse total coins sold: %w", err)
	}
	if stats.TotalRaisedEur, err = decimal.NewFromString(raised); err != nil {
		return nil, fmt.Errorf("parse total raised: %w", err)
	}
	return &stats, nil
}

// WriteStats replaces the running aggregate.
func (s *LedgerStore) WriteStats(ctx context.Context, stats *domain.SaleStats) error {
	if stats == nil {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO sale_stats (id, total_coins_sold, total_raised_eur, total_purchase_count, last_updated)
		VALUES (1, $1::numeric, $2::numeric, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			total_coins_sold = EXCLUDED.total_coins_sold,
			total_raised_eur = EXCLUDED.total_raised_eur,
			total_purchase_count = EXCLUDED.total_purchase_count,
			last_updated = EXCLUDED.last_updated
	`

	_, err := s.pool.Exec(ctx, query,
		stats.TotalCoinsSold.String(),
		stats.TotalRaisedEur.String(),
		stats.TotalPurchaseCount,
		stats.LastUpdated,
	)
	if err != nil {
		return fmt.Errorf("write sale stats: %w", err)
	}
	return nil
}

const purchaseSelect = `
	SELECT id, wallet_address, wallet_type, buyer_email,
	       coin_amount::text, total_price_eur::text, payment_method,
	       external_order_id, purchased_at, status
	FROM purchases
`

// scanPurchases scans multiple rows into a slice of Purchase.
func scanPurchases(rows pgx.Rows) ([]*domain.Purchase, error) {
	var purchases []*domain.Purchase

	for rows.Next() {
		var (
			p            domain.Purchase
			coins, total string
			method       string
			ts           time.Time
		)

		err := rows.Scan(
			&p.ID,
			&p.WalletAddress,
			&p.WalletType,
			&p.BuyerEmail,
			&coins,
			&total,
			&method,
			&p.ExternalOrderID,
			&ts,
			&p.Status,
		)
		if err != nil {
			return nil, fmt.Errorf("scan purchase row: %w", err)
		}

		if p.CoinAmount, err = decimal.NewFromString(coins); err != nil {
			return nil, fmt.Errorf("parse coin amount: %w", err)
		}
		if p.TotalPriceEur, err = decimal.NewFromString(total); err != nil {
			return nil, fmt.Errorf("parse total price: %w", err)
		}
		p.PaymentMethod = domain.PaymentMethod(method)
		p.Timestamp = ts.UTC()

		purchases = append(purchases, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate purchase rows: %w", err)
	}

	return purchases, nil
}
