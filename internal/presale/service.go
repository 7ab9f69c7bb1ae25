// Package presale implements the purchase orchestrator: the only
// component allowed to mutate the ledger. It sequences validation →
// pricing → limit check → payment confirmation → ledger commit.
package presale

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"presale-backend/internal/domain"
	"presale-backend/internal/limits"
	"presale-backend/internal/observability"
	"presale-backend/internal/payment"
	"presale-backend/internal/pricing"
	"presale-backend/internal/storage"
)

// Service is the purchase orchestrator.
type Service struct {
	ledger  storage.LedgerStore
	pricing *pricing.Engine
	guard   *limits.Guard
	gateway payment.Gateway
	clock   *domain.Clock
	logger  *log.Logger

	// onCommit observes committed purchases (ticker, analytics mirror).
	// Called outside the commit lock.
	onCommit func(*domain.Purchase, *domain.SaleStats)

	// commitMu serializes the limit check + ledger append + stats
	// read-modify-write. Holding one lock across all three is what keeps
	// the stats equal to the ledger fold and the daily cap never jointly
	// exceeded. Gateway calls are never made under this lock.
	commitMu sync.Mutex
}

// Options for creating Service.
type Options struct {
	Ledger   storage.LedgerStore
	Pricing  *pricing.Engine
	Guard    *limits.Guard
	Gateway  payment.Gateway
	Clock    *domain.Clock
	Logger   *log.Logger
	OnCommit func(*domain.Purchase, *domain.SaleStats)
}

// New creates a new Service.
func New(opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Service{
		ledger:   opts.Ledger,
		pricing:  opts.Pricing,
		guard:    opts.Guard,
		gateway:  opts.Gateway,
		clock:    opts.Clock,
		logger:   logger,
		onCommit: opts.OnCommit,
	}
}

// DirectRequest is a purchase paid outside the gateway flow: the caller
// asserts payment happened out-of-band (alternative rails), optionally
// referencing a pre-obtained external order id.
type DirectRequest struct {
	WalletAddress   string
	WalletType      string
	BuyerEmail      string
	CoinAmount      decimal.Decimal
	PaymentMethod   domain.PaymentMethod
	ExternalOrderID string
}

// WalletInfo identifies the buyer at gateway-capture time.
type WalletInfo struct {
	WalletAddress string
	WalletType    string
	BuyerEmail    string
}

// OrderHandle is the result of the initiate phase of a gateway purchase.
type OrderHandle struct {
	OrderID string
	Quote   pricing.Quote
}

// Purchase executes the direct protocol: validate, price, limit-check
// and commit, with no payment step.
func (s *Service) Purchase(ctx context.Context, req DirectRequest) (*domain.Purchase, error) {
	cfg, err := s.pricing.Config(ctx)
	if err != nil {
		return nil, &StorageError{Op: "load campaign config", Err: err}
	}

	quote, err := s.pricing.QuoteFor(ctx, req.CoinAmount)
	if err != nil {
		return nil, &StorageError{Op: "price purchase", Err: err}
	}

	now := s.clock.Now()
	in := purchaseInput{
		WalletAddress: req.WalletAddress,
		WalletType:    req.WalletType,
		CoinAmount:    quote.CoinAmount,
		TotalPrice:    quote.TotalPrice,
	}
	if err := validatePurchase(cfg, in, now); err != nil {
		observability.RecordPurchaseRejected("validation")
		return nil, err
	}

	method := req.PaymentMethod
	if !method.Valid() {
		method = domain.PaymentMethodOther
	}

	p := &domain.Purchase{
		ID:              uuid.New(),
		WalletAddress:   req.WalletAddress,
		WalletType:      req.WalletType,
		BuyerEmail:      req.BuyerEmail,
		CoinAmount:      quote.CoinAmount,
		TotalPriceEur:   quote.TotalPrice,
		PaymentMethod:   method,
		ExternalOrderID: req.ExternalOrderID,
		Timestamp:       now,
		Status:          domain.PurchaseStatusCompleted,
	}

	return s.commitAndNotify(ctx, p)
}

// InitiateOrder starts a gateway-mediated purchase: price the amount
// and create a gateway order carrying the coin amount as metadata. The
// gateway call happens before any lock is taken.
func (s *Service) InitiateOrder(ctx context.Context, coinAmount decimal.Decimal) (*OrderHandle, error) {
	cfg, err := s.pricing.Config(ctx)
	if err != nil {
		return nil, &StorageError{Op: "load campaign config", Err: err}
	}

	quote, err := s.pricing.QuoteFor(ctx, coinAmount)
	if err != nil {
		return nil, &StorageError{Op: "price order", Err: err}
	}

	if reasons := validateAmounts(cfg, quote.CoinAmount, quote.TotalPrice); len(reasons) > 0 {
		observability.RecordPurchaseRejected("validation")
		return nil, &ValidationError{Reasons: reasons}
	}

	start := time.Now()
	order, err := s.gateway.CreateOrder(ctx, quote.TotalPrice, quote.Currency, payment.Metadata{CoinAmount: quote.CoinAmount})
	observability.RecordGatewayCall("create_order", time.Since(start).Seconds(), err)
	if err != nil {
		observability.RecordPurchaseRejected("gateway")
		return nil, &GatewayError{Op: "create order", Err: err}
	}

	s.logger.Printf("order %s created: %s coins for %s %s", order.OrderID, quote.CoinAmount, quote.TotalPrice, quote.Currency)
	return &OrderHandle{OrderID: order.OrderID, Quote: *quote}, nil
}

// FinalizeOrder completes a gateway-mediated purchase. The coin amount
// is recovered from the captured order's metadata — never from the
// client, which may have changed it between create and capture — then
// pricing and limits are re-run before commit.
func (s *Service) FinalizeOrder(ctx context.Context, orderID string, w WalletInfo) (*domain.Purchase, error) {
	start := time.Now()
	result, err := s.gateway.CaptureOrder(ctx, orderID)
	observability.RecordGatewayCall("capture_order", time.Since(start).Seconds(), err)
	if err != nil {
		observability.RecordPurchaseRejected("gateway")
		return nil, &GatewayError{Op: "capture order " + orderID, Err: err}
	}
	if result.Status != s.gateway.SuccessStatus() {
		observability.RecordPurchaseRejected("gateway")
		return nil, &GatewayError{Op: "capture order " + orderID,
			Err: errCaptureStatus(result.Status, s.gateway.SuccessStatus())}
	}

	coinAmount := result.Metadata.CoinAmount
	if coinAmount.Sign() <= 0 {
		s.reconciliationAlert(orderID, coinAmount, errNoCoinMetadata)
		return nil, &GatewayError{Op: "capture order " + orderID, Err: errNoCoinMetadata}
	}

	cfg, err := s.pricing.Config(ctx)
	if err != nil {
		s.reconciliationAlert(orderID, coinAmount, err)
		return nil, &StorageError{Op: "load campaign config", Err: err}
	}

	quote, err := s.pricing.QuoteFor(ctx, coinAmount)
	if err != nil {
		s.reconciliationAlert(orderID, coinAmount, err)
		return nil, &StorageError{Op: "price captured order", Err: err}
	}

	now := s.clock.Now()
	in := purchaseInput{
		WalletAddress: w.WalletAddress,
		WalletType:    w.WalletType,
		CoinAmount:    quote.CoinAmount,
		TotalPrice:    quote.TotalPrice,
	}
	if err := validatePurchase(cfg, in, now); err != nil {
		observability.RecordPurchaseRejected("validation")
		s.reconciliationAlert(orderID, coinAmount, err)
		return nil, err
	}

	p := &domain.Purchase{
		ID:              uuid.New(),
		WalletAddress:   w.WalletAddress,
		WalletType:      w.WalletType,
		BuyerEmail:      w.BuyerEmail,
		CoinAmount:      quote.CoinAmount,
		TotalPriceEur:   quote.TotalPrice,
		PaymentMethod:   domain.PaymentMethodPayPal,
		ExternalOrderID: orderID,
		Timestamp:       now,
		Status:          domain.PurchaseStatusCompleted,
	}

	committed, err := s.commitAndNotify(ctx, p)
	if err != nil {
		s.reconciliationAlert(orderID, coinAmount, err)
		return nil, err
	}
	return committed, nil
}

// commitAndNotify runs the serialized commit section and then fires
// the commit observer outside the lock.
func (s *Service) commitAndNotify(ctx context.Context, p *domain.Purchase) (*domain.Purchase, error) {
	stats, err := s.commit(ctx, p)
	if err != nil {
		return nil, err
	}

	observability.RecordPurchaseCommitted(string(p.PaymentMethod))
	observability.UpdateSaleTotals(stats.TotalRaisedEur.InexactFloat64(),
		stats.TotalCoinsSold.InexactFloat64(), stats.TotalPurchaseCount)
	s.logger.Printf("purchase %s committed: %s coins for %s (wallet %s)",
		p.ID, p.CoinAmount, p.TotalPriceEur, p.WalletAddress)

	if s.onCommit != nil {
		s.onCommit(p, stats)
	}
	return p, nil
}

// commit is the single atomic critical section per purchase: limit
// scan, ledger append and stats read-modify-write under one lock, so no
// observer ever sees stats without the matching ledger entry and no
// concurrent commit loses an update.
func (s *Service) commit(ctx context.Context, p *domain.Purchase) (*domain.SaleStats, error) {
	s.commitMu.Lock()
	defer s.commitMu.Unlock()

	res, err := s.guard.Check(ctx, p.TotalPriceEur, p.Timestamp)
	if err != nil {
		return nil, &StorageError{Op: "daily limit check", Err: err}
	}
	if !res.Allowed {
		observability.RecordPurchaseRejected("limit")
		return nil, &LimitExceededError{DailyTotal: res.DailyTotal, Limit: res.Limit}
	}

	if err := s.ledger.AppendPurchase(ctx, p); err != nil {
		return nil, &StorageError{Op: "append purchase", Err: err}
	}

	stats, err := s.ledger.ReadStats(ctx)
	if err != nil {
		s.logger.Printf("ERROR: stats read failed after ledger append of %s; aggregate may lag the ledger: %v", p.ID, err)
		return nil, &StorageError{Op: "read stats", Err: err}
	}
	stats.Apply(p)
	if err := s.ledger.WriteStats(ctx, stats); err != nil {
		s.logger.Printf("ERROR: stats write failed after ledger append of %s; aggregate may lag the ledger: %v", p.ID, err)
		return nil, &StorageError{Op: "write stats", Err: err}
	}

	return stats, nil
}

// reconciliationAlert flags money captured without a matching ledger
// entry. Blind retry risks double-crediting, so this is logged for
// manual reconciliation instead.
func (s *Service) reconciliationAlert(orderID string, coinAmount decimal.Decimal, cause error) {
	observability.RecordReconciliationAlert()
	s.logger.Printf("RECONCILIATION ALERT: payment captured but purchase not recorded: order=%s coins=%s: %v",
		orderID, coinAmount, cause)
}
