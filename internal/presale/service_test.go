package presale

import (
	"bytes"
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"presale-backend/internal/domain"
	"presale-backend/internal/limits"
	"presale-backend/internal/payment"
	"presale-backend/internal/payment/stub"
	"presale-backend/internal/pricing"
	"presale-backend/internal/storage"
	"presale-backend/internal/storage/memory"
)

type testEnv struct {
	service *Service
	ledger  *memory.LedgerStore
	gateway *stub.Gateway
	logBuf  *bytes.Buffer
}

func newTestEnv(t *testing.T, cfg *domain.CampaignConfig, dailyCap string, nowFn func() time.Time) *testEnv {
	t.Helper()

	clock := domain.NewClockAt(time.UTC, nowFn)
	ledger := memory.NewLedgerStore(clock)
	engine := pricing.NewEngine(memory.NewConfigStore(cfg), ledger, memory.NewPriceCacheStore(), clock)
	gateway := stub.New()

	var logBuf bytes.Buffer
	service := New(Options{
		Ledger:  ledger,
		Pricing: engine,
		Guard:   limits.NewGuard(ledger, clock, decimal.RequireFromString(dailyCap)),
		Gateway: gateway,
		Clock:   clock,
		Logger:  log.New(&logBuf, "[presale] ", log.LstdFlags),
	})

	return &testEnv{service: service, ledger: ledger, gateway: gateway, logBuf: &logBuf}
}

func directRequest(coins string) DirectRequest {
	return DirectRequest{
		WalletAddress: validSolanaAddr,
		WalletType:    domain.WalletTypeSolana,
		BuyerEmail:    "buyer@example.com",
		CoinAmount:    decimal.RequireFromString(coins),
		PaymentMethod: domain.PaymentMethodOther,
	}
}

func fixedNow() time.Time {
	return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
}

func TestService_DirectPurchase(t *testing.T) {
	env := newTestEnv(t, validationConfig(), "500000", fixedNow)
	ctx := context.Background()

	p, err := env.service.Purchase(ctx, directRequest("1000"))
	if err != nil {
		t.Fatalf("Purchase failed: %v", err)
	}

	if !p.TotalPriceEur.Equal(decimal.RequireFromString("20.00")) {
		t.Errorf("TotalPriceEur = %s, want 20.00", p.TotalPriceEur)
	}
	if p.Status != domain.PurchaseStatusCompleted {
		t.Errorf("Status = %s, want COMPLETED", p.Status)
	}

	stats, err := env.ledger.ReadStats(ctx)
	if err != nil {
		t.Fatalf("ReadStats failed: %v", err)
	}
	if stats.TotalPurchaseCount != 1 {
		t.Errorf("TotalPurchaseCount = %d, want 1", stats.TotalPurchaseCount)
	}
	if !stats.TotalRaisedEur.Equal(p.TotalPriceEur) {
		t.Errorf("TotalRaisedEur = %s, want %s", stats.TotalRaisedEur, p.TotalPriceEur)
	}
}

func TestService_DirectPurchase_ValidationRejected(t *testing.T) {
	env := newTestEnv(t, validationConfig(), "500000", fixedNow)

	req := directRequest("100") // 100 * 0.02 = 2.00, below the 10 EUR minimum
	req.WalletAddress = ""

	_, err := env.service.Purchase(context.Background(), req)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(verr.Reasons) != 2 {
		t.Errorf("expected 2 reasons, got %d: %v", len(verr.Reasons), verr.Reasons)
	}

	all, _ := env.ledger.ListPurchases(context.Background())
	if len(all) != 0 {
		t.Errorf("rejected purchase reached the ledger: %d entries", len(all))
	}
}

func TestService_ConcurrentCommits_NoLostUpdates(t *testing.T) {
	env := newTestEnv(t, validationConfig(), "500000", fixedNow)
	ctx := context.Background()

	const n = 25
	var wg sync.WaitGroup
	errs := make(chan error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := env.service.Purchase(ctx, directRequest("1000")); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent Purchase failed: %v", err)
	}

	stats, err := env.ledger.ReadStats(ctx)
	if err != nil {
		t.Fatalf("ReadStats failed: %v", err)
	}
	wantRaised := decimal.RequireFromString("20.00").Mul(decimal.NewFromInt(n))
	if !stats.TotalRaisedEur.Equal(wantRaised) {
		t.Errorf("TotalRaisedEur = %s, want %s (lost update)", stats.TotalRaisedEur, wantRaised)
	}
	if stats.TotalPurchaseCount != n {
		t.Errorf("TotalPurchaseCount = %d, want %d", stats.TotalPurchaseCount, n)
	}

	all, _ := env.ledger.ListPurchases(ctx)
	if len(all) != n {
		t.Errorf("ledger has %d entries, want %d", len(all), n)
	}
}

func TestService_DailyLimitEnforcedAtCommit(t *testing.T) {
	env := newTestEnv(t, validationConfig(), "30", fixedNow)
	ctx := context.Background()

	if _, err := env.service.Purchase(ctx, directRequest("1000")); err != nil { // 20.00
		t.Fatalf("first purchase failed: %v", err)
	}

	_, err := env.service.Purchase(ctx, directRequest("1000")) // would be 40.00 total
	var lerr *LimitExceededError
	if !errors.As(err, &lerr) {
		t.Fatalf("expected LimitExceededError, got %v", err)
	}
	if !lerr.DailyTotal.Equal(decimal.RequireFromString("20.00")) {
		t.Errorf("DailyTotal = %s, want 20.00", lerr.DailyTotal)
	}
	if !lerr.Limit.Equal(decimal.RequireFromString("30")) {
		t.Errorf("Limit = %s, want 30", lerr.Limit)
	}
}

func TestService_GatewayPurchase(t *testing.T) {
	env := newTestEnv(t, validationConfig(), "500000", fixedNow)
	ctx := context.Background()

	handle, err := env.service.InitiateOrder(ctx, decimal.RequireFromString("1000"))
	if err != nil {
		t.Fatalf("InitiateOrder failed: %v", err)
	}
	if !handle.Quote.TotalPrice.Equal(decimal.RequireFromString("20.00")) {
		t.Errorf("quoted total = %s, want 20.00", handle.Quote.TotalPrice)
	}

	p, err := env.service.FinalizeOrder(ctx, handle.OrderID, WalletInfo{
		WalletAddress: validSolanaAddr,
		WalletType:    domain.WalletTypeSolana,
	})
	if err != nil {
		t.Fatalf("FinalizeOrder failed: %v", err)
	}
	if p.PaymentMethod != domain.PaymentMethodPayPal {
		t.Errorf("PaymentMethod = %s, want PAYPAL", p.PaymentMethod)
	}
	if p.ExternalOrderID != handle.OrderID {
		t.Errorf("ExternalOrderID = %s, want %s", p.ExternalOrderID, handle.OrderID)
	}
	if !p.CoinAmount.Equal(decimal.RequireFromString("1000")) {
		t.Errorf("CoinAmount = %s, want 1000", p.CoinAmount)
	}
}

func TestService_FinalizeUsesMetadataAmountNotClientAmount(t *testing.T) {
	env := newTestEnv(t, validationConfig(), "500000", fixedNow)
	ctx := context.Background()

	handle, err := env.service.InitiateOrder(ctx, decimal.RequireFromString("1000"))
	if err != nil {
		t.Fatalf("InitiateOrder failed: %v", err)
	}

	// The order's stored metadata is authoritative. Whatever amount the
	// client re-sends at capture time, the commit must use this value.
	env.gateway.SetMetadata(handle.OrderID, payment.Metadata{
		CoinAmount: decimal.RequireFromString("500"),
	})

	p, err := env.service.FinalizeOrder(ctx, handle.OrderID, WalletInfo{
		WalletAddress: validSolanaAddr,
		WalletType:    domain.WalletTypeSolana,
	})
	if err != nil {
		t.Fatalf("FinalizeOrder failed: %v", err)
	}
	if !p.CoinAmount.Equal(decimal.RequireFromString("500")) {
		t.Errorf("CoinAmount = %s, want the metadata value 500", p.CoinAmount)
	}
	if !p.TotalPriceEur.Equal(decimal.RequireFromString("10.00")) {
		t.Errorf("TotalPriceEur = %s, want re-priced 10.00", p.TotalPriceEur)
	}
}

func TestService_FinalizeRejectsNonSuccessStatus(t *testing.T) {
	env := newTestEnv(t, validationConfig(), "500000", fixedNow)
	ctx := context.Background()

	handle, err := env.service.InitiateOrder(ctx, decimal.RequireFromString("1000"))
	if err != nil {
		t.Fatalf("InitiateOrder failed: %v", err)
	}
	env.gateway.CaptureStatus = "PENDING"

	_, err = env.service.FinalizeOrder(ctx, handle.OrderID, WalletInfo{
		WalletAddress: validSolanaAddr,
		WalletType:    domain.WalletTypeSolana,
	})
	var gerr *GatewayError
	if !errors.As(err, &gerr) {
		t.Fatalf("expected GatewayError, got %v", err)
	}

	all, _ := env.ledger.ListPurchases(ctx)
	if len(all) != 0 {
		t.Errorf("unconfirmed capture reached the ledger: %d entries", len(all))
	}
}

func TestService_GatewayFailurePropagates(t *testing.T) {
	env := newTestEnv(t, validationConfig(), "500000", fixedNow)
	env.gateway.CreateErr = errors.New("upstream 503")

	_, err := env.service.InitiateOrder(context.Background(), decimal.RequireFromString("1000"))
	var gerr *GatewayError
	if !errors.As(err, &gerr) {
		t.Fatalf("expected GatewayError, got %v", err)
	}
}

// failingLedger wraps a LedgerStore and fails AppendPurchase.
type failingLedger struct {
	storage.LedgerStore
}

func (f *failingLedger) AppendPurchase(context.Context, *domain.Purchase) error {
	return errors.New("disk full")
}

func TestService_ReconciliationAlertOnCommitFailureAfterCapture(t *testing.T) {
	env := newTestEnv(t, validationConfig(), "500000", fixedNow)
	ctx := context.Background()

	handle, err := env.service.InitiateOrder(ctx, decimal.RequireFromString("1000"))
	if err != nil {
		t.Fatalf("InitiateOrder failed: %v", err)
	}

	env.service.ledger = &failingLedger{LedgerStore: env.ledger}

	_, err = env.service.FinalizeOrder(ctx, handle.OrderID, WalletInfo{
		WalletAddress: validSolanaAddr,
		WalletType:    domain.WalletTypeSolana,
	})
	var serr *StorageError
	if !errors.As(err, &serr) {
		t.Fatalf("expected StorageError, got %v", err)
	}

	if !strings.Contains(env.logBuf.String(), "RECONCILIATION ALERT") {
		t.Error("expected a reconciliation alert in the log")
	}
}

func TestService_SaleEndedRejected(t *testing.T) {
	cfg := validationConfig()
	cfg.SaleEnd = time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC) // before fixedNow
	env := newTestEnv(t, cfg, "500000", fixedNow)

	_, err := env.service.Purchase(context.Background(), directRequest("1000"))
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if !strings.Contains(verr.Error(), "sale ended") {
		t.Errorf("expected sale-ended reason, got %v", verr.Reasons)
	}
}
