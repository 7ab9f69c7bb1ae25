// Package main provides the presale storefront backend: bonding-curve
// pricing, daily purchase limits, gateway-mediated and direct purchase
// protocols, a live websocket ticker and Prometheus metrics, over
// in-memory, flat-file or PostgreSQL storage.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"presale-backend/internal/domain"
	"presale-backend/internal/limits"
	"presale-backend/internal/observability"
	"presale-backend/internal/payment"
	"presale-backend/internal/payment/stub"
	"presale-backend/internal/presale"
	"presale-backend/internal/pricing"
	"presale-backend/internal/storage"
	chstore "presale-backend/internal/storage/clickhouse"
	filestore "presale-backend/internal/storage/file"
	"presale-backend/internal/storage/memory"
	"presale-backend/internal/storage/migrations"
	pgstore "presale-backend/internal/storage/postgres"
	"presale-backend/internal/ticker"
)

// Server holds all components of the presale service.
type Server struct {
	service     *presale.Service
	engine      *pricing.Engine
	ledger      storage.LedgerStore
	broadcaster *ticker.Broadcaster
	clock       *domain.Clock
	logger      *log.Logger

	storageBackend string
	gatewayName    string

	mu        sync.Mutex
	startedAt time.Time
	committed int
}

// allStores holds the storage implementations behind the service.
type allStores struct {
	configStore storage.ConfigStore
	ledgerStore storage.LedgerStore
	priceCache  storage.PriceCacheStore

	// configPutter is the operator write path of the config store;
	// used once at startup to seed an empty campaign.
	configPutter interface {
		Put(ctx context.Context, cfg *domain.CampaignConfig) error
	}

	// mirror is non-nil when a ClickHouse DSN was configured.
	mirror *chstore.PurchaseEventStore
}

func main() {
	// Load .env file if exists
	loadEnvFile()

	// Parse flags (env vars as defaults)
	addr := flag.String("addr", envOr("PRESALE_ADDR", ":8080"), "HTTP listen address")
	storageBackend := flag.String("storage", envOr("PRESALE_STORAGE", "memory"), "Storage backend: memory, file or postgres")
	dataDir := flag.String("data-dir", envOr("PRESALE_DATA_DIR", "data"), "Data directory for file storage")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string for the analytics mirror (optional)")
	timezone := flag.String("timezone", envOr("PRESALE_TIMEZONE", "UTC"), "IANA timezone defining sale-day boundaries")
	dailyCap := flag.String("daily-cap-eur", envOr("PRESALE_DAILY_CAP_EUR", ""), "Daily purchase cap in EUR (empty for default)")

	gatewayName := flag.String("gateway", envOr("PRESALE_GATEWAY", "stub"), "Payment gateway: paypal or stub")
	paypalEnv := flag.String("paypal-env", envOr("PAYPAL_ENV", "sandbox"), "PayPal environment: sandbox or live")
	paypalClientID := flag.String("paypal-client-id", os.Getenv("PAYPAL_CLIENT_ID"), "PayPal REST client id")
	paypalSecret := flag.String("paypal-client-secret", os.Getenv("PAYPAL_CLIENT_SECRET"), "PayPal REST client secret")

	// Campaign seed, applied only when the config store is empty.
	startPrice := flag.String("start-price", envOr("PRESALE_START_PRICE", "0.02"), "Curve price at zero raised")
	endPrice := flag.String("end-price", envOr("PRESALE_END_PRICE", "0.10"), "Curve price at the funding goal")
	fundingGoal := flag.String("funding-goal-eur", envOr("PRESALE_FUNDING_GOAL_EUR", "5500000"), "Funding goal in EUR")
	minPurchase := flag.String("min-purchase-eur", envOr("PRESALE_MIN_PURCHASE_EUR", "10"), "Minimum purchase total in EUR")
	maxPurchaseCoins := flag.String("max-purchase-coins", envOr("PRESALE_MAX_PURCHASE_COINS", "0"), "Maximum coins per purchase (0 for no cap)")
	saleEnd := flag.String("sale-end", os.Getenv("PRESALE_SALE_END"), "Sale end in RFC3339 (empty for default)")
	currency := flag.String("currency", envOr("PRESALE_CURRENCY", "EUR"), "Display currency code")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	loc, err := time.LoadLocation(*timezone)
	if err != nil {
		logger.Fatalf("Invalid --timezone %q: %v", *timezone, err)
	}
	clock := domain.NewClock(loc)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create stores
	stores, cleanup, err := createStores(ctx, *storageBackend, *dataDir, *postgresDSN, *clickhouseDSN, clock)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	// Seed the campaign config on first boot.
	seed, err := campaignFromFlags(*startPrice, *endPrice, *fundingGoal, *minPurchase, *maxPurchaseCoins, *saleEnd, *currency)
	if err != nil {
		logger.Fatalf("Invalid campaign flags: %v", err)
	}
	if err := seedCampaign(ctx, stores, seed, logger); err != nil {
		logger.Fatalf("Failed to seed campaign config: %v", err)
	}

	// Payment gateway
	gateway, err := createGateway(*gatewayName, *paypalEnv, *paypalClientID, *paypalSecret)
	if err != nil {
		logger.Fatalf("Failed to create gateway: %v", err)
	}

	engine := pricing.NewEngine(stores.configStore, stores.ledgerStore, stores.priceCache, clock)

	var capEur decimal.Decimal
	if *dailyCap != "" {
		if capEur, err = decimal.NewFromString(*dailyCap); err != nil {
			logger.Fatalf("Invalid --daily-cap-eur %q: %v", *dailyCap, err)
		}
	}
	guard := limits.NewGuard(stores.ledgerStore, clock, capEur)

	broadcaster := ticker.NewBroadcaster(log.New(os.Stdout, "[ticker] ", log.LstdFlags))

	server := &Server{
		engine:         engine,
		ledger:         stores.ledgerStore,
		broadcaster:    broadcaster,
		clock:          clock,
		logger:         logger,
		storageBackend: *storageBackend,
		gatewayName:    *gatewayName,
		startedAt:      time.Now(),
	}

	server.service = presale.New(presale.Options{
		Ledger:   stores.ledgerStore,
		Pricing:  engine,
		Guard:    guard,
		Gateway:  gateway,
		Clock:    clock,
		Logger:   log.New(os.Stdout, "[presale] ", log.LstdFlags),
		OnCommit: server.onCommit(ctx, stores.mirror, *currency),
	})

	httpServer := &http.Server{
		Addr:              *addr,
		Handler:           server.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Printf("Shutdown error: %v", err)
		}
		broadcaster.Close()
	}()

	logger.Printf("Storage: %s, gateway: %s, timezone: %s", *storageBackend, *gatewayName, *timezone)
	logger.Printf("Listening on %s", *addr)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("HTTP server error: %v", err)
	}

	logger.Println("Shutdown complete")
}

// createStores creates the stores for the selected backend and runs
// migrations where the backend has them.
func createStores(ctx context.Context, backend, dataDir, postgresDSN, clickhouseDSN string, clock *domain.Clock) (*allStores, func(), error) {
	stores := &allStores{}
	cleanup := func() {}

	switch backend {
	case "memory":
		configStore := memory.NewConfigStore(nil)
		stores.configStore = configStore
		stores.configPutter = configStore
		stores.ledgerStore = memory.NewLedgerStore(clock)
		stores.priceCache = memory.NewPriceCacheStore()

	case "file":
		configStore, err := filestore.NewConfigStore(dataDir)
		if err != nil {
			return nil, nil, err
		}
		ledgerStore, err := filestore.NewLedgerStore(dataDir, clock)
		if err != nil {
			return nil, nil, err
		}
		priceCache, err := filestore.NewPriceCacheStore(dataDir)
		if err != nil {
			return nil, nil, err
		}
		stores.configStore = configStore
		stores.configPutter = configStore
		stores.ledgerStore = ledgerStore
		stores.priceCache = priceCache
		cleanup = func() { ledgerStore.Close() }

	case "postgres":
		if postgresDSN == "" {
			return nil, nil, fmt.Errorf("--postgres-dsn is required with --storage=postgres")
		}
		pool, err := pgstore.NewPool(ctx, postgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to postgres: %w", err)
		}
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("run postgres migrations: %w", err)
		}
		configStore := pgstore.NewConfigStore(pool)
		stores.configStore = configStore
		stores.configPutter = configStore
		stores.ledgerStore = pgstore.NewLedgerStore(pool, clock)
		stores.priceCache = pgstore.NewPriceCacheStore(pool)
		cleanup = func() { pool.Close() }

	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", backend)
	}

	// Optional analytics mirror, independent of the primary backend.
	if clickhouseDSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, clickhouseDSN)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("prepare clickhouse: %w", err)
		}
		stores.mirror = chstore.NewPurchaseEventStore(conn, clock)
		prev := cleanup
		cleanup = func() {
			conn.Close()
			prev()
		}
	}

	return stores, cleanup, nil
}

// campaignFromFlags builds the first-boot campaign config.
func campaignFromFlags(start, end, goal, min, maxCoins, saleEnd, currency string) (*domain.CampaignConfig, error) {
	cfg := &domain.CampaignConfig{Currency: currency}

	fields := []struct {
		dst  *decimal.Decimal
		src  string
		name string
	}{
		{&cfg.StartPrice, start, "start-price"},
		{&cfg.EndPrice, end, "end-price"},
		{&cfg.FundingGoalEur, goal, "funding-goal-eur"},
		{&cfg.MinPurchaseEur, min, "min-purchase-eur"},
		{&cfg.MaxPurchaseCoins, maxCoins, "max-purchase-coins"},
	}
	var err error
	for _, f := range fields {
		if *f.dst, err = decimal.NewFromString(f.src); err != nil {
			return nil, fmt.Errorf("--%s %q: %w", f.name, f.src, err)
		}
	}

	if saleEnd != "" {
		if cfg.SaleEnd, err = time.Parse(time.RFC3339, saleEnd); err != nil {
			return nil, fmt.Errorf("--sale-end %q: %w", saleEnd, err)
		}
	}

	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// seedCampaign writes the flag-derived campaign config when the store
// has none. An already-configured campaign always wins over flags.
func seedCampaign(ctx context.Context, stores *allStores, seed *domain.CampaignConfig, logger *log.Logger) error {
	_, err := stores.configStore.Get(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return err
	}

	logger.Printf("No campaign configured, seeding from flags (goal %s, curve %s..%s)",
		seed.FundingGoalEur, seed.StartPrice, seed.EndPrice)
	return stores.configPutter.Put(ctx, seed)
}

// createGateway builds the configured payment gateway.
func createGateway(name, paypalEnv, clientID, secret string) (payment.Gateway, error) {
	switch name {
	case "stub":
		return stub.New(), nil
	case "paypal":
		if clientID == "" || secret == "" {
			return nil, fmt.Errorf("--paypal-client-id and --paypal-client-secret are required with --gateway=paypal")
		}
		var opts []payment.PayPalOption
		switch paypalEnv {
		case "sandbox":
			opts = append(opts, payment.WithBaseURL(payment.PayPalSandboxURL))
		case "live":
			// default base URL
		default:
			return nil, fmt.Errorf("unknown --paypal-env %q", paypalEnv)
		}
		return payment.NewPayPalClient(clientID, secret, opts...), nil
	default:
		return nil, fmt.Errorf("unknown gateway %q", name)
	}
}

// onCommit returns the commit observer: ticker frame, metrics gauge and
// the optional ClickHouse mirror. Runs outside the commit lock.
func (s *Server) onCommit(ctx context.Context, mirror *chstore.PurchaseEventStore, currency string) func(*domain.Purchase, *domain.SaleStats) {
	return func(p *domain.Purchase, stats *domain.SaleStats) {
		s.mu.Lock()
		s.committed++
		s.mu.Unlock()

		price, err := s.engine.CurrentUnitPrice(ctx)
		if err != nil {
			s.logger.Printf("ticker price lookup failed: %v", err)
		} else {
			observability.UpdateCurrentPrice(price.InexactFloat64())
		}
		s.broadcaster.Publish(price, stats, currency)

		if mirror != nil {
			go func() {
				mirrorCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := mirror.Insert(mirrorCtx, p); err != nil {
					s.logger.Printf("clickhouse mirror insert failed for %s: %v", p.ID, err)
				}
			}()
		}
	}
}

// envOr returns the environment value or a fallback.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// loadEnvFile loads environment variables from .env file if it exists.
func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return // File doesn't exist, use system env vars
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Don't override existing env vars
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}

// --- HTTP API ---

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/purchase", s.handleDirectPurchase)
	mux.HandleFunc("POST /api/order", s.handleCreateOrder)
	mux.HandleFunc("POST /api/order/{id}/capture", s.handleCaptureOrder)
	mux.HandleFunc("GET /api/price", s.handlePrice)
	mux.HandleFunc("GET /api/stats", s.handleStats)

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("GET /status", s.handleStatus)
	mux.Handle("GET /metrics", observability.Handler())
	mux.HandleFunc("GET /ws", s.broadcaster.Handler())

	return mux
}

// purchaseRequest is the body of POST /api/purchase.
type purchaseRequest struct {
	WalletAddress   string `json:"wallet_address"`
	WalletType      string `json:"wallet_type"`
	BuyerEmail      string `json:"buyer_email"`
	CoinAmount      string `json:"coin_amount"`
	PaymentMethod   string `json:"payment_method"`
	ExternalOrderID string `json:"external_order_id"`
}

// purchaseResponse mirrors a committed ledger entry.
type purchaseResponse struct {
	ID              string `json:"id"`
	WalletAddress   string `json:"wallet_address"`
	WalletType      string `json:"wallet_type"`
	CoinAmount      string `json:"coin_amount"`
	TotalPriceEur   string `json:"total_price_eur"`
	PaymentMethod   string `json:"payment_method"`
	ExternalOrderID string `json:"external_order_id,omitempty"`
	Timestamp       string `json:"timestamp"`
	Status          string `json:"status"`
}

func toPurchaseResponse(p *domain.Purchase) purchaseResponse {
	return purchaseResponse{
		ID:              p.ID.String(),
		WalletAddress:   p.WalletAddress,
		WalletType:      p.WalletType,
		CoinAmount:      p.CoinAmount.String(),
		TotalPriceEur:   p.TotalPriceEur.StringFixed(pricing.CurrencyScale),
		PaymentMethod:   string(p.PaymentMethod),
		ExternalOrderID: p.ExternalOrderID,
		Timestamp:       p.Timestamp.UTC().Format(time.RFC3339),
		Status:          string(p.Status),
	}
}

func (s *Server) handleDirectPurchase(w http.ResponseWriter, r *http.Request) {
	var req purchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body", nil)
		return
	}

	coins, err := decimal.NewFromString(req.CoinAmount)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "coin_amount must be a decimal number", nil)
		return
	}

	p, err := s.service.Purchase(r.Context(), presale.DirectRequest{
		WalletAddress:   req.WalletAddress,
		WalletType:      req.WalletType,
		BuyerEmail:      req.BuyerEmail,
		CoinAmount:      coins,
		PaymentMethod:   domain.PaymentMethod(req.PaymentMethod),
		ExternalOrderID: req.ExternalOrderID,
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toPurchaseResponse(p))
}

// orderRequest is the body of POST /api/order.
type orderRequest struct {
	CoinAmount string `json:"coin_amount"`
}

type orderResponse struct {
	OrderID    string `json:"order_id"`
	CoinAmount string `json:"coin_amount"`
	UnitPrice  string `json:"unit_price"`
	TotalPrice string `json:"total_price"`
	Currency   string `json:"currency"`
}

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body", nil)
		return
	}

	coins, err := decimal.NewFromString(req.CoinAmount)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "coin_amount must be a decimal number", nil)
		return
	}

	handle, err := s.service.InitiateOrder(r.Context(), coins)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, orderResponse{
		OrderID:    handle.OrderID,
		CoinAmount: handle.Quote.CoinAmount.String(),
		UnitPrice:  handle.Quote.UnitPrice.String(),
		TotalPrice: handle.Quote.TotalPrice.StringFixed(pricing.CurrencyScale),
		Currency:   handle.Quote.Currency,
	})
}

// captureRequest is the body of POST /api/order/{id}/capture.
type captureRequest struct {
	WalletAddress string `json:"wallet_address"`
	WalletType    string `json:"wallet_type"`
	BuyerEmail    string `json:"buyer_email"`
}

func (s *Server) handleCaptureOrder(w http.ResponseWriter, r *http.Request) {
	orderID := r.PathValue("id")
	if orderID == "" {
		writeJSONError(w, http.StatusBadRequest, "order id is required", nil)
		return
	}

	var req captureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body", nil)
		return
	}

	p, err := s.service.FinalizeOrder(r.Context(), orderID, presale.WalletInfo{
		WalletAddress: req.WalletAddress,
		WalletType:    req.WalletType,
		BuyerEmail:    req.BuyerEmail,
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toPurchaseResponse(p))
}

type priceResponse struct {
	SaleDay   string `json:"sale_day"`
	UnitPrice string `json:"unit_price"`
	Currency  string `json:"currency"`
}

func (s *Server) handlePrice(w http.ResponseWriter, r *http.Request) {
	price, err := s.engine.CurrentUnitPrice(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	cfg, err := s.engine.Config(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, priceResponse{
		SaleDay:   s.clock.Today(),
		UnitPrice: price.String(),
		Currency:  cfg.Currency,
	})
}

type statsResponse struct {
	TotalCoinsSold     string `json:"total_coins_sold"`
	TotalRaisedEur     string `json:"total_raised_eur"`
	TotalPurchaseCount int64  `json:"total_purchase_count"`
	LastUpdated        string `json:"last_updated,omitempty"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.ledger.ReadStats(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	resp := statsResponse{
		TotalCoinsSold:     stats.TotalCoinsSold.String(),
		TotalRaisedEur:     stats.TotalRaisedEur.StringFixed(pricing.CurrencyScale),
		TotalPurchaseCount: stats.TotalPurchaseCount,
	}
	if !stats.LastUpdated.IsZero() {
		resp.LastUpdated = stats.LastUpdated.UTC().Format(time.RFC3339)
	}
	writeJSON(w, http.StatusOK, resp)
}

// StatusResponse is the JSON response for /status endpoint.
type StatusResponse struct {
	Status        string `json:"status"`
	Uptime        string `json:"uptime"`
	Storage       string `json:"storage"`
	Gateway       string `json:"gateway"`
	SaleDay       string `json:"sale_day"`
	Committed     int    `json:"purchases_committed"`
	TickerClients int    `json:"ticker_clients"`
}

// handleStatus returns server status as JSON.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	resp := StatusResponse{
		Status:        "running",
		Uptime:        time.Since(s.startedAt).String(),
		Storage:       s.storageBackend,
		Gateway:       s.gatewayName,
		SaleDay:       s.clock.Today(),
		Committed:     s.committed,
		TickerClients: s.broadcaster.ClientCount(),
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, resp)
}

// writeServiceError maps service errors onto HTTP status codes:
// rejected input 400, upstream gateway trouble 502, storage 500.
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	var verr *presale.ValidationError
	if errors.As(err, &verr) {
		writeJSONError(w, http.StatusBadRequest, "purchase rejected", verr.Reasons)
		return
	}

	var lerr *presale.LimitExceededError
	if errors.As(err, &lerr) {
		writeJSONError(w, http.StatusBadRequest, lerr.Error(), nil)
		return
	}

	var gerr *presale.GatewayError
	if errors.As(err, &gerr) {
		s.logger.Printf("gateway error: %v", gerr)
		writeJSONError(w, http.StatusBadGateway, "payment gateway error", nil)
		return
	}

	s.logger.Printf("internal error: %v", err)
	writeJSONError(w, http.StatusInternalServerError, "internal error", nil)
}

type errorResponse struct {
	Error   string   `json:"error"`
	Reasons []string `json:"reasons,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, msg string, reasons []string) {
	writeJSON(w, status, errorResponse{Error: msg, Reasons: reasons})
}
