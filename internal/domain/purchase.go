package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod identifies how a purchase was paid.
type PaymentMethod string

// Payment method constants
const (
	PaymentMethodPayPal PaymentMethod = "PAYPAL"
	PaymentMethodOther  PaymentMethod = "OTHER"
)

// Valid reports whether m is a known payment method.
func (m PaymentMethod) Valid() bool {
	return m == PaymentMethodPayPal || m == PaymentMethodOther
}

// Wallet type constants. Solana and Ethereum addresses get shape checks
// during validation; any other type only requires a non-empty address.
const (
	WalletTypeSolana   = "SOL"
	WalletTypeEthereum = "ETH"
	WalletTypeOther    = "OTHER"
)

// PurchaseStatus is the terminal state of a ledger entry.
// Only completed purchases are ever written to the ledger.
type PurchaseStatus string

const PurchaseStatusCompleted PurchaseStatus = "COMPLETED"

// Purchase is a committed presale purchase. Created once by the
// orchestrator, appended to the ledger, never edited or deleted.
type Purchase struct {
	ID              uuid.UUID
	WalletAddress   string
	WalletType      string
	BuyerEmail      string // optional
	CoinAmount      decimal.Decimal
	TotalPriceEur   decimal.Decimal
	PaymentMethod   PaymentMethod
	ExternalOrderID string // gateway order id; empty for non-gateway rails
	Timestamp       time.Time
	Status          PurchaseStatus
}
