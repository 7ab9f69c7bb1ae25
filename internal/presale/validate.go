package presale

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
	"github.com/shopspring/decimal"

	"presale-backend/internal/domain"
)

// purchaseInput is the subset of a purchase attempt the validation
// rules look at, shared by both entry protocols.
type purchaseInput struct {
	WalletAddress string
	WalletType    string
	CoinAmount    decimal.Decimal
	TotalPrice    decimal.Decimal
}

// validatePurchase applies every pre-commit rule and collects all
// violations. Returns nil when the purchase is admissible.
func validatePurchase(cfg *domain.CampaignConfig, in purchaseInput, now time.Time) error {
	var reasons []string

	reasons = append(reasons, validateWallet(in.WalletAddress, in.WalletType)...)
	reasons = append(reasons, validateAmounts(cfg, in.CoinAmount, in.TotalPrice)...)

	if now.After(cfg.SaleEnd) {
		reasons = append(reasons, fmt.Sprintf("sale ended on %s", cfg.SaleEnd.Format(time.RFC3339)))
	}

	if len(reasons) > 0 {
		return &ValidationError{Reasons: reasons}
	}
	return nil
}

// validateAmounts applies the coin-amount and total-price rules alone,
// for the initiate phase where no wallet is known yet.
func validateAmounts(cfg *domain.CampaignConfig, coinAmount, totalPrice decimal.Decimal) []string {
	var reasons []string

	if coinAmount.Sign() <= 0 {
		reasons = append(reasons, "coin amount must be positive")
	}
	if totalPrice.Cmp(cfg.MinPurchaseEur) < 0 {
		reasons = append(reasons, fmt.Sprintf("total price %s %s below minimum purchase of %s %s",
			totalPrice, cfg.Currency, cfg.MinPurchaseEur, cfg.Currency))
	}
	if cfg.MaxPurchaseCoins.Sign() > 0 && coinAmount.Cmp(cfg.MaxPurchaseCoins) > 0 {
		reasons = append(reasons, fmt.Sprintf("coin amount %s above maximum purchase of %s",
			coinAmount, cfg.MaxPurchaseCoins))
	}

	return reasons
}

func validateWallet(address, walletType string) []string {
	if address == "" {
		return []string{"wallet address is required"}
	}

	switch walletType {
	case domain.WalletTypeSolana:
		if !isSolanaAddress(address) {
			return []string{fmt.Sprintf("wallet address %q is not a valid Solana address", address)}
		}
	case domain.WalletTypeEthereum:
		if !isEthereumAddress(address) {
			return []string{fmt.Sprintf("wallet address %q is not a valid Ethereum address", address)}
		}
	}

	return nil
}

// isSolanaAddress checks that the address is base58 for a 32-byte
// ed25519 point on the curve.
func isSolanaAddress(address string) bool {
	raw, err := base58.Decode(address)
	if err != nil || len(raw) != 32 {
		return false
	}
	_, err = new(edwards25519.Point).SetBytes(raw)
	return err == nil
}

// isEthereumAddress checks the 0x-prefixed 20-byte hex shape.
// Checksum casing is not enforced.
func isEthereumAddress(address string) bool {
	if !strings.HasPrefix(address, "0x") || len(address) != 42 {
		return false
	}
	_, err := hex.DecodeString(address[2:])
	return err == nil
}
