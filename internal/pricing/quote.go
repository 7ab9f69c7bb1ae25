package pricing

import "github.com/shopspring/decimal"

// Money precision: currency totals carry 2 decimal places, coin
// amounts up to 8.
const (
	CurrencyScale = 2
	CoinScale     = 8
)

// Quote is the priced form of a requested coin amount.
type Quote struct {
	CoinAmount decimal.Decimal
	UnitPrice  decimal.Decimal
	TotalPrice decimal.Decimal
	Currency   string
}

// NewQuote multiplies unitPrice by coinAmount and rounds the total to
// 2 decimal places, half away from zero. The rounding rule is fixed:
// it is money, and tests pin the .005 boundaries.
func NewQuote(unitPrice, coinAmount decimal.Decimal, currency string) Quote {
	return Quote{
		CoinAmount: coinAmount.Round(CoinScale),
		UnitPrice:  unitPrice,
		TotalPrice: Round2(unitPrice.Mul(coinAmount)),
		Currency:   currency,
	}
}

// Round2 rounds a currency amount to 2 decimal places, half away from zero.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(CurrencyScale)
}
