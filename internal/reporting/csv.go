package reporting

import (
	"fmt"
	"strings"
	"time"

	"presale-backend/internal/domain"
)

// RenderPurchasesCSV renders the full ledger as CSV.
func RenderPurchasesCSV(purchases []*domain.Purchase) string {
	var sb strings.Builder

	// Header
	sb.WriteString("id,timestamp,wallet_address,wallet_type,buyer_email,")
	sb.WriteString("coin_amount,total_price_eur,payment_method,external_order_id,status\n")

	// Rows
	for _, p := range purchases {
		sb.WriteString(fmt.Sprintf("%s,%s,%s,%s,%s,%s,%s,%s,%s,%s\n",
			p.ID,
			p.Timestamp.UTC().Format(time.RFC3339),
			p.WalletAddress,
			p.WalletType,
			p.BuyerEmail,
			p.CoinAmount,
			p.TotalPriceEur,
			p.PaymentMethod,
			p.ExternalOrderID,
			p.Status,
		))
	}

	return sb.String()
}

// RenderDailySummaryCSV renders the per-day rollup as CSV. Days without
// a cached unit price get an empty cell.
func RenderDailySummaryCSV(days []DailySummaryRow) string {
	var sb strings.Builder

	sb.WriteString("sale_day,unit_price,coins_sold,raised_eur,purchase_count\n")

	for _, d := range days {
		price := ""
		if d.HasUnitPrice {
			price = d.UnitPrice.String()
		}
		sb.WriteString(fmt.Sprintf("%s,%s,%s,%s,%d\n",
			d.SaleDay,
			price,
			d.CoinsSold,
			d.RaisedEur,
			d.PurchaseCount,
		))
	}

	return sb.String()
}
