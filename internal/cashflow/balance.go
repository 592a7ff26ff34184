package cashflow

import (
	"github.com/shopspring/decimal"

	"github.com/salesdeskhq/salesdesk-backend/pkg/db/models"
)

// ComputeBalance folds the full ledger into a signed total. SALES and
// ADJUSTMENT_IN add, EXPENSE and ADJUSTMENT_OUT subtract, anything else is
// skipped. Flow types compare case-insensitively. The fold is pure and is
// re-run on every balance query; no cached running total exists anywhere.
func ComputeBalance(entries []models.CashFlowEntry) decimal.Decimal {
	balance := decimal.Zero
	for _, entry := range entries {
		switch entry.FlowType.Sign() {
		case 1:
			balance = balance.Add(entry.Amount)
		case -1:
			balance = balance.Sub(entry.Amount)
		}
	}
	return balance
}
