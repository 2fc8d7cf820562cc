package domain

import (
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/settleline/internal/amount"
	"github.com/smallbiznis/settleline/internal/pricing"
)

// Result carries the composed invoices and payments for one settlement.
type Result struct {
	SettlementID string
	Lines        []Line
	Invoices     []Invoice
	Payments     []Payment

	// ZeroTotal lists invoice numbers whose lines net to zero. They are
	// excluded from Invoices and Payments and surfaced for review.
	ZeroTotal []string

	InvoiceTotal decimal.Decimal
}

type Service interface {
	Compose(settlementID string, lines []amount.Line, prices pricing.Table) Result
}
