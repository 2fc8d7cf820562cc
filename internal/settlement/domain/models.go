package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Record is one normalized settlement extract row. Records are owned by the
// pipeline for the duration of a run and are immutable once the normalizer
// has emitted them.
type Record struct {
	SettlementID    string
	OrderID         string
	MerchantOrderID string
	SKU             string

	TransactionType string
	PriceType       string

	ShipmentFeeType           string
	OrderFeeType              string
	ItemRelatedFeeType        string
	MiscFeeType               string
	OtherFeeReasonDescription string
	PromotionType             string
	DirectPaymentType         string

	PriceAmount          decimal.Decimal
	ShipmentFeeAmount    decimal.Decimal
	OrderFeeAmount       decimal.Decimal
	ItemRelatedFeeAmount decimal.Decimal
	MiscFeeAmount        decimal.Decimal
	OtherFeeAmount       decimal.Decimal
	DirectPaymentAmount  decimal.Decimal
	OtherAmount          decimal.Decimal
	PromotionAmount      decimal.Decimal

	// QuantityPurchased is nil when the source column was blank. The invoice
	// composer needs to distinguish "no quantity" from an explicit zero.
	QuantityPurchased *decimal.Decimal

	// TotalAmount carries the bank deposit total and is present only on the
	// settlement's deposit row.
	TotalAmount *decimal.Decimal

	Currency        string
	MarketplaceName string

	PostedDate  *time.Time
	DepositDate *time.Time

	// SequenceNumber is strictly increasing across the whole combined batch.
	// The lowest-numbered row of a settlement is its deposit row.
	SequenceNumber int64
	SourceFile     string
}

// Quantity returns the purchased quantity, zero when the column was blank.
func (r Record) Quantity() decimal.Decimal {
	if r.QuantityPurchased == nil {
		return decimal.Zero
	}
	return *r.QuantityPurchased
}

// HasQuantity reports whether the source row carried a quantity at all.
func (r Record) HasQuantity() bool {
	return r.QuantityPurchased != nil
}

// HasDeposit reports whether the row carries the settlement deposit total.
func (r Record) HasDeposit() bool {
	return r.TotalAmount != nil
}
