// Package amount derives each settlement row's net monetary contribution and
// isolates embedded tax. The deposit-row adjustment applied here is the
// self-balancing mechanism: after it, a settlement's derived amounts sum to
// zero, which is what lets the journal balance without correction.
package amount

import (
	"strings"

	"github.com/shopspring/decimal"
	settlementdomain "github.com/smallbiznis/settleline/internal/settlement/domain"
)

// selfBalanceTolerance bounds the per-settlement sum of derived amounts.
var selfBalanceTolerance = decimal.New(1, -6)

// Line is a settlement record together with its derived amounts.
type Line struct {
	settlementdomain.Record

	LookupKey         string
	TransactionAmount decimal.Decimal
	TaxAmount         decimal.Decimal

	// Deposit marks the settlement's lowest-sequence row, the one the
	// total_amount adjustment was applied to.
	Deposit bool
}

// DepositRow returns the sequence number of a settlement's deposit row, the
// minimum across the group. The second return is false for an empty group.
func DepositRow(records []settlementdomain.Record) (int64, bool) {
	if len(records) == 0 {
		return 0, false
	}
	min := records[0].SequenceNumber
	for _, r := range records[1:] {
		if r.SequenceNumber < min {
			min = r.SequenceNumber
		}
	}
	return min, true
}

// Derive computes transaction and tax amounts for one settlement's records.
// The total_amount subtraction is applied to exactly one row: the deposit row.
func Derive(records []settlementdomain.Record) []Line {
	depositSeq, ok := DepositRow(records)
	if !ok {
		return nil
	}

	lines := make([]Line, 0, len(records))
	for _, r := range records {
		txn := feeSum(r)
		isDeposit := r.SequenceNumber == depositSeq
		if isDeposit && r.TotalAmount != nil {
			txn = txn.Sub(*r.TotalAmount)
		}
		lines = append(lines, Line{
			Record:            r,
			LookupKey:         settlementdomain.LookupKey(r),
			TransactionAmount: txn,
			TaxAmount:         taxAmount(r),
			Deposit:           isDeposit,
		})
	}
	return lines
}

// feeSum is the nine-component gross contribution of a row.
func feeSum(r settlementdomain.Record) decimal.Decimal {
	return r.PriceAmount.
		Add(r.ShipmentFeeAmount).
		Add(r.OrderFeeAmount).
		Add(r.ItemRelatedFeeAmount).
		Add(r.MiscFeeAmount).
		Add(r.OtherFeeAmount).
		Add(r.DirectPaymentAmount).
		Add(r.OtherAmount).
		Add(r.PromotionAmount)
}

// taxAmount isolates embedded tax: other_fee_amount counts as tax when the
// fee-reason text equals "taxamount", case and whitespace insensitive.
func taxAmount(r settlementdomain.Record) decimal.Decimal {
	reason := strings.ToLower(strings.TrimSpace(r.OtherFeeReasonDescription))
	if reason == "taxamount" {
		return r.OtherFeeAmount
	}
	return decimal.Zero
}

// Sum totals the derived transaction amounts of a settlement.
func Sum(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.TransactionAmount)
	}
	return total
}

// SelfBalanced reports whether a settlement's derived amounts net to zero
// within 1e-6, which they must whenever the deposit row carried the batch
// total.
func SelfBalanced(lines []Line) bool {
	return Sum(lines).Abs().LessThanOrEqual(selfBalanceTolerance)
}
