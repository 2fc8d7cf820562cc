package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	settlementdomain "github.com/smallbiznis/settleline/internal/settlement/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func qty(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func TestCandidatePrecedence(t *testing.T) {
	damage := settlementdomain.Record{
		TransactionType:   "WAREHOUSE DAMAGE",
		PriceType:         "principal",
		OtherAmount:       decimal.RequireFromString("12"),
		PriceAmount:       decimal.RequireFromString("99"),
		QuantityPurchased: qty("1"),
	}
	assert.Equal(t, "12", Candidate(damage).String())

	principal := settlementdomain.Record{
		PriceType:   "Principal",
		PriceAmount: decimal.RequireFromString("60"),
	}
	assert.Equal(t, "60", Candidate(principal).String())

	other := settlementdomain.Record{TransactionType: "Order"}
	assert.True(t, Candidate(other).IsZero())

	// Damage evidence without a positive quantity falls through to the
	// principal check.
	zeroQty := settlementdomain.Record{
		TransactionType: "REVERSAL_REIMBURSEMENT",
		OtherAmount:     decimal.RequireFromString("12"),
	}
	assert.True(t, Candidate(zeroQty).IsZero())
}

func TestBuildKeepsMaximumObservation(t *testing.T) {
	records := []settlementdomain.Record{
		{
			OrderID:           "ORD1234567",
			SKU:               "SKU1",
			PriceType:         "principal",
			PriceAmount:       decimal.RequireFromString("60"),
			QuantityPurchased: qty("2"),
		},
		{
			OrderID:           "ORD1234567",
			SKU:               "SKU1",
			PriceType:         "principal",
			PriceAmount:       decimal.RequireFromString("45"),
			QuantityPurchased: qty("3"),
		},
	}

	table := Build(records)
	entry, ok := table["1234567SKU1"]
	require.True(t, ok)
	assert.Equal(t, "60", entry.TotalPrice.String())
	assert.Equal(t, "3", entry.Quantity.String())
	assert.Equal(t, "20", entry.UnitPrice.String())
}

func TestBuildDiscardsZeroGroups(t *testing.T) {
	records := []settlementdomain.Record{
		{
			OrderID:           "ORD1234567",
			SKU:               "SKU1",
			QuantityPurchased: qty("2"),
		},
	}
	table := Build(records)
	assert.Empty(t, table)
}

func TestBuildSkipsEmptyLookupKeys(t *testing.T) {
	records := []settlementdomain.Record{
		{
			SettlementID: "S1",
			PriceType:    "principal",
			PriceAmount:  decimal.RequireFromString("10"),
		},
	}
	table := Build(records)
	assert.Empty(t, table)
}

func TestUnitPriceLookup(t *testing.T) {
	table := Table{"k": Entry{UnitPrice: decimal.RequireFromString("5")}}

	got, ok := table.UnitPrice("k")
	require.True(t, ok)
	assert.Equal(t, "5", got.String())

	_, ok = table.UnitPrice("missing")
	assert.False(t, ok)
}
