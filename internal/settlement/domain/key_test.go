package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLookupKeyWithOrderID(t *testing.T) {
	r := Record{
		SettlementID: "S1",
		OrderID:      "701-1234567-8901234",
		SKU:          "WIDGET-01",
	}
	assert.Equal(t, "8901234WIDGET-01", LookupKey(r))
}

func TestLookupKeyShortOrderID(t *testing.T) {
	r := Record{OrderID: "ABC", SKU: "SKU1"}
	assert.Equal(t, "ABCSKU1", LookupKey(r))
}

func TestLookupKeyFallbackWithoutOrderID(t *testing.T) {
	posted := time.Date(2024, time.March, 5, 10, 0, 0, 0, time.UTC)
	r := Record{
		SettlementID:    "S1",
		SKU:             "SKU1",
		TransactionType: "Order",
		PostedDate:      &posted,
	}
	assert.Equal(t, "S105032024order", LookupKey(r))
}

func TestLookupKeyFallbackWithoutPostedDate(t *testing.T) {
	r := Record{
		SettlementID:    "S1",
		SKU:             "SKU1",
		TransactionType: "REFUND",
	}
	assert.Equal(t, "S101011900refund", LookupKey(r))
}

func TestLookupKeyEmptyForMissingSKU(t *testing.T) {
	for _, sku := range []string{"", "  ", "nan", "NaN", "null", "NULL"} {
		r := Record{SettlementID: "S1", OrderID: "ORDER123", SKU: sku}
		assert.Empty(t, LookupKey(r), "sku %q must yield no key", sku)
	}
}
