package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/settleline/internal/amount"
	journaldomain "github.com/smallbiznis/settleline/internal/journal/domain"
	settlementdomain "github.com/smallbiznis/settleline/internal/settlement/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The cascade order is part of the contract: later rules are fallbacks for
// combinations earlier rules did not claim.
func TestCascadeOrder(t *testing.T) {
	want := []string{
		"deposit_cad",
		"principal_sale_or_refund",
		"shipping_promotion",
		"shipping_price",
		"shipping_chargeback",
		"fba_transportation_fee",
		"fba_per_unit_fulfillment_fee",
		"commission_fee",
		"inbound_transportation",
		"subscription_fee",
		"payable_to_platform",
		"advertising_service_fee",
		"storage_fee",
		"miscellaneous_clearing",
	}

	rules := Cascade()
	require.Len(t, rules, len(want))
	for i, rule := range rules {
		assert.Equal(t, want[i], rule.Name, "rule %d", i)
	}
}

func line(r settlementdomain.Record) amount.Line {
	return amount.Line{Record: r}
}

func TestClassify(t *testing.T) {
	total := decimal.RequireFromString("100")

	cases := []struct {
		name     string
		record   settlementdomain.Record
		account  journaldomain.GLAccount
		ruleName string
	}{
		{
			name:     "deposit_cad",
			record:   settlementdomain.Record{TotalAmount: &total, Currency: "CAD"},
			account:  journaldomain.GLAccountClearing,
			ruleName: "deposit_cad",
		},
		{
			name:     "principal_order",
			record:   settlementdomain.Record{TransactionType: "Order", PriceType: "Principal"},
			account:  journaldomain.GLAccountClearing,
			ruleName: "principal_sale_or_refund",
		},
		{
			name:     "principal_refund",
			record:   settlementdomain.Record{TransactionType: "Refund", PriceType: "Principal"},
			account:  journaldomain.GLAccountClearing,
			ruleName: "principal_sale_or_refund",
		},
		{
			name:     "shipping_promotion",
			record:   settlementdomain.Record{TransactionType: "Order", PromotionType: "Shipping"},
			account:  journaldomain.GLAccountRevenue,
			ruleName: "shipping_promotion",
		},
		{
			name:     "shipping_price",
			record:   settlementdomain.Record{TransactionType: "Order", PriceType: "Shipping"},
			account:  journaldomain.GLAccountRevenue,
			ruleName: "shipping_price",
		},
		{
			name:     "shipping_chargeback",
			record:   settlementdomain.Record{TransactionType: "Refund", ItemRelatedFeeType: "ShippingChargeback"},
			account:  journaldomain.GLAccountRevenue,
			ruleName: "shipping_chargeback",
		},
		{
			name:     "fba_transportation",
			record:   settlementdomain.Record{TransactionType: "Order", ShipmentFeeType: "fba transportation fee"},
			account:  journaldomain.GLAccountFBAFees,
			ruleName: "fba_transportation_fee",
		},
		{
			name:     "fba_per_unit",
			record:   settlementdomain.Record{TransactionType: "Order", ItemRelatedFeeType: "FBAPerUnitFulfillmentFee"},
			account:  journaldomain.GLAccountFBAFees,
			ruleName: "fba_per_unit_fulfillment_fee",
		},
		{
			name:     "commission",
			record:   settlementdomain.Record{TransactionType: "Order", ItemRelatedFeeType: "Commission"},
			account:  journaldomain.GLAccountFBAFees,
			ruleName: "commission_fee",
		},
		{
			name:     "digital_services_fee",
			record:   settlementdomain.Record{TransactionType: "Refund", ItemRelatedFeeType: "DigitalServicesFee"},
			account:  journaldomain.GLAccountFBAFees,
			ruleName: "commission_fee",
		},
		{
			name:     "inbound_transportation",
			record:   settlementdomain.Record{TransactionType: "INBOUND TRANSPORTATION FEE"},
			account:  journaldomain.GLAccountInboundFreight,
			ruleName: "inbound_transportation",
		},
		{
			name:     "subscription",
			record:   settlementdomain.Record{TransactionType: "Subscription Fee"},
			account:  journaldomain.GLAccountAccountFees,
			ruleName: "subscription_fee",
		},
		{
			name:     "payable_to_platform",
			record:   settlementdomain.Record{TransactionType: "Payable to Amazon"},
			account:  journaldomain.GLAccountClearing,
			ruleName: "payable_to_platform",
		},
		{
			name:     "advertising",
			record:   settlementdomain.Record{TransactionType: "ServiceFee", ItemRelatedFeeType: "Cost of Advertising"},
			account:  journaldomain.GLAccountAdvertising,
			ruleName: "advertising_service_fee",
		},
		{
			name:     "storage",
			record:   settlementdomain.Record{TransactionType: "STORAGE FEE"},
			account:  journaldomain.GLAccountStorage,
			ruleName: "storage_fee",
		},
		{
			name:     "warehouse_damage",
			record:   settlementdomain.Record{TransactionType: "WAREHOUSE_DAMAGE"},
			account:  journaldomain.GLAccountClearing,
			ruleName: "miscellaneous_clearing",
		},
		{
			name:     "unknown_type",
			record:   settlementdomain.Record{TransactionType: "Mystery Adjustment"},
			account:  journaldomain.GLAccountUnclassified,
			ruleName: "unclassified",
		},
	}

	rules := Cascade()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			account, name := Classify(rules, line(tc.record))
			assert.Equal(t, tc.account, account)
			assert.Equal(t, tc.ruleName, name)
		})
	}
}

// A deposit row in a foreign currency must not claim the deposit rule; it
// falls through the cascade and surfaces as unclassified.
func TestClassifyDepositRequiresCAD(t *testing.T) {
	total := decimal.RequireFromString("100")
	account, name := Classify(Cascade(), line(settlementdomain.Record{
		TotalAmount: &total,
		Currency:    "USD",
	}))
	assert.Equal(t, journaldomain.GLAccountUnclassified, account)
	assert.Equal(t, "unclassified", name)
}
