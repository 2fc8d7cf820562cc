package service

import (
	"strings"

	"github.com/smallbiznis/settleline/internal/amount"
	journaldomain "github.com/smallbiznis/settleline/internal/journal/domain"
)

// Rule is one step of the GL classification cascade. Rules are evaluated in
// slice order, first match wins; the order is part of the contract because
// later rules are fallbacks for combinations earlier rules did not claim.
type Rule struct {
	Name    string
	Match   func(lineFields) bool
	Account journaldomain.GLAccount
}

// lineFields carries the lowercase, trimmed predicate inputs of one row.
type lineFields struct {
	hasDeposit  bool
	currency    string
	txnType     string
	priceType   string
	itemFeeType string
	shipFeeType string
	promoType   string
}

func fieldsOf(l amount.Line) lineFields {
	lower := func(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
	return lineFields{
		hasDeposit:  l.HasDeposit(),
		currency:    lower(l.Currency),
		txnType:     lower(l.TransactionType),
		priceType:   lower(l.PriceType),
		itemFeeType: lower(l.ItemRelatedFeeType),
		shipFeeType: lower(l.ShipmentFeeType),
		promoType:   lower(l.PromotionType),
	}
}

func isOrderOrRefund(f lineFields) bool {
	return f.txnType == "order" || f.txnType == "refund"
}

func oneOf(value string, set ...string) bool {
	for _, s := range set {
		if value == s {
			return true
		}
	}
	return false
}

// Cascade returns the ordered classification rules. Exported so the rule
// order itself can be asserted in tests.
func Cascade() []Rule {
	return []Rule{
		{
			Name:    "deposit_cad",
			Match:   func(f lineFields) bool { return f.hasDeposit && f.currency == "cad" },
			Account: journaldomain.GLAccountClearing,
		},
		{
			Name:    "principal_sale_or_refund",
			Match:   func(f lineFields) bool { return isOrderOrRefund(f) && f.priceType == "principal" },
			Account: journaldomain.GLAccountClearing,
		},
		{
			Name:    "shipping_promotion",
			Match:   func(f lineFields) bool { return isOrderOrRefund(f) && f.promoType == "shipping" },
			Account: journaldomain.GLAccountRevenue,
		},
		{
			Name:    "shipping_price",
			Match:   func(f lineFields) bool { return isOrderOrRefund(f) && f.priceType == "shipping" },
			Account: journaldomain.GLAccountRevenue,
		},
		{
			Name:    "shipping_chargeback",
			Match:   func(f lineFields) bool { return isOrderOrRefund(f) && f.itemFeeType == "shippingchargeback" },
			Account: journaldomain.GLAccountRevenue,
		},
		{
			Name:    "fba_transportation_fee",
			Match:   func(f lineFields) bool { return isOrderOrRefund(f) && f.shipFeeType == "fba transportation fee" },
			Account: journaldomain.GLAccountFBAFees,
		},
		{
			Name:    "fba_per_unit_fulfillment_fee",
			Match:   func(f lineFields) bool { return isOrderOrRefund(f) && f.itemFeeType == "fbaperunitfulfillmentfee" },
			Account: journaldomain.GLAccountFBAFees,
		},
		{
			Name: "commission_fee",
			Match: func(f lineFields) bool {
				return isOrderOrRefund(f) && oneOf(f.itemFeeType, "commission", "digitalservicesfee", "refundcommission")
			},
			Account: journaldomain.GLAccountFBAFees,
		},
		{
			Name:    "inbound_transportation",
			Match:   func(f lineFields) bool { return f.txnType == "inbound transportation fee" },
			Account: journaldomain.GLAccountInboundFreight,
		},
		{
			Name:    "subscription_fee",
			Match:   func(f lineFields) bool { return f.txnType == "subscription fee" },
			Account: journaldomain.GLAccountAccountFees,
		},
		{
			Name:    "payable_to_platform",
			Match:   func(f lineFields) bool { return f.txnType == "payable to amazon" },
			Account: journaldomain.GLAccountClearing,
		},
		{
			Name: "advertising_service_fee",
			Match: func(f lineFields) bool {
				return f.txnType == "servicefee" && f.itemFeeType == "cost of advertising"
			},
			Account: journaldomain.GLAccountAdvertising,
		},
		{
			Name:    "storage_fee",
			Match:   func(f lineFields) bool { return f.txnType == "storage fee" },
			Account: journaldomain.GLAccountStorage,
		},
		{
			Name: "miscellaneous_clearing",
			Match: func(f lineFields) bool {
				return oneOf(f.txnType, "warehouse_damage", "warehouse damage", "micro deposit", "reversal_reimbursement", "successful charge")
			},
			Account: journaldomain.GLAccountClearing,
		},
	}
}

// Classify runs a line through the cascade. Unmatched combinations land in
// the explicit Unclassified bucket; they are never guessed into an account.
func Classify(rules []Rule, l amount.Line) (journaldomain.GLAccount, string) {
	f := fieldsOf(l)
	for _, rule := range rules {
		if rule.Match(f) {
			return rule.Account, rule.Name
		}
	}
	return journaldomain.GLAccountUnclassified, "unclassified"
}
