// Package pricing resolves an authoritative unit price per item lookup key
// from principal-sale and damage/reversal evidence. The resulting table is a
// pure side-input: built once per run, read-only afterwards, safe to share
// across settlement workers.
package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
	settlementdomain "github.com/smallbiznis/settleline/internal/settlement/domain"
)

// Entry is the resolved price for one lookup key.
type Entry struct {
	LookupKey  string
	TotalPrice decimal.Decimal
	Quantity   decimal.Decimal
	UnitPrice  decimal.Decimal
}

// Table maps lookup keys to resolved prices.
type Table map[string]Entry

// Candidate computes a record's price-line evidence, first match wins:
//
//  1. warehouse-damage / reversal-reimbursement rows with a positive quantity
//     contribute other_amount,
//  2. principal price rows contribute price_amount,
//  3. everything else contributes nothing.
func Candidate(r settlementdomain.Record) decimal.Decimal {
	txn := strings.ToUpper(strings.TrimSpace(r.TransactionType))
	if (txn == "WAREHOUSE DAMAGE" || txn == "REVERSAL_REIMBURSEMENT") && r.Quantity().IsPositive() {
		return r.OtherAmount
	}
	if strings.EqualFold(strings.TrimSpace(r.PriceType), "principal") {
		return r.PriceAmount
	}
	return decimal.Zero
}

// Build groups candidate evidence by lookup key, keeping the maximum observed
// price value and the maximum observed quantity per group. Groups that end up
// with a zero price or zero quantity are discarded, which also guards the
// unit-price division.
func Build(records []settlementdomain.Record) Table {
	type group struct {
		price    decimal.Decimal
		quantity decimal.Decimal
	}
	groups := make(map[string]group)

	for _, r := range records {
		key := settlementdomain.LookupKey(r)
		if key == "" {
			continue
		}
		candidate := Candidate(r)
		if candidate.IsZero() && r.Quantity().IsZero() {
			continue
		}

		g, ok := groups[key]
		if !ok {
			groups[key] = group{price: candidate, quantity: r.Quantity()}
			continue
		}
		if candidate.GreaterThan(g.price) {
			g.price = candidate
		}
		if r.Quantity().GreaterThan(g.quantity) {
			g.quantity = r.Quantity()
		}
		groups[key] = g
	}

	table := make(Table, len(groups))
	for key, g := range groups {
		if g.price.IsZero() || g.quantity.IsZero() {
			continue
		}
		table[key] = Entry{
			LookupKey:  key,
			TotalPrice: g.price,
			Quantity:   g.quantity,
			UnitPrice:  g.price.Div(g.quantity),
		}
	}
	return table
}

// UnitPrice looks up the resolved unit price for a key.
func (t Table) UnitPrice(key string) (decimal.Decimal, bool) {
	entry, ok := t[key]
	if !ok {
		return decimal.Zero, false
	}
	return entry.UnitPrice, true
}
