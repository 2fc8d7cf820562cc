package domain

import (
	"github.com/smallbiznis/settleline/internal/amount"
	invoicedomain "github.com/smallbiznis/settleline/internal/invoice/domain"
	journaldomain "github.com/smallbiznis/settleline/internal/journal/domain"
)

// Result bundles the fact row with its validation flags and the GL
// account summary for one settlement.
type Result struct {
	Fact     SettlementFact
	Flags    []Flag
	Accounts []AccountTotal
}

type Service interface {
	Aggregate(lines []amount.Line, journal journaldomain.Result, invoices invoicedomain.Result) Result
}
