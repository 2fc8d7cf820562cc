package domain

import (
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/settleline/internal/amount"
)

// Result is one settlement's classified journal plus its balance verdict.
type Result struct {
	SettlementID string
	Lines        []Line

	TotalDebit   decimal.Decimal
	TotalCredit  decimal.Decimal
	BalanceDelta decimal.Decimal
	Balanced     bool

	// UnclassifiedCount is the number of postings that fell through the whole
	// cascade. Any non-zero count blocks posting.
	UnclassifiedCount int
}

// Blocking reports whether this journal must block downstream posting.
func (r Result) Blocking() bool {
	return !r.Balanced || r.UnclassifiedCount > 0
}

// Service classifies derived settlement lines into a balanced journal.
type Service interface {
	Build(settlementID string, lines []amount.Line) Result
}
