package domain

import (
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// GLAccount is a typed general-ledger bucket. Unclassified is a first-class
// member so nothing downstream can silently merge unmatched rows into another
// account.
type GLAccount string

const (
	GLAccountClearing       GLAccount = "clearing"
	GLAccountRevenue        GLAccount = "revenue"
	GLAccountFBAFees        GLAccount = "fba_fulfillment_fees"
	GLAccountInboundFreight GLAccount = "inbound_freight"
	GLAccountAccountFees    GLAccount = "account_fees"
	GLAccountAdvertising    GLAccount = "advertising_expense"
	GLAccountStorage        GLAccount = "storage_expense"
	GLAccountTax            GLAccount = "tax_charged"
	GLAccountUnclassified   GLAccount = "unclassified"
)

// DefaultAccountNames are the ledger display names used when the engine
// profile does not override them.
var DefaultAccountNames = map[GLAccount]string{
	GLAccountClearing:       "Amazon.ca Clearing",
	GLAccountRevenue:        "Amazon.ca Revenue",
	GLAccountFBAFees:        "Amazon FBA Fulfillment Fees",
	GLAccountInboundFreight: "Amazon Inbound Freight Charges",
	GLAccountAccountFees:    "Amazon Account Fees",
	GLAccountAdvertising:    "Amazon Advertising Expense",
	GLAccountStorage:        "Amazon Storage Expense",
	GLAccountTax:            "Amazon Combined Tax Charged",
	GLAccountUnclassified:   "Unclassified",
}

// BalanceTolerance is the largest debit/credit delta a settlement journal may
// carry and still count as balanced.
var BalanceTolerance = decimal.New(1, -2)

// Line is one double-entry journal posting. Exactly one of Debit and Credit
// is non-zero.
type Line struct {
	ID           snowflake.ID `gorm:"primaryKey"`
	RunID        snowflake.ID `gorm:"not null;index"`
	SettlementID string       `gorm:"type:text;not null;index"`

	DepositDate *time.Time
	Account     GLAccount `gorm:"type:text;not null;index"`
	AccountName string    `gorm:"type:text;not null"`
	Description string    `gorm:"type:text"`

	Debit  decimal.Decimal `gorm:"type:numeric;not null"`
	Credit decimal.Decimal `gorm:"type:numeric;not null"`

	// SequenceNumber ties the posting back to its originating settlement row.
	SequenceNumber int64  `gorm:"not null"`
	LookupKey      string `gorm:"type:text"`
	Tax            bool   `gorm:"not null;default:false"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Line) TableName() string { return "journal_lines" }

// Totals sums a journal's debits and credits.
func Totals(lines []Line) (debit, credit decimal.Decimal) {
	for _, l := range lines {
		debit = debit.Add(l.Debit)
		credit = credit.Add(l.Credit)
	}
	return debit, credit
}

// ValidateBalanced asserts that debits equal credits within BalanceTolerance.
func ValidateBalanced(lines []Line) error {
	debit, credit := Totals(lines)
	delta := debit.Sub(credit).Abs()
	if delta.GreaterThanOrEqual(BalanceTolerance) {
		return fmt.Errorf("%w: debits %s, credits %s, delta %s",
			ErrUnbalanced, debit.StringFixed(2), credit.StringFixed(2), delta.StringFixed(2))
	}
	return nil
}
