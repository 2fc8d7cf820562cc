package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// FlagKind identifies why a settlement needs reviewer attention.
type FlagKind string

const (
	FlagUnbalancedJournal FlagKind = "unbalanced_journal"
	FlagUnclassifiedLines FlagKind = "unclassified_lines"
	FlagZeroTotalInvoice  FlagKind = "zero_total_invoice"
)

// Flag is one validation finding attached to a settlement.
type Flag struct {
	SettlementID string
	Kind         FlagKind
	Detail       string
	Blocking     bool
}

// SettlementFact is the per-settlement reconciliation projection. It is
// recomputed from the other entities on every run and never treated as a
// source of truth.
type SettlementFact struct {
	ID           snowflake.ID `gorm:"primaryKey"`
	RunID        snowflake.ID `gorm:"not null;index"`
	SettlementID string       `gorm:"type:text;not null;index"`

	DepositAmount decimal.Decimal `gorm:"type:numeric"`
	DepositDate   *time.Time
	SourceFile    string `gorm:"type:text"`

	RecordCount int64           `gorm:"not null"`
	UnitsSold   decimal.Decimal `gorm:"type:numeric;not null"`
	TaxTotal    decimal.Decimal `gorm:"type:numeric;not null"`

	TransactionSum decimal.Decimal `gorm:"type:numeric;not null"`
	TotalDebit     decimal.Decimal `gorm:"type:numeric;not null"`
	TotalCredit    decimal.Decimal `gorm:"type:numeric;not null"`
	BalanceDelta   decimal.Decimal `gorm:"type:numeric;not null"`
	Balanced       bool            `gorm:"not null"`

	ClearingDebitTotal decimal.Decimal `gorm:"type:numeric;not null"`
	InvoiceTotal       decimal.Decimal `gorm:"type:numeric;not null"`
	PaymentTotal       decimal.Decimal `gorm:"type:numeric;not null"`

	ClearingMinusInvoice    decimal.Decimal `gorm:"type:numeric;not null"`
	TransactionSumMinusInvoiceTotal decimal.Decimal `gorm:"type:numeric;not null"`

	UnclassifiedCount int64 `gorm:"not null"`
	Blocking          bool  `gorm:"not null"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (SettlementFact) TableName() string { return "settlement_facts" }

// AccountTotal is one row of the per-settlement GL account summary.
type AccountTotal struct {
	Account     string
	AccountName string
	Lines       int64
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	Net         decimal.Decimal
}
