package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// InvoiceStatus is fixed: composed invoices are always drafts for the
// external accounting system to finalize.
const InvoiceStatusDraft = "Draft"

// Line is one invoice line derived from a purchased-item settlement row.
type Line struct {
	ID           snowflake.ID `gorm:"primaryKey"`
	RunID        snowflake.ID `gorm:"not null;index"`
	SettlementID string       `gorm:"type:text;not null;index"`

	InvoiceNumber string    `gorm:"type:text;not null;index"`
	InvoiceDate   time.Time `gorm:"not null"`
	CustomerName  string    `gorm:"type:text;not null"`

	SKU        string          `gorm:"type:text"`
	Quantity   decimal.Decimal `gorm:"type:numeric;not null"`
	UnitPrice  decimal.Decimal `gorm:"type:numeric;not null"`
	LineAmount decimal.Decimal `gorm:"type:numeric;not null"`

	Notes          string `gorm:"type:text"`
	SequenceNumber int64  `gorm:"not null"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Line) TableName() string { return "invoice_lines" }

// Invoice is the grouping of lines sharing an invoice number. It is a
// projection over persisted lines, not a table of its own.
type Invoice struct {
	InvoiceNumber string
	InvoiceDate   time.Time
	CustomerName  string
	SettlementID  string
	Lines         []Line
	Total         decimal.Decimal
}

// Payment settles exactly one invoice.
type Payment struct {
	ID           snowflake.ID `gorm:"primaryKey"`
	RunID        snowflake.ID `gorm:"not null;index"`
	SettlementID string       `gorm:"type:text;not null;index"`

	InvoiceNumber string          `gorm:"type:text;not null;index"`
	CustomerName  string          `gorm:"type:text;not null"`
	Amount        decimal.Decimal `gorm:"type:numeric;not null"`
	PaymentDate   time.Time       `gorm:"not null"`

	PaidThroughAccount string `gorm:"type:text;not null"`
	PaymentMode        string `gorm:"type:text;not null"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Payment) TableName() string { return "payments" }
