package service

import (
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/settleline/internal/amount"
	"github.com/smallbiznis/settleline/internal/config"
	invoicedomain "github.com/smallbiznis/settleline/internal/invoice/domain"
	journaldomain "github.com/smallbiznis/settleline/internal/journal/domain"
	recondomain "github.com/smallbiznis/settleline/internal/recon/domain"
	settlementdomain "github.com/smallbiznis/settleline/internal/settlement/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) recondomain.Service {
	t.Helper()

	node, err := snowflake.NewNode(12)
	require.NoError(t, err)
	profile, err := config.LoadProfile("")
	require.NoError(t, err)

	return NewService(ServiceParam{Log: zap.NewNop(), Profile: profile, Node: node})
}

func dec(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func TestAggregateComputesFact(t *testing.T) {
	svc := newTestService(t)
	deposit := time.Date(2024, time.April, 2, 0, 0, 0, 0, time.UTC)
	total := dec("100")
	qty := dec("2")

	lines := []amount.Line{
		{
			Record: settlementdomain.Record{
				SettlementID:   "S1",
				SequenceNumber: 1,
				TotalAmount:    &total,
				DepositDate:    &deposit,
				SourceFile:     "a.txt",
			},
			TransactionAmount: dec("-100"),
			Deposit:           true,
		},
		{
			Record: settlementdomain.Record{
				SettlementID:      "S1",
				SequenceNumber:    2,
				QuantityPurchased: &qty,
			},
			TransactionAmount: dec("95"),
			TaxAmount:         dec("5"),
		},
		{
			Record:            settlementdomain.Record{SettlementID: "S1", SequenceNumber: 3},
			TransactionAmount: dec("5"),
		},
	}

	journal := journaldomain.Result{
		SettlementID: "S1",
		Lines: []journaldomain.Line{
			{Account: journaldomain.GLAccountClearing, Credit: dec("100")},
			{Account: journaldomain.GLAccountClearing, Debit: dec("95")},
			{Account: journaldomain.GLAccountRevenue, Debit: dec("5")},
		},
		TotalDebit:  dec("100"),
		TotalCredit: dec("100"),
		Balanced:    true,
	}

	invoices := invoicedomain.Result{
		SettlementID: "S1",
		InvoiceTotal: dec("95"),
		Payments:     []invoicedomain.Payment{{Amount: dec("95")}},
	}

	res := svc.Aggregate(lines, journal, invoices)
	fact := res.Fact

	assert.Equal(t, "S1", fact.SettlementID)
	assert.Equal(t, int64(3), fact.RecordCount)
	assert.Equal(t, "2", fact.UnitsSold.String())
	assert.Equal(t, "5", fact.TaxTotal.String())
	assert.True(t, fact.TransactionSum.IsZero())
	assert.Equal(t, "100", fact.DepositAmount.String())
	assert.Equal(t, "a.txt", fact.SourceFile)
	require.NotNil(t, fact.DepositDate)
	assert.Equal(t, deposit, *fact.DepositDate)

	assert.Equal(t, "95", fact.ClearingDebitTotal.String())
	assert.Equal(t, "95", fact.InvoiceTotal.String())
	assert.Equal(t, "95", fact.PaymentTotal.String())
	assert.True(t, fact.ClearingMinusInvoice.IsZero())
	assert.Equal(t, "-95", fact.TransactionSumMinusInvoiceTotal.String())

	assert.True(t, fact.Balanced)
	assert.False(t, fact.Blocking)
	assert.Empty(t, res.Flags)

	require.Len(t, res.Accounts, 2)
	assert.Equal(t, string(journaldomain.GLAccountClearing), res.Accounts[0].Account)
	assert.Equal(t, "Amazon.ca Clearing", res.Accounts[0].AccountName)
	assert.Equal(t, int64(2), res.Accounts[0].Lines)
	assert.Equal(t, "95", res.Accounts[0].Debit.String())
	assert.Equal(t, "100", res.Accounts[0].Credit.String())
	assert.Equal(t, "-5", res.Accounts[0].Net.String())
	assert.Equal(t, string(journaldomain.GLAccountRevenue), res.Accounts[1].Account)
	assert.Equal(t, "5", res.Accounts[1].Net.String())
}

func TestAggregateFlagsUnbalancedJournal(t *testing.T) {
	svc := newTestService(t)

	journal := journaldomain.Result{
		SettlementID: "S2",
		TotalDebit:   dec("10"),
		TotalCredit:  dec("4"),
		BalanceDelta: dec("6"),
		Balanced:     false,
	}

	res := svc.Aggregate(nil, journal, invoicedomain.Result{SettlementID: "S2"})
	assert.True(t, res.Fact.Blocking)
	require.Len(t, res.Flags, 1)
	assert.Equal(t, recondomain.FlagUnbalancedJournal, res.Flags[0].Kind)
	assert.True(t, res.Flags[0].Blocking)
}

func TestAggregateFlagsUnclassifiedLines(t *testing.T) {
	svc := newTestService(t)

	journal := journaldomain.Result{
		SettlementID:      "S3",
		Balanced:          true,
		UnclassifiedCount: 2,
	}

	res := svc.Aggregate(nil, journal, invoicedomain.Result{SettlementID: "S3"})
	assert.True(t, res.Fact.Blocking)
	require.Len(t, res.Flags, 1)
	assert.Equal(t, recondomain.FlagUnclassifiedLines, res.Flags[0].Kind)
	assert.True(t, res.Flags[0].Blocking)
}

func TestAggregateFlagsZeroTotalInvoices(t *testing.T) {
	svc := newTestService(t)

	journal := journaldomain.Result{SettlementID: "S4", Balanced: true}
	invoices := invoicedomain.Result{SettlementID: "S4", ZeroTotal: []string{"AMZN0000001"}}

	res := svc.Aggregate(nil, journal, invoices)
	assert.False(t, res.Fact.Blocking)
	require.Len(t, res.Flags, 1)
	assert.Equal(t, recondomain.FlagZeroTotalInvoice, res.Flags[0].Kind)
	assert.False(t, res.Flags[0].Blocking)
}
