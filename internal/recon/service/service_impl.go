package service

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/settleline/internal/amount"
	"github.com/smallbiznis/settleline/internal/config"
	invoicedomain "github.com/smallbiznis/settleline/internal/invoice/domain"
	journaldomain "github.com/smallbiznis/settleline/internal/journal/domain"
	recondomain "github.com/smallbiznis/settleline/internal/recon/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Service struct {
	log     *zap.Logger
	profile config.Profile
	node    *snowflake.Node
}

type ServiceParam struct {
	fx.In
	Log     *zap.Logger
	Profile config.Profile
	Node    *snowflake.Node
}

func NewService(p ServiceParam) recondomain.Service {
	return &Service{
		log:     p.Log.Named("recon.service"),
		profile: p.Profile,
		node:    p.Node,
	}
}

// Aggregate projects one settlement's derived lines, journal and invoices
// into a SettlementFact plus validation flags. The fact is a pure
// recomputation; nothing here mutates its inputs.
func (s *Service) Aggregate(lines []amount.Line, journal journaldomain.Result, invoices invoicedomain.Result) recondomain.Result {
	fact := recondomain.SettlementFact{
		ID:           s.node.Generate(),
		SettlementID: journal.SettlementID,
		RecordCount:  int64(len(lines)),
		TotalDebit:   journal.TotalDebit,
		TotalCredit:  journal.TotalCredit,
		BalanceDelta: journal.BalanceDelta,
		Balanced:     journal.Balanced,
		InvoiceTotal: invoices.InvoiceTotal,

		UnclassifiedCount: int64(journal.UnclassifiedCount),
		Blocking:          journal.Blocking(),
	}

	for _, l := range lines {
		fact.TransactionSum = fact.TransactionSum.Add(l.TransactionAmount)
		fact.TaxTotal = fact.TaxTotal.Add(l.TaxAmount)
		if l.HasQuantity() {
			fact.UnitsSold = fact.UnitsSold.Add(l.Quantity())
		}
		if l.Deposit {
			fact.SourceFile = l.SourceFile
			fact.DepositDate = l.DepositDate
			if l.TotalAmount != nil {
				fact.DepositAmount = *l.TotalAmount
			}
		}
	}

	order := make([]journaldomain.GLAccount, 0)
	totals := make(map[journaldomain.GLAccount]*recondomain.AccountTotal)
	for _, jl := range journal.Lines {
		t, ok := totals[jl.Account]
		if !ok {
			order = append(order, jl.Account)
			t = &recondomain.AccountTotal{
				Account:     string(jl.Account),
				AccountName: s.profile.AccountName(jl.Account),
			}
			totals[jl.Account] = t
		}
		t.Lines++
		t.Debit = t.Debit.Add(jl.Debit)
		t.Credit = t.Credit.Add(jl.Credit)
		if jl.Account == journaldomain.GLAccountClearing {
			fact.ClearingDebitTotal = fact.ClearingDebitTotal.Add(jl.Debit)
		}
	}

	for _, p := range invoices.Payments {
		fact.PaymentTotal = fact.PaymentTotal.Add(p.Amount)
	}

	fact.ClearingMinusInvoice = fact.ClearingDebitTotal.Sub(fact.InvoiceTotal)
	fact.TransactionSumMinusInvoiceTotal = fact.TransactionSum.Sub(fact.InvoiceTotal)

	res := recondomain.Result{Fact: fact}
	for _, acct := range order {
		t := totals[acct]
		t.Net = t.Debit.Sub(t.Credit)
		res.Accounts = append(res.Accounts, *t)
	}
	res.Flags = s.flags(fact, invoices)
	return res
}

func (s *Service) flags(fact recondomain.SettlementFact, invoices invoicedomain.Result) []recondomain.Flag {
	var flags []recondomain.Flag
	if !fact.Balanced {
		flags = append(flags, recondomain.Flag{
			SettlementID: fact.SettlementID,
			Kind:         recondomain.FlagUnbalancedJournal,
			Detail:       fmt.Sprintf("debits %s do not match credits %s", fact.TotalDebit, fact.TotalCredit),
			Blocking:     true,
		})
	}
	if fact.UnclassifiedCount > 0 {
		flags = append(flags, recondomain.Flag{
			SettlementID: fact.SettlementID,
			Kind:         recondomain.FlagUnclassifiedLines,
			Detail:       fmt.Sprintf("%d line(s) need a GL mapping", fact.UnclassifiedCount),
			Blocking:     true,
		})
	}
	for _, number := range invoices.ZeroTotal {
		flags = append(flags, recondomain.Flag{
			SettlementID: fact.SettlementID,
			Kind:         recondomain.FlagZeroTotalInvoice,
			Detail:       fmt.Sprintf("invoice %s excluded: line amounts sum to zero", number),
		})
	}
	if len(flags) > 0 {
		s.log.Warn("settlement flagged for review",
			zap.String("settlement_id", fact.SettlementID),
			zap.Int("flags", len(flags)),
			zap.Bool("blocking", fact.Blocking),
		)
	}
	return flags
}
