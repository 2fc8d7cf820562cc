package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/smallbiznis/settleline/internal/amount"
	"github.com/smallbiznis/settleline/internal/config"
	journaldomain "github.com/smallbiznis/settleline/internal/journal/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Service struct {
	log     *zap.Logger
	profile config.Profile
	rules   []Rule
}

type ServiceParam struct {
	fx.In

	Log     *zap.Logger
	Profile config.Profile
}

func NewService(p ServiceParam) journaldomain.Service {
	return &Service{
		log:     p.Log.Named("journal.service"),
		profile: p.Profile,
		rules:   Cascade(),
	}
}

// Build classifies one settlement's derived lines into journal postings and
// validates the balance invariant. The caller decides what to do with a
// blocking result; Build itself never corrects one.
func (s *Service) Build(settlementID string, lines []amount.Line) journaldomain.Result {
	result := journaldomain.Result{SettlementID: settlementID}
	depositDate := propagatedDepositDate(lines)

	for _, l := range lines {
		if !l.TransactionAmount.IsZero() {
			net := l.TransactionAmount.Sub(l.TaxAmount)
			if !net.IsZero() {
				account, _ := Classify(s.rules, l)
				if account == journaldomain.GLAccountUnclassified {
					result.UnclassifiedCount++
					s.log.Warn("no GL rule matched, routing to unclassified",
						zap.String("settlement_id", settlementID),
						zap.Int64("sequence", l.SequenceNumber),
						zap.String("transaction_type", l.TransactionType),
					)
				}
				line := journaldomain.Line{
					SettlementID:   settlementID,
					DepositDate:    depositDate,
					Account:        account,
					AccountName:    s.profile.AccountName(account),
					Description:    describe(l, depositDate),
					SequenceNumber: l.SequenceNumber,
					LookupKey:      l.LookupKey,
				}
				if net.IsNegative() {
					line.Credit = net.Neg()
				} else {
					line.Debit = net
				}
				result.Lines = append(result.Lines, line)
			}
		}

		if !l.TaxAmount.IsZero() {
			line := journaldomain.Line{
				SettlementID:   settlementID,
				DepositDate:    depositDate,
				Account:        journaldomain.GLAccountTax,
				AccountName:    s.profile.AccountName(journaldomain.GLAccountTax),
				Description:    fmt.Sprintf("Combined GST and PST charged on line # %d", l.SequenceNumber),
				SequenceNumber: l.SequenceNumber,
				LookupKey:      l.LookupKey,
				Tax:            true,
			}
			if l.TaxAmount.IsNegative() {
				line.Credit = l.TaxAmount.Neg()
			} else {
				line.Debit = l.TaxAmount
			}
			result.Lines = append(result.Lines, line)
		}
	}

	result.TotalDebit, result.TotalCredit = journaldomain.Totals(result.Lines)
	result.BalanceDelta = result.TotalDebit.Sub(result.TotalCredit)
	result.Balanced = result.BalanceDelta.Abs().LessThan(journaldomain.BalanceTolerance)

	if !result.Balanced {
		s.log.Error("settlement journal out of balance",
			zap.String("settlement_id", settlementID),
			zap.String("debits", result.TotalDebit.StringFixed(2)),
			zap.String("credits", result.TotalCredit.StringFixed(2)),
			zap.String("delta", result.BalanceDelta.StringFixed(2)),
		)
	}
	return result
}

// propagatedDepositDate finds the settlement's deposit date. It appears on a
// single source row but every journal line of the settlement carries it.
func propagatedDepositDate(lines []amount.Line) *time.Time {
	for _, l := range lines {
		if l.DepositDate != nil {
			return l.DepositDate
		}
	}
	return nil
}

// describe builds the posting description. The deposit row, which has no
// type fields of its own, reads "Bank Deposit on <date>"; every other row
// joins its distinct type/description fields with "/".
func describe(l amount.Line, depositDate *time.Time) string {
	parts := []string{
		l.TransactionType,
		l.PriceType,
		l.ShipmentFeeType,
		l.OrderFeeType,
		l.ItemRelatedFeeType,
		l.MiscFeeType,
		l.PromotionType,
		l.DirectPaymentType,
		l.OtherFeeReasonDescription,
	}

	var distinct []string
	seen := make(map[string]struct{})
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		distinct = append(distinct, p)
	}

	if len(distinct) == 0 {
		if l.Deposit && depositDate != nil {
			return "Bank Deposit on " + depositDate.Format("2006-01-02")
		}
		if l.Deposit {
			return "Bank Deposit"
		}
		return ""
	}
	return strings.Join(distinct, "/")
}
