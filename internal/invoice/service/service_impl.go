package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/settleline/internal/amount"
	"github.com/smallbiznis/settleline/internal/clock"
	"github.com/smallbiznis/settleline/internal/config"
	invoicedomain "github.com/smallbiznis/settleline/internal/invoice/domain"
	"github.com/smallbiznis/settleline/internal/pricing"
	settlementdomain "github.com/smallbiznis/settleline/internal/settlement/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Service struct {
	log     *zap.Logger
	profile config.Profile
	clock   clock.Clock
	node    *snowflake.Node
}

type ServiceParam struct {
	fx.In
	Log     *zap.Logger
	Profile config.Profile
	Clock   clock.Clock
	Node    *snowflake.Node
}

func NewService(p ServiceParam) invoicedomain.Service {
	return &Service{
		log:     p.Log.Named("invoice.service"),
		profile: p.Profile,
		clock:   p.Clock,
		node:    p.Node,
	}
}

// fallbackInvoiceDate stands in when a purchased row carries no parseable
// posted date, matching the sentinel used for lookup keys.
var fallbackInvoiceDate = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)

// Compose turns the purchased-item rows of one settlement into invoices
// grouped by invoice number, each settled by a single payment. Invoices
// whose lines net to zero are dropped and reported instead.
func (s *Service) Compose(settlementID string, lines []amount.Line, prices pricing.Table) invoicedomain.Result {
	res := invoicedomain.Result{SettlementID: settlementID}

	order := make([]string, 0)
	grouped := make(map[string][]invoicedomain.Line)
	for _, l := range lines {
		if !l.HasQuantity() {
			continue
		}
		qty := l.Quantity()
		if qty.IsZero() {
			continue
		}

		number := s.invoiceNumber(l.Record)
		line := invoicedomain.Line{
			ID:             s.node.Generate(),
			SettlementID:   settlementID,
			InvoiceNumber:  number,
			InvoiceDate:    invoiceDate(l.Record),
			CustomerName:   s.customerName(l.Record),
			SKU:            l.SKU,
			Quantity:       qty,
			SequenceNumber: l.SequenceNumber,
			Notes:          notes(l),
		}

		unit, ok := prices.UnitPrice(l.LookupKey)
		if !ok || unit.IsZero() {
			// No resolved price for this key. The settled transaction
			// amount is the best available unit value.
			unit = l.TransactionAmount
		}
		line.UnitPrice = unit
		line.LineAmount = unit.Mul(qty)

		if _, seen := grouped[number]; !seen {
			order = append(order, number)
		}
		grouped[number] = append(grouped[number], line)
	}

	for _, number := range order {
		group := grouped[number]
		total := decimal.Zero
		for _, line := range group {
			total = total.Add(line.LineAmount)
		}
		if total.IsZero() {
			s.log.Warn("dropping zero-total invoice",
				zap.String("settlement_id", settlementID),
				zap.String("invoice_number", number),
			)
			res.ZeroTotal = append(res.ZeroTotal, number)
			continue
		}

		inv := invoicedomain.Invoice{
			InvoiceNumber: number,
			InvoiceDate:   group[0].InvoiceDate,
			CustomerName:  group[0].CustomerName,
			SettlementID:  settlementID,
			Lines:         group,
			Total:         total,
		}
		res.Invoices = append(res.Invoices, inv)
		res.Lines = append(res.Lines, group...)
		res.InvoiceTotal = res.InvoiceTotal.Add(total)
		res.Payments = append(res.Payments, invoicedomain.Payment{
			ID:                 s.node.Generate(),
			SettlementID:       settlementID,
			InvoiceNumber:      number,
			CustomerName:       inv.CustomerName,
			Amount:             total,
			PaymentDate:        inv.InvoiceDate,
			PaidThroughAccount: s.profile.PaidThroughAccount,
			PaymentMode:        s.profile.PaymentMode,
		})
	}
	return res
}

// invoiceNumber derives a stable number from the order id when present.
// Rows without an order id fall back to a timestamp-based number taken
// from the posted date, or the wall clock when even that is missing.
func (s *Service) invoiceNumber(r settlementdomain.Record) string {
	if suffix := settlementdomain.OrderSuffix(r.OrderID); suffix != "" {
		return "AMZN" + suffix
	}
	ts := s.clock.Now()
	if r.PostedDate != nil {
		ts = *r.PostedDate
	}
	return fmt.Sprintf("AMZN%d%s", ts.Year()%10, ts.Format("150405"))
}

func invoiceDate(r settlementdomain.Record) time.Time {
	if r.PostedDate == nil {
		return fallbackInvoiceDate
	}
	d := *r.PostedDate
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

// customerName prefers the row's marketplace name, falling back to the
// profile default when the extract left it blank.
func (s *Service) customerName(r settlementdomain.Record) string {
	if name := strings.TrimSpace(r.MarketplaceName); name != "" {
		return name
	}
	return s.profile.CustomerName
}

// notes composes the line note the external accounting system keys on:
// transaction type, the order id for order rows, any tax, and a
// settlement_sequence suffix that keeps the line traceable to its source row.
func notes(l amount.Line) string {
	var b strings.Builder
	b.WriteString(l.TransactionType)
	if strings.EqualFold(l.TransactionType, "order") && l.OrderID != "" {
		b.WriteString(" " + l.OrderID)
	}
	if !l.TaxAmount.IsZero() {
		b.WriteString(" Tax: " + l.TaxAmount.String())
	}
	if l.SettlementID != "" {
		b.WriteString(fmt.Sprintf("-%s_%d", l.SettlementID, l.SequenceNumber))
	}
	return b.String()
}
