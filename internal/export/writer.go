package export

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/smallbiznis/settleline/internal/config"
	invoicedomain "github.com/smallbiznis/settleline/internal/invoice/domain"
	journaldomain "github.com/smallbiznis/settleline/internal/journal/domain"
	recondomain "github.com/smallbiznis/settleline/internal/recon/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Settlement carries everything the exporter emits for one settlement.
type Settlement struct {
	SettlementID string
	Journal      journaldomain.Result
	Invoices     invoicedomain.Result
	Recon        recondomain.Result
}

// Blocked reports whether posting exports must be withheld.
func (s Settlement) Blocked() bool { return s.Recon.Fact.Blocking }

type Writer struct {
	log *zap.Logger
	dir string
}

type WriterParam struct {
	fx.In
	Log    *zap.Logger
	Config config.Config
}

func NewWriter(p WriterParam) *Writer {
	return &Writer{
		log: p.Log.Named("export.writer"),
		dir: p.Config.OutputDir,
	}
}

// WriteSettlement emits the validation, Journal, Invoice, Payment and GL
// summary files for one settlement. A blocked settlement keeps its
// validation file but gets no posting files.
func (w *Writer) WriteSettlement(s Settlement) error {
	if err := w.writeValidation(s); err != nil {
		return err
	}
	if s.Blocked() {
		w.log.Warn("withholding posting exports for blocked settlement",
			zap.String("settlement_id", s.SettlementID),
		)
		return nil
	}
	if err := w.writeJournal(s); err != nil {
		return err
	}
	if err := w.writeInvoices(s); err != nil {
		return err
	}
	if err := w.writePayments(s); err != nil {
		return err
	}
	return w.writeAccountSummary(s)
}

func (w *Writer) writeJournal(s Settlement) error {
	header := []string{"settlement_id", "deposit_date", "GL_Account", "Description", "Debit", "Credit"}
	rows := make([][]string, 0, len(s.Journal.Lines))
	for _, l := range s.Journal.Lines {
		rows = append(rows, []string{
			l.SettlementID,
			date(l.DepositDate),
			l.AccountName,
			l.Description,
			money(l.Debit),
			money(l.Credit),
		})
	}
	return writeCSV(w.path("Journal", s.SettlementID), header, rows)
}

func (w *Writer) writeInvoices(s Settlement) error {
	header := []string{
		"Invoice Date", "Invoice Number", "Invoice Status", "Customer Name",
		"SKU", "Quantity", "Item Price", "Invoice Line Amount", "Notes", "Reference Number",
	}
	var rows [][]string
	for _, inv := range s.Invoices.Invoices {
		for _, l := range inv.Lines {
			rows = append(rows, []string{
				l.InvoiceDate.Format(dateLayout),
				l.InvoiceNumber,
				invoicedomain.InvoiceStatusDraft,
				l.CustomerName,
				l.SKU,
				l.Quantity.String(),
				money(l.UnitPrice),
				money(l.LineAmount),
				l.Notes,
				l.SettlementID,
			})
		}
	}
	return writeCSV(w.path("Invoice", s.SettlementID), header, rows)
}

func (w *Writer) writePayments(s Settlement) error {
	header := []string{
		"Invoice Number", "Customer Name", "Payment Amount", "Payment Date",
		"Paid Through Account", "Payment Mode", "Reference Number",
	}
	rows := make([][]string, 0, len(s.Invoices.Payments))
	for _, p := range s.Invoices.Payments {
		rows = append(rows, []string{
			p.InvoiceNumber,
			p.CustomerName,
			money(p.Amount),
			p.PaymentDate.Format(dateLayout),
			p.PaidThroughAccount,
			p.PaymentMode,
			p.SettlementID,
		})
	}
	return writeCSV(w.path("Payment", s.SettlementID), header, rows)
}

func (w *Writer) writeAccountSummary(s Settlement) error {
	header := []string{"GL_Account", "Account Name", "Lines", "Debit", "Credit", "Net"}
	rows := make([][]string, 0, len(s.Recon.Accounts))
	for _, a := range s.Recon.Accounts {
		rows = append(rows, []string{
			a.Account,
			a.AccountName,
			strconv.FormatInt(a.Lines, 10),
			money(a.Debit),
			money(a.Credit),
			money(a.Net),
		})
	}
	return writeCSV(w.path("GL_Account_Summary", s.SettlementID), header, rows)
}

// writeValidation emits one settlement's validation findings. Unlike the
// posting files this is written for blocked settlements too.
func (w *Writer) writeValidation(s Settlement) error {
	header := []string{"settlement_id", "severity", "kind", "detail", "blocking"}
	rows := make([][]string, 0, len(s.Recon.Flags))
	for _, f := range s.Recon.Flags {
		severity := "WARNING"
		if f.Blocking {
			severity = "ERROR"
		}
		rows = append(rows, []string{
			f.SettlementID,
			severity,
			string(f.Kind),
			f.Detail,
			strconv.FormatBool(f.Blocking),
		})
	}
	return writeCSV(w.path("Validation", s.SettlementID), header, rows)
}

// WriteValidationReport emits one run-level report covering every
// settlement, including those blocked from posting.
func (w *Writer) WriteValidationReport(settlements []Settlement) error {
	header := []string{
		"settlement_id", "source_file", "deposit_date", "deposit_amount",
		"record_count", "units_sold", "tax_total", "transaction_sum",
		"total_debit", "total_credit", "balance_delta", "balanced",
		"clearing_debit_total", "invoice_total", "payment_total",
		"clearing_minus_invoice", "transaction_sum_minus_invoice_total",
		"unclassified_count", "blocking", "flags",
	}
	rows := make([][]string, 0, len(settlements))
	for _, s := range settlements {
		f := s.Recon.Fact
		rows = append(rows, []string{
			f.SettlementID,
			f.SourceFile,
			date(f.DepositDate),
			money(f.DepositAmount),
			strconv.FormatInt(f.RecordCount, 10),
			f.UnitsSold.String(),
			money(f.TaxTotal),
			money(f.TransactionSum),
			money(f.TotalDebit),
			money(f.TotalCredit),
			money(f.BalanceDelta),
			strconv.FormatBool(f.Balanced),
			money(f.ClearingDebitTotal),
			money(f.InvoiceTotal),
			money(f.PaymentTotal),
			money(f.ClearingMinusInvoice),
			money(f.TransactionSumMinusInvoiceTotal),
			strconv.FormatInt(f.UnclassifiedCount, 10),
			strconv.FormatBool(f.Blocking),
			flagSummary(s.Recon.Flags),
		})
	}
	return writeCSV(filepath.Join(w.dir, "Validation_Report.csv"), header, rows)
}

func (w *Writer) path(kind, settlementID string) string {
	return filepath.Join(w.dir, fmt.Sprintf("%s_%s.csv", kind, settlementID))
}

func flagSummary(flags []recondomain.Flag) string {
	if len(flags) == 0 {
		return ""
	}
	out := ""
	for i, f := range flags {
		if i > 0 {
			out += "; "
		}
		out += fmt.Sprintf("%s: %s", f.Kind, f.Detail)
	}
	return out
}

var Module = fx.Module("export",
	fx.Provide(NewWriter),
)
