package ingest

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	settlementdomain "github.com/smallbiznis/settleline/internal/settlement/domain"
	"go.uber.org/zap"
)

// Stats summarizes what a read pass did. Parse warnings are non-fatal per-row
// coercions; skipped files are structural failures that did not stop the run.
type Stats struct {
	FilesRead     int
	FilesSkipped  int
	RowsRead      int
	RowsDropped   int
	ParseWarnings int
}

// Reader ingests raw settlement extracts and emits normalized records.
type Reader struct {
	log *zap.Logger
}

func NewReader(log *zap.Logger) *Reader {
	return &Reader{log: log.Named("ingest.reader")}
}

// ReadDir reads every *.txt and *.csv extract under dir, in file-name order so
// repeated runs assign identical sequence numbers.
func (r *Reader) ReadDir(dir string) ([]settlementdomain.Record, Stats, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("read extract dir: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext == ".txt" || ext == ".csv" || ext == ".tsv" {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(paths)

	records, stats := r.ReadFiles(paths)
	return records, stats, nil
}

// ReadFiles reads the given extracts in order and assigns a strictly
// increasing sequence number across the whole combined batch. A file that
// cannot be decoded at all is skipped with an error log; the run continues.
func (r *Reader) ReadFiles(paths []string) ([]settlementdomain.Record, Stats) {
	var (
		records []settlementdomain.Record
		stats   Stats
		seq     int64
	)

	for _, path := range paths {
		fileRecords, fileStats, err := r.readFile(path, &seq)
		if err != nil {
			r.log.Error("skipping unreadable extract",
				zap.String("file", filepath.Base(path)),
				zap.Error(err),
			)
			stats.FilesSkipped++
			continue
		}
		records = append(records, fileRecords...)
		stats.FilesRead++
		stats.RowsRead += fileStats.RowsRead
		stats.RowsDropped += fileStats.RowsDropped
		stats.ParseWarnings += fileStats.ParseWarnings
	}

	r.log.Info("extracts ingested",
		zap.Int("files", stats.FilesRead),
		zap.Int("files_skipped", stats.FilesSkipped),
		zap.Int("rows", len(records)),
		zap.Int("rows_dropped", stats.RowsDropped),
		zap.Int("parse_warnings", stats.ParseWarnings),
	)
	return records, stats
}

func (r *Reader) readFile(path string, seq *int64) ([]settlementdomain.Record, Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Stats{}, err
	}
	defer f.Close()

	br := bufio.NewReader(f)
	delimiter, err := sniffDelimiter(br)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("sniff delimiter: %w", err)
	}

	cr := csv.NewReader(br)
	cr.Comma = delimiter
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		return nil, Stats{}, fmt.Errorf("read header: %w", err)
	}
	header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	idx := headerIndex(header)
	if _, ok := idx["settlement_id"]; !ok {
		return nil, Stats{}, fmt.Errorf("no settlement_id column in %s", filepath.Base(path))
	}

	name := filepath.Base(path)
	var (
		records []settlementdomain.Record
		stats   Stats
	)
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// A malformed row is dropped, not fatal to the file.
			r.log.Warn("dropping malformed row", zap.String("file", name), zap.Error(err))
			stats.RowsDropped++
			continue
		}
		stats.RowsRead++

		field := func(col string) string {
			i, ok := idx[col]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		if field("settlement_id") == "" {
			stats.RowsDropped++
			continue
		}

		*seq++
		rec, warnings := r.buildRecord(field, name, *seq)
		stats.ParseWarnings += warnings
		records = append(records, rec)
	}

	return records, stats, nil
}

// buildRecord assembles one Record, coercing every numeric and date field.
// Failed conversions fall back to zero / nil and are counted as warnings.
func (r *Reader) buildRecord(field func(string) string, sourceFile string, seq int64) (settlementdomain.Record, int) {
	warnings := 0

	amount := func(col string) decimal.Decimal {
		d, err := settlementdomain.ParseAmount(field(col))
		if err != nil {
			r.log.Warn("amount parse failed, coerced to zero",
				zap.String("file", sourceFile),
				zap.Int64("sequence", seq),
				zap.String("column", col),
				zap.String("value", field(col)),
			)
			warnings++
		}
		return d
	}
	date := func(col string) *time.Time {
		t, err := settlementdomain.ParseDate(field(col))
		if err != nil {
			r.log.Warn("date parse failed, coerced to nil",
				zap.String("file", sourceFile),
				zap.Int64("sequence", seq),
				zap.String("column", col),
				zap.String("value", field(col)),
			)
			warnings++
		}
		return t
	}

	rec := settlementdomain.Record{
		SettlementID:    field("settlement_id"),
		OrderID:         field("order_id"),
		MerchantOrderID: field("merchant_order_id"),
		SKU:             field("sku"),

		TransactionType: field("transaction_type"),
		PriceType:       field("price_type"),

		ShipmentFeeType:           strings.ToLower(field("shipment_fee_type")),
		OrderFeeType:              field("order_fee_type"),
		ItemRelatedFeeType:        field("item_related_fee_type"),
		MiscFeeType:               field("misc_fee_type"),
		OtherFeeReasonDescription: field("other_fee_reason_description"),
		PromotionType:             field("promotion_type"),
		DirectPaymentType:         field("direct_payment_type"),

		PriceAmount:          amount("price_amount"),
		ShipmentFeeAmount:    amount("shipment_fee_amount"),
		OrderFeeAmount:       amount("order_fee_amount"),
		ItemRelatedFeeAmount: amount("item_related_fee_amount"),
		MiscFeeAmount:        amount("misc_fee_amount"),
		OtherFeeAmount:       amount("other_fee_amount"),
		DirectPaymentAmount:  amount("direct_payment_amount"),
		OtherAmount:          amount("other_amount"),
		PromotionAmount:      amount("promotion_amount"),

		Currency:        field("currency"),
		MarketplaceName: field("marketplace_name"),

		PostedDate:  date("posted_date"),
		DepositDate: date("deposit_date"),

		SequenceNumber: seq,
		SourceFile:     sourceFile,
	}

	if raw := field("quantity_purchased"); raw != "" {
		qty := amount("quantity_purchased")
		rec.QuantityPurchased = &qty
	}
	if raw := field("total_amount"); raw != "" {
		total := amount("total_amount")
		rec.TotalAmount = &total
	}

	return rec, warnings
}

// sniffDelimiter peeks at the first line: tab beats comma, tab is the default.
func sniffDelimiter(br *bufio.Reader) (rune, error) {
	peek, err := br.Peek(4096)
	if err != nil && err != io.EOF {
		return 0, err
	}
	line := string(peek)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	if strings.ContainsRune(line, '\t') {
		return '\t', nil
	}
	if strings.ContainsRune(line, ',') {
		return ',', nil
	}
	return '\t', nil
}
