package metrics

import (
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Config supplies the constant labels attached to every metric.
type Config struct {
	ServiceName string
	Environment string
}

// RunMetrics captures settlement engine health signals.
type RunMetrics struct {
	runs                 *prometheus.CounterVec
	runDuration          prometheus.Observer
	settlementsProcessed *prometheus.CounterVec
	settlementsBlocked   *prometheus.CounterVec
	recordsRead          prometheus.Counter
	parseWarnings        prometheus.Counter
	unclassifiedLines    prometheus.Counter
	journalLines         prometheus.Counter
	invoiceLines         prometheus.Counter
}

var (
	runMetricsOnce sync.Once
	runMetrics     *RunMetrics
)

// Run returns the singleton engine metrics registry.
func Run() *RunMetrics {
	return RunWithConfig(Config{})
}

// RunWithConfig returns the singleton engine metrics registry using config labels.
func RunWithConfig(cfg Config) *RunMetrics {
	runMetricsOnce.Do(func() {
		runMetrics = newRunMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return runMetrics
}

// ResetRunMetricsForTest resets the engine metrics singleton for tests.
func ResetRunMetricsForTest() {
	runMetricsOnce = sync.Once{}
	runMetrics = nil
}

func newRunMetrics(registerer prometheus.Registerer, cfg Config) *RunMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "settleline"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}
	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "settleline_runs_total",
		Help:        "Engine runs by outcome.",
		ConstLabels: constLabels,
	}, []string{"status"})
	runDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:        "settleline_run_duration_seconds",
		Help:        "End-to-end engine run latency.",
		Buckets:     []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600},
		ConstLabels: constLabels,
	})
	settlementsProcessed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "settleline_settlements_processed_total",
		Help:        "Settlements processed by outcome.",
		ConstLabels: constLabels,
	}, []string{"outcome"})
	settlementsBlocked := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "settleline_settlements_blocked_total",
		Help:        "Settlements withheld from posting by reason.",
		ConstLabels: constLabels,
	}, []string{"reason"})
	recordsRead := prometheus.NewCounter(prometheus.CounterOpts{
		Name:        "settleline_records_read_total",
		Help:        "Settlement rows ingested across all runs.",
		ConstLabels: constLabels,
	})
	parseWarnings := prometheus.NewCounter(prometheus.CounterOpts{
		Name:        "settleline_parse_warnings_total",
		Help:        "Row fields coerced to defaults during ingestion.",
		ConstLabels: constLabels,
	})
	unclassifiedLines := prometheus.NewCounter(prometheus.CounterOpts{
		Name:        "settleline_unclassified_lines_total",
		Help:        "Journal lines that fell through the GL rule cascade.",
		ConstLabels: constLabels,
	})
	journalLines := prometheus.NewCounter(prometheus.CounterOpts{
		Name:        "settleline_journal_lines_total",
		Help:        "Journal lines generated.",
		ConstLabels: constLabels,
	})
	invoiceLines := prometheus.NewCounter(prometheus.CounterOpts{
		Name:        "settleline_invoice_lines_total",
		Help:        "Invoice lines composed.",
		ConstLabels: constLabels,
	})

	registerer.MustRegister(
		runs,
		runDuration,
		settlementsProcessed,
		settlementsBlocked,
		recordsRead,
		parseWarnings,
		unclassifiedLines,
		journalLines,
		invoiceLines,
	)

	return &RunMetrics{
		runs:                 runs,
		runDuration:          runDuration,
		settlementsProcessed: settlementsProcessed,
		settlementsBlocked:   settlementsBlocked,
		recordsRead:          recordsRead,
		parseWarnings:        parseWarnings,
		unclassifiedLines:    unclassifiedLines,
		journalLines:         journalLines,
		invoiceLines:         invoiceLines,
	}
}

// IncRun increments the run counter for an outcome status.
func (m *RunMetrics) IncRun(status string) {
	if m == nil || m.runs == nil {
		return
	}
	m.runs.WithLabelValues(status).Inc()
}

// ObserveRunDuration records end-to-end run latency in seconds.
func (m *RunMetrics) ObserveRunDuration(duration time.Duration) {
	if m == nil || m.runDuration == nil {
		return
	}
	m.runDuration.Observe(duration.Seconds())
}

// IncSettlementProcessed increments the processed counter for an outcome.
func (m *RunMetrics) IncSettlementProcessed(outcome string) {
	if m == nil || m.settlementsProcessed == nil {
		return
	}
	m.settlementsProcessed.WithLabelValues(outcome).Inc()
}

// IncSettlementBlocked increments the blocked counter for a reason.
func (m *RunMetrics) IncSettlementBlocked(reason string) {
	if m == nil || m.settlementsBlocked == nil {
		return
	}
	m.settlementsBlocked.WithLabelValues(reason).Inc()
}

// AddRecordsRead increments the ingested row counter by count.
func (m *RunMetrics) AddRecordsRead(count int) {
	if m == nil || m.recordsRead == nil || count <= 0 {
		return
	}
	m.recordsRead.Add(float64(count))
}

// AddParseWarnings increments the parse warning counter by count.
func (m *RunMetrics) AddParseWarnings(count int) {
	if m == nil || m.parseWarnings == nil || count <= 0 {
		return
	}
	m.parseWarnings.Add(float64(count))
}

// AddUnclassifiedLines increments the unclassified line counter by count.
func (m *RunMetrics) AddUnclassifiedLines(count int) {
	if m == nil || m.unclassifiedLines == nil || count <= 0 {
		return
	}
	m.unclassifiedLines.Add(float64(count))
}

// AddJournalLines increments the journal line counter by count.
func (m *RunMetrics) AddJournalLines(count int) {
	if m == nil || m.journalLines == nil || count <= 0 {
		return
	}
	m.journalLines.Add(float64(count))
}

// AddInvoiceLines increments the invoice line counter by count.
func (m *RunMetrics) AddInvoiceLines(count int) {
	if m == nil || m.invoiceLines == nil || count <= 0 {
		return
	}
	m.invoiceLines.Add(float64(count))
}

const (
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"

	SettlementOutcomeClean   = "clean"
	SettlementOutcomeFlagged = "flagged"

	BlockReasonUnbalanced   = "unbalanced_journal"
	BlockReasonUnclassified = "unclassified_lines"
)
