package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/smallbiznis/settleline/internal/amount"
	"github.com/smallbiznis/settleline/internal/clock"
	"github.com/smallbiznis/settleline/internal/config"
	enginedomain "github.com/smallbiznis/settleline/internal/engine/domain"
	"github.com/smallbiznis/settleline/internal/export"
	"github.com/smallbiznis/settleline/internal/ingest"
	invoicedomain "github.com/smallbiznis/settleline/internal/invoice/domain"
	journaldomain "github.com/smallbiznis/settleline/internal/journal/domain"
	"github.com/smallbiznis/settleline/internal/observability/metrics"
	"github.com/smallbiznis/settleline/internal/pricing"
	recondomain "github.com/smallbiznis/settleline/internal/recon/domain"
	settlementdomain "github.com/smallbiznis/settleline/internal/settlement/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// Engine drives one batch run: ingest, resolve prices, then derive,
// classify, compose and aggregate each settlement independently.
type Engine struct {
	log      *zap.Logger
	cfg      config.Config
	reader   *ingest.Reader
	journal  journaldomain.Service
	invoices invoicedomain.Service
	recon    recondomain.Service
	writer   *export.Writer
	db       *gorm.DB
	node     *snowflake.Node
	clock    clock.Clock
	metrics  *metrics.RunMetrics
}

type EngineParam struct {
	fx.In

	Log      *zap.Logger
	Config   config.Config
	Reader   *ingest.Reader
	Journal  journaldomain.Service
	Invoices invoicedomain.Service
	Recon    recondomain.Service
	Writer   *export.Writer
	DB       *gorm.DB
	Node     *snowflake.Node
	Clock    clock.Clock
}

func NewEngine(p EngineParam) *Engine {
	return &Engine{
		log:      p.Log.Named("engine"),
		cfg:      p.Config,
		reader:   p.Reader,
		journal:  p.Journal,
		invoices: p.Invoices,
		recon:    p.Recon,
		writer:   p.Writer,
		db:       p.DB,
		node:     p.Node,
		clock:    p.Clock,
		metrics: metrics.RunWithConfig(metrics.Config{
			ServiceName: p.Config.AppName,
			Environment: p.Config.Environment,
		}),
	}
}

// Execute processes every extract under the configured input directory
// and returns the recorded run. A settlement that fails validation is
// isolated: its posting exports are withheld while the rest of the batch
// completes normally.
func (e *Engine) Execute(ctx context.Context) (*enginedomain.Run, error) {
	started := e.clock.Now()
	run := &enginedomain.Run{
		ID:        e.node.Generate(),
		BatchRef:  uuid.NewString(),
		InputDir:  e.cfg.InputDir,
		Status:    enginedomain.RunStatusRunning,
		StartedAt: started,
	}
	if err := e.db.WithContext(ctx).Create(run).Error; err != nil {
		return nil, fmt.Errorf("record run: %w", err)
	}

	records, stats, err := e.reader.ReadDir(e.cfg.InputDir)
	if err != nil {
		e.failRun(ctx, run, started)
		return run, err
	}
	run.FilesRead = int64(stats.FilesRead)
	run.FilesSkipped = int64(stats.FilesSkipped)
	run.RowsRead = int64(stats.RowsRead)
	run.RowsDropped = int64(stats.RowsDropped)
	run.ParseWarnings = int64(stats.ParseWarnings)
	e.metrics.AddRecordsRead(stats.RowsRead)
	e.metrics.AddParseWarnings(stats.ParseWarnings)

	prices := pricing.Build(records)
	groups := settlementdomain.GroupBySettlement(records)
	ids := settlementdomain.SettlementIDs(groups)
	run.SettlementCount = int64(len(ids))

	settlements := make([]export.Settlement, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Workers)
	for i, id := range ids {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			settlements[i] = e.processSettlement(id, groups[id], prices)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		e.failRun(ctx, run, started)
		return run, fmt.Errorf("process settlements: %w", err)
	}

	for i := range settlements {
		e.stamp(run.ID, &settlements[i])
	}
	if err := e.persist(ctx, settlements); err != nil {
		e.failRun(ctx, run, started)
		return run, err
	}
	if err := e.export(settlements); err != nil {
		e.failRun(ctx, run, started)
		return run, err
	}

	for _, s := range settlements {
		if s.Blocked() {
			run.BlockedCount++
		}
	}

	completed := e.clock.Now()
	run.Status = enginedomain.RunStatusCompleted
	run.CompletedAt = &completed
	if err := e.db.WithContext(ctx).Save(run).Error; err != nil {
		return run, fmt.Errorf("finalize run: %w", err)
	}

	e.metrics.IncRun(metrics.RunStatusCompleted)
	e.metrics.ObserveRunDuration(completed.Sub(started))
	e.log.Info("run completed",
		zap.String("batch_ref", run.BatchRef),
		zap.Int64("settlements", run.SettlementCount),
		zap.Int64("blocked", run.BlockedCount),
		zap.Int64("rows", run.RowsRead),
	)
	return run, nil
}

// processSettlement runs the full per-settlement pipeline. The steps are
// inherently sequential: the deposit-row adjustment and the balance check
// both need the settlement's complete, ordered line set.
func (e *Engine) processSettlement(id string, records []settlementdomain.Record, prices pricing.Table) export.Settlement {
	lines := amount.Derive(records)
	journal := e.journal.Build(id, lines)
	invoices := e.invoices.Compose(id, lines, prices)
	recon := e.recon.Aggregate(lines, journal, invoices)

	e.metrics.AddJournalLines(len(journal.Lines))
	e.metrics.AddInvoiceLines(len(invoices.Lines))
	e.metrics.AddUnclassifiedLines(journal.UnclassifiedCount)
	if recon.Fact.Blocking {
		e.metrics.IncSettlementProcessed(metrics.SettlementOutcomeFlagged)
		if !journal.Balanced {
			e.metrics.IncSettlementBlocked(metrics.BlockReasonUnbalanced)
		}
		if journal.UnclassifiedCount > 0 {
			e.metrics.IncSettlementBlocked(metrics.BlockReasonUnclassified)
		}
	} else {
		e.metrics.IncSettlementProcessed(metrics.SettlementOutcomeClean)
	}

	return export.Settlement{
		SettlementID: id,
		Journal:      journal,
		Invoices:     invoices,
		Recon:        recon,
	}
}

// stamp assigns run-scoped identifiers before persistence.
func (e *Engine) stamp(runID snowflake.ID, s *export.Settlement) {
	for i := range s.Journal.Lines {
		s.Journal.Lines[i].ID = e.node.Generate()
		s.Journal.Lines[i].RunID = runID
	}
	for i := range s.Invoices.Lines {
		s.Invoices.Lines[i].RunID = runID
	}
	for i := range s.Invoices.Payments {
		s.Invoices.Payments[i].RunID = runID
	}
	s.Recon.Fact.RunID = runID
}

func (e *Engine) persist(ctx context.Context, settlements []export.Settlement) error {
	return e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, s := range settlements {
			if len(s.Journal.Lines) > 0 {
				if err := tx.Create(s.Journal.Lines).Error; err != nil {
					return fmt.Errorf("persist journal %s: %w", s.SettlementID, err)
				}
			}
			if len(s.Invoices.Lines) > 0 {
				if err := tx.Create(s.Invoices.Lines).Error; err != nil {
					return fmt.Errorf("persist invoices %s: %w", s.SettlementID, err)
				}
			}
			if len(s.Invoices.Payments) > 0 {
				if err := tx.Create(s.Invoices.Payments).Error; err != nil {
					return fmt.Errorf("persist payments %s: %w", s.SettlementID, err)
				}
			}
			if err := tx.Create(&s.Recon.Fact).Error; err != nil {
				return fmt.Errorf("persist facts %s: %w", s.SettlementID, err)
			}
		}
		return nil
	})
}

func (e *Engine) export(settlements []export.Settlement) error {
	for _, s := range settlements {
		if err := e.writer.WriteSettlement(s); err != nil {
			return fmt.Errorf("export %s: %w", s.SettlementID, err)
		}
	}
	return e.writer.WriteValidationReport(settlements)
}

func (e *Engine) failRun(ctx context.Context, run *enginedomain.Run, started time.Time) {
	completed := e.clock.Now()
	run.Status = enginedomain.RunStatusFailed
	run.CompletedAt = &completed
	if err := e.db.WithContext(ctx).Save(run).Error; err != nil {
		e.log.Error("recording failed run", zap.Error(err))
	}
	e.metrics.IncRun(metrics.RunStatusFailed)
	e.metrics.ObserveRunDuration(completed.Sub(started))
}
