package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/settleline/internal/clock"
	"github.com/smallbiznis/settleline/internal/config"
	enginedomain "github.com/smallbiznis/settleline/internal/engine/domain"
	"github.com/smallbiznis/settleline/internal/export"
	"github.com/smallbiznis/settleline/internal/ingest"
	invoicedomain "github.com/smallbiznis/settleline/internal/invoice/domain"
	invoiceservice "github.com/smallbiznis/settleline/internal/invoice/service"
	journaldomain "github.com/smallbiznis/settleline/internal/journal/domain"
	journalservice "github.com/smallbiznis/settleline/internal/journal/service"
	recondomain "github.com/smallbiznis/settleline/internal/recon/domain"
	reconservice "github.com/smallbiznis/settleline/internal/recon/service"
	"github.com/smallbiznis/settleline/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_%d?mode=memory&cache=shared", time.Now().UnixNano())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(conn))
	return conn
}

// s1Extract is the canonical settlement: a 100 deposit, a 60 principal sale
// with quantity, and a 40 FBA transportation fee.
const s1Extract = "settlement-id\torder-id\tsku\ttransaction-type\tprice-type\tshipment-fee-type\tprice-amount\tshipment-fee-amount\tquantity-purchased\ttotal-amount\tcurrency\tposted-date\tdeposit-date\n" +
	"S1\t\t\t\t\t\t\t\t\t100\tCAD\t\t2024-04-02\n" +
	"S1\t701-1234567-8901234\tSKU1\tOrder\tPrincipal\t\t60\t\t1\t\tCAD\t2024-04-01\t\n" +
	"S1\t701-1234567-8901234\tSKU1\tOrder\t\tfba transportation fee\t\t40\t\t\tCAD\t2024-04-01\t\n"

func newTestEngine(t *testing.T, conn *gorm.DB, inputDir, outputDir string) *Engine {
	t.Helper()

	node, err := snowflake.NewNode(13)
	require.NoError(t, err)
	profile, err := config.LoadProfile("")
	require.NoError(t, err)

	cfg := config.Config{
		AppName:     "settleline",
		Environment: "test",
		InputDir:    inputDir,
		OutputDir:   outputDir,
		Workers:     2,
	}
	log := zap.NewNop()

	return NewEngine(EngineParam{
		Log:    log,
		Config: cfg,
		Reader: ingest.NewReader(log),
		Journal: journalservice.NewService(journalservice.ServiceParam{
			Log:     log,
			Profile: profile,
		}),
		Invoices: invoiceservice.NewService(invoiceservice.ServiceParam{
			Log:     log,
			Profile: profile,
			Clock:   clock.NewSystemClock(),
			Node:    node,
		}),
		Recon: reconservice.NewService(reconservice.ServiceParam{
			Log:     log,
			Profile: profile,
			Node:    node,
		}),
		Writer: export.NewWriter(export.WriterParam{Log: log, Config: cfg}),
		DB:     conn,
		Node:   node,
		Clock:  clock.NewSystemClock(),
	})
}

func TestExecuteProcessesCleanSettlement(t *testing.T) {
	inputDir := t.TempDir()
	outputDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(inputDir, "s1.txt"), []byte(s1Extract), 0o644))

	conn := setupTestDB(t)
	e := newTestEngine(t, conn, inputDir, outputDir)

	run, err := e.Execute(context.Background())
	require.NoError(t, err)
	require.NotNil(t, run)

	assert.Equal(t, enginedomain.RunStatusCompleted, run.Status)
	assert.Equal(t, int64(1), run.FilesRead)
	assert.Equal(t, int64(3), run.RowsRead)
	assert.Equal(t, int64(1), run.SettlementCount)
	assert.Equal(t, int64(0), run.BlockedCount)

	var journalLines []journaldomain.Line
	require.NoError(t, conn.Where("run_id = ?", run.ID).Order("sequence_number ASC").Find(&journalLines).Error)
	require.Len(t, journalLines, 3)
	debit, credit := journaldomain.Totals(journalLines)
	assert.Equal(t, "100", debit.String())
	assert.Equal(t, "100", credit.String())

	var invoiceLines []invoicedomain.Line
	require.NoError(t, conn.Where("run_id = ?", run.ID).Find(&invoiceLines).Error)
	require.Len(t, invoiceLines, 1)
	assert.Equal(t, "AMZN8901234", invoiceLines[0].InvoiceNumber)
	assert.Equal(t, "60", invoiceLines[0].LineAmount.String())

	var payments []invoicedomain.Payment
	require.NoError(t, conn.Where("run_id = ?", run.ID).Find(&payments).Error)
	require.Len(t, payments, 1)
	assert.Equal(t, "60", payments[0].Amount.String())

	var facts []recondomain.SettlementFact
	require.NoError(t, conn.Where("run_id = ?", run.ID).Find(&facts).Error)
	require.Len(t, facts, 1)
	assert.True(t, facts[0].Balanced)
	assert.False(t, facts[0].Blocking)
	assert.True(t, facts[0].TransactionSum.IsZero())

	for _, name := range []string{"Journal_S1.csv", "Invoice_S1.csv", "Payment_S1.csv", "GL_Account_Summary_S1.csv", "Validation_S1.csv", "Validation_Report.csv"} {
		_, err := os.Stat(filepath.Join(outputDir, name))
		assert.NoError(t, err, "%s must be written", name)
	}
}

func TestExecuteIsolatesBlockedSettlement(t *testing.T) {
	inputDir := t.TempDir()
	outputDir := t.TempDir()

	// S2 carries an unmatched transaction type next to the clean S1 batch.
	extract := s1Extract +
		"S2\t\t\t\t\t\t\t\t\t20\tCAD\t\t2024-04-03\n" +
		"S2\t\t\tMystery Adjustment\t\t\t20\t\t\t\tCAD\t2024-04-01\t\n"
	require.NoError(t, os.WriteFile(filepath.Join(inputDir, "batch.txt"), []byte(extract), 0o644))

	conn := setupTestDB(t)
	e := newTestEngine(t, conn, inputDir, outputDir)

	run, err := e.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), run.SettlementCount)
	assert.Equal(t, int64(1), run.BlockedCount)

	// The clean settlement posts; the flagged one is withheld.
	_, err = os.Stat(filepath.Join(outputDir, "Journal_S1.csv"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(outputDir, "Journal_S2.csv"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(outputDir, "Validation_S2.csv"))
	assert.NoError(t, err, "blocked settlement still gets its validation file")

	// Both settlements appear in the validation report.
	report, err := os.ReadFile(filepath.Join(outputDir, "Validation_Report.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(report), "S1")
	assert.Contains(t, string(report), "S2")
	assert.Contains(t, string(report), "unclassified_lines")
}

func TestExecuteIsIdempotentOnIdenticalInput(t *testing.T) {
	inputDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(inputDir, "s1.txt"), []byte(s1Extract), 0o644))

	conn := setupTestDB(t)

	firstOut := t.TempDir()
	_, err := newTestEngine(t, conn, inputDir, firstOut).Execute(context.Background())
	require.NoError(t, err)

	secondOut := t.TempDir()
	_, err = newTestEngine(t, conn, inputDir, secondOut).Execute(context.Background())
	require.NoError(t, err)

	for _, name := range []string{"Journal_S1.csv", "Invoice_S1.csv", "Payment_S1.csv"} {
		first, err := os.ReadFile(filepath.Join(firstOut, name))
		require.NoError(t, err)
		second, err := os.ReadFile(filepath.Join(secondOut, name))
		require.NoError(t, err)
		assert.Equal(t, first, second, "%s must be byte-identical across runs", name)
	}
}

func TestExecuteFailsWhenInputDirMissing(t *testing.T) {
	conn := setupTestDB(t)
	e := newTestEngine(t, conn, filepath.Join(t.TempDir(), "missing"), t.TempDir())

	run, err := e.Execute(context.Background())
	require.Error(t, err)
	require.NotNil(t, run)
	assert.Equal(t, enginedomain.RunStatusFailed, run.Status)

	var stored enginedomain.Run
	require.NoError(t, conn.First(&stored, "id = ?", run.ID).Error)
	assert.Equal(t, enginedomain.RunStatusFailed, stored.Status)
}
