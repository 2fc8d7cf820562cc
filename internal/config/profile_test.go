package config

import (
	"os"
	"path/filepath"
	"testing"

	journaldomain "github.com/smallbiznis/settleline/internal/journal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadProfileDefaults(t *testing.T) {
	p, err := LoadProfile("")
	require.NoError(t, err)

	assert.Equal(t, "Amazon.ca", p.CustomerName)
	assert.Equal(t, "Amazon.ca Clearing", p.PaidThroughAccount)
	assert.Equal(t, "Direct Deposit", p.PaymentMode)
	assert.Equal(t, "CAD", p.DepositCurrency)
}

func TestLoadProfileMissingFileUsesDefaults(t *testing.T) {
	p, err := LoadProfile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "Amazon.ca", p.CustomerName)
}

func TestLoadProfileOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	content := "customer_name: Acme Imports\n" +
		"payment_mode: Wire\n" +
		"gl_account_names:\n" +
		"  revenue: Acme Marketplace Revenue\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	p, err := LoadProfile(path)
	require.NoError(t, err)

	assert.Equal(t, "Acme Imports", p.CustomerName)
	assert.Equal(t, "Wire", p.PaymentMode)
	assert.Equal(t, "Acme Marketplace Revenue", p.AccountName(journaldomain.GLAccountRevenue))
	// Untouched codes keep their built-in names.
	assert.Equal(t, "Amazon.ca Clearing", p.AccountName(journaldomain.GLAccountClearing))
}

func TestAccountNameFallsBackToCode(t *testing.T) {
	p := Profile{}
	assert.Equal(t, "made_up", p.AccountName(journaldomain.GLAccount("made_up")))
}
