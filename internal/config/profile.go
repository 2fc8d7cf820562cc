package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
	journaldomain "github.com/smallbiznis/settleline/internal/journal/domain"
)

// Profile is the YAML engine profile: the business constants of a seller's
// reconciliation setup. Defaults cover the Amazon.ca configuration; a profile
// file overrides per deployment.
type Profile struct {
	CustomerName       string `mapstructure:"customer_name"`
	PaidThroughAccount string `mapstructure:"paid_through_account"`
	PaymentMode        string `mapstructure:"payment_mode"`
	DepositCurrency    string `mapstructure:"deposit_currency"`

	// AccountNames maps GL account codes to ledger display names, keyed by
	// the journal domain's GLAccount constants.
	AccountNames map[string]string `mapstructure:"gl_account_names"`
}

// AccountName resolves a GL account's ledger display name, falling back to
// the built-in defaults for codes the profile does not override.
func (p Profile) AccountName(account journaldomain.GLAccount) string {
	if name, ok := p.AccountNames[string(account)]; ok && name != "" {
		return name
	}
	if name, ok := journaldomain.DefaultAccountNames[account]; ok {
		return name
	}
	return string(account)
}

// LoadProfile reads the engine profile from path. A missing file yields the
// built-in defaults; a malformed file is an error.
func LoadProfile(path string) (Profile, error) {
	v := viper.New()
	v.SetDefault("customer_name", "Amazon.ca")
	v.SetDefault("paid_through_account", journaldomain.DefaultAccountNames[journaldomain.GLAccountClearing])
	v.SetDefault("payment_mode", "Direct Deposit")
	v.SetDefault("deposit_currency", "CAD")

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return Profile{}, fmt.Errorf("read engine profile: %w", err)
			}
		}
	}

	var p Profile
	if err := v.Unmarshal(&p); err != nil {
		return Profile{}, fmt.Errorf("unmarshal engine profile: %w", err)
	}
	return p, nil
}
