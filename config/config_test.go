package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
database:
  dsn: "host=localhost user=capa dbname=capa"
oracle:
  address: "oracle0000"
  owner: "owner0000"
  base_asset: "uusd"
market:
  address: "market0000"
  owner: "owner0000"
  base_borrow_fee: "0.01"
custody:
  - address: "custody0000"
    owner: "owner0000"
    collateral_token: "bluna0000"
    max_deposit: "1000000"
wrapper:
  - address: "wrapper0000"
    owner: "owner0000"
    collateral_denom: "uluna"
    wrapper_denom: "wluna"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "uusd", cfg.StableDenom)
	assert.Equal(t, "oracle0000", cfg.Oracle.Address)
	assert.True(t, cfg.Market.BaseBorrowFee.Equal(decimal.RequireFromString("0.01")))
	// Untouched fields keep their defaults.
	assert.True(t, cfg.Market.FeeIncreaseFactor.Equal(decimal.NewFromInt(2)))
	assert.Equal(t, int64(60), cfg.Overseer.PriceTimeframe)

	require.Equal(t, 1, len(cfg.Custody))
	assert.Equal(t, "bluna0000", cfg.Custody[0].CollateralToken)
	require.NotNil(t, cfg.Custody[0].MaxDeposit)
	assert.True(t, cfg.Custody[0].MaxDeposit.Equal(decimal.NewFromInt(1_000_000)))

	require.Equal(t, 1, len(cfg.Wrapper))
	assert.Equal(t, "wluna", cfg.Wrapper[0].WrapperDenom)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := DefaultConfig
	valid.Oracle.BaseAsset = "uusd"

	cases := []struct {
		name   string
		mutate func(cfg *Config)
	}{
		{
			name:   "empty stable denom",
			mutate: func(cfg *Config) { cfg.StableDenom = "" },
		},
		{
			name:   "empty oracle base asset",
			mutate: func(cfg *Config) { cfg.Oracle.BaseAsset = "" },
		},
		{
			name:   "zero fee increase factor",
			mutate: func(cfg *Config) { cfg.Market.FeeIncreaseFactor = Decimal{} },
		},
		{
			name:   "confiscatory base fee",
			mutate: func(cfg *Config) { cfg.Market.BaseBorrowFee = Decimal{decimal.NewFromInt(1)} },
		},
		{
			name:   "zero price timeframe",
			mutate: func(cfg *Config) { cfg.Overseer.PriceTimeframe = 0 },
		},
		{
			name:   "custody without token",
			mutate: func(cfg *Config) { cfg.Custody = []CustodyConfig{{Address: "custody0000"}} },
		},
		{
			name:   "wrapper without denoms",
			mutate: func(cfg *Config) { cfg.Wrapper = []WrapperConfig{{Address: "wrapper0000"}} },
		},
	}

	require.NoError(t, valid.Validate())
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cfg := valid
			c.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
