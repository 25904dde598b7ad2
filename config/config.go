// Package config loads the deployment configuration: which contract
// instances to run, their addresses, and their economic parameters.
package config

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v2"
)

var DefaultConfig = Config{
	StableDenom: "uusd",
	Market: MarketConfig{
		BaseBorrowFee:     Decimal{decimal.RequireFromString("0.005")},
		FeeIncreaseFactor: Decimal{decimal.NewFromInt(2)},
	},
	Overseer: OverseerConfig{
		PriceTimeframe: 60,
	},
}

// Decimal is a yaml-decodable decimal.Decimal: values are written as
// strings so precision survives the round trip.
type Decimal struct {
	decimal.Decimal
}

func (d *Decimal) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return err
	}
	d.Decimal = v
	return nil
}

func (d Decimal) MarshalYAML() (any, error) {
	return d.String(), nil
}

type (
	Config struct {
		// StableDenom is the quote denom every price and borrow limit is
		// expressed in.
		StableDenom string `yaml:"stable_denom"`

		Database DatabaseConfig  `yaml:"database"`
		Oracle   OracleConfig    `yaml:"oracle"`
		Market   MarketConfig    `yaml:"market"`
		Overseer OverseerConfig  `yaml:"overseer"`
		Custody  []CustodyConfig `yaml:"custody"`
		Wrapper  []WrapperConfig `yaml:"wrapper"`
	}

	DatabaseConfig struct {
		DSN string `yaml:"dsn"`
	}

	OracleConfig struct {
		Address   string `yaml:"address"`
		Owner     string `yaml:"owner"`
		BaseAsset string `yaml:"base_asset"`
	}

	MarketConfig struct {
		Address           string   `yaml:"address"`
		Owner             string   `yaml:"owner"`
		BaseBorrowFee     Decimal  `yaml:"base_borrow_fee"`
		FeeIncreaseFactor Decimal  `yaml:"fee_increase_factor"`
		FlashMintFee      *Decimal `yaml:"flash_mint_fee"`
	}

	OverseerConfig struct {
		Address        string `yaml:"address"`
		Owner          string `yaml:"owner"`
		PriceTimeframe int64  `yaml:"price_timeframe"`
	}

	CustodyConfig struct {
		Address          string   `yaml:"address"`
		Owner            string   `yaml:"owner"`
		CollateralToken  string   `yaml:"collateral_token"`
		MaxDeposit       *Decimal `yaml:"max_deposit"`
		DepositsDisabled bool     `yaml:"deposits_disabled"`
	}

	WrapperConfig struct {
		Address         string `yaml:"address"`
		Owner           string `yaml:"owner"`
		CollateralDenom string `yaml:"collateral_denom"`
		WrapperDenom    string `yaml:"wrapper_denom"`
	}
)

func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer f.Close()

	cfg := DefaultConfig
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (cfg Config) Validate() error {
	if cfg.StableDenom == "" {
		return fmt.Errorf("'stable_denom' is empty")
	}
	if cfg.Oracle.BaseAsset == "" {
		return fmt.Errorf("'oracle.base_asset' is empty")
	}
	if !cfg.Market.FeeIncreaseFactor.IsPositive() {
		return fmt.Errorf("'market.fee_increase_factor' must be positive")
	}
	if cfg.Market.BaseBorrowFee.IsNegative() || cfg.Market.BaseBorrowFee.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("'market.base_borrow_fee' must sit in [0, 1)")
	}
	if cfg.Overseer.PriceTimeframe <= 0 {
		return fmt.Errorf("'overseer.price_timeframe' must be positive")
	}
	for i, c := range cfg.Custody {
		if c.CollateralToken == "" {
			return fmt.Errorf("'custody[%d].collateral_token' is empty", i)
		}
	}
	for i, w := range cfg.Wrapper {
		if w.CollateralDenom == "" || w.WrapperDenom == "" {
			return fmt.Errorf("'wrapper[%d]' denoms must be set", i)
		}
	}
	return nil
}
