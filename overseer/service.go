package overseer

import (
	"context"

	"github.com/facebookgo/clock"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/solid-online/capa-money-market/core"
	"github.com/solid-online/capa-money-market/liquidation"
	"github.com/solid-online/capa-money-market/oracle"
)

type (
	Config struct {
		// Address is this overseer's own contract address, the sender
		// identity for custody dispatches.
		Address             string `json:"address"`
		Owner               string `json:"owner"`
		OracleContract      string `json:"oracleContract"`
		MarketContract      string `json:"marketContract"`
		LiquidationContract string `json:"liquidationContract"`
		CollectorContract   string `json:"collectorContract"`
		StableContract      string `json:"stableContract"`
		// StableDenom is the quote denom borrow limits are expressed in.
		StableDenom string `json:"stableDenom"`
		// PriceTimeframe bounds oracle price staleness, in seconds.
		PriceTimeframe int64 `json:"priceTimeframe"`
	}

	Service struct {
		clk clock.Clock
		log core.Log

		config      Config
		whitelist   WhitelistStore
		collaterals CollateralStore

		prices      oracle.PriceQuerier
		custodies   CustodyDispatcher
		market      LoanQuerier
		liquidation liquidation.AmountQuerier
	}

	UpdateConfig struct {
		Owner               *string
		OracleContract      *string
		LiquidationContract *string
		PriceTimeframe      *int64
	}
)

func NewService(
	clk clock.Clock,
	log core.Log,
	config Config,
	whitelist WhitelistStore,
	collaterals CollateralStore,
	prices oracle.PriceQuerier,
	custodies CustodyDispatcher,
	market LoanQuerier,
	liquidationAmounts liquidation.AmountQuerier,
) *Service {
	return &Service{
		clk:         clk,
		log:         log,
		config:      config,
		whitelist:   whitelist,
		collaterals: collaterals,
		prices:      prices,
		custodies:   custodies,
		market:      market,
		liquidation: liquidationAmounts,
	}
}

func (s *Service) Config() Config {
	return s.config
}

func (s *Service) UpdateConfig(ctx context.Context, sender string, update UpdateConfig) error {
	if sender != s.config.Owner {
		return core.Unauthorized
	}
	if update.Owner != nil {
		s.config.Owner = *update.Owner
	}
	if update.OracleContract != nil {
		s.config.OracleContract = *update.OracleContract
	}
	if update.LiquidationContract != nil {
		s.config.LiquidationContract = *update.LiquidationContract
	}
	if update.PriceTimeframe != nil {
		s.config.PriceTimeframe = *update.PriceTimeframe
	}

	s.log.Info().Str("action", "update_config").Msg("overseer config updated")
	return nil
}

// Whitelist registers a new collateral type, owner only. Re-registration is
// rejected; max LTV must sit strictly inside (0, 1).
func (s *Service) Whitelist(ctx context.Context, sender string, elem WhitelistElem) error {
	if sender != s.config.Owner {
		return core.Unauthorized
	}

	if _, err := s.whitelist.GetWhitelistElem(ctx, elem.CollateralToken); err == nil {
		return errors.Wrapf(TokenAlreadyRegistered, "token %s", elem.CollateralToken)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if err := validateMaxLtv(elem.MaxLtv); err != nil {
		return err
	}
	if err := s.whitelist.SaveWhitelistElem(ctx, &elem); err != nil {
		return err
	}

	s.log.Info().
		Str("action", "register_whitelist").
		Str("collateral_token", elem.CollateralToken).
		Str("custody_contract", elem.CustodyContract).
		Str("max_ltv", elem.MaxLtv.String()).
		Msg("collateral whitelisted")
	return nil
}

// UpdateWhitelist updates the custody contract or max LTV of a registered
// collateral type, owner only.
func (s *Service) UpdateWhitelist(ctx context.Context, sender, collateralToken string, custodyContract *string, maxLtv *decimal.Decimal) error {
	if sender != s.config.Owner {
		return core.Unauthorized
	}

	elem, err := s.whitelist.GetWhitelistElem(ctx, collateralToken)
	if err != nil {
		return err
	}
	if custodyContract != nil {
		elem.CustodyContract = *custodyContract
	}
	if maxLtv != nil {
		if err := validateMaxLtv(*maxLtv); err != nil {
			return err
		}
		elem.MaxLtv = *maxLtv
	}
	if err := s.whitelist.SaveWhitelistElem(ctx, elem); err != nil {
		return err
	}

	s.log.Info().
		Str("action", "update_whitelist").
		Str("collateral_token", collateralToken).
		Str("custody_contract", elem.CustodyContract).
		Str("max_ltv", elem.MaxLtv.String()).
		Msg("whitelist updated")
	return nil
}

func validateMaxLtv(maxLtv decimal.Decimal) error {
	if !maxLtv.IsPositive() || maxLtv.GreaterThanOrEqual(core.ONE) {
		return errors.Wrapf(InvalidMaxLtv, "max_ltv %s", maxLtv)
	}
	return nil
}
