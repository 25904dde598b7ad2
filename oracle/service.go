package oracle

import (
	"context"

	"github.com/facebookgo/clock"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/solid-online/capa-money-market/core"
	"github.com/solid-online/capa-money-market/observability"
	"github.com/solid-online/capa-money-market/token"
)

type (
	Config struct {
		Owner string `json:"owner"`
		// BaseAsset is the quote denom every price is expressed in.
		BaseAsset string `json:"baseAsset"`
	}

	// Service is one oracle contract instance: a registry of price
	// sources plus the recursive resolution engine over it.
	Service struct {
		clk clock.Clock
		log core.Log

		config  Config
		sources SourceStore

		contracts  ContractQuerier
		pairs      PairQuerier
		generators GeneratorQuerier
		supplies   token.SupplyQuerier
	}
)

func NewService(
	clk clock.Clock,
	log core.Log,
	config Config,
	sources SourceStore,
	contracts ContractQuerier,
	pairs PairQuerier,
	generators GeneratorQuerier,
	supplies token.SupplyQuerier,
) *Service {
	return &Service{
		clk:        clk,
		log:        log,
		config:     config,
		sources:    sources,
		contracts:  contracts,
		pairs:      pairs,
		generators: generators,
		supplies:   supplies,
	}
}

func (s *Service) Config() Config {
	return s.config
}

func (s *Service) UpdateConfig(ctx context.Context, sender string, owner *string) error {
	if sender != s.config.Owner {
		return core.Unauthorized
	}
	if owner == nil {
		return NoUpdatesDetected
	}
	s.config.Owner = *owner

	s.log.Info().
		Str("action", "update_config").
		Str("owner", s.config.Owner).
		Msg("oracle config updated")
	return nil
}

// RegisterAsset registers a new price source, owner only. Derived sources
// are trial-resolved before being stored so a registration pointing at a
// broken collaborator fails right away.
func (s *Service) RegisterAsset(ctx context.Context, sender, asset string, register RegisterSource) error {
	if sender != s.config.Owner {
		return core.Unauthorized
	}

	if _, err := s.sources.GetSource(ctx, asset); err == nil {
		return errors.Wrapf(AssetAlreadyWhitelisted, "asset %s", asset)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	source, err := s.buildSource(ctx, asset, register)
	if err != nil {
		return err
	}
	if err := s.sources.SaveSource(ctx, asset, source); err != nil {
		return err
	}

	s.log.Info().
		Str("action", "register_asset").
		Str("asset", asset).
		Str("source_type", source.Kind.String()).
		Msg("price source registered")
	return nil
}

// UpdateSource partially overrides an existing source's fields, owner only.
// The update's kind must match the stored source's kind; derived sources are
// trial-resolved again with the merged fields.
func (s *Service) UpdateSource(ctx context.Context, sender, asset string, update UpdateSource) error {
	if sender != s.config.Owner {
		return core.Unauthorized
	}

	stored, err := s.sources.GetSource(ctx, asset)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.Wrapf(AssetIsNotWhitelisted, "asset %s", asset)
		}
		return err
	}
	if stored.Kind != update.Kind {
		return errors.Wrapf(SourceIsNotFeeder, "asset %s: source kind mismatch", asset)
	}

	merged, err := s.mergeSource(ctx, asset, stored, update)
	if err != nil {
		return err
	}
	if err := s.sources.SaveSource(ctx, asset, merged); err != nil {
		return err
	}

	s.log.Info().
		Str("action", "update_source").
		Str("asset", asset).
		Str("source_type", merged.Kind.String()).
		Msg("price source updated")
	return nil
}

// FeedPrices stores a batch of feeder prices. Entries are checked one by
// one; any bad entry fails the whole batch (the surrounding transaction
// rolls everything back).
func (s *Service) FeedPrices(ctx context.Context, sender string, prices []FeedPrice) error {
	now := s.clk.Now().Unix()
	for _, feed := range prices {
		source, err := s.sources.GetSource(ctx, feed.Asset)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.Wrapf(AssetIsNotWhitelisted, "asset %s", feed.Asset)
			}
			return err
		}
		if source.Kind != SourceFeeder {
			return errors.Wrapf(SourceIsNotFeeder, "asset %s", feed.Asset)
		}
		if source.Feeder != sender {
			return core.Unauthorized
		}
		if !feed.Price.IsPositive() {
			return errors.Wrapf(NotValidZeroPrice, "asset %s", feed.Asset)
		}

		// Normalize from the feeder's native precision down to the
		// oracle base precision.
		precisionMod := core.TEN.Pow(decimal.NewFromInt(int64(source.NormalizedPrecision)))
		price := feed.Price.Div(precisionMod)

		source.Price = &price
		updated := now
		source.LastUpdatedTime = &updated
		if err := s.sources.SaveSource(ctx, feed.Asset, source); err != nil {
			return err
		}

		s.log.Info().
			Str("action", "feed_price").
			Str("asset", feed.Asset).
			Str("price", price.String()).
			Msg("price feeded")
	}
	observability.Oracle().RecordFeedBatch(len(prices))
	return nil
}

func (s *Service) buildSource(ctx context.Context, asset string, register RegisterSource) (*Source, error) {
	switch register.Kind {
	case SourceFeeder:
		if register.Precision < core.BASE_PRECISION {
			return nil, errors.Wrapf(InvalidPrecision, "precision %d", register.Precision)
		}
		return &Source{
			Kind:                SourceFeeder,
			Feeder:              register.Feeder,
			NormalizedPrecision: register.Precision - core.BASE_PRECISION,
		}, nil

	case SourceOnChainQuery:
		source := &Source{
			Kind:       SourceOnChainQuery,
			BaseAsset:  register.BaseAsset,
			Query:      register.Query,
			PathKey:    register.PathKey,
			IsInverted: register.IsInverted,
		}
		if _, err := s.resolveSource(ctx, asset, source, 0); err != nil {
			return nil, errors.Wrapf(err, "trial resolution for asset %s", asset)
		}
		return source, nil

	case SourceAstroportLpVault:
		pair, err := s.pairs.Pair(ctx, register.PoolContract)
		if err != nil {
			return nil, errors.Wrapf(err, "pair query on %s", register.PoolContract)
		}
		source := &Source{
			Kind:              SourceAstroportLpVault,
			VaultContract:     register.VaultContract,
			GeneratorContract: register.GeneratorContract,
			PoolContract:      register.PoolContract,
			LpContract:        pair.LiquidityToken,
			Assets:            pair.Assets,
		}
		if _, err := s.resolveSource(ctx, asset, source, 0); err != nil {
			return nil, errors.Wrapf(err, "trial resolution for asset %s", asset)
		}
		return source, nil

	default:
		return nil, errors.Errorf("unknown source kind %d", register.Kind)
	}
}

func (s *Service) mergeSource(ctx context.Context, asset string, stored *Source, update UpdateSource) (*Source, error) {
	merged := stored.Clone()

	switch update.Kind {
	case SourceFeeder:
		if update.Feeder != nil {
			merged.Feeder = *update.Feeder
		}
		if update.Precision != nil {
			if *update.Precision < core.BASE_PRECISION {
				return nil, errors.Wrapf(InvalidPrecision, "precision %d", *update.Precision)
			}
			merged.NormalizedPrecision = *update.Precision - core.BASE_PRECISION
		}
		return merged, nil

	case SourceOnChainQuery:
		if update.BaseAsset != nil {
			merged.BaseAsset = *update.BaseAsset
		}
		if update.Query != nil {
			merged.Query = update.Query
		}
		if update.PathKey != nil {
			merged.PathKey = update.PathKey
		}
		if update.IsInverted != nil {
			merged.IsInverted = *update.IsInverted
		}
		if _, err := s.resolveSource(ctx, asset, merged, 0); err != nil {
			return nil, errors.Wrapf(err, "trial resolution for asset %s", asset)
		}
		return merged, nil

	case SourceAstroportLpVault:
		if update.VaultContract != nil {
			merged.VaultContract = *update.VaultContract
		}
		if update.GeneratorContract != nil {
			merged.GeneratorContract = *update.GeneratorContract
		}
		if update.PoolContract != nil {
			merged.PoolContract = *update.PoolContract
		}
		// The pool may have changed; refresh constituents and the LP
		// token from the pair contract.
		pair, err := s.pairs.Pair(ctx, merged.PoolContract)
		if err != nil {
			return nil, errors.Wrapf(err, "pair query on %s", merged.PoolContract)
		}
		merged.LpContract = pair.LiquidityToken
		merged.Assets = pair.Assets
		if _, err := s.resolveSource(ctx, asset, merged, 0); err != nil {
			return nil, errors.Wrapf(err, "trial resolution for asset %s", asset)
		}
		return merged, nil

	default:
		return nil, errors.Errorf("unknown source kind %d", update.Kind)
	}
}
