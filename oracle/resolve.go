package oracle

import (
	"context"
	"encoding/json"
	"math/big"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/solid-online/capa-money-market/core"
)

// maxResolveDepth bounds on-chain-query base asset chains; a cycle among
// registered sources would otherwise recurse forever.
const maxResolveDepth = 8

// resolveAsset loads the asset's source and resolves it to a price.
func (s *Service) resolveAsset(ctx context.Context, asset string, depth int) (*PriceInfo, error) {
	if depth > maxResolveDepth {
		return nil, errors.Wrapf(PriceResolveDepthExceeded, "asset %s", asset)
	}

	source, err := s.sources.GetSource(ctx, asset)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Wrapf(AssetIsNotWhitelisted, "asset %s", asset)
		}
		return nil, err
	}
	return s.resolveSource(ctx, asset, source, depth)
}

func (s *Service) resolveSource(ctx context.Context, asset string, source *Source, depth int) (*PriceInfo, error) {
	switch source.Kind {
	case SourceFeeder:
		if source.Price == nil || source.LastUpdatedTime == nil {
			return nil, errors.Wrapf(PriceNeverFeeded, "asset %s", asset)
		}
		return &PriceInfo{
			Price:           *source.Price,
			LastUpdatedTime: *source.LastUpdatedTime,
		}, nil

	case SourceOnChainQuery:
		return s.resolveOnChainQuery(ctx, source, depth)

	case SourceAstroportLpVault:
		return s.resolveLpVault(ctx, source)

	default:
		return nil, errors.Errorf("unknown source kind %d", source.Kind)
	}
}

func (s *Service) resolveOnChainQuery(ctx context.Context, source *Source, depth int) (*PriceInfo, error) {
	raw, err := s.contracts.Query(ctx, source.Query)
	if err != nil {
		return nil, err
	}

	price, err := walkPath(raw, source.PathKey)
	if err != nil {
		return nil, err
	}

	if source.IsInverted {
		if price.IsZero() {
			return nil, NotValidZeroPrice
		}
		price = core.ONE.Div(price)
	}

	lastUpdated := s.clk.Now().Unix()
	if source.BaseAsset != "" {
		// The queried rate is denominated in BaseAsset; convert to the
		// oracle base and inherit the base price's freshness.
		base, err := s.resolveAsset(ctx, source.BaseAsset, depth+1)
		if err != nil {
			return nil, err
		}
		price = price.Mul(base.Price)
		lastUpdated = base.LastUpdatedTime
	}

	return &PriceInfo{Price: price, LastUpdatedTime: lastUpdated}, nil
}

// resolveLpVault prices a vault receipt token over a staked position in a
// two-asset constant-product pool:
//
//	price = (staked / lp_supply) * 2 * sqrt(prod(amount_i * price_i)) / clp_supply
func (s *Service) resolveLpVault(ctx context.Context, source *Source) (*PriceInfo, error) {
	if len(source.Assets) != 2 {
		return nil, errors.Wrapf(PoolInvalidAssetsLenght, "got %d assets", len(source.Assets))
	}

	pool, err := s.pairs.Pool(ctx, source.PoolContract)
	if err != nil {
		return nil, err
	}
	if len(pool) != 2 {
		return nil, errors.Wrapf(PoolInvalidAssetsLenght, "got %d pool assets", len(pool))
	}

	poolValue := core.ONE
	lastUpdated := s.clk.Now().Unix()
	for _, poolAsset := range pool {
		info, err := s.resolveAsset(ctx, poolAsset.Asset, 1)
		if err != nil {
			return nil, err
		}
		poolValue = poolValue.Mul(poolAsset.Amount).Floor().Mul(info.Price).Floor()
		if info.LastUpdatedTime < lastUpdated {
			lastUpdated = info.LastUpdatedTime
		}
	}

	staked, err := s.generators.Deposited(ctx, source.GeneratorContract, source.LpContract, source.VaultContract)
	if err != nil {
		return nil, err
	}
	lpSupply, err := s.supplies.TotalSupply(ctx, source.LpContract)
	if err != nil {
		return nil, err
	}
	clpSupply, err := s.supplies.TotalSupply(ctx, source.VaultContract)
	if err != nil {
		return nil, err
	}
	if lpSupply.IsZero() || clpSupply.IsZero() {
		return nil, ZeroTotalSupply
	}

	price := staked.Div(lpSupply).
		Mul(decimal.NewFromInt(2)).
		Mul(isqrt(poolValue)).
		Div(clpSupply)

	return &PriceInfo{Price: price, LastUpdatedTime: lastUpdated}, nil
}

// walkPath descends the decoded JSON response along keys and resolves the
// leaf as a decimal string.
func walkPath(raw json.RawMessage, path []PathKey) (decimal.Decimal, error) {
	var node any
	if err := json.Unmarshal(raw, &node); err != nil {
		return decimal.Zero, errors.Wrap(InvalidPathKey, err.Error())
	}

	for _, key := range path {
		if key.IsIndex {
			arr, ok := node.([]any)
			if !ok || key.Index < 0 || key.Index >= len(arr) {
				return decimal.Zero, errors.Wrapf(InvalidPathKey, "index %d", key.Index)
			}
			node = arr[key.Index]
			continue
		}
		obj, ok := node.(map[string]any)
		if !ok {
			return decimal.Zero, errors.Wrapf(InvalidPathKey, "field %s", key.Field)
		}
		node, ok = obj[key.Field]
		if !ok {
			return decimal.Zero, errors.Wrapf(InvalidPathKey, "field %s", key.Field)
		}
	}

	leaf, ok := node.(string)
	if !ok {
		return decimal.Zero, errors.Wrap(InvalidPathKey, "leaf is not a decimal string")
	}
	price, err := decimal.NewFromString(leaf)
	if err != nil {
		return decimal.Zero, errors.Wrap(InvalidPathKey, err.Error())
	}
	return price, nil
}

// isqrt is the integer square root of d's integral part.
func isqrt(d decimal.Decimal) decimal.Decimal {
	root := new(big.Int).Sqrt(d.Floor().BigInt())
	return decimal.NewFromBigInt(root, 0)
}
