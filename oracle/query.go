package oracle

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/solid-online/capa-money-market/core"
)

type (
	// PriceResponse is the base/quote rate plus the freshness of both
	// legs, so callers can apply their own staleness windows.
	PriceResponse struct {
		Rate            decimal.Decimal `json:"rate"`
		LastUpdatedBase int64           `json:"lastUpdatedBase"`
		// LastUpdatedQuote is the query time when quote is the oracle
		// base asset (its rate is 1 by definition).
		LastUpdatedQuote int64 `json:"lastUpdatedQuote"`
	}

	PricesResponseElem struct {
		Asset           string          `json:"asset"`
		Price           decimal.Decimal `json:"price"`
		LastUpdatedTime int64           `json:"lastUpdatedTime"`
	}

	PricesResponse struct {
		Prices []PricesResponseElem `json:"prices"`
	}

	SourceInfoResponse struct {
		Source *Source `json:"source"`
	}
)

// Price resolves the base/quote rate. The configured base asset is worth 1
// by definition; any other quote is resolved like the base leg.
func (s *Service) Price(ctx context.Context, base, quote string) (*PriceResponse, error) {
	basePrice, err := s.resolveAsset(ctx, base, 0)
	if err != nil {
		return nil, err
	}

	var quotePrice *PriceInfo
	if quote == s.config.BaseAsset {
		quotePrice = &PriceInfo{
			Price:           core.ONE,
			LastUpdatedTime: s.clk.Now().Unix(),
		}
	} else {
		quotePrice, err = s.resolveAsset(ctx, quote, 0)
		if err != nil {
			return nil, err
		}
	}
	if quotePrice.Price.IsZero() {
		return nil, errors.Wrapf(NotValidZeroPrice, "quote %s", quote)
	}

	return &PriceResponse{
		Rate:             basePrice.Price.Div(quotePrice.Price),
		LastUpdatedBase:  basePrice.LastUpdatedTime,
		LastUpdatedQuote: quotePrice.LastUpdatedTime,
	}, nil
}

// Prices pages over registered assets in ascending order, resolving each
// one. startAfter is exclusive; limit is clamped to the maximum page size.
func (s *Service) Prices(ctx context.Context, startAfter string, limit *int) (*PricesResponse, error) {
	assets, err := s.sources.ListAssets(ctx, startAfter, core.PageLimit(limit))
	if err != nil {
		return nil, err
	}

	resp := &PricesResponse{Prices: make([]PricesResponseElem, 0, len(assets))}
	for _, asset := range assets {
		info, err := s.resolveAsset(ctx, asset, 0)
		if err != nil {
			return nil, errors.Wrapf(err, "asset %s", asset)
		}
		resp.Prices = append(resp.Prices, PricesResponseElem{
			Asset:           asset,
			Price:           info.Price,
			LastUpdatedTime: info.LastUpdatedTime,
		})
	}
	return resp, nil
}

// SourceInfo returns the stored source descriptor for an asset.
func (s *Service) SourceInfo(ctx context.Context, asset string) (*SourceInfoResponse, error) {
	source, err := s.sources.GetSource(ctx, asset)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Wrapf(AssetIsNotWhitelisted, "asset %s", asset)
		}
		return nil, err
	}
	return &SourceInfoResponse{Source: source}, nil
}

type (
	// PriceQuerier is the read surface other components price against.
	PriceQuerier interface {
		Price(ctx context.Context, base, quote string) (*PriceResponse, error)
	}

	// TimeConstraints is a staleness window: prices older than
	// BlockTime-ValidTimeframe are rejected.
	TimeConstraints struct {
		BlockTime      int64
		ValidTimeframe int64
	}
)

// QueryPrice fetches base/quote and enforces the staleness window on both
// legs when one is given.
func QueryPrice(ctx context.Context, querier PriceQuerier, base, quote string, tc *TimeConstraints) (*PriceResponse, error) {
	resp, err := querier.Price(ctx, base, quote)
	if err != nil {
		return nil, err
	}
	if tc != nil {
		valid := tc.BlockTime - tc.ValidTimeframe
		if resp.LastUpdatedBase < valid || resp.LastUpdatedQuote < valid {
			return nil, errors.Wrapf(PriceIsTooOld, "%s/%s", base, quote)
		}
	}
	return resp, nil
}
