package oracle

import (
	"context"
	"encoding/json"

	"github.com/shopspring/decimal"
)

type SourceKind uint8

const (
	SourceFeeder SourceKind = iota
	SourceOnChainQuery
	SourceAstroportLpVault
)

func (k SourceKind) String() string {
	switch k {
	case SourceFeeder:
		return "feeder"
	case SourceOnChainQuery:
		return "on_chain_query"
	case SourceAstroportLpVault:
		return "astroport_lp_vault"
	default:
		return "unknown"
	}
}

// PathKey is one step of the walk into an on-chain query's JSON response:
// either an object field or an array index.
type PathKey struct {
	Field   string `json:"field,omitempty"`
	Index   int    `json:"index,omitempty"`
	IsIndex bool   `json:"isIndex,omitempty"`
}

func PathField(field string) PathKey { return PathKey{Field: field} }
func PathIndex(index int) PathKey    { return PathKey{Index: index, IsIndex: true} }

type (
	// Source is the price-source descriptor registered per asset. Kind
	// selects the variant; only that variant's fields are meaningful.
	Source struct {
		Kind SourceKind `json:"kind"`

		// Feeder: a privileged address pushes prices. Price and
		// LastUpdatedTime stay nil until the first feed.
		Feeder              string           `json:"feeder,omitempty"`
		Price               *decimal.Decimal `json:"price,omitempty"`
		LastUpdatedTime     *int64           `json:"lastUpdatedTime,omitempty"`
		NormalizedPrecision uint8            `json:"normalizedPrecision,omitempty"`

		// OnChainQuery: an opaque outbound query whose JSON response is
		// walked along PathKey down to a decimal string.
		BaseAsset  string          `json:"baseAsset,omitempty"`
		Query      json.RawMessage `json:"query,omitempty"`
		PathKey    []PathKey       `json:"pathKey,omitempty"`
		IsInverted bool            `json:"isInverted,omitempty"`

		// AstroportLpVault: fair value of a vault receipt token over a
		// staked two-asset constant-product pool position.
		VaultContract     string   `json:"vaultContract,omitempty"`
		GeneratorContract string   `json:"generatorContract,omitempty"`
		PoolContract      string   `json:"poolContract,omitempty"`
		LpContract        string   `json:"lpContract,omitempty"`
		Assets            []string `json:"assets,omitempty"`
	}

	// PriceInfo is a resolved price. It is persisted only for feeder
	// sources; derived sources compute it on every query.
	PriceInfo struct {
		Price           decimal.Decimal `json:"price"`
		LastUpdatedTime int64           `json:"lastUpdatedTime"`
	}

	SourceStore interface {
		GetSource(ctx context.Context, asset string) (*Source, error)
		SaveSource(ctx context.Context, asset string, source *Source) error
		// ListAssets returns registered asset ids in ascending
		// lexicographic order, starting strictly after startAfter.
		ListAssets(ctx context.Context, startAfter string, limit int) ([]string, error)
	}
)

type (
	// RegisterSource carries the constructor fields of a new source.
	RegisterSource struct {
		Kind SourceKind

		Feeder    string
		Precision uint8

		BaseAsset  string
		Query      json.RawMessage
		PathKey    []PathKey
		IsInverted bool

		VaultContract     string
		GeneratorContract string
		PoolContract      string
	}

	// UpdateSource carries partial overrides for an existing source; nil
	// fields fall back to the stored values. The kind must match the
	// registered source's kind.
	UpdateSource struct {
		Kind SourceKind

		Feeder    *string
		Precision *uint8

		// BaseAsset: nil keeps the stored value, a pointer to the
		// empty string clears it.
		BaseAsset  *string
		Query      json.RawMessage
		PathKey    []PathKey
		IsInverted *bool

		VaultContract     *string
		GeneratorContract *string
		PoolContract      *string
	}

	// FeedPrice is one entry of a feed batch.
	FeedPrice struct {
		Asset string          `json:"asset"`
		Price decimal.Decimal `json:"price"`
	}
)

func (s *Source) Clone() *Source {
	out := *s
	if s.Price != nil {
		p := *s.Price
		out.Price = &p
	}
	if s.LastUpdatedTime != nil {
		t := *s.LastUpdatedTime
		out.LastUpdatedTime = &t
	}
	out.PathKey = append([]PathKey(nil), s.PathKey...)
	out.Query = append(json.RawMessage(nil), s.Query...)
	out.Assets = append([]string(nil), s.Assets...)
	return &out
}
