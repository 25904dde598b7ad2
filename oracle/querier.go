package oracle

import (
	"context"
	"encoding/json"

	"github.com/shopspring/decimal"
)

type (
	// ContractQuerier performs the opaque outbound query of an
	// OnChainQuery source and returns the raw JSON response.
	ContractQuerier interface {
		Query(ctx context.Context, query json.RawMessage) (json.RawMessage, error)
	}

	// PairInfo is an AMM pair's static description.
	PairInfo struct {
		Assets         []string `json:"assets"`
		LiquidityToken string   `json:"liquidityToken"`
	}

	// PoolAsset is one side of a pool's current reserves.
	PoolAsset struct {
		Asset  string          `json:"asset"`
		Amount decimal.Decimal `json:"amount"`
	}

	// PairQuerier reads an Astroport-style pair contract.
	PairQuerier interface {
		Pair(ctx context.Context, pool string) (PairInfo, error)
		Pool(ctx context.Context, pool string) ([]PoolAsset, error)
	}

	// GeneratorQuerier reads how many LP tokens a user has staked into a
	// generator contract.
	GeneratorQuerier interface {
		Deposited(ctx context.Context, generator, lpToken, user string) (decimal.Decimal, error)
	}
)
