// Package token declares the CW20-style token collaborator consumed by the
// money-market contracts. The token contract itself lives outside this
// module; every method here turns into an outbound execute message.
package token

import (
	"context"
	"encoding/json"

	"github.com/shopspring/decimal"
)

type (
	// Executor dispatches execute messages to a token contract.
	Executor interface {
		Mint(ctx context.Context, contract, recipient string, amount decimal.Decimal) error
		Burn(ctx context.Context, contract string, amount decimal.Decimal) error
		BurnFrom(ctx context.Context, contract, owner string, amount decimal.Decimal) error
		Transfer(ctx context.Context, contract, recipient string, amount decimal.Decimal) error
		TransferFrom(ctx context.Context, contract, owner, recipient string, amount decimal.Decimal) error
		// Send transfers tokens to a contract and triggers its receive
		// hook with the given payload.
		Send(ctx context.Context, contract, recipient string, amount decimal.Decimal, hook json.RawMessage) error
	}

	// SupplyQuerier reads a token contract's total supply.
	SupplyQuerier interface {
		TotalSupply(ctx context.Context, contract string) (decimal.Decimal, error)
	}

	// InstantiateMsg is the constructor message for a companion token
	// (market's stable asset, wrapper's receipt token).
	InstantiateMsg struct {
		Name     string `json:"name"`
		Symbol   string `json:"symbol"`
		Decimals uint8  `json:"decimals"`
		// Minter is the only address allowed to mint, always the
		// instantiating contract itself.
		Minter string `json:"minter"`
	}

	// Instantiator creates a companion token contract and returns its
	// newly assigned address. The caller feeds the address back through
	// its reply continuation.
	Instantiator interface {
		Instantiate(ctx context.Context, msg InstantiateMsg) (string, error)
	}
)
