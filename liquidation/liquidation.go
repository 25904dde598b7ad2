// Package liquidation declares the liquidation-auction collaborator. The
// bid algorithm is owned by that external contract; this module only asks it
// how much of each collateral to seize and routes seized tokens to it.
package liquidation

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/solid-online/capa-money-market/core"
)

type (
	// AmountQuerier computes how much of each collateral must be seized
	// to bring an underwater loan back over its borrow limit.
	AmountQuerier interface {
		LiquidationAmount(ctx context.Context, borrowAmount, borrowLimit decimal.Decimal, collaterals core.Tokens, prices []decimal.Decimal) (core.Tokens, error)
	}

	// ExecuteBidHook is the receive-hook payload custody contracts attach
	// when sending seized collateral to the auction contract.
	ExecuteBidHook struct {
		Liquidator      string `json:"liquidator"`
		FeeAddress      string `json:"fee_address,omitempty"`
		RepayAddress    string `json:"repay_address,omitempty"`
		BorrowerAddress string `json:"borrower_address,omitempty"`
	}
)
