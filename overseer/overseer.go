// Package overseer is the money market's risk brain: it keeps the collateral
// whitelist, tracks each borrower's locked collateral across custodies,
// computes borrow limits, and triggers liquidations on underwater loans.
package overseer

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/solid-online/capa-money-market/core"
)

type (
	// WhitelistElem describes one accepted collateral type.
	WhitelistElem struct {
		Name            string          `json:"name"`
		Symbol          string          `json:"symbol"`
		CollateralToken string          `json:"collateralToken"`
		CustodyContract string          `json:"custodyContract"`
		MaxLtv          decimal.Decimal `json:"maxLtv"`
	}

	WhitelistStore interface {
		GetWhitelistElem(ctx context.Context, collateralToken string) (*WhitelistElem, error)
		SaveWhitelistElem(ctx context.Context, elem *WhitelistElem) error
		// ListWhitelist returns entries ascending by collateral token,
		// starting strictly after startAfter.
		ListWhitelist(ctx context.Context, startAfter string, limit int) ([]*WhitelistElem, error)
	}

	CollateralStore interface {
		// GetCollaterals returns the borrower's locked collaterals; an
		// unknown borrower reads as an empty set.
		GetCollaterals(ctx context.Context, borrower string) (core.Tokens, error)
		SaveCollaterals(ctx context.Context, borrower string, collaterals core.Tokens) error
		// ListCollaterals pages over borrowers ascending by address,
		// starting strictly after startAfter.
		ListCollaterals(ctx context.Context, startAfter string, limit int) ([]*BorrowerCollaterals, error)
	}

	BorrowerCollaterals struct {
		Borrower    string      `json:"borrower"`
		Collaterals core.Tokens `json:"collaterals"`
	}

	// CustodyExecutor mirrors the custody operations the overseer
	// dispatches per collateral type.
	CustodyExecutor interface {
		LockCollateral(ctx context.Context, sender, borrower string, amount decimal.Decimal) error
		UnlockCollateral(ctx context.Context, sender, borrower string, amount decimal.Decimal) error
		LiquidateCollateral(ctx context.Context, sender, liquidator, borrower string, amount decimal.Decimal) error
	}

	// CustodyDispatcher routes custody operations by custody contract
	// address.
	CustodyDispatcher interface {
		Custody(custodyContract string) (CustodyExecutor, error)
	}

	// LoanQuerier reads a borrower's live loan from the market.
	LoanQuerier interface {
		LoanAmount(ctx context.Context, borrower string) (decimal.Decimal, error)
	}
)

func (e *WhitelistElem) Clone() *WhitelistElem {
	out := *e
	return &out
}
