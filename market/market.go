// Package market issues the protocol's stable asset against collateral
// locked with the overseer. Loans carry a one-time peg-defense fee instead
// of accruing interest; flash mints are settled within the same unit of
// work through a self-only endpoint.
package market

import (
	"context"

	"github.com/shopspring/decimal"
)

type (
	// BorrowerInfo is one borrower's liability. LoanAmountWithoutInterest
	// tracks the minted principal; the difference against LoanAmount is
	// the fee component routed to the collector on repay.
	BorrowerInfo struct {
		Borrower                  string          `json:"borrower"`
		LoanAmount                decimal.Decimal `json:"loanAmount"`
		LoanAmountWithoutInterest decimal.Decimal `json:"loanAmountWithoutInterest"`
	}

	// State is the market-wide ledger.
	State struct {
		TotalLiabilities decimal.Decimal `json:"totalLiabilities"`
	}

	BorrowerStore interface {
		GetBorrower(ctx context.Context, borrower string) (*BorrowerInfo, error)
		SaveBorrower(ctx context.Context, info *BorrowerInfo) error
		// ListBorrowers returns borrowers ascending by address, starting
		// strictly after startAfter.
		ListBorrowers(ctx context.Context, startAfter string, limit int) ([]*BorrowerInfo, error)

		GetState(ctx context.Context) (*State, error)
		SaveState(ctx context.Context, state *State) error
	}

	// BorrowLimitQuerier reads a borrower's live limit from the overseer.
	BorrowLimitQuerier interface {
		BorrowLimit(ctx context.Context, borrower string, blockTime *int64) (decimal.Decimal, error)
	}
)

func (b *BorrowerInfo) Clone() *BorrowerInfo {
	out := *b
	return &out
}
