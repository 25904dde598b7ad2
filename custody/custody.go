package custody

import (
	"context"

	"github.com/shopspring/decimal"
)

type (
	// BorrowerInfo tracks one borrower's collateral in this custody.
	// Spendable is the share not locked as borrow security; locked is
	// Balance-Spendable.
	BorrowerInfo struct {
		Borrower  string          `json:"borrower"`
		Balance   decimal.Decimal `json:"balance"`
		Spendable decimal.Decimal `json:"spendable"`
	}

	// BalanceInfo is the custody-wide collateral balance.
	BalanceInfo struct {
		Balance decimal.Decimal `json:"balance"`
	}

	BorrowerStore interface {
		GetBorrower(ctx context.Context, borrower string) (*BorrowerInfo, error)
		SaveBorrower(ctx context.Context, info *BorrowerInfo) error
		RemoveBorrower(ctx context.Context, borrower string) error
		// ListBorrowers returns borrowers ascending by address, starting
		// strictly after startAfter.
		ListBorrowers(ctx context.Context, startAfter string, limit int) ([]*BorrowerInfo, error)

		GetBalance(ctx context.Context) (*BalanceInfo, error)
		SaveBalance(ctx context.Context, info *BalanceInfo) error
	}
)

func (b *BorrowerInfo) Locked() decimal.Decimal {
	return b.Balance.Sub(b.Spendable)
}

func (b *BorrowerInfo) Clone() *BorrowerInfo {
	out := *b
	return &out
}
