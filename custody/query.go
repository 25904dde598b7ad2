package custody

import (
	"context"

	"github.com/solid-online/capa-money-market/core"
)

// Borrower reports a borrower's collateral position. Unknown borrowers read
// as an empty position rather than an error.
func (s *Service) Borrower(ctx context.Context, borrower string) (*BorrowerInfo, error) {
	return s.borrower(ctx, borrower)
}

// Borrowers pages over borrower positions ascending by address; startAfter
// is exclusive.
func (s *Service) Borrowers(ctx context.Context, startAfter string, limit *int) ([]*BorrowerInfo, error) {
	return s.borrowers.ListBorrowers(ctx, startAfter, core.PageLimit(limit))
}

// Balance reports the custody-wide collateral balance.
func (s *Service) Balance(ctx context.Context) (*BalanceInfo, error) {
	return s.balance(ctx)
}
