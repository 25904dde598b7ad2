package market

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/solid-online/capa-money-market/core"
)

// BorrowerInfoQuery reports a borrower's liability. Unknown borrowers read
// as a zero loan.
func (s *Service) BorrowerInfoQuery(ctx context.Context, borrower string) (*BorrowerInfo, error) {
	return s.borrower(ctx, borrower)
}

// LoanAmount satisfies the overseer's loan lookup.
func (s *Service) LoanAmount(ctx context.Context, borrower string) (decimal.Decimal, error) {
	info, err := s.borrower(ctx, borrower)
	if err != nil {
		return decimal.Zero, err
	}
	return info.LoanAmount, nil
}

// BorrowerInfos pages over liabilities ascending by address; startAfter is
// exclusive.
func (s *Service) BorrowerInfos(ctx context.Context, startAfter string, limit *int) ([]*BorrowerInfo, error) {
	return s.borrowers.ListBorrowers(ctx, startAfter, core.PageLimit(limit))
}

// StateQuery reports the market-wide ledger.
func (s *Service) StateQuery(ctx context.Context) (*State, error) {
	return s.state(ctx)
}
