package overseer

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/solid-online/capa-money-market/core"
)

type BorrowLimitResponse struct {
	Borrower    string          `json:"borrower"`
	BorrowLimit decimal.Decimal `json:"borrowLimit"`
}

// Collaterals reports a borrower's locked collateral ledger. Unknown
// borrowers read as an empty set.
func (s *Service) Collaterals(ctx context.Context, borrower string) (*BorrowerCollaterals, error) {
	cur, err := s.collaterals.GetCollaterals(ctx, borrower)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return &BorrowerCollaterals{Borrower: borrower, Collaterals: cur}, nil
}

// AllCollaterals pages over borrower ledgers ascending by address;
// startAfter is exclusive.
func (s *Service) AllCollaterals(ctx context.Context, startAfter string, limit *int) ([]*BorrowerCollaterals, error) {
	return s.collaterals.ListCollaterals(ctx, startAfter, core.PageLimit(limit))
}

// BorrowLimit computes a borrower's current borrow limit. Staleness is
// enforced only when blockTime is given.
func (s *Service) BorrowLimit(ctx context.Context, borrower string, blockTime *int64) (*BorrowLimitResponse, error) {
	cur, err := s.collaterals.GetCollaterals(ctx, borrower)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	borrowLimit, _, err := s.ComputeBorrowLimit(ctx, cur, blockTime)
	if err != nil {
		return nil, err
	}
	return &BorrowLimitResponse{Borrower: borrower, BorrowLimit: borrowLimit}, nil
}

// LimitQuerier exposes the borrow limit as a bare amount, the shape the
// market's limit check consumes.
type LimitQuerier struct {
	service *Service
}

func NewLimitQuerier(service *Service) *LimitQuerier {
	return &LimitQuerier{service: service}
}

func (q *LimitQuerier) BorrowLimit(ctx context.Context, borrower string, blockTime *int64) (decimal.Decimal, error) {
	resp, err := q.service.BorrowLimit(ctx, borrower, blockTime)
	if err != nil {
		return decimal.Zero, err
	}
	return resp.BorrowLimit, nil
}

// WhitelistInfo returns a single whitelist entry when collateralToken is
// set, otherwise a page of entries starting strictly after startAfter.
func (s *Service) WhitelistInfo(ctx context.Context, collateralToken, startAfter string, limit *int) ([]*WhitelistElem, error) {
	if collateralToken != "" {
		elem, err := s.whitelist.GetWhitelistElem(ctx, collateralToken)
		if err != nil {
			return nil, err
		}
		return []*WhitelistElem{elem}, nil
	}
	return s.whitelist.ListWhitelist(ctx, startAfter, core.PageLimit(limit))
}
