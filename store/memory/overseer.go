package memory

import (
	"context"

	"github.com/solid-online/capa-money-market/core"
	"github.com/solid-online/capa-money-market/overseer"
)

type WhitelistStore struct {
	elems *bucket[*overseer.WhitelistElem]
}

func NewWhitelistStore() *WhitelistStore {
	return &WhitelistStore{
		elems: newBucket(func(e *overseer.WhitelistElem) *overseer.WhitelistElem { return e.Clone() }),
	}
}

func (s *WhitelistStore) GetWhitelistElem(ctx context.Context, collateralToken string) (*overseer.WhitelistElem, error) {
	return s.elems.get(collateralToken)
}

func (s *WhitelistStore) SaveWhitelistElem(ctx context.Context, elem *overseer.WhitelistElem) error {
	s.elems.put(elem.CollateralToken, elem)
	return nil
}

func (s *WhitelistStore) ListWhitelist(ctx context.Context, startAfter string, limit int) ([]*overseer.WhitelistElem, error) {
	_, elems := s.elems.scan(startAfter, limit)
	return elems, nil
}

type CollateralStore struct {
	collaterals *bucket[core.Tokens]
}

func NewCollateralStore() *CollateralStore {
	return &CollateralStore{
		collaterals: newBucket(func(ts core.Tokens) core.Tokens { return ts.Clone() }),
	}
}

// GetCollaterals reads empty for unknown borrowers so callers never branch
// on a not-found sentinel for this aggregate.
func (s *CollateralStore) GetCollaterals(ctx context.Context, borrower string) (core.Tokens, error) {
	tokens, err := s.collaterals.get(borrower)
	if err != nil {
		return core.Tokens{}, nil
	}
	return tokens, nil
}

// SaveCollaterals drops the ledger entry when the collateral set empties.
func (s *CollateralStore) SaveCollaterals(ctx context.Context, borrower string, collaterals core.Tokens) error {
	if collaterals.IsEmpty() {
		s.collaterals.remove(borrower)
		return nil
	}
	s.collaterals.put(borrower, collaterals)
	return nil
}

func (s *CollateralStore) ListCollaterals(ctx context.Context, startAfter string, limit int) ([]*overseer.BorrowerCollaterals, error) {
	borrowers, ledgers := s.collaterals.scan(startAfter, limit)

	out := make([]*overseer.BorrowerCollaterals, 0, len(borrowers))
	for i, borrower := range borrowers {
		out = append(out, &overseer.BorrowerCollaterals{
			Borrower:    borrower,
			Collaterals: ledgers[i],
		})
	}
	return out, nil
}
