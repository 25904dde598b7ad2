package memory

import (
	"context"
	"sync"

	"gorm.io/gorm"

	"github.com/solid-online/capa-money-market/custody"
)

type BorrowerStore struct {
	borrowers *bucket[*custody.BorrowerInfo]

	mu      sync.RWMutex
	balance *custody.BalanceInfo
}

func NewBorrowerStore() *BorrowerStore {
	return &BorrowerStore{
		borrowers: newBucket(func(b *custody.BorrowerInfo) *custody.BorrowerInfo { return b.Clone() }),
	}
}

func (s *BorrowerStore) GetBorrower(ctx context.Context, borrower string) (*custody.BorrowerInfo, error) {
	return s.borrowers.get(borrower)
}

func (s *BorrowerStore) SaveBorrower(ctx context.Context, info *custody.BorrowerInfo) error {
	s.borrowers.put(info.Borrower, info)
	return nil
}

func (s *BorrowerStore) RemoveBorrower(ctx context.Context, borrower string) error {
	s.borrowers.remove(borrower)
	return nil
}

func (s *BorrowerStore) ListBorrowers(ctx context.Context, startAfter string, limit int) ([]*custody.BorrowerInfo, error) {
	_, infos := s.borrowers.scan(startAfter, limit)
	return infos, nil
}

func (s *BorrowerStore) GetBalance(ctx context.Context) (*custody.BalanceInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.balance == nil {
		return nil, gorm.ErrRecordNotFound
	}
	out := *s.balance
	return &out, nil
}

func (s *BorrowerStore) SaveBalance(ctx context.Context, info *custody.BalanceInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := *info
	s.balance = &out
	return nil
}
