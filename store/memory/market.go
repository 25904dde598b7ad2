package memory

import (
	"context"
	"sync"

	"gorm.io/gorm"

	"github.com/solid-online/capa-money-market/market"
	"github.com/solid-online/capa-money-market/wrapper"
)

type LiabilityStore struct {
	borrowers *bucket[*market.BorrowerInfo]

	mu    sync.RWMutex
	state *market.State
}

func NewLiabilityStore() *LiabilityStore {
	return &LiabilityStore{
		borrowers: newBucket(func(b *market.BorrowerInfo) *market.BorrowerInfo { return b.Clone() }),
	}
}

func (s *LiabilityStore) GetBorrower(ctx context.Context, borrower string) (*market.BorrowerInfo, error) {
	return s.borrowers.get(borrower)
}

func (s *LiabilityStore) SaveBorrower(ctx context.Context, info *market.BorrowerInfo) error {
	s.borrowers.put(info.Borrower, info)
	return nil
}

func (s *LiabilityStore) ListBorrowers(ctx context.Context, startAfter string, limit int) ([]*market.BorrowerInfo, error) {
	_, infos := s.borrowers.scan(startAfter, limit)
	return infos, nil
}

func (s *LiabilityStore) GetState(ctx context.Context) (*market.State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.state == nil {
		return nil, gorm.ErrRecordNotFound
	}
	out := *s.state
	return &out, nil
}

func (s *LiabilityStore) SaveState(ctx context.Context, state *market.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := *state
	s.state = &out
	return nil
}

type WrapperStateStore struct {
	mu    sync.RWMutex
	state *wrapper.State
}

func NewWrapperStateStore() *WrapperStateStore {
	return &WrapperStateStore{}
}

func (s *WrapperStateStore) GetState(ctx context.Context) (*wrapper.State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.state == nil {
		return nil, gorm.ErrRecordNotFound
	}
	out := *s.state
	return &out, nil
}

func (s *WrapperStateStore) SaveState(ctx context.Context, state *wrapper.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := *state
	s.state = &out
	return nil
}
