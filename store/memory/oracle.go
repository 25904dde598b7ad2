package memory

import (
	"context"

	"github.com/solid-online/capa-money-market/oracle"
)

type SourceStore struct {
	sources *bucket[*oracle.Source]
}

func NewSourceStore() *SourceStore {
	return &SourceStore{
		sources: newBucket(func(s *oracle.Source) *oracle.Source { return s.Clone() }),
	}
}

func (s *SourceStore) GetSource(ctx context.Context, asset string) (*oracle.Source, error) {
	return s.sources.get(asset)
}

func (s *SourceStore) SaveSource(ctx context.Context, asset string, source *oracle.Source) error {
	s.sources.put(asset, source)
	return nil
}

func (s *SourceStore) ListAssets(ctx context.Context, startAfter string, limit int) ([]string, error) {
	assets, _ := s.sources.scan(startAfter, limit)
	return assets, nil
}
