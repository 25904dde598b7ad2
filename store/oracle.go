package store

import (
	"context"
	"database/sql/driver"
	"encoding/json"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/solid-online/capa-money-market/oracle"
	"github.com/solid-online/capa-money-market/utils"
)

type (
	// SourceJSON stores the whole source descriptor as one JSON column;
	// the variant fields are too sparse to be worth flattening.
	SourceJSON struct {
		oracle.Source
	}

	sourceRow struct {
		ID     string     `gorm:"column:id;primaryKey"`
		Asset  string     `gorm:"column:asset;uniqueIndex"`
		Source SourceJSON `gorm:"column:source"`
	}

	SourceStore struct {
		db *gorm.DB
	}
)

func (sourceRow) TableName() string {
	return "oracle_sources"
}

func (j SourceJSON) Value() (driver.Value, error) {
	valueString, err := json.Marshal(j)
	return string(valueString), err
}

func (j *SourceJSON) Scan(value any) error {
	b, ok := value.([]byte)
	if !ok {
		s, ok := value.(string)
		if !ok {
			return errors.Errorf("unsupported source column type %T", value)
		}
		b = []byte(s)
	}
	return json.Unmarshal(b, j)
}

func NewSourceStore(db *gorm.DB) *SourceStore {
	return &SourceStore{db: db}
}

func (s *SourceStore) GetSource(ctx context.Context, asset string) (*oracle.Source, error) {
	var row sourceRow
	if err := s.db.WithContext(ctx).
		Where("asset = ?", asset).
		First(&row).Error; err != nil {
		return nil, err
	}
	return row.Source.Source.Clone(), nil
}

func (s *SourceStore) SaveSource(ctx context.Context, asset string, source *oracle.Source) error {
	row := sourceRow{
		ID:     utils.GenUuidFromStrings("oracle_source", asset),
		Asset:  asset,
		Source: SourceJSON{Source: *source.Clone()},
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(&row).Error
}

func (s *SourceStore) ListAssets(ctx context.Context, startAfter string, limit int) ([]string, error) {
	var assets []string
	if err := s.db.WithContext(ctx).
		Model(&sourceRow{}).
		Where("asset > ?", startAfter).
		Order("asset asc").
		Limit(limit).
		Pluck("asset", &assets).Error; err != nil {
		return nil, err
	}
	return assets, nil
}
