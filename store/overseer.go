package store

import (
	"context"
	"database/sql/driver"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/solid-online/capa-money-market/core"
	"github.com/solid-online/capa-money-market/overseer"
	"github.com/solid-online/capa-money-market/utils"
)

type (
	whitelistRow struct {
		ID              string          `gorm:"column:id;primaryKey"`
		CollateralToken string          `gorm:"column:collateral_token;uniqueIndex"`
		Name            string          `gorm:"column:name"`
		Symbol          string          `gorm:"column:symbol"`
		CustodyContract string          `gorm:"column:custody_contract"`
		MaxLtv          decimal.Decimal `gorm:"column:max_ltv"`
	}

	// TokensJSON stores a borrower's collateral list as one JSON column.
	TokensJSON struct {
		Tokens core.Tokens `json:"tokens"`
	}

	collateralRow struct {
		ID          string     `gorm:"column:id;primaryKey"`
		Borrower    string     `gorm:"column:borrower;uniqueIndex"`
		Collaterals TokensJSON `gorm:"column:collaterals"`
	}

	WhitelistStore struct {
		db *gorm.DB
	}

	CollateralStore struct {
		db *gorm.DB
	}
)

func (whitelistRow) TableName() string {
	return "overseer_whitelist"
}

func (collateralRow) TableName() string {
	return "overseer_collaterals"
}

func (j TokensJSON) Value() (driver.Value, error) {
	valueString, err := json.Marshal(j)
	return string(valueString), err
}

func (j *TokensJSON) Scan(value any) error {
	b, ok := value.([]byte)
	if !ok {
		s, ok := value.(string)
		if !ok {
			return errors.Errorf("unsupported collaterals column type %T", value)
		}
		b = []byte(s)
	}
	return json.Unmarshal(b, j)
}

func NewWhitelistStore(db *gorm.DB) *WhitelistStore {
	return &WhitelistStore{db: db}
}

func (s *WhitelistStore) GetWhitelistElem(ctx context.Context, collateralToken string) (*overseer.WhitelistElem, error) {
	var row whitelistRow
	if err := s.db.WithContext(ctx).
		Where("collateral_token = ?", collateralToken).
		First(&row).Error; err != nil {
		return nil, err
	}
	return whitelistElemFromRow(row), nil
}

func (s *WhitelistStore) SaveWhitelistElem(ctx context.Context, elem *overseer.WhitelistElem) error {
	row := whitelistRow{
		ID:              utils.GenUuidFromStrings("overseer_whitelist", elem.CollateralToken),
		CollateralToken: elem.CollateralToken,
		Name:            elem.Name,
		Symbol:          elem.Symbol,
		CustodyContract: elem.CustodyContract,
		MaxLtv:          elem.MaxLtv,
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(&row).Error
}

func (s *WhitelistStore) ListWhitelist(ctx context.Context, startAfter string, limit int) ([]*overseer.WhitelistElem, error) {
	var rows []whitelistRow
	if err := s.db.WithContext(ctx).
		Where("collateral_token > ?", startAfter).
		Order("collateral_token asc").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	elems := make([]*overseer.WhitelistElem, 0, len(rows))
	for _, row := range rows {
		elems = append(elems, whitelistElemFromRow(row))
	}
	return elems, nil
}

func whitelistElemFromRow(row whitelistRow) *overseer.WhitelistElem {
	return &overseer.WhitelistElem{
		Name:            row.Name,
		Symbol:          row.Symbol,
		CollateralToken: row.CollateralToken,
		CustodyContract: row.CustodyContract,
		MaxLtv:          row.MaxLtv,
	}
}

func NewCollateralStore(db *gorm.DB) *CollateralStore {
	return &CollateralStore{db: db}
}

func (s *CollateralStore) GetCollaterals(ctx context.Context, borrower string) (core.Tokens, error) {
	var row collateralRow
	if err := s.db.WithContext(ctx).
		Where("borrower = ?", borrower).
		First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return core.Tokens{}, nil
		}
		return nil, err
	}
	return row.Collaterals.Tokens.Clone(), nil
}

func (s *CollateralStore) SaveCollaterals(ctx context.Context, borrower string, collaterals core.Tokens) error {
	if collaterals.IsEmpty() {
		return s.db.WithContext(ctx).
			Where("borrower = ?", borrower).
			Delete(&collateralRow{}).Error
	}

	row := collateralRow{
		ID:          utils.GenUuidFromStrings("overseer_collateral", borrower),
		Borrower:    borrower,
		Collaterals: TokensJSON{Tokens: collaterals.Clone()},
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(&row).Error
}

func (s *CollateralStore) ListCollaterals(ctx context.Context, startAfter string, limit int) ([]*overseer.BorrowerCollaterals, error) {
	var rows []collateralRow
	if err := s.db.WithContext(ctx).
		Where("borrower > ?", startAfter).
		Order("borrower asc").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]*overseer.BorrowerCollaterals, 0, len(rows))
	for _, row := range rows {
		out = append(out, &overseer.BorrowerCollaterals{
			Borrower:    row.Borrower,
			Collaterals: row.Collaterals.Tokens.Clone(),
		})
	}
	return out, nil
}
