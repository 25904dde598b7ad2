package store

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/solid-online/capa-money-market/custody"
	"github.com/solid-online/capa-money-market/utils"
)

type (
	custodyBorrowerRow struct {
		ID        string          `gorm:"column:id;primaryKey"`
		Custody   string          `gorm:"column:custody;index:idx_custody_borrower,unique"`
		Borrower  string          `gorm:"column:borrower;index:idx_custody_borrower,unique"`
		Balance   decimal.Decimal `gorm:"column:balance"`
		Spendable decimal.Decimal `gorm:"column:spendable"`
	}

	custodyBalanceRow struct {
		Custody string          `gorm:"column:custody;primaryKey"`
		Balance decimal.Decimal `gorm:"column:balance"`
	}

	// CustodyStore persists one custody instance's borrower positions.
	// Instances share the tables, namespaced by the custody address.
	CustodyStore struct {
		db      *gorm.DB
		custody string
	}
)

func (custodyBorrowerRow) TableName() string {
	return "custody_borrowers"
}

func (custodyBalanceRow) TableName() string {
	return "custody_balances"
}

func NewCustodyStore(db *gorm.DB, custodyAddr string) *CustodyStore {
	return &CustodyStore{db: db, custody: custodyAddr}
}

func (s *CustodyStore) GetBorrower(ctx context.Context, borrower string) (*custody.BorrowerInfo, error) {
	var row custodyBorrowerRow
	if err := s.db.WithContext(ctx).
		Where("custody = ? AND borrower = ?", s.custody, borrower).
		First(&row).Error; err != nil {
		return nil, err
	}
	return &custody.BorrowerInfo{
		Borrower:  row.Borrower,
		Balance:   row.Balance,
		Spendable: row.Spendable,
	}, nil
}

func (s *CustodyStore) SaveBorrower(ctx context.Context, info *custody.BorrowerInfo) error {
	row := custodyBorrowerRow{
		ID:        utils.GenUuidFromStrings("custody_borrower", s.custody, info.Borrower),
		Custody:   s.custody,
		Borrower:  info.Borrower,
		Balance:   info.Balance,
		Spendable: info.Spendable,
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(&row).Error
}

func (s *CustodyStore) RemoveBorrower(ctx context.Context, borrower string) error {
	return s.db.WithContext(ctx).
		Where("custody = ? AND borrower = ?", s.custody, borrower).
		Delete(&custodyBorrowerRow{}).Error
}

func (s *CustodyStore) ListBorrowers(ctx context.Context, startAfter string, limit int) ([]*custody.BorrowerInfo, error) {
	var rows []custodyBorrowerRow
	if err := s.db.WithContext(ctx).
		Where("custody = ? AND borrower > ?", s.custody, startAfter).
		Order("borrower asc").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	infos := make([]*custody.BorrowerInfo, 0, len(rows))
	for _, row := range rows {
		infos = append(infos, &custody.BorrowerInfo{
			Borrower:  row.Borrower,
			Balance:   row.Balance,
			Spendable: row.Spendable,
		})
	}
	return infos, nil
}

func (s *CustodyStore) GetBalance(ctx context.Context) (*custody.BalanceInfo, error) {
	var row custodyBalanceRow
	if err := s.db.WithContext(ctx).
		Where("custody = ?", s.custody).
		First(&row).Error; err != nil {
		return nil, err
	}
	return &custody.BalanceInfo{Balance: row.Balance}, nil
}

func (s *CustodyStore) SaveBalance(ctx context.Context, info *custody.BalanceInfo) error {
	row := custodyBalanceRow{
		Custody: s.custody,
		Balance: info.Balance,
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "custody"}},
			UpdateAll: true,
		}).
		Create(&row).Error
}
