package store

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/solid-online/capa-money-market/market"
	"github.com/solid-online/capa-money-market/utils"
	"github.com/solid-online/capa-money-market/wrapper"
)

type (
	liabilityRow struct {
		ID                        string          `gorm:"column:id;primaryKey"`
		Borrower                  string          `gorm:"column:borrower;uniqueIndex"`
		LoanAmount                decimal.Decimal `gorm:"column:loan_amount"`
		LoanAmountWithoutInterest decimal.Decimal `gorm:"column:loan_amount_without_interest"`
	}

	marketStateRow struct {
		ID               int             `gorm:"column:id;primaryKey"`
		TotalLiabilities decimal.Decimal `gorm:"column:total_liabilities"`
	}

	wrapperStateRow struct {
		Wrapper     string          `gorm:"column:wrapper;primaryKey"`
		TotalBond   decimal.Decimal `gorm:"column:total_bond"`
		TotalSupply decimal.Decimal `gorm:"column:total_supply"`
	}

	LiabilityStore struct {
		db *gorm.DB
	}

	// WrapperStateStore persists one wrapper instance's bond ledger,
	// namespaced by the wrapper address.
	WrapperStateStore struct {
		db      *gorm.DB
		wrapper string
	}
)

func (liabilityRow) TableName() string {
	return "market_liabilities"
}

func (marketStateRow) TableName() string {
	return "market_state"
}

func (wrapperStateRow) TableName() string {
	return "wrapper_state"
}

func NewLiabilityStore(db *gorm.DB) *LiabilityStore {
	return &LiabilityStore{db: db}
}

func (s *LiabilityStore) GetBorrower(ctx context.Context, borrower string) (*market.BorrowerInfo, error) {
	var row liabilityRow
	if err := s.db.WithContext(ctx).
		Where("borrower = ?", borrower).
		First(&row).Error; err != nil {
		return nil, err
	}
	return &market.BorrowerInfo{
		Borrower:                  row.Borrower,
		LoanAmount:                row.LoanAmount,
		LoanAmountWithoutInterest: row.LoanAmountWithoutInterest,
	}, nil
}

func (s *LiabilityStore) SaveBorrower(ctx context.Context, info *market.BorrowerInfo) error {
	row := liabilityRow{
		ID:                        utils.GenUuidFromStrings("market_liability", info.Borrower),
		Borrower:                  info.Borrower,
		LoanAmount:                info.LoanAmount,
		LoanAmountWithoutInterest: info.LoanAmountWithoutInterest,
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(&row).Error
}

func (s *LiabilityStore) ListBorrowers(ctx context.Context, startAfter string, limit int) ([]*market.BorrowerInfo, error) {
	var rows []liabilityRow
	if err := s.db.WithContext(ctx).
		Where("borrower > ?", startAfter).
		Order("borrower asc").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	infos := make([]*market.BorrowerInfo, 0, len(rows))
	for _, row := range rows {
		infos = append(infos, &market.BorrowerInfo{
			Borrower:                  row.Borrower,
			LoanAmount:                row.LoanAmount,
			LoanAmountWithoutInterest: row.LoanAmountWithoutInterest,
		})
	}
	return infos, nil
}

func (s *LiabilityStore) GetState(ctx context.Context) (*market.State, error) {
	var row marketStateRow
	if err := s.db.WithContext(ctx).First(&row).Error; err != nil {
		return nil, err
	}
	return &market.State{TotalLiabilities: row.TotalLiabilities}, nil
}

func (s *LiabilityStore) SaveState(ctx context.Context, state *market.State) error {
	row := marketStateRow{
		ID:               1,
		TotalLiabilities: state.TotalLiabilities,
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(&row).Error
}

func NewWrapperStateStore(db *gorm.DB, wrapperAddr string) *WrapperStateStore {
	return &WrapperStateStore{db: db, wrapper: wrapperAddr}
}

func (s *WrapperStateStore) GetState(ctx context.Context) (*wrapper.State, error) {
	var row wrapperStateRow
	if err := s.db.WithContext(ctx).
		Where("wrapper = ?", s.wrapper).
		First(&row).Error; err != nil {
		return nil, err
	}
	return &wrapper.State{
		TotalBond:   row.TotalBond,
		TotalSupply: row.TotalSupply,
	}, nil
}

func (s *WrapperStateStore) SaveState(ctx context.Context, state *wrapper.State) error {
	row := wrapperStateRow{
		Wrapper:     s.wrapper,
		TotalBond:   state.TotalBond,
		TotalSupply: state.TotalSupply,
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "wrapper"}},
			UpdateAll: true,
		}).
		Create(&row).Error
}
