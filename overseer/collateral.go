package overseer

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/solid-online/capa-money-market/core"
	"github.com/solid-online/capa-money-market/observability"
	"github.com/solid-online/capa-money-market/oracle"
)

// LockCollateral locks the sender's deposited collateral as borrow security:
// the ledger entry grows and each collateral's custody is told to move the
// amount out of the spendable share.
func (s *Service) LockCollateral(ctx context.Context, sender string, collaterals core.Tokens) error {
	if err := collaterals.Validate(); err != nil {
		return err
	}

	cur, err := s.collaterals.GetCollaterals(ctx, sender)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	cur = cur.Add(collaterals)
	if err := s.collaterals.SaveCollaterals(ctx, sender, cur); err != nil {
		return err
	}

	for _, collateral := range collaterals {
		custody, err := s.custodyFor(ctx, collateral.Asset)
		if err != nil {
			return err
		}
		if err := custody.LockCollateral(ctx, s.config.Address, sender, collateral.Amount); err != nil {
			return err
		}
	}

	observability.Overseer().RecordCollateralOp("lock")
	s.log.Info().
		Str("action", "lock_collateral").
		Str("borrower", sender).
		Msg("collateral locked")
	return nil
}

// UnlockCollateral releases locked collateral, refusing any unlock that
// would leave the remaining borrow limit under the live loan.
func (s *Service) UnlockCollateral(ctx context.Context, sender string, collaterals core.Tokens) error {
	if err := collaterals.Validate(); err != nil {
		return err
	}

	cur, err := s.collaterals.GetCollaterals(ctx, sender)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	remaining, err := cur.Sub(collaterals)
	if err != nil {
		return errors.Wrap(UnlockExceedsLocked, err.Error())
	}

	blockTime := s.clk.Now().Unix()
	borrowLimit, _, err := s.ComputeBorrowLimit(ctx, remaining, &blockTime)
	if err != nil {
		return err
	}
	loanAmount, err := s.market.LoanAmount(ctx, sender)
	if err != nil {
		return err
	}
	if borrowLimit.LessThan(loanAmount) {
		return UnlockTooLarge{BorrowLimit: borrowLimit}
	}

	if err := s.collaterals.SaveCollaterals(ctx, sender, remaining); err != nil {
		return err
	}

	for _, collateral := range collaterals {
		custody, err := s.custodyFor(ctx, collateral.Asset)
		if err != nil {
			return err
		}
		if err := custody.UnlockCollateral(ctx, s.config.Address, sender, collateral.Amount); err != nil {
			return err
		}
	}

	observability.Overseer().RecordCollateralOp("unlock")
	s.log.Info().
		Str("action", "unlock_collateral").
		Str("borrower", sender).
		Msg("collateral unlocked")
	return nil
}

// LiquidateCollateral seizes an underwater borrower's collateral. Anyone may
// call it; the sender becomes the liquidator. The liquidation contract picks
// the seize amounts, and sub-unit dust is written off without a custody
// dispatch.
func (s *Service) LiquidateCollateral(ctx context.Context, sender, borrower string) error {
	cur, err := s.collaterals.GetCollaterals(ctx, borrower)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	blockTime := s.clk.Now().Unix()
	borrowLimit, prices, err := s.ComputeBorrowLimit(ctx, cur, &blockTime)
	if err != nil {
		return err
	}
	loanAmount, err := s.market.LoanAmount(ctx, borrower)
	if err != nil {
		return err
	}
	if borrowLimit.GreaterThanOrEqual(loanAmount) {
		return CannotLiquidateSafeLoan
	}

	seized, err := s.liquidation.LiquidationAmount(ctx, loanAmount, borrowLimit, cur, prices)
	if err != nil {
		return err
	}

	remaining, err := cur.Sub(seized)
	if err != nil {
		return err
	}
	if err := s.collaterals.SaveCollaterals(ctx, borrower, remaining); err != nil {
		return err
	}

	for _, collateral := range seized {
		if collateral.Amount.LessThan(core.ONE) {
			continue
		}
		custody, err := s.custodyFor(ctx, collateral.Asset)
		if err != nil {
			return err
		}
		if err := custody.LiquidateCollateral(ctx, s.config.Address, sender, borrower, collateral.Amount); err != nil {
			return err
		}
	}

	observability.Overseer().RecordLiquidation()
	s.log.Info().
		Str("action", "liquidate_collateral").
		Str("liquidator", sender).
		Str("borrower", borrower).
		Msg("collateral liquidated")
	return nil
}

// ComputeBorrowLimit values the collaterals in the stable denom and applies
// each type's max LTV. Values truncate to whole units at every step. The
// per-collateral price vector is returned alongside so liquidation math can
// reuse it.
func (s *Service) ComputeBorrowLimit(ctx context.Context, collaterals core.Tokens, blockTime *int64) (decimal.Decimal, []decimal.Decimal, error) {
	var tc *oracle.TimeConstraints
	if blockTime != nil {
		tc = &oracle.TimeConstraints{
			BlockTime:      *blockTime,
			ValidTimeframe: s.config.PriceTimeframe,
		}
	}

	borrowLimit := decimal.Zero
	prices := make([]decimal.Decimal, 0, len(collaterals))
	for _, collateral := range collaterals {
		price, err := oracle.QueryPrice(ctx, s.prices, collateral.Asset, s.config.StableDenom, tc)
		if err != nil {
			return decimal.Zero, nil, err
		}

		elem, err := s.whitelist.GetWhitelistElem(ctx, collateral.Asset)
		if err != nil {
			return decimal.Zero, nil, err
		}

		collateralValue := collateral.Amount.Mul(price.Rate).Floor()
		borrowLimit = borrowLimit.Add(collateralValue.Mul(elem.MaxLtv).Floor())
		prices = append(prices, price.Rate)
	}
	return borrowLimit, prices, nil
}

func (s *Service) custodyFor(ctx context.Context, collateralToken string) (CustodyExecutor, error) {
	elem, err := s.whitelist.GetWhitelistElem(ctx, collateralToken)
	if err != nil {
		return nil, err
	}
	return s.custodies.Custody(elem.CustodyContract)
}
