package market

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/solid-online/capa-money-market/core"
	"github.com/solid-online/capa-money-market/observability"
	"github.com/solid-online/capa-money-market/oracle"
)

// BorrowStable mints new stable against the sender's locked collateral. The
// one-time fee is added to the loan but not to the minted amount, the
// tracked principal, or the system liabilities. An empty recipient defaults
// to the borrower.
func (s *Service) BorrowStable(ctx context.Context, sender string, borrowAmount decimal.Decimal, to string) error {
	if !borrowAmount.IsPositive() {
		return core.InvalidAmount
	}

	info, err := s.borrower(ctx, sender)
	if err != nil {
		return err
	}
	state, err := s.state(ctx)
	if err != nil {
		return err
	}

	fee, err := s.computeBorrowFee(ctx, borrowAmount)
	if err != nil {
		return err
	}

	blockTime := s.clk.Now().Unix()
	borrowLimit, err := s.overseer.BorrowLimit(ctx, sender, &blockTime)
	if err != nil {
		return err
	}

	borrowWithFee := borrowAmount.Add(fee)
	if borrowLimit.LessThan(borrowWithFee.Add(info.LoanAmount)) {
		return BorrowExceedsLimit{BorrowLimit: borrowLimit}
	}

	info.LoanAmount = info.LoanAmount.Add(borrowWithFee)
	info.LoanAmountWithoutInterest = info.LoanAmountWithoutInterest.Add(borrowAmount)
	state.TotalLiabilities = state.TotalLiabilities.Add(borrowAmount)

	if err := s.borrowers.SaveState(ctx, state); err != nil {
		return err
	}
	if err := s.borrowers.SaveBorrower(ctx, info); err != nil {
		return err
	}

	recipient := to
	if recipient == "" {
		recipient = sender
	}
	if err := s.tokens.Mint(ctx, s.config.StableContract, recipient, borrowAmount); err != nil {
		return err
	}

	observability.Market().RecordOperation("borrow")
	observability.Market().SetTotalLiabilities(state.TotalLiabilities)
	s.log.Info().
		Str("action", "borrow_stable").
		Str("borrower", sender).
		Str("borrow_amount", borrowAmount.String()).
		Str("fee", fee.String()).
		Msg("stable borrowed")
	return nil
}

// RepayStable accepts stable returned through the token hook: only the
// stable contract itself may invoke it, and the borrower is whoever sent
// the tokens.
func (s *Service) RepayStable(ctx context.Context, sender, borrower string, amount decimal.Decimal) error {
	if sender != s.config.StableContract {
		return core.Unauthorized
	}
	return s.repayStable(ctx, borrower, amount)
}

// RepayStableFromLiquidation credits liquidation proceeds against the
// original borrower's loan. The tokens must come from the stable contract
// and must have been sent by the liquidation contract.
func (s *Service) RepayStableFromLiquidation(ctx context.Context, sender, payer, borrower string, amount decimal.Decimal) error {
	if sender != s.config.StableContract || payer != s.config.LiquidationContract {
		return core.Unauthorized
	}
	return s.repayStable(ctx, borrower, amount)
}

// repayStable burns the principal share of the repayment and routes the fee
// share to the collector. Repaying over the loan clears it and refunds the
// excess.
func (s *Service) repayStable(ctx context.Context, borrower string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ZeroRepay
	}

	info, err := s.borrower(ctx, borrower)
	if err != nil {
		return err
	}
	state, err := s.state(ctx)
	if err != nil {
		return err
	}

	var repayAmount, burnAmount decimal.Decimal
	if amount.GreaterThanOrEqual(info.LoanAmount) {
		repayAmount = info.LoanAmount
		burnAmount = info.LoanAmountWithoutInterest
		info.LoanAmount = decimal.Zero
		info.LoanAmountWithoutInterest = decimal.Zero

		if excess := amount.Sub(repayAmount); excess.IsPositive() {
			if err := s.tokens.Transfer(ctx, s.config.StableContract, borrower, excess); err != nil {
				return err
			}
		}
	} else {
		repayAmount = amount
		burnAmount = repayAmount.Mul(info.LoanAmountWithoutInterest).Div(info.LoanAmount).Floor()
		info.LoanAmount = info.LoanAmount.Sub(repayAmount)
		info.LoanAmountWithoutInterest = info.LoanAmountWithoutInterest.Sub(burnAmount)
	}

	if burnAmount.IsPositive() {
		if err := s.tokens.Burn(ctx, s.config.StableContract, burnAmount); err != nil {
			return err
		}
	}
	if interest := repayAmount.Sub(burnAmount); interest.IsPositive() {
		if err := s.tokens.Transfer(ctx, s.config.StableContract, s.config.CollectorContract, interest); err != nil {
			return err
		}
	}

	state.TotalLiabilities = state.TotalLiabilities.Sub(burnAmount)
	if err := s.borrowers.SaveBorrower(ctx, info); err != nil {
		return err
	}
	if err := s.borrowers.SaveState(ctx, state); err != nil {
		return err
	}

	observability.Market().RecordOperation("repay")
	observability.Market().SetTotalLiabilities(state.TotalLiabilities)
	s.log.Info().
		Str("action", "repay_stable").
		Str("borrower", borrower).
		Str("repay_amount", repayAmount.String()).
		Msg("stable repaid")
	return nil
}

// computeBorrowFee prices the stable against its peg: above peg only the
// base fee applies, below peg the fee grows with the depeg distance.
func (s *Service) computeBorrowFee(ctx context.Context, borrowAmount decimal.Decimal) (decimal.Decimal, error) {
	price, err := oracle.QueryPrice(ctx, s.prices, s.config.StableContract, s.config.StableDenom, &oracle.TimeConstraints{
		BlockTime:      s.clk.Now().Unix(),
		ValidTimeframe: borrowFeeTimeframe,
	})
	if err != nil {
		return decimal.Zero, err
	}

	rate := s.config.BaseBorrowFee
	if price.Rate.LessThanOrEqual(core.ONE) {
		rate = rate.Add(core.ONE.Sub(price.Rate).Div(s.config.FeeIncreaseFactor))
	}
	return rate.Mul(borrowAmount).Floor(), nil
}
