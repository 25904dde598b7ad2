package market

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/solid-online/capa-money-market/core"
	"github.com/solid-online/capa-money-market/observability"
)

// FlashMint mints stable to the sender, runs the sender's callback, then
// settles through PrivateFlashEnd with the market's own address as sender.
// The caller owns atomicity: if any leg fails, the surrounding unit of work
// is rolled back, mint included.
func (s *Service) FlashMint(ctx context.Context, sender string, amount decimal.Decimal, callback func(ctx context.Context) error) error {
	if !amount.IsPositive() {
		return core.InvalidAmount
	}

	feeAmount := decimal.Zero
	if s.config.FlashMintFee != nil {
		feeAmount = s.config.FlashMintFee.Mul(amount).Floor()
	}

	if err := s.tokens.Mint(ctx, s.config.StableContract, sender, amount); err != nil {
		return err
	}
	if err := callback(ctx); err != nil {
		return err
	}
	if err := s.PrivateFlashEnd(ctx, s.config.Address, sender, amount, feeAmount); err != nil {
		return err
	}

	observability.Market().RecordOperation("flash_mint")
	s.log.Info().
		Str("action", "flash_mint").
		Str("flash_minter", sender).
		Str("amount", amount.String()).
		Str("fee_amount", feeAmount.String()).
		Msg("flash mint settled")
	return nil
}

// PrivateFlashEnd burns the flash-minted amount back from the minter and
// collects the fee. Only the market itself may call it; that check is what
// keeps external actors from forging the settlement.
func (s *Service) PrivateFlashEnd(ctx context.Context, sender, flashMinter string, burnAmount, feeAmount decimal.Decimal) error {
	if sender != s.config.Address {
		return core.Unauthorized
	}

	if err := s.tokens.BurnFrom(ctx, s.config.StableContract, flashMinter, burnAmount); err != nil {
		return err
	}
	if feeAmount.IsPositive() {
		if err := s.tokens.TransferFrom(ctx, s.config.StableContract, flashMinter, s.config.CollectorContract, feeAmount); err != nil {
			return err
		}
	}
	return nil
}
