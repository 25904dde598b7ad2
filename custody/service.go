package custody

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/solid-online/capa-money-market/core"
	"github.com/solid-online/capa-money-market/liquidation"
	"github.com/solid-online/capa-money-market/token"
)

type (
	Config struct {
		Owner               string `json:"owner"`
		CollateralToken     string `json:"collateralToken"`
		OverseerContract    string `json:"overseerContract"`
		MarketContract      string `json:"marketContract"`
		LiquidationContract string `json:"liquidationContract"`
		CollectorContract   string `json:"collectorContract"`

		// MaxDeposit caps the custody-wide balance when set.
		MaxDeposit *decimal.Decimal `json:"maxDeposit,omitempty"`
		// DepositsDisabled rejects new deposits; existing collateral can
		// still be withdrawn, locked, and liquidated.
		DepositsDisabled bool `json:"depositsDisabled,omitempty"`
	}

	// Service is one custody contract instance, holding a single
	// collateral token on behalf of borrowers.
	Service struct {
		log core.Log

		config    Config
		borrowers BorrowerStore
		tokens    token.Executor
	}

	// UpdateConfig carries the owner-mutable config fields; nil keeps
	// the stored value.
	UpdateConfig struct {
		Owner               *string
		LiquidationContract *string
		CollectorContract   *string
		MaxDeposit          *decimal.Decimal
	}
)

func NewService(log core.Log, config Config, borrowers BorrowerStore, tokens token.Executor) *Service {
	return &Service{
		log:       log,
		config:    config,
		borrowers: borrowers,
		tokens:    tokens,
	}
}

func (s *Service) Config() Config {
	return s.config
}

func (s *Service) UpdateConfig(ctx context.Context, sender string, update UpdateConfig) error {
	if sender != s.config.Owner {
		return core.Unauthorized
	}
	if update.Owner != nil {
		s.config.Owner = *update.Owner
	}
	if update.LiquidationContract != nil {
		s.config.LiquidationContract = *update.LiquidationContract
	}
	if update.CollectorContract != nil {
		s.config.CollectorContract = *update.CollectorContract
	}
	if update.MaxDeposit != nil {
		balance, err := s.balance(ctx)
		if err != nil {
			return err
		}
		if balance.Balance.GreaterThan(*update.MaxDeposit) {
			return InvalidMaxDeposit{Balance: balance.Balance}
		}
		s.config.MaxDeposit = update.MaxDeposit
	}

	s.log.Info().Str("action", "update_config").Msg("custody config updated")
	return nil
}

// DepositCollateral credits collateral received through the token hook.
// Only the collateral token itself may invoke it; borrower is the address
// that sent the tokens.
func (s *Service) DepositCollateral(ctx context.Context, sender, borrower string, amount decimal.Decimal) error {
	if s.config.DepositsDisabled {
		return DepositNotAllowed
	}
	if sender != s.config.CollateralToken {
		return core.Unauthorized
	}
	if !amount.IsPositive() {
		return core.ZeroAmount
	}

	balance, err := s.balance(ctx)
	if err != nil {
		return err
	}
	balance.Balance = balance.Balance.Add(amount)
	if s.config.MaxDeposit != nil && balance.Balance.GreaterThan(*s.config.MaxDeposit) {
		return InvalidMaxDeposit{Balance: balance.Balance}
	}

	info, err := s.borrower(ctx, borrower)
	if err != nil {
		return err
	}
	info.Balance = info.Balance.Add(amount)
	info.Spendable = info.Spendable.Add(amount)

	if err := s.borrowers.SaveBorrower(ctx, info); err != nil {
		return err
	}
	if err := s.borrowers.SaveBalance(ctx, balance); err != nil {
		return err
	}

	s.log.Info().
		Str("action", "deposit_collateral").
		Str("borrower", borrower).
		Str("amount", amount.String()).
		Msg("collateral deposited")
	return nil
}

// WithdrawCollateral returns spendable collateral to the borrower. A nil
// amount withdraws the whole spendable balance; a fully-withdrawn borrower
// record is removed.
func (s *Service) WithdrawCollateral(ctx context.Context, sender string, amount *decimal.Decimal) error {
	info, err := s.borrower(ctx, sender)
	if err != nil {
		return err
	}

	withdraw := info.Spendable
	if amount != nil {
		if !amount.IsPositive() {
			return core.InvalidAmount
		}
		withdraw = *amount
	}
	if info.Spendable.LessThan(withdraw) {
		return WithdrawAmountExceedsSpendable{Spendable: info.Spendable}
	}

	balance, err := s.balance(ctx)
	if err != nil {
		return err
	}

	info.Balance = info.Balance.Sub(withdraw)
	info.Spendable = info.Spendable.Sub(withdraw)
	balance.Balance = balance.Balance.Sub(withdraw)

	if info.Balance.IsZero() {
		if err := s.borrowers.RemoveBorrower(ctx, sender); err != nil {
			return err
		}
	} else {
		if err := s.borrowers.SaveBorrower(ctx, info); err != nil {
			return err
		}
	}
	if err := s.borrowers.SaveBalance(ctx, balance); err != nil {
		return err
	}

	if err := s.tokens.Transfer(ctx, s.config.CollateralToken, sender, withdraw); err != nil {
		return err
	}

	s.log.Info().
		Str("action", "withdraw_collateral").
		Str("borrower", sender).
		Str("amount", withdraw.String()).
		Msg("collateral withdrawn")
	return nil
}

// LockCollateral moves spendable collateral into the locked share, overseer
// only.
func (s *Service) LockCollateral(ctx context.Context, sender, borrower string, amount decimal.Decimal) error {
	if sender != s.config.OverseerContract {
		return core.Unauthorized
	}
	if !amount.IsPositive() {
		return core.InvalidAmount
	}

	info, err := s.borrower(ctx, borrower)
	if err != nil {
		return err
	}
	if amount.GreaterThan(info.Spendable) {
		return LockAmountExceedsSpendable{Spendable: info.Spendable}
	}
	info.Spendable = info.Spendable.Sub(amount)
	if err := s.borrowers.SaveBorrower(ctx, info); err != nil {
		return err
	}

	s.log.Info().
		Str("action", "lock_collateral").
		Str("borrower", borrower).
		Str("amount", amount.String()).
		Msg("collateral locked")
	return nil
}

// UnlockCollateral releases locked collateral back to spendable, overseer
// only.
func (s *Service) UnlockCollateral(ctx context.Context, sender, borrower string, amount decimal.Decimal) error {
	if sender != s.config.OverseerContract {
		return core.Unauthorized
	}
	if !amount.IsPositive() {
		return core.InvalidAmount
	}

	info, err := s.borrower(ctx, borrower)
	if err != nil {
		return err
	}
	locked := info.Locked()
	if amount.GreaterThan(locked) {
		return UnlockAmountExceedsLocked{Locked: locked}
	}
	info.Spendable = info.Spendable.Add(amount)
	if err := s.borrowers.SaveBorrower(ctx, info); err != nil {
		return err
	}

	s.log.Info().
		Str("action", "unlock_collateral").
		Str("borrower", borrower).
		Str("amount", amount.String()).
		Msg("collateral unlocked")
	return nil
}

// LiquidateCollateral hands locked collateral to the liquidation contract,
// overseer only. Proceeds repay the borrower's loan at the market; the fee
// share goes to the collector.
func (s *Service) LiquidateCollateral(ctx context.Context, sender, liquidator, borrower string, amount decimal.Decimal) error {
	if sender != s.config.OverseerContract {
		return core.Unauthorized
	}
	if !amount.IsPositive() {
		return core.InvalidAmount
	}

	info, err := s.borrower(ctx, borrower)
	if err != nil {
		return err
	}
	locked := info.Locked()
	if amount.GreaterThan(locked) {
		return LiquidationAmountExceedsLocked{Locked: locked}
	}

	balance, err := s.balance(ctx)
	if err != nil {
		return err
	}
	info.Balance = info.Balance.Sub(amount)
	balance.Balance = balance.Balance.Sub(amount)

	if err := s.borrowers.SaveBorrower(ctx, info); err != nil {
		return err
	}
	if err := s.borrowers.SaveBalance(ctx, balance); err != nil {
		return err
	}

	hook, err := json.Marshal(liquidation.ExecuteBidHook{
		Liquidator:      liquidator,
		FeeAddress:      s.config.CollectorContract,
		RepayAddress:    s.config.MarketContract,
		BorrowerAddress: borrower,
	})
	if err != nil {
		return err
	}
	if err := s.tokens.Send(ctx, s.config.CollateralToken, s.config.LiquidationContract, amount, hook); err != nil {
		return err
	}

	s.log.Info().
		Str("action", "liquidate_collateral").
		Str("liquidator", liquidator).
		Str("borrower", borrower).
		Str("amount", amount.String()).
		Msg("collateral liquidated")
	return nil
}

func (s *Service) borrower(ctx context.Context, borrower string) (*BorrowerInfo, error) {
	info, err := s.borrowers.GetBorrower(ctx, borrower)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &BorrowerInfo{
				Borrower:  borrower,
				Balance:   decimal.Zero,
				Spendable: decimal.Zero,
			}, nil
		}
		return nil, err
	}
	return info, nil
}

func (s *Service) balance(ctx context.Context) (*BalanceInfo, error) {
	info, err := s.borrowers.GetBalance(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &BalanceInfo{Balance: decimal.Zero}, nil
		}
		return nil, err
	}
	return info, nil
}
