// Package wrapper wraps a native denom into a CW20-style token at a fixed
// 1:1 rate, so the money market can custody it like any other token
// collateral.
package wrapper

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/solid-online/capa-money-market/core"
	"github.com/solid-online/capa-money-market/token"
)

var TooManyCoins = errors.New("exactly one coin must be attached")

// ZeroDeposit reports a bond without any of the collateral denom attached.
type ZeroDeposit struct {
	Denom string
}

func (e ZeroDeposit) Error() string {
	return "cannot bond a zero amount of " + e.Denom
}

// ZeroUnbond reports an unbond of zero wrapper tokens.
type ZeroUnbond struct {
	Denom string
}

func (e ZeroUnbond) Error() string {
	return "cannot unbond a zero amount of " + e.Denom
}

// UnbondExceedsBond reports an unbond over the bonded total, carrying the
// bonded total for the caller.
type UnbondExceedsBond struct {
	TotalBond decimal.Decimal
}

func (e UnbondExceedsBond) Error() string {
	return fmt.Sprintf("unbond amount exceeds bonded total %s", e.TotalBond)
}

const wrapperRegistrationReplyId = 1

type (
	Config struct {
		// Address is this wrapper's own contract address, the minter of
		// the wrapper token.
		Address string `json:"address"`
		Owner   string `json:"owner"`
		// CollateralDenom is the wrapped native denom.
		CollateralDenom string `json:"collateralDenom"`
		WrapperDenom    string `json:"wrapperDenom"`
		// WrapperContract stays empty until the registration
		// continuation fires.
		WrapperContract string `json:"wrapperContract"`
	}

	// State mirrors the 1:1 peg: bonded native always equals the wrapper
	// supply.
	State struct {
		TotalBond   decimal.Decimal `json:"totalBond"`
		TotalSupply decimal.Decimal `json:"totalSupply"`
	}

	StateStore interface {
		GetState(ctx context.Context) (*State, error)
		SaveState(ctx context.Context, state *State) error
	}

	// BankExecutor sends native coins.
	BankExecutor interface {
		Send(ctx context.Context, recipient string, coins []core.Coin) error
	}

	Service struct {
		log core.Log

		config Config
		state  StateStore

		tokens token.Executor
		bank   BankExecutor
	}
)

func NewService(log core.Log, config Config, state StateStore, tokens token.Executor, bank BankExecutor) *Service {
	return &Service{
		log:    log,
		config: config,
		state:  state,
		tokens: tokens,
		bank:   bank,
	}
}

// Instantiate kicks off the companion wrapper token; the assigned address
// comes back through Reply.
func (s *Service) Instantiate(ctx context.Context, instantiator token.Instantiator) error {
	addr, err := instantiator.Instantiate(ctx, token.InstantiateMsg{
		Name:     s.config.WrapperDenom,
		Symbol:   s.config.WrapperDenom,
		Decimals: core.BASE_PRECISION,
		Minter:   s.config.Address,
	})
	if err != nil {
		return err
	}
	return s.Reply(ctx, wrapperRegistrationReplyId, addr)
}

// Reply is the single-use token-registration continuation.
func (s *Service) Reply(ctx context.Context, id int, tokenAddr string) error {
	if id != wrapperRegistrationReplyId {
		return core.InvalidReplyId
	}
	if s.config.WrapperContract != "" {
		return core.Unauthorized
	}
	s.config.WrapperContract = tokenAddr

	s.log.Info().
		Str("action", "register_wrapper").
		Str("wrapper_contract", tokenAddr).
		Msg("wrapper token registered")
	return nil
}

func (s *Service) Config() Config {
	return s.config
}

func (s *Service) UpdateConfig(ctx context.Context, sender string, owner *string) error {
	if sender != s.config.Owner {
		return core.Unauthorized
	}
	if owner != nil {
		s.config.Owner = *owner
	}

	s.log.Info().Str("action", "update_config").Msg("wrapper config updated")
	return nil
}

// Bond locks the attached native coin and mints wrapper 1:1. Exactly one
// coin may be attached, and it must carry the collateral denom. An empty
// recipient defaults to the sender.
func (s *Service) Bond(ctx context.Context, sender string, funds []core.Coin, recipient string) error {
	if len(funds) != 1 {
		return TooManyCoins
	}

	amount := decimal.Zero
	if funds[0].Denom == s.config.CollateralDenom {
		amount = funds[0].Amount
	}
	if !amount.IsPositive() {
		return ZeroDeposit{Denom: s.config.CollateralDenom}
	}

	state, err := s.currentState(ctx)
	if err != nil {
		return err
	}
	state.TotalBond = state.TotalBond.Add(amount)
	state.TotalSupply = state.TotalSupply.Add(amount)
	if err := s.state.SaveState(ctx, state); err != nil {
		return err
	}

	receiver := recipient
	if receiver == "" {
		receiver = sender
	}
	if err := s.tokens.Mint(ctx, s.config.WrapperContract, receiver, amount); err != nil {
		return err
	}

	s.log.Info().
		Str("action", "bond").
		Str("receiver", receiver).
		Str("mint_amount", amount.String()).
		Msg("native bonded")
	return nil
}

// Unbond accepts wrapper tokens through the token hook, burns them, and
// releases native 1:1. Only the wrapper contract may invoke it; recipient
// defaults to whoever sent the tokens.
func (s *Service) Unbond(ctx context.Context, sender, payer string, amount decimal.Decimal, recipient string) error {
	if sender != s.config.WrapperContract {
		return core.Unauthorized
	}
	if !amount.IsPositive() {
		return ZeroUnbond{Denom: s.config.WrapperDenom}
	}

	state, err := s.currentState(ctx)
	if err != nil {
		return err
	}
	if amount.GreaterThan(state.TotalBond) {
		return UnbondExceedsBond{TotalBond: state.TotalBond}
	}
	state.TotalBond = state.TotalBond.Sub(amount)
	state.TotalSupply = state.TotalSupply.Sub(amount)
	if err := s.state.SaveState(ctx, state); err != nil {
		return err
	}

	receiver := recipient
	if receiver == "" {
		receiver = payer
	}
	if err := s.tokens.Burn(ctx, s.config.WrapperContract, amount); err != nil {
		return err
	}
	if err := s.bank.Send(ctx, receiver, []core.Coin{{
		Denom:  s.config.CollateralDenom,
		Amount: amount,
	}}); err != nil {
		return err
	}

	s.log.Info().
		Str("action", "redeem_collateral").
		Str("receiver", receiver).
		Str("redeem_amount", amount.String()).
		Msg("native unbonded")
	return nil
}

// StateQuery reports the bond ledger.
func (s *Service) StateQuery(ctx context.Context) (*State, error) {
	return s.currentState(ctx)
}

func (s *Service) currentState(ctx context.Context) (*State, error) {
	state, err := s.state.GetState(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &State{
				TotalBond:   decimal.Zero,
				TotalSupply: decimal.Zero,
			}, nil
		}
		return nil, err
	}
	return state, nil
}
