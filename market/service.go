package market

import (
	"context"

	"github.com/facebookgo/clock"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/solid-online/capa-money-market/core"
	"github.com/solid-online/capa-money-market/oracle"
	"github.com/solid-online/capa-money-market/token"
)

const (
	// stableName and stableSymbol label the companion stable token
	// instantiated at construction.
	stableName   = "Solid"
	stableSymbol = "SOLID"

	// borrowFeeTimeframe is the fixed staleness window, in seconds, on
	// the stable peg price used for fee computation.
	borrowFeeTimeframe int64 = 1200

	// stableRegistrationReplyId keys the token-instantiation
	// continuation.
	stableRegistrationReplyId = 1
)

type (
	Config struct {
		// Address is this market's own contract address; it is both the
		// stable token's minter and the only sender PrivateFlashEnd
		// accepts.
		Address string `json:"address"`
		Owner   string `json:"owner"`

		// Collaborators stay empty until RegisterContracts; the stable
		// contract stays empty until the registration continuation
		// fires.
		StableContract      string `json:"stableContract"`
		OverseerContract    string `json:"overseerContract"`
		CollectorContract   string `json:"collectorContract"`
		LiquidationContract string `json:"liquidationContract"`
		OracleContract      string `json:"oracleContract"`

		// StableDenom is the quote denom of the stable peg price.
		StableDenom string `json:"stableDenom"`

		BaseBorrowFee     decimal.Decimal  `json:"baseBorrowFee"`
		FeeIncreaseFactor decimal.Decimal  `json:"feeIncreaseFactor"`
		FlashMintFee      *decimal.Decimal `json:"flashMintFee,omitempty"`
	}

	Service struct {
		clk clock.Clock
		log core.Log

		config    Config
		borrowers BorrowerStore

		tokens   token.Executor
		prices   oracle.PriceQuerier
		overseer BorrowLimitQuerier
	}

	UpdateConfig struct {
		Owner               *string
		LiquidationContract *string
		BaseBorrowFee       *decimal.Decimal
		FeeIncreaseFactor   *decimal.Decimal
	}
)

func NewService(
	clk clock.Clock,
	log core.Log,
	config Config,
	borrowers BorrowerStore,
	tokens token.Executor,
	prices oracle.PriceQuerier,
	overseer BorrowLimitQuerier,
) *Service {
	return &Service{
		clk:       clk,
		log:       log,
		config:    config,
		borrowers: borrowers,
		tokens:    tokens,
		prices:    prices,
		overseer:  overseer,
	}
}

// Instantiate kicks off the companion stable token; the assigned address
// comes back through Reply.
func (s *Service) Instantiate(ctx context.Context, instantiator token.Instantiator) error {
	addr, err := instantiator.Instantiate(ctx, token.InstantiateMsg{
		Name:     stableName,
		Symbol:   stableSymbol,
		Decimals: core.BASE_PRECISION,
		Minter:   s.config.Address,
	})
	if err != nil {
		return err
	}
	return s.Reply(ctx, stableRegistrationReplyId, addr)
}

// Reply is the token-instantiation continuation. Only the registration id
// is known, and it is single-use: once the stable contract is set, a second
// reply is rejected.
func (s *Service) Reply(ctx context.Context, id int, tokenAddr string) error {
	if id != stableRegistrationReplyId {
		return core.InvalidReplyId
	}
	if s.config.StableContract != "" {
		return core.Unauthorized
	}
	s.config.StableContract = tokenAddr

	s.log.Info().
		Str("action", "register_stable").
		Str("stable_contract", tokenAddr).
		Msg("stable token registered")
	return nil
}

// RegisterContracts wires the collaborator addresses, owner only and
// one-shot: a second registration is rejected while any address is already
// set.
func (s *Service) RegisterContracts(ctx context.Context, sender, overseer, collector, liquidation, oracleContract string) error {
	if sender != s.config.Owner {
		return core.Unauthorized
	}
	if s.config.OverseerContract != "" ||
		s.config.CollectorContract != "" ||
		s.config.LiquidationContract != "" ||
		s.config.OracleContract != "" {
		return core.Unauthorized
	}

	s.config.OverseerContract = overseer
	s.config.CollectorContract = collector
	s.config.LiquidationContract = liquidation
	s.config.OracleContract = oracleContract

	s.log.Info().Str("action", "register_contracts").Msg("market contracts registered")
	return nil
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
	// A base fee of 1 or more would charge the whole principal; such
	// updates are ignored.
	if update.BaseBorrowFee != nil && update.BaseBorrowFee.LessThan(core.ONE) {
		s.config.BaseBorrowFee = *update.BaseBorrowFee
	}
	if update.FeeIncreaseFactor != nil {
		s.config.FeeIncreaseFactor = *update.FeeIncreaseFactor
	}

	s.log.Info().Str("action", "update_config").Msg("market config updated")
	return nil
}

func (s *Service) Config() Config {
	return s.config
}

func (s *Service) borrower(ctx context.Context, borrower string) (*BorrowerInfo, error) {
	info, err := s.borrowers.GetBorrower(ctx, borrower)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &BorrowerInfo{
				Borrower:                  borrower,
				LoanAmount:                decimal.Zero,
				LoanAmountWithoutInterest: decimal.Zero,
			}, nil
		}
		return nil, err
	}
	return info, nil
}

func (s *Service) state(ctx context.Context) (*State, error) {
	state, err := s.borrowers.GetState(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &State{TotalLiabilities: decimal.Zero}, nil
		}
		return nil, err
	}
	return state, nil
}
