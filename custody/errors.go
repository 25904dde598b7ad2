package custody

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

var (
	DepositNotAllowed           = errors.New("deposits are not allowed on this collateral")
	MissingDepositCollateralArg = errors.New("missing deposit collateral hook")
)

// WithdrawAmountExceedsSpendable reports a withdrawal over the borrower's
// spendable balance, carrying the spendable amount for the caller.
type WithdrawAmountExceedsSpendable struct {
	Spendable decimal.Decimal
}

func (e WithdrawAmountExceedsSpendable) Error() string {
	return fmt.Sprintf("withdraw amount exceeds spendable balance %s", e.Spendable)
}

type LockAmountExceedsSpendable struct {
	Spendable decimal.Decimal
}

func (e LockAmountExceedsSpendable) Error() string {
	return fmt.Sprintf("lock amount exceeds spendable balance %s", e.Spendable)
}

type UnlockAmountExceedsLocked struct {
	Locked decimal.Decimal
}

func (e UnlockAmountExceedsLocked) Error() string {
	return fmt.Sprintf("unlock amount exceeds locked balance %s", e.Locked)
}

type LiquidationAmountExceedsLocked struct {
	Locked decimal.Decimal
}

func (e LiquidationAmountExceedsLocked) Error() string {
	return fmt.Sprintf("liquidation amount exceeds locked balance %s", e.Locked)
}

// InvalidMaxDeposit reports a deposit (or cap change) that would push the
// contract balance over the deposit cap.
type InvalidMaxDeposit struct {
	Balance decimal.Decimal
}

func (e InvalidMaxDeposit) Error() string {
	return fmt.Sprintf("balance %s exceeds the deposit cap", e.Balance)
}
