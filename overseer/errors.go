package overseer

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

var (
	TokenAlreadyRegistered  = errors.New("collateral token is already registered")
	InvalidMaxLtv           = errors.New("max ltv must be strictly between 0 and 1")
	UnlockExceedsLocked     = errors.New("unlock amount exceeds locked collateral")
	CannotLiquidateSafeLoan = errors.New("cannot liquidate a safely collateralized loan")
)

// UnlockTooLarge reports an unlock that would drop the borrow limit under
// the live loan, carrying the limit left after the unlock.
type UnlockTooLarge struct {
	BorrowLimit decimal.Decimal
}

func (e UnlockTooLarge) Error() string {
	return fmt.Sprintf("unlock would leave borrow limit %s under the loan", e.BorrowLimit)
}
