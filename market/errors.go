package market

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

var (
	ZeroRepay              = errors.New("cannot repay a zero amount")
	MissingRepayStableHook = errors.New("missing repay stable hook")
)

// BorrowExceedsLimit reports a borrow that would push the loan over the
// borrower's limit, carrying the live limit.
type BorrowExceedsLimit struct {
	BorrowLimit decimal.Decimal
}

func (e BorrowExceedsLimit) Error() string {
	return fmt.Sprintf("borrow exceeds limit %s", e.BorrowLimit)
}
