package core

import (
	"sort"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

var SubTokensUnderflow = errors.New("subtraction underflow on token list")

type (
	// Token is one (collateral type, amount) pair of a borrower's ledger.
	Token struct {
		Asset  string          `json:"asset"`
		Amount decimal.Decimal `json:"amount"`
	}

	// Tokens is a borrower's collateral list, kept sorted by asset id so
	// range scans and message fan-out are deterministic.
	Tokens []Token
)

// Coin is a native denom amount attached to an inbound message.
type Coin struct {
	Denom  string          `json:"denom"`
	Amount decimal.Decimal `json:"amount"`
}

func (ts Tokens) Clone() Tokens {
	out := make(Tokens, len(ts))
	copy(out, ts)
	return out
}

func (ts Tokens) Get(asset string) decimal.Decimal {
	for _, t := range ts {
		if t.Asset == asset {
			return t.Amount
		}
	}
	return decimal.Zero
}

func (ts Tokens) IsEmpty() bool {
	return len(ts) == 0
}

// Validate rejects entries with non-positive amounts. Amounts arrive from
// callers as signed decimals, so every ingress list must be checked before
// it reaches ledger arithmetic.
func (ts Tokens) Validate() error {
	for _, t := range ts {
		if !t.Amount.IsPositive() {
			return errors.Wrapf(InvalidAmount, "asset %s", t.Asset)
		}
	}
	return nil
}

// Add merges the other list into this one, summing amounts per asset.
func (ts Tokens) Add(other Tokens) Tokens {
	out := ts.Clone()
	for _, o := range other {
		found := false
		for i := range out {
			if out[i].Asset == o.Asset {
				out[i].Amount = out[i].Amount.Add(o.Amount)
				found = true
				break
			}
		}
		if !found {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Asset < out[j].Asset })
	return out
}

// Sub removes the other list from this one. Any per-asset underflow, or an
// asset missing entirely, fails the whole subtraction. Zeroed entries are
// dropped from the result.
func (ts Tokens) Sub(other Tokens) (Tokens, error) {
	out := ts.Clone()
	for _, o := range other {
		found := false
		for i := range out {
			if out[i].Asset == o.Asset {
				if out[i].Amount.LessThan(o.Amount) {
					return nil, SubTokensUnderflow
				}
				out[i].Amount = out[i].Amount.Sub(o.Amount)
				found = true
				break
			}
		}
		if !found && o.Amount.IsPositive() {
			return nil, SubTokensUnderflow
		}
	}
	compact := make(Tokens, 0, len(out))
	for _, t := range out {
		if t.Amount.IsPositive() {
			compact = append(compact, t)
		}
	}
	sort.Slice(compact, func(i, j int) bool { return compact[i].Asset < compact[j].Asset })
	return compact, nil
}
