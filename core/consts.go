package core

import "github.com/shopspring/decimal"

const (
	// BASE_PRECISION is the decimal precision every price is normalized to.
	// Feeder registrations carry the feeder's native precision and the
	// oracle stores the offset against this base.
	BASE_PRECISION = 6

	DEFAULT_LIMIT = 10
	MAX_LIMIT     = 30
)

var (
	ONE = decimal.NewFromInt(1)
	TEN = decimal.NewFromInt(10)
)

// PageLimit clamps an optional page size to the bucket-scan bounds.
// Non-positive sizes fall back to the default so a negative value can never
// disable a backing store's limit clause.
func PageLimit(limit *int) int {
	if limit == nil || *limit <= 0 {
		return DEFAULT_LIMIT
	}
	if *limit > MAX_LIMIT {
		return MAX_LIMIT
	}
	return *limit
}
