package core

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTokensAdd(t *testing.T) {
	tests := []struct {
		name     string
		base     Tokens
		other    Tokens
		expected Tokens
	}{
		{
			name:     "merge distinct assets sorted",
			base:     Tokens{{Asset: "uluna", Amount: decimal.NewFromInt(10)}},
			other:    Tokens{{Asset: "uusd", Amount: decimal.NewFromInt(5)}, {Asset: "uatom", Amount: decimal.NewFromInt(3)}},
			expected: Tokens{{Asset: "uatom", Amount: decimal.NewFromInt(3)}, {Asset: "uluna", Amount: decimal.NewFromInt(10)}, {Asset: "uusd", Amount: decimal.NewFromInt(5)}},
		},
		{
			name:     "sum same asset",
			base:     Tokens{{Asset: "uluna", Amount: decimal.NewFromInt(10)}},
			other:    Tokens{{Asset: "uluna", Amount: decimal.NewFromInt(7)}},
			expected: Tokens{{Asset: "uluna", Amount: decimal.NewFromInt(17)}},
		},
		{
			name:     "add to empty",
			base:     Tokens{},
			other:    Tokens{{Asset: "uluna", Amount: decimal.NewFromInt(1)}},
			expected: Tokens{{Asset: "uluna", Amount: decimal.NewFromInt(1)}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.base.Add(tt.other)
			assert.Equal(t, len(tt.expected), len(got))
			for i := range tt.expected {
				assert.Equal(t, tt.expected[i].Asset, got[i].Asset)
				assert.True(t, tt.expected[i].Amount.Equal(got[i].Amount), "expected %s, got %s", tt.expected[i].Amount, got[i].Amount)
			}
		})
	}
}

func TestTokensSub(t *testing.T) {
	base := Tokens{
		{Asset: "uatom", Amount: decimal.NewFromInt(3)},
		{Asset: "uluna", Amount: decimal.NewFromInt(10)},
	}

	t.Run("partial", func(t *testing.T) {
		got, err := base.Sub(Tokens{{Asset: "uluna", Amount: decimal.NewFromInt(4)}})
		assert.NoError(t, err)
		assert.True(t, got.Get("uluna").Equal(decimal.NewFromInt(6)))
		assert.True(t, got.Get("uatom").Equal(decimal.NewFromInt(3)))
	})

	t.Run("zeroed entries are dropped", func(t *testing.T) {
		got, err := base.Sub(Tokens{{Asset: "uatom", Amount: decimal.NewFromInt(3)}})
		assert.NoError(t, err)
		assert.Equal(t, 1, len(got))
		assert.True(t, got.Get("uatom").IsZero())
	})

	t.Run("underflow", func(t *testing.T) {
		_, err := base.Sub(Tokens{{Asset: "uluna", Amount: decimal.NewFromInt(11)}})
		assert.ErrorIs(t, err, SubTokensUnderflow)
	})

	t.Run("missing asset", func(t *testing.T) {
		_, err := base.Sub(Tokens{{Asset: "uusd", Amount: decimal.NewFromInt(1)}})
		assert.ErrorIs(t, err, SubTokensUnderflow)
	})

	t.Run("source is untouched", func(t *testing.T) {
		_, err := base.Sub(Tokens{{Asset: "uluna", Amount: decimal.NewFromInt(4)}})
		assert.NoError(t, err)
		assert.True(t, base.Get("uluna").Equal(decimal.NewFromInt(10)))
	})
}

func TestTokensValidate(t *testing.T) {
	t.Run("positive amounts", func(t *testing.T) {
		ts := Tokens{
			{Asset: "uatom", Amount: decimal.NewFromInt(3)},
			{Asset: "uluna", Amount: decimal.NewFromInt(10)},
		}
		assert.NoError(t, ts.Validate())
	})

	t.Run("zero amount", func(t *testing.T) {
		ts := Tokens{{Asset: "uluna", Amount: decimal.Zero}}
		assert.ErrorIs(t, ts.Validate(), InvalidAmount)
	})

	t.Run("negative amount", func(t *testing.T) {
		ts := Tokens{
			{Asset: "uatom", Amount: decimal.NewFromInt(3)},
			{Asset: "uluna", Amount: decimal.NewFromInt(-10)},
		}
		assert.ErrorIs(t, ts.Validate(), InvalidAmount)
	})
}

func TestPageLimit(t *testing.T) {
	intPtr := func(v int) *int { return &v }

	assert.Equal(t, DEFAULT_LIMIT, PageLimit(nil))
	assert.Equal(t, 5, PageLimit(intPtr(5)))
	assert.Equal(t, MAX_LIMIT, PageLimit(intPtr(100)))

	// Non-positive sizes fall back to the default instead of reaching the
	// store, where a negative limit disables the limit clause.
	assert.Equal(t, DEFAULT_LIMIT, PageLimit(intPtr(0)))
	assert.Equal(t, DEFAULT_LIMIT, PageLimit(intPtr(-1)))
}
