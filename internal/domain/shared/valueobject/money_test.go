package valueobject

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	t.Run("creates money with valid inputs", func(t *testing.T) {
		m, err := NewMoney(decimal.NewFromInt(100), INR)
		require.NoError(t, err)
		assert.True(t, m.Amount().Equal(decimal.NewFromInt(100)))
		assert.Equal(t, INR, m.Currency())
	})

	t.Run("fails with empty currency", func(t *testing.T) {
		_, err := NewMoney(decimal.NewFromInt(100), "")
		require.Error(t, err)
	})
}

func TestNewMoneyFromString(t *testing.T) {
	t.Run("parses valid string", func(t *testing.T) {
		m, err := NewMoneyFromString("150.50", INR)
		require.NoError(t, err)
		assert.Equal(t, "INR 150.50", m.String())
	})

	t.Run("fails on invalid string", func(t *testing.T) {
		_, err := NewMoneyFromString("not-a-number", INR)
		require.Error(t, err)
	})
}

func TestMoneyArithmetic(t *testing.T) {
	a := NewMoneyINRFromFloat(100.00)
	b := NewMoneyINRFromFloat(50.00)

	t.Run("add", func(t *testing.T) {
		sum, err := a.Add(b)
		require.NoError(t, err)
		assert.True(t, sum.Amount().Equal(decimal.NewFromInt(150)))
	})

	t.Run("sub", func(t *testing.T) {
		diff, err := a.Sub(b)
		require.NoError(t, err)
		assert.True(t, diff.Amount().Equal(decimal.NewFromInt(50)))
	})

	t.Run("mixed currencies are rejected", func(t *testing.T) {
		usd, err := NewMoney(decimal.NewFromInt(10), USD)
		require.NoError(t, err)
		_, err = a.Add(usd)
		require.Error(t, err)
		_, err = a.Sub(usd)
		require.Error(t, err)
	})
}

func TestMoneyComparison(t *testing.T) {
	a := NewMoneyINRFromFloat(100.00)
	b := NewMoneyINRFromFloat(50.00)

	assert.True(t, a.GreaterThan(b))
	assert.True(t, a.GreaterThanOrEqual(b))
	assert.True(t, b.LessThan(a))
	assert.False(t, a.Equal(b))
	assert.True(t, a.Equal(NewMoneyINR(decimal.NewFromInt(100))))
	assert.True(t, a.IsPositive())
	assert.False(t, a.IsZero())
	assert.False(t, a.IsNegative())
}
