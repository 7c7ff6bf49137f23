package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	t.Run("valid money", func(t *testing.T) {
		m, err := NewMoney(decimal.NewFromInt(10), EUR)

		require.NoError(t, err)
		assert.True(t, m.Amount().Equal(decimal.NewFromInt(10)))
		assert.Equal(t, EUR, m.Currency())
	})

	t.Run("empty currency rejected", func(t *testing.T) {
		_, err := NewMoney(decimal.NewFromInt(10), "")
		assert.Error(t, err)
	})
}

func TestMoney_Arithmetic(t *testing.T) {
	t.Run("add", func(t *testing.T) {
		sum, err := NewMoneyEURFromFloat(10.50).Add(NewMoneyEURFromFloat(4.25))

		require.NoError(t, err)
		assert.Equal(t, "14.75", sum.Amount().StringFixed(2))
	})

	t.Run("sub", func(t *testing.T) {
		diff, err := NewMoneyEURFromFloat(10.50).Sub(NewMoneyEURFromFloat(4.25))

		require.NoError(t, err)
		assert.Equal(t, "6.25", diff.Amount().StringFixed(2))
	})

	t.Run("currency mismatch rejected", func(t *testing.T) {
		usd, err := NewMoney(decimal.NewFromInt(1), USD)
		require.NoError(t, err)

		_, err = NewMoneyEURFromFloat(1).Add(usd)
		assert.Error(t, err)

		_, err = NewMoneyEURFromFloat(1).Sub(usd)
		assert.Error(t, err)
	})
}

func TestMoney_ApplyPercentage(t *testing.T) {
	tests := []struct {
		name       string
		amount     string
		percentage string
		expected   string
	}{
		{"whole cut", "120.00", "5", "6.00"},
		{"half cent rounds up", "10.10", "5", "0.51"},
		{"below half cent rounds down", "10.01", "5", "0.50"},
		{"zero percentage", "120.00", "0", "0.00"},
		{"full percentage", "120.00", "100", "120.00"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m, err := NewMoneyEURFromString(tc.amount)
			require.NoError(t, err)
			pct, err := decimal.NewFromString(tc.percentage)
			require.NoError(t, err)

			cut := m.ApplyPercentage(pct)
			assert.Equal(t, tc.expected, cut.Amount().StringFixed(2))
		})
	}
}

func TestMoney_Comparisons(t *testing.T) {
	small := NewMoneyEURFromFloat(5)
	large := NewMoneyEURFromFloat(10)

	assert.True(t, small.LessThan(large))
	assert.True(t, large.GreaterThan(small))
	assert.False(t, small.Equals(large))
	assert.True(t, small.Equals(NewMoneyEURFromFloat(5)))
	assert.True(t, ZeroEUR().IsZero())
	assert.True(t, small.IsPositive())
	assert.True(t, NewMoneyEURFromFloat(-1).IsNegative())
}

func TestMoney_FromString(t *testing.T) {
	t.Run("valid string", func(t *testing.T) {
		m, err := NewMoneyEURFromString("42.50")

		require.NoError(t, err)
		assert.Equal(t, "42.50 EUR", m.String())
	})

	t.Run("invalid string rejected", func(t *testing.T) {
		_, err := NewMoneyEURFromString("forty-two")
		assert.Error(t, err)
	})
}

func TestMoney_JSON(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		original := NewMoneyEURFromFloat(19.99)

		data, err := json.Marshal(original)
		require.NoError(t, err)

		var decoded Money
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.True(t, original.Equals(decoded))
	})

	t.Run("missing currency defaults to EUR", func(t *testing.T) {
		var m Money
		require.NoError(t, json.Unmarshal([]byte(`{"amount":"10"}`), &m))

		assert.Equal(t, EUR, m.Currency())
		assert.True(t, m.Amount().Equal(decimal.NewFromInt(10)))
	})
}
