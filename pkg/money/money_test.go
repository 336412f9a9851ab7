package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestLineTotal(t *testing.T) {
	assert.Equal(t, "59.97", LineTotal(3, decimal.RequireFromString("19.99")).StringFixed(2))
	assert.Equal(t, "0.33", LineTotal(1, decimal.RequireFromString("0.333")).StringFixed(2))
}

func TestSum(t *testing.T) {
	got := Sum(
		decimal.RequireFromString("19.99"),
		decimal.RequireFromString("49.99"),
		decimal.RequireFromString("59.99"),
	)
	assert.True(t, got.Equal(decimal.RequireFromString("129.97")))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "R$ 119,97", Format(decimal.RequireFromString("119.97")))
	assert.Equal(t, "R$ 1.234.567,50", Format(decimal.RequireFromString("1234567.5")))
	assert.Equal(t, "R$ 0,00", Format(decimal.Zero))
	assert.Equal(t, "-R$ 10,00", Format(decimal.NewFromInt(-10)))
}
