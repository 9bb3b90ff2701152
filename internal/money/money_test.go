package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestLineTotal(t *testing.T) {
	unit := decimal.RequireFromString("19.99")

	assert.True(t, LineTotal(unit, 3).Equal(decimal.RequireFromString("59.97")))
	assert.True(t, LineTotal(unit, 0).Equal(decimal.Zero))
}

func TestLineTotal_NoFloatDrift(t *testing.T) {
	// 0.1 * 3 is the classic binary-float trap; decimal math must be exact.
	unit := decimal.RequireFromString("0.10")
	assert.Equal(t, "0.3", LineTotal(unit, 3).String())
}
