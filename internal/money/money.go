// Package money holds the fixed-point price arithmetic used when snapshotting
// cart lines. Amounts are decimal with two fractional digits; float64 never
// touches a price. Aggregate totals live in SQL, next to the rows they sum.
package money

import "github.com/shopspring/decimal"

// Places is the fractional precision of every stored amount.
const Places = 2

// LineTotal returns unitPrice * quantity rounded to store precision.
func LineTotal(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Round(Places)
}
