// Package tax supplies the pluggable tax policy applied during order
// composition. The storefront currently ships a fixed placeholder rate; a
// real per-jurisdiction tax table would implement the same Calculator
// interface.
package tax

import "github.com/shopspring/decimal"

// Line is a single applied tax: a code mapped to the amount charged.
type Line struct {
	Code   string
	Amount decimal.Decimal
}

// Calculator computes the tax lines to apply to an order total.
type Calculator interface {
	Apply(total decimal.Decimal) []Line
}

// FixedAmount is a Calculator that always charges one flat tax line.
type FixedAmount struct {
	Code   string
	Amount decimal.Decimal
}

// Apply returns the single configured tax line regardless of total.
func (f FixedAmount) Apply(decimal.Decimal) []Line {
	return []Line{{Code: f.Code, Amount: f.Amount}}
}

// DefaultVAT returns the placeholder policy: a flat 0.8 VAT line.
func DefaultVAT() FixedAmount {
	return FixedAmount{
		Code:   "VAT",
		Amount: decimal.RequireFromString("0.8"),
	}
}
