// Package forms implements the per-form tax computations for tax year 2025.
// Each form is a self-contained calculator constructed from the year constant
// table; calculators hold no references to the engine or pipeline and are
// safe for concurrent use.
package forms

import (
	"github.com/shopspring/decimal"
)

// emit rounds a value to cents, half-up, at a line-emission boundary.
// Intermediates keep full precision; only emitted lines are rounded.
func emit(v decimal.Decimal) decimal.Decimal {
	return v.Round(2)
}

// floorZero clamps a value at zero.
func floorZero(v decimal.Decimal) decimal.Decimal {
	if v.IsNegative() {
		return decimal.Zero
	}
	return v
}

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)
