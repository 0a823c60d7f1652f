// Package core provides the finance tracker's domain types and calendar
// arithmetic.
//
// Amounts, units and prices are shopspring decimals so totals never pick up
// binary floating point drift. They travel over JSON as plain numbers.
package core

import "github.com/shopspring/decimal"

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// Sum adds up values, returning zero for an empty input.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}
