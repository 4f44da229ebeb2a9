package model

import "github.com/shopspring/decimal"

// Money and percentages go over the wire as JSON numbers.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

func Dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func DecPtr(d decimal.Decimal) *decimal.Decimal {
	return &d
}

// DecOrZero dereferences d, treating nil as zero.
func DecOrZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}
