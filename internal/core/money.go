// AngelaMos | 2026
// money.go

package core

import "github.com/shopspring/decimal"

func init() {
	// Prices and totals go over the wire as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Subtotal is price × quantity.
func Subtotal(price decimal.Decimal, quantity int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(quantity)))
}
