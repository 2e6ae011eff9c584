package service

import (
	"github.com/shopspring/decimal"
)

var TaxRate = decimal.RequireFromString("0.10")

type Line struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Shipping decimal.Decimal
	Total    decimal.Decimal
}

func LineTotal(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}

// ComputeTotals sums the lines and applies tax rounded to cents, half away from zero.
func ComputeTotals(lines []Line, shipping decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, ln := range lines {
		subtotal = subtotal.Add(LineTotal(ln.UnitPrice, ln.Quantity))
	}
	tax := subtotal.Mul(TaxRate).Round(2)

	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Shipping: shipping,
		Total:    subtotal.Add(tax).Add(shipping),
	}
}
