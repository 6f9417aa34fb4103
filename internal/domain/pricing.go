package domain

import "github.com/shopspring/decimal"

// TaxRate is applied on top of the cart subtotal.
var TaxRate = decimal.NewFromFloat(0.10)

// Subtotal is the sum of price times quantity over all lines.
func Subtotal(lines []CartLine) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(decimal.NewFromFloat(l.Price).Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return sum
}

func Tax(lines []CartLine) decimal.Decimal {
	return Subtotal(lines).Mul(TaxRate)
}

// Total is subtotal plus tax rounded to two decimal places.
func Total(lines []CartLine) decimal.Decimal {
	sub := Subtotal(lines)
	return Round2(sub.Add(sub.Mul(TaxRate)))
}

func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Float converts for the wire, where amounts travel as JSON numbers.
func Float(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}
