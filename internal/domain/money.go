package domain

import "github.com/shopspring/decimal"

// Round2 applies the platform's single currency rounding rule: two decimal
// places, half away from zero. Client and server totals must agree, so every
// amount that crosses the wire goes through here.
func Round2(v float64) float64 {
	out, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return out
}

// LineTotal is the rounded price of one cart line.
func LineTotal(unitPrice float64, quantity int) float64 {
	total := decimal.NewFromFloat(unitPrice).Mul(decimal.NewFromInt(int64(quantity)))
	out, _ := total.Round(2).Float64()
	return out
}

// SumLines totals cart lines with per-line rounding, then rounds the sum.
func SumLines(items []CartItem) float64 {
	sum := decimal.Zero
	for _, it := range items {
		line := decimal.NewFromFloat(it.Product.Price).Mul(decimal.NewFromInt(int64(it.Quantity)))
		sum = sum.Add(line.Round(2))
	}
	out, _ := sum.Round(2).Float64()
	return out
}
