package shared

import "github.com/shopspring/decimal"

// NumbersEqual reports whether a and b are equal within a tolerance of
// one unit at the given number of decimals. When roundFirst is true both
// operands are rounded to that precision before comparing, so values that
// only differ in digits beyond the configured precision compare equal.
func NumbersEqual(a, b decimal.Decimal, decimals int32, roundFirst bool) bool {
	if roundFirst {
		a = a.Round(decimals)
		b = b.Round(decimals)
	}
	tolerance := decimal.New(1, -decimals)
	return a.Sub(b).Abs().LessThanOrEqual(tolerance)
}
