package inventory

import "github.com/shopspring/decimal"

// effectiveDelta resolves the stock effect of a delta pair. servedDelta
// is the portion of quantityDelta already carried into a successor
// document; only the unserved remainder moves stock. A negative
// correction cannot serve more than it removes, so servedDelta is
// clamped to quantityDelta in that case.
func effectiveDelta(quantityDelta, servedDelta decimal.Decimal) decimal.Decimal {
	if quantityDelta.IsNegative() && servedDelta.LessThan(quantityDelta) {
		servedDelta = quantityDelta
	}
	return quantityDelta.Sub(servedDelta)
}

// Adjust applies a quantity delta to the stock record according to the
// accounting mode.
//
// Adjust is a pure delta application. Callers that change an existing
// line must first reverse the line's previous effect with Reverse and
// then apply the new values, never overwrite.
func Adjust(record *StockRecord, mode StockMode, quantityDelta, servedDelta decimal.Decimal) {
	apply(record, mode, effectiveDelta(quantityDelta, servedDelta))
}

// Reverse undoes a previous Adjust with the same mode and deltas. The
// effective delta is resolved once, with the same clamp as on the way
// in, and negated as a whole, so a reversal is always the exact inverse
// of the original application — also when served exceeds quantity.
func Reverse(record *StockRecord, mode StockMode, quantityDelta, servedDelta decimal.Decimal) {
	apply(record, mode, effectiveDelta(quantityDelta, servedDelta).Neg())
}

func apply(record *StockRecord, mode StockMode, effective decimal.Decimal) {
	if record == nil || mode == StockModeNone {
		return
	}

	switch mode {
	case StockModeAdd:
		record.OnHand = record.OnHand.Add(effective)
	case StockModeSubtract:
		record.OnHand = record.OnHand.Sub(effective)
	case StockModePendingReceive:
		record.PendingReceive = record.PendingReceive.Add(effective)
	case StockModeReserve:
		record.Reserved = record.Reserved.Add(effective)
	}
	record.Touch()
}
