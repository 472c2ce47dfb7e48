package document

import (
	"github.com/erp/docflow/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Totals is the aggregate of a document's lines after header-level
// discounts.
type Totals struct {
	Net               decimal.Decimal
	NetBeforeDiscount decimal.Decimal
	Tax               decimal.Decimal
	Withholding       decimal.Decimal
	Surcharge         decimal.Decimal
	Supplied          decimal.Decimal
	GrandTotal        decimal.Decimal
}

// CalculateTotals derives the header totals from the document's lines.
// Supplied lines accumulate into the supplied total and carry no tax or
// discount; all other lines contribute their net amount, scaled by the
// header discount cascade, plus the tax, withholding and surcharge
// computed on that scaled net.
func CalculateTotals(d *Document, settings Settings) Totals {
	cascade := d.CascadeDiscount()
	totals := Totals{
		Net:               decimal.Zero,
		NetBeforeDiscount: decimal.Zero,
		Tax:               decimal.Zero,
		Withholding:       decimal.Zero,
		Surcharge:         decimal.Zero,
		Supplied:          decimal.Zero,
	}

	for idx := range d.Lines {
		line := &d.Lines[idx]
		if line.Supplied {
			totals.Supplied = totals.Supplied.Add(line.Net)
			continue
		}

		net := line.Net.Mul(cascade)
		totals.Net = totals.Net.Add(net)
		totals.NetBeforeDiscount = totals.NetBeforeDiscount.Add(line.NetBeforeDiscount)
		totals.Tax = totals.Tax.Add(net.Mul(line.TaxRate).Div(oneHundred))
		totals.Withholding = totals.Withholding.Add(net.Mul(line.WithholdingRate).Div(oneHundred))
		totals.Surcharge = totals.Surcharge.Add(net.Mul(line.SurchargeRate).Div(oneHundred))
	}

	totals.Net = totals.Net.Round(settings.Decimals)
	totals.NetBeforeDiscount = totals.NetBeforeDiscount.Round(settings.Decimals)
	totals.Tax = totals.Tax.Round(settings.Decimals)
	totals.Withholding = totals.Withholding.Round(settings.Decimals)
	totals.Surcharge = totals.Surcharge.Round(settings.Decimals)
	totals.Supplied = totals.Supplied.Round(settings.Decimals)
	totals.GrandTotal = totals.Net.
		Add(totals.Supplied).
		Sub(totals.Withholding).
		Add(totals.Surcharge).
		Add(totals.Tax)
	return totals
}

// ValidateTotals checks that the stored header aggregates are consistent
// with each other: the grand total must equal net plus supplied minus
// withholding plus surcharge plus tax, within one unit at the configured
// precision.
func ValidateTotals(d *Document, settings Settings) error {
	expected := d.Net.
		Add(d.SuppliedTotal).
		Sub(d.WithholdingTotal).
		Add(d.SurchargeTotal).
		Add(d.TaxTotal)

	if !shared.NumbersEqual(d.GrandTotal, expected, settings.Decimals, true) {
		return shared.ErrBadTotal
	}
	return nil
}
