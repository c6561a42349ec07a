// Package tax splits an amount into taxable value and GST components.
package tax

import "github.com/shopspring/decimal"

type Method int

const (
	// Exclusive: tax is added on top of the amount.
	Exclusive Method = iota
	// Inclusive: the amount already contains tax.
	Inclusive
)

// Rates carries GST percentages. IGST is mutually exclusive with CGST+SGST;
// a nonzero IGST wins.
type Rates struct {
	IGST float64
	CGST float64
	SGST float64
}

// Total returns the effective combined rate in percent.
func (r Rates) Total() float64 {
	if r.IGST > 0 {
		return r.IGST
	}
	return r.CGST + r.SGST
}

// Result is the outcome of a split: TaxableValue + TaxAmount reconstitute the
// gross amount under either method.
type Result struct {
	TaxableValue decimal.Decimal
	TaxAmount    decimal.Decimal
	IGST         decimal.Decimal
	CGST         decimal.Decimal
	SGST         decimal.Decimal
}

var hundred = decimal.NewFromInt(100)

// Split computes taxable value and tax for amount under the given rates and
// method. A zero total rate yields taxableValue=amount, taxAmount=0 under
// either method.
func Split(amount decimal.Decimal, rates Rates, method Method) Result {
	totalRate := rates.Total()
	if totalRate == 0 {
		return Result{TaxableValue: amount}
	}

	rate := decimal.NewFromFloat(totalRate)

	var taxable, taxAmt decimal.Decimal
	if method == Inclusive {
		// taxableValue = amount / (1 + rate/100)
		divisor := decimal.NewFromInt(1).Add(rate.Div(hundred))
		taxable = amount.Div(divisor)
		taxAmt = amount.Sub(taxable)
	} else {
		taxable = amount
		taxAmt = amount.Mul(rate).Div(hundred)
	}

	res := Result{TaxableValue: taxable, TaxAmount: taxAmt}
	if rates.IGST > 0 {
		res.IGST = taxAmt
	} else {
		// Split proportionally between CGST and SGST.
		cgstShare := decimal.NewFromFloat(rates.CGST).Div(rate)
		res.CGST = taxAmt.Mul(cgstShare)
		res.SGST = taxAmt.Sub(res.CGST)
	}
	return res
}
