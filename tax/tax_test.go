package tax_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"milkroute-backend/tax"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestRatesTotal(t *testing.T) {
	assert.Equal(t, 18.0, tax.Rates{IGST: 18}.Total())
	assert.Equal(t, 18.0, tax.Rates{CGST: 9, SGST: 9}.Total())
	assert.Equal(t, 0.0, tax.Rates{}.Total())
	// Nonzero IGST wins even if intrastate rates are set by mistake.
	assert.Equal(t, 12.0, tax.Rates{IGST: 12, CGST: 9, SGST: 9}.Total())
}

func TestSplitExclusive(t *testing.T) {
	res := tax.Split(d("200"), tax.Rates{CGST: 9, SGST: 9}, tax.Exclusive)

	assert.Equal(t, "200.00", res.TaxableValue.StringFixed(2))
	assert.Equal(t, "36.00", res.TaxAmount.StringFixed(2))
	assert.Equal(t, "18.00", res.CGST.StringFixed(2))
	assert.Equal(t, "18.00", res.SGST.StringFixed(2))
	assert.True(t, res.IGST.IsZero())
}

func TestSplitInclusive(t *testing.T) {
	// A gross of 200 at 18% inclusive backs out to 169.49 + 30.51.
	res := tax.Split(d("200"), tax.Rates{CGST: 9, SGST: 9}, tax.Inclusive)

	assert.Equal(t, "169.49", res.TaxableValue.Round(2).StringFixed(2))
	assert.Equal(t, "30.51", res.TaxAmount.Round(2).StringFixed(2))

	// Taxable + tax reconstitutes the gross exactly.
	sum := res.TaxableValue.Add(res.TaxAmount)
	assert.True(t, sum.Equal(d("200")), "got %s", sum)
}

func TestSplitIGST(t *testing.T) {
	res := tax.Split(d("100"), tax.Rates{IGST: 18}, tax.Exclusive)

	require.Equal(t, "18.00", res.TaxAmount.StringFixed(2))
	assert.True(t, res.IGST.Equal(res.TaxAmount))
	assert.True(t, res.CGST.IsZero())
	assert.True(t, res.SGST.IsZero())
}

func TestSplitZeroRate(t *testing.T) {
	for _, method := range []tax.Method{tax.Exclusive, tax.Inclusive} {
		res := tax.Split(d("150"), tax.Rates{}, method)
		assert.True(t, res.TaxableValue.Equal(d("150")))
		assert.True(t, res.TaxAmount.IsZero())
	}
}

func TestSplitUnevenComponents(t *testing.T) {
	// CGST 2.5 / SGST 2.5 on 100 exclusive.
	res := tax.Split(d("100"), tax.Rates{CGST: 2.5, SGST: 2.5}, tax.Exclusive)

	assert.Equal(t, "5.00", res.TaxAmount.StringFixed(2))
	assert.Equal(t, "2.50", res.CGST.StringFixed(2))
	assert.Equal(t, "2.50", res.SGST.StringFixed(2))
	assert.True(t, res.CGST.Add(res.SGST).Equal(res.TaxAmount))
}
