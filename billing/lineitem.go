// Package billing is the single source of truth for line and document money
// math: per-line discount/tax, document totals, and physical quantities.
package billing

import (
	"github.com/shopspring/decimal"

	"milkroute-backend/errs"
	"milkroute-backend/models"
	"milkroute-backend/tax"
)

var hundred = decimal.NewFromInt(100)

// ComputeLine fills the computed fields of a line item from its snapshotted
// inputs (quantity, unit price, discount, tax rates, method).
//
// Ordering: the line discount applies before tax. The discount is clamped so
// the discounted amount never goes below zero.
func ComputeLine(item *models.LineItem) error {
	if item.Quantity <= 0 {
		return errs.New(errs.Validation, "quantity must be positive, got %d", item.Quantity)
	}
	if item.UnitPrice.IsNegative() {
		return errs.New(errs.Validation, "unit price must not be negative")
	}
	if item.IGSTRate > 0 && (item.CGSTRate > 0 || item.SGSTRate > 0) {
		return errs.New(errs.Validation, "igst and cgst/sgst are mutually exclusive")
	}

	lineSubtotal := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))

	discount, err := discountAmount(lineSubtotal, item.DiscountType, item.DiscountValue)
	if err != nil {
		return err
	}
	// Clamp so afterDiscount >= 0.
	if discount.GreaterThan(lineSubtotal) {
		discount = lineSubtotal
	}
	afterDiscount := lineSubtotal.Sub(discount)

	method := tax.Exclusive
	if item.TaxInclusive {
		method = tax.Inclusive
	}
	split := tax.Split(afterDiscount, tax.Rates{
		IGST: item.IGSTRate,
		CGST: item.CGSTRate,
		SGST: item.SGSTRate,
	}, method)

	item.DiscountAmount = discount.Round(2)
	item.TaxableValue = split.TaxableValue.Round(2)
	item.TaxAmount = split.TaxAmount.Round(2)
	item.LineTotal = split.TaxableValue.Add(split.TaxAmount).Round(2)
	return nil
}

// discountAmount evaluates a {type,value} discount against base.
func discountAmount(base decimal.Decimal, discountType string, value decimal.Decimal) (decimal.Decimal, error) {
	switch discountType {
	case "", models.DiscountTypeFixed:
		if value.IsNegative() {
			return decimal.Zero, errs.New(errs.Validation, "discount must not be negative")
		}
		return value, nil
	case models.DiscountTypePercentage:
		if value.IsNegative() || value.GreaterThan(hundred) {
			return decimal.Zero, errs.New(errs.Validation, "discount percentage must be within [0,100]")
		}
		return base.Mul(value).Div(hundred), nil
	default:
		return decimal.Zero, errs.New(errs.Validation, "unknown discount type %q", discountType)
	}
}

// taxComponents splits a line's tax amount into IGST or CGST/SGST shares
// based on its snapshotted rates.
func taxComponents(item *models.LineItem) (igst, cgst, sgst decimal.Decimal) {
	if item.IGSTRate > 0 {
		return item.TaxAmount, decimal.Zero, decimal.Zero
	}
	totalRate := item.CGSTRate + item.SGSTRate
	if totalRate == 0 {
		return decimal.Zero, decimal.Zero, decimal.Zero
	}
	cgstShare := decimal.NewFromFloat(item.CGSTRate).Div(decimal.NewFromFloat(totalRate))
	cgst = item.TaxAmount.Mul(cgstShare).Round(2)
	sgst = item.TaxAmount.Sub(cgst)
	return decimal.Zero, cgst, sgst
}
