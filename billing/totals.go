package billing

import (
	"encoding/json"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"milkroute-backend/errs"
	"milkroute-backend/models"
)

// Aggregate computes a document's pricing summary from its line items and the
// document-level discount/adjustment settings already present on it.
//
// Ordering is fixed: per-line discounts apply before tax (ComputeLine);
// the global discount and the custom adjustment apply after tax, on the gross
// total of all lines.
func Aggregate(doc *models.Document) error {
	var (
		grandTotal   = decimal.Zero
		subtotal     = decimal.Zero
		itemDiscount = decimal.Zero
		igst         = decimal.Zero
		cgst         = decimal.Zero
		sgst         = decimal.Zero
	)

	for i := range doc.Items {
		item := &doc.Items[i]
		grandTotal = grandTotal.Add(item.LineTotal)
		// Subtotal is defined so that total = subtotal − itemDiscount + tax
		// holds under both tax methods.
		subtotal = subtotal.Add(item.TaxableValue).Add(item.DiscountAmount)
		itemDiscount = itemDiscount.Add(item.DiscountAmount)

		i2, c2, s2 := taxComponents(item)
		igst = igst.Add(i2)
		cgst = cgst.Add(c2)
		sgst = sgst.Add(s2)
	}

	globalDiscount, err := discountAmount(grandTotal, doc.GlobalDiscountType, doc.GlobalDiscountValue)
	if err != nil {
		return err
	}
	if globalDiscount.GreaterThan(grandTotal) {
		globalDiscount = grandTotal
	}

	adjustment, err := adjustmentAmount(doc, grandTotal)
	if err != nil {
		return err
	}

	total := grandTotal.Sub(globalDiscount)
	switch doc.AdjustmentOperation {
	case models.AdjustmentOpSubtract:
		total = total.Sub(adjustment)
	default:
		total = total.Add(adjustment)
	}
	if total.IsNegative() {
		return errs.New(errs.Consistency, "document total went negative: %s", total.String())
	}

	doc.Subtotal = subtotal.Round(2)
	doc.ItemDiscount = itemDiscount.Round(2)
	doc.IGSTAmount = igst.Round(2)
	doc.CGSTAmount = cgst.Round(2)
	doc.SGSTAmount = sgst.Round(2)
	doc.GlobalDiscountAmount = globalDiscount.Round(2)
	doc.AdjustmentAmount = adjustment.Round(2)
	doc.Total = total.Round(2)

	return summarizeQuantities(doc)
}

// adjustmentAmount evaluates the custom adjustment. It is inactive (zero)
// unless both a label and a nonzero amount are present.
func adjustmentAmount(doc *models.Document, grandTotal decimal.Decimal) (decimal.Decimal, error) {
	if doc.AdjustmentText == "" || doc.AdjustmentValue.IsZero() {
		return decimal.Zero, nil
	}
	switch doc.AdjustmentType {
	case models.DiscountTypePercentage:
		if doc.AdjustmentValue.IsNegative() || doc.AdjustmentValue.GreaterThan(hundred) {
			return decimal.Zero, errs.New(errs.Validation, "adjustment percentage must be within [0,100]")
		}
		return grandTotal.Mul(doc.AdjustmentValue).Div(hundred), nil
	case "", models.DiscountTypeFixed:
		if doc.AdjustmentValue.IsNegative() {
			return decimal.Zero, errs.New(errs.Validation, "adjustment amount must not be negative")
		}
		return doc.AdjustmentValue, nil
	default:
		return decimal.Zero, errs.New(errs.Validation, "unknown adjustment type %q", doc.AdjustmentType)
	}
}

// summarizeQuantities derives the physical-quantity rollup: liters, kilograms
// and a per-package-type unit count for delivery planning.
func summarizeQuantities(doc *models.Document) error {
	var liters, kg float64
	breakdown := map[string]int{}

	for i := range doc.Items {
		item := &doc.Items[i]
		pkg := item.Packaging

		units := float64(item.Quantity)
		if pkg.IsMultipack() && pkg.UnitsPerPackage > 0 {
			units *= float64(pkg.UnitsPerPackage)
		}

		switch pkg.SizeUnit {
		case "ml":
			liters += units * pkg.SizeValue / 1000
		case "L":
			liters += units * pkg.SizeValue
		case "g":
			kg += units * pkg.SizeValue / 1000
		case "kg":
			kg += units * pkg.SizeValue
		}

		if pkg.Type != "" {
			breakdown[pkg.Type] += item.Quantity
		}
	}

	doc.TotalLiters = liters
	doc.TotalKg = kg

	raw, err := json.Marshal(breakdown)
	if err != nil {
		return err
	}
	doc.PackageBreakdown = datatypes.JSON(raw)
	return nil
}
