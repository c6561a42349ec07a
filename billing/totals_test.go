package billing_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"milkroute-backend/billing"
	"milkroute-backend/errs"
	"milkroute-backend/models"
)

// computed builds a line through ComputeLine so Aggregate sees realistic input.
func computed(t *testing.T, item models.LineItem) models.LineItem {
	t.Helper()
	require.NoError(t, billing.ComputeLine(&item))
	return item
}

func TestAggregateGlobalDiscountAndAdjustment(t *testing.T) {
	// Gross 1000, 10% global discount, plus a named 50 delivery charge.
	doc := &models.Document{
		Items: []models.LineItem{
			computed(t, models.LineItem{Quantity: 10, UnitPrice: d("100")}),
		},
		GlobalDiscountType:  models.DiscountTypePercentage,
		GlobalDiscountValue: d("10"),
		AdjustmentText:      "delivery charge",
		AdjustmentValue:     d("50"),
		AdjustmentOperation: models.AdjustmentOpAdd,
	}
	require.NoError(t, billing.Aggregate(doc))

	assert.Equal(t, "1000.00", doc.Subtotal.StringFixed(2))
	assert.Equal(t, "100.00", doc.GlobalDiscountAmount.StringFixed(2))
	assert.Equal(t, "50.00", doc.AdjustmentAmount.StringFixed(2))
	assert.Equal(t, "950.00", doc.Total.StringFixed(2))
}

func TestAggregateAdjustmentSubtract(t *testing.T) {
	doc := &models.Document{
		Items: []models.LineItem{
			computed(t, models.LineItem{Quantity: 1, UnitPrice: d("500")}),
		},
		AdjustmentText:      "loyalty credit",
		AdjustmentValue:     d("75"),
		AdjustmentOperation: models.AdjustmentOpSubtract,
	}
	require.NoError(t, billing.Aggregate(doc))

	assert.Equal(t, "425.00", doc.Total.StringFixed(2))
}

func TestAggregateAdjustmentInactiveWithoutLabel(t *testing.T) {
	// A value with no label is ignored, as is a label with a zero value.
	doc := &models.Document{
		Items: []models.LineItem{
			computed(t, models.LineItem{Quantity: 1, UnitPrice: d("100")}),
		},
		AdjustmentValue:     d("50"),
		AdjustmentOperation: models.AdjustmentOpAdd,
	}
	require.NoError(t, billing.Aggregate(doc))
	assert.True(t, doc.AdjustmentAmount.IsZero())
	assert.Equal(t, "100.00", doc.Total.StringFixed(2))

	doc.AdjustmentText = "rounding"
	doc.AdjustmentValue = d("0")
	require.NoError(t, billing.Aggregate(doc))
	assert.True(t, doc.AdjustmentAmount.IsZero())
}

func TestAggregateGlobalDiscountClamped(t *testing.T) {
	doc := &models.Document{
		Items: []models.LineItem{
			computed(t, models.LineItem{Quantity: 1, UnitPrice: d("80")}),
		},
		GlobalDiscountType:  models.DiscountTypeFixed,
		GlobalDiscountValue: d("200"),
	}
	require.NoError(t, billing.Aggregate(doc))

	assert.Equal(t, "80.00", doc.GlobalDiscountAmount.StringFixed(2))
	assert.True(t, doc.Total.IsZero())
}

func TestAggregateNegativeTotalIsConsistencyError(t *testing.T) {
	// A subtract adjustment larger than the discounted total is corrupt books,
	// not something to clamp.
	doc := &models.Document{
		Items: []models.LineItem{
			computed(t, models.LineItem{Quantity: 1, UnitPrice: d("100")}),
		},
		AdjustmentText:      "writeoff",
		AdjustmentValue:     d("150"),
		AdjustmentOperation: models.AdjustmentOpSubtract,
	}
	err := billing.Aggregate(doc)
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.Consistency))
}

func TestAggregateSubtotalIdentityUnderInclusiveTax(t *testing.T) {
	// total = subtotal − itemDiscount + tax must hold when prices include tax.
	doc := &models.Document{
		Items: []models.LineItem{
			computed(t, models.LineItem{
				Quantity: 2, UnitPrice: d("100"),
				CGSTRate: 9, SGSTRate: 9, TaxInclusive: true,
			}),
			computed(t, models.LineItem{
				Quantity: 1, UnitPrice: d("50"), IGSTRate: 5,
				DiscountType: models.DiscountTypeFixed, DiscountValue: d("10"),
			}),
		},
	}
	require.NoError(t, billing.Aggregate(doc))

	tax := doc.IGSTAmount.Add(doc.CGSTAmount).Add(doc.SGSTAmount)
	identity := doc.Subtotal.Sub(doc.ItemDiscount).Add(tax)
	assert.Equal(t, doc.Total.StringFixed(2), identity.StringFixed(2))
}

func TestSummarizeQuantities(t *testing.T) {
	doc := &models.Document{
		Items: []models.LineItem{
			// 10 pouches of 500 ml
			computed(t, models.LineItem{
				Quantity: 10, UnitPrice: d("25"),
				Packaging: models.Packaging{Type: "pouch", SizeValue: 500, SizeUnit: "ml"},
			}),
			// 2 crates of 12 x 1 L bottles
			computed(t, models.LineItem{
				Quantity: 2, UnitPrice: d("600"),
				Packaging: models.Packaging{Type: "crate", SizeValue: 1, SizeUnit: "L", UnitsPerPackage: 12},
			}),
			// 5 bags of 250 g paneer
			computed(t, models.LineItem{
				Quantity: 5, UnitPrice: d("90"),
				Packaging: models.Packaging{Type: "cup", SizeValue: 250, SizeUnit: "g"},
			}),
		},
	}
	require.NoError(t, billing.Aggregate(doc))

	assert.InDelta(t, 29.0, doc.TotalLiters, 1e-9) // 5 L + 24 L
	assert.InDelta(t, 1.25, doc.TotalKg, 1e-9)

	var breakdown map[string]int
	require.NoError(t, json.Unmarshal(doc.PackageBreakdown, &breakdown))
	assert.Equal(t, map[string]int{"pouch": 10, "crate": 2, "cup": 5}, breakdown)
}
