package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Packaging describes the physical container a product ships in.
// Size is the per-unit content (e.g. 500 ml pouch); UnitsPerPackage is the
// multiplier for multipack containers (e.g. a crate of 12 pouches).
type Packaging struct {
	Type            string  `json:"type"`       // bottle|pouch|cup|crate|carton|bag|box
	SizeValue       float64 `json:"size_value"` // in SizeUnit
	SizeUnit        string  `json:"size_unit"`  // ml|L|g|kg
	UnitsPerPackage int     `json:"units_per_package"`
}

// IsMultipack reports whether the packaging type carries multiple sellable units.
func (p Packaging) IsMultipack() bool {
	switch p.Type {
	case "crate", "carton", "bag", "box":
		return true
	}
	return false
}

type Product struct {
	Id           string          `json:"id" gorm:"primaryKey"`
	SKU          string          `json:"sku" gorm:"uniqueIndex;not null"`
	Name         string          `json:"name" gorm:"not null"`
	Description  string          `json:"description"`
	SellingPrice decimal.Decimal `json:"selling_price" gorm:"type:numeric(12,2)"`
	CostPrice    decimal.Decimal `json:"cost_price" gorm:"type:numeric(12,2)"`

	// GST rates in percent. IGST is exclusive with CGST+SGST; whichever is
	// nonzero wins at calculation time.
	IGSTRate float64 `json:"igst_rate"`
	CGSTRate float64 `json:"cgst_rate"`
	SGSTRate float64 `json:"sgst_rate"`

	// Whether SellingPrice already contains tax.
	TaxInclusive bool `json:"tax_inclusive"`

	Packaging Packaging `json:"packaging" gorm:"embedded;embeddedPrefix:packaging_"`
	Active    bool      `json:"-"`
}

func (product *Product) BeforeCreate(tx *gorm.DB) (err error) {
	// UUID version 4
	product.Id = uuid.NewString()
	return
}
