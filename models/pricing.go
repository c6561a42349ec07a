package models

import "github.com/shopspring/decimal"

const (
	DiscountTypePercentage = "percentage"
	DiscountTypeFixed      = "fixed"
)

// PricingOverride pins product pricing for a single party or a whole dealer
// group. Exactly one of PartyID/GroupID is set. An individual (party) override
// always outranks a group override regardless of recency.
type PricingOverride struct {
	Id        uint    `json:"id" gorm:"primaryKey"`
	PartyID   *uint   `json:"party_id" gorm:"index:idx_pricing_party_product,unique,priority:1"`
	GroupID   *uint   `json:"group_id" gorm:"index:idx_pricing_group_product,unique,priority:1"`
	ProductID string  `json:"product_id" gorm:"not null;index:idx_pricing_party_product,unique,priority:2;index:idx_pricing_group_product,unique,priority:2"`
	Product   Product `json:"-" gorm:"foreignKey:ProductID;references:Id"`

	BasePrice    decimal.Decimal `json:"base_price" gorm:"type:numeric(12,2)"`
	SellingPrice decimal.Decimal `json:"selling_price" gorm:"type:numeric(12,2)"`

	DiscountType  string          `json:"discount_type" gorm:"type:varchar(10)"`
	DiscountValue decimal.Decimal `json:"discount_value" gorm:"type:numeric(12,2)"`

	// Optional tax overrides; negative means "no override, use product rates".
	IGSTRate float64 `json:"igst_rate" gorm:"default:-1"`
	CGSTRate float64 `json:"cgst_rate" gorm:"default:-1"`
	SGSTRate float64 `json:"sgst_rate" gorm:"default:-1"`
}

// HasTaxOverride reports whether the override carries its own GST rates.
func (o *PricingOverride) HasTaxOverride() bool {
	return o.IGSTRate >= 0 || o.CGSTRate >= 0 || o.SGSTRate >= 0
}
