package models

import "github.com/shopspring/decimal"

const (
	PartyTypeDealer   = "dealer"
	PartyTypeCustomer = "customer"
)

// DealerGroup is a cohort of dealers sharing a default pricing list.
type DealerGroup struct {
	Id          uint   `json:"id" gorm:"primaryKey"`
	Name        string `json:"name" gorm:"not null;unique"`
	Description string `json:"description"`
	Active      bool   `json:"-"`
}

// Party is a buyer: a dealer (optionally in a group, with per-product pricing
// overrides) or a retail customer (standing discount only, no line overrides).
type Party struct {
	Id          uint   `json:"id" gorm:"primaryKey"`
	Type        string `json:"type" gorm:"type:varchar(10);not null;index"`
	Name        string `json:"name" gorm:"not null"`
	Address     string `json:"address"`
	City        string `json:"city"`
	PhoneNumber string `json:"phone_number"`
	Email       string `json:"email"`

	GroupID *uint        `json:"group_id"`
	Group   *DealerGroup `json:"group,omitempty" gorm:"foreignKey:GroupID;references:Id"`

	// CurrentBalance is a signed ledger value (positive = party owes us).
	// Mutated only through the ledger engine.
	CurrentBalance decimal.Decimal `json:"current_balance" gorm:"type:numeric(12,2)"`
	CreditLimit    decimal.Decimal `json:"credit_limit" gorm:"type:numeric(12,2)"`

	// Standing discount in percent, applied document-level for customers.
	DiscountPercent float64 `json:"discount_percent"`

	Active bool `json:"-"`
}
