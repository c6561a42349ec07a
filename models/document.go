package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

const (
	DocumentKindOrder   = "order"
	DocumentKindInvoice = "invoice"
)

const (
	PaymentStatusPending   = "pending"
	PaymentStatusPartial   = "partial"
	PaymentStatusCompleted = "completed"
)

const (
	AdjustmentOpAdd      = "add"
	AdjustmentOpSubtract = "subtract"
)

// Document is the current/live state of a commercial document (order or invoice).
type Document struct {
	ID     uint   `json:"id" gorm:"primaryKey"`
	Kind   string `json:"kind" gorm:"type:varchar(10);not null;index"`
	Number string `json:"number" gorm:"unique"`

	PartyID uint  `json:"party_id"`
	Party   Party `json:"party" gorm:"foreignKey:PartyID;references:Id"`

	// Live items (pricing/tax snapshotted at creation, immutable afterwards)
	Items []LineItem `json:"items" gorm:"foreignKey:DocumentID;constraint:OnDelete:CASCADE"`

	// Pricing summary
	Subtotal     decimal.Decimal `json:"subtotal" gorm:"type:numeric(12,2)"`
	ItemDiscount decimal.Decimal `json:"item_discount" gorm:"type:numeric(12,2)"`
	IGSTAmount   decimal.Decimal `json:"igst_amount" gorm:"type:numeric(12,2)"`
	CGSTAmount   decimal.Decimal `json:"cgst_amount" gorm:"type:numeric(12,2)"`
	SGSTAmount   decimal.Decimal `json:"sgst_amount" gorm:"type:numeric(12,2)"`

	GlobalDiscountType   string          `json:"global_discount_type" gorm:"type:varchar(10)"`
	GlobalDiscountValue  decimal.Decimal `json:"global_discount_value" gorm:"type:numeric(12,2)"`
	GlobalDiscountAmount decimal.Decimal `json:"global_discount_amount" gorm:"type:numeric(12,2)"`

	// Custom adjustment: a named ad hoc add/subtract applied after discounts
	// and tax. Inactive unless both Text and a nonzero Amount are present.
	AdjustmentText      string          `json:"adjustment_text"`
	AdjustmentType      string          `json:"adjustment_type" gorm:"type:varchar(10)"`
	AdjustmentValue     decimal.Decimal `json:"adjustment_value" gorm:"type:numeric(12,2)"`
	AdjustmentOperation string          `json:"adjustment_operation" gorm:"type:varchar(10)"`
	AdjustmentAmount    decimal.Decimal `json:"adjustment_amount" gorm:"type:numeric(12,2)"`

	Total decimal.Decimal `json:"total" gorm:"type:numeric(12,2)"`

	// Payment rollup. PaidAmount is always the sum of active receipt amounts.
	PaymentStatus string          `json:"payment_status" gorm:"type:varchar(10);index"`
	PaidAmount    decimal.Decimal `json:"paid_amount" gorm:"type:numeric(12,2)"`
	DueAmount     decimal.Decimal `json:"due_amount" gorm:"type:numeric(12,2)"`

	// Physical quantity summary for renderers
	TotalLiters      float64        `json:"total_liters"`
	TotalKg          float64        `json:"total_kg"`
	PackageBreakdown datatypes.JSON `json:"package_breakdown" gorm:"type:jsonb"`

	// Counterpart link: the invoice an order was converted into, or the order
	// an invoice was frozen from.
	CounterpartID *uint `json:"counterpart_id" gorm:"index"`

	CreatedAt time.Time `json:"created_at"`
}

// LineItem is an immutable snapshot: product identity, packaging, resolved
// unit price and tax rates are copied at document creation and never re-read
// from the catalog.
type LineItem struct {
	ID         uint `json:"id" gorm:"primaryKey"`
	DocumentID uint `json:"-" gorm:"index"`

	ProductID   string    `json:"product_id" gorm:"not null;index"`
	ProductName string    `json:"product_name"`
	SKU         string    `json:"sku"`
	Packaging   Packaging `json:"packaging" gorm:"embedded;embeddedPrefix:packaging_"`

	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price" gorm:"type:numeric(12,2)"`

	DiscountType   string          `json:"discount_type" gorm:"type:varchar(10)"`
	DiscountValue  decimal.Decimal `json:"discount_value" gorm:"type:numeric(12,2)"`
	DiscountAmount decimal.Decimal `json:"discount_amount" gorm:"type:numeric(12,2)"`

	IGSTRate float64 `json:"igst_rate"` // rates stay float
	CGSTRate float64 `json:"cgst_rate"`
	SGSTRate float64 `json:"sgst_rate"`

	// Whether UnitPrice already contains tax (snapshotted with the rates).
	TaxInclusive bool `json:"tax_inclusive"`

	TaxableValue decimal.Decimal `json:"taxable_value" gorm:"type:numeric(12,2)"`
	TaxAmount    decimal.Decimal `json:"tax_amount" gorm:"type:numeric(12,2)"`
	LineTotal    decimal.Decimal `json:"line_total" gorm:"type:numeric(12,2)"`

	// Where the unit price came from: individual|group|product.
	PriceSource string `json:"price_source" gorm:"type:varchar(12)"`
}

// DocumentVersion is an immutable snapshot taken when an order is frozen into
// an invoice.
type DocumentVersion struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	DocumentID uint           `json:"document_id" gorm:"index:idx_document_versions_doc_version,unique,priority:1"`
	VersionNo  int            `json:"version_no" gorm:"not null;index:idx_document_versions_doc_version,unique,priority:2"`
	Kind       string         `json:"kind" gorm:"type:varchar(10)"`
	Snapshot   datatypes.JSON `json:"snapshot" gorm:"type:jsonb"`
	CreatedAt  time.Time      `json:"created_at"`
}
