package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	ReceiptStatusActive = "active"
	ReceiptStatusUndone = "undone"
)

// Receipt records a payment against exactly one order or one invoice, never
// both. An undone receipt keeps its row (audit) but no longer counts toward
// the document's paid amount.
type Receipt struct {
	ID uint `json:"id" gorm:"primaryKey"`

	PartyID uint  `json:"party_id" gorm:"index"`
	Party   Party `json:"-" gorm:"foreignKey:PartyID;references:Id"`

	OrderID   *uint `json:"order_id" gorm:"index:idx_receipts_order_paid_at,priority:1"`
	InvoiceID *uint `json:"invoice_id" gorm:"index:idx_receipts_invoice_paid_at,priority:1"`

	// Set when the receipt was taken against an order that has since been
	// frozen into an invoice. Such receipts are relinked to the invoice and
	// can no longer be undone.
	ConvertedFromOrderID *uint `json:"converted_from_order_id"`

	Amount      decimal.Decimal `json:"amount" gorm:"type:numeric(12,2)"`
	PaymentMode string          `json:"payment_mode"` // cash|upi|cheque|bank
	Reference   string          `json:"reference"`
	Note        string          `json:"note"`

	Status string `json:"status" gorm:"type:varchar(10);index"`

	PaidAt    time.Time  `json:"paid_at" gorm:"index:idx_receipts_order_paid_at,priority:2;index:idx_receipts_invoice_paid_at,priority:2"`
	UndoneAt  *time.Time `json:"undone_at"`
	CreatedAt time.Time  `json:"created_at"`
}

// DocumentID returns the linked document id regardless of kind.
func (r *Receipt) DocumentID() (uint, bool) {
	if r.OrderID != nil {
		return *r.OrderID, true
	}
	if r.InvoiceID != nil {
		return *r.InvoiceID, true
	}
	return 0, false
}
