// Package ledger keeps documents, receipts and party balances consistent.
//
// Payment status per document is a small state machine:
//
//	pending  (paidAmount = 0)
//	partial  (0 < paidAmount < total)
//	completed(paidAmount >= total)
//
// Transitions are driven solely by recomputing paidAmount as the sum of the
// document's active receipts. The party balance moves by the exact receipt
// amount, in the opposite direction, inside the same transaction.
package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"milkroute-backend/errs"
	"milkroute-backend/models"
	"milkroute-backend/store"
)

type Engine struct {
	store store.Store
}

func New(s store.Store) *Engine {
	return &Engine{store: s}
}

// Initialize sets the payment fields of a freshly created document.
func Initialize(doc *models.Document) {
	doc.PaidAmount = decimal.Zero
	doc.DueAmount = doc.Total
	doc.PaymentStatus = models.PaymentStatusPending
}

// Recompute derives paidAmount, dueAmount and status from the sum of active
// receipt amounts. A negative sum means the books are corrupt; that surfaces
// as a Consistency error instead of being clamped away.
func Recompute(doc *models.Document, activeSum decimal.Decimal) error {
	if activeSum.IsNegative() {
		return errs.New(errs.Consistency,
			"active receipts for document %d sum to %s", doc.ID, activeSum.String())
	}
	doc.PaidAmount = activeSum

	due := doc.Total.Sub(activeSum)
	if due.IsNegative() {
		due = decimal.Zero
	}
	doc.DueAmount = due

	switch {
	case activeSum.IsZero():
		doc.PaymentStatus = models.PaymentStatusPending
	case activeSum.LessThan(doc.Total):
		doc.PaymentStatus = models.PaymentStatusPartial
	default:
		doc.PaymentStatus = models.PaymentStatusCompleted
	}
	return nil
}

// validateLink enforces the order-XOR-invoice rule and a positive amount.
func validateLink(receipt *models.Receipt) error {
	if !receipt.Amount.IsPositive() {
		return errs.New(errs.Validation, "receipt amount must be positive")
	}
	if receipt.OrderID != nil && receipt.InvoiceID != nil {
		return errs.New(errs.Conflict, "receipt cannot link both an order and an invoice")
	}
	return nil
}

// Create persists a new active receipt and applies its effect: the linked
// document's paid rollup is recomputed and the party balance drops by the
// amount (a payment reduces what the party owes).
func (e *Engine) Create(ctx context.Context, receipt *models.Receipt) (*models.Receipt, error) {
	if err := validateLink(receipt); err != nil {
		return nil, err
	}

	err := e.store.Atomically(ctx, func(tx store.Store) error {
		if _, err := tx.GetParty(ctx, receipt.PartyID); err != nil {
			return err
		}

		receipt.Status = models.ReceiptStatusActive
		if receipt.PaidAt.IsZero() {
			receipt.PaidAt = time.Now()
		}
		if err := tx.CreateReceipt(ctx, receipt); err != nil {
			return err
		}

		if docID, linked := receipt.DocumentID(); linked {
			if err := refreshDocument(ctx, tx, docID); err != nil {
				return err
			}
		}

		return tx.AdjustBalance(ctx, receipt.PartyID, receipt.Amount.Neg())
	})
	if err != nil {
		return nil, err
	}
	return receipt, nil
}

// Edit changes the amount of an active receipt. The delta propagates to the
// linked document's rollup and to the party balance.
func (e *Engine) Edit(ctx context.Context, receiptID uint, newAmount decimal.Decimal) (*models.Receipt, error) {
	if !newAmount.IsPositive() {
		return nil, errs.New(errs.Validation, "receipt amount must be positive")
	}

	var edited *models.Receipt
	err := e.store.Atomically(ctx, func(tx store.Store) error {
		receipt, err := tx.GetReceipt(ctx, receiptID)
		if err != nil {
			return err
		}
		if receipt.Status != models.ReceiptStatusActive {
			return errs.New(errs.Conflict, "receipt %d is not active", receiptID)
		}

		delta := newAmount.Sub(receipt.Amount)
		receipt.Amount = newAmount
		if err := tx.SaveReceipt(ctx, receipt); err != nil {
			return err
		}

		if docID, linked := receipt.DocumentID(); linked {
			if err := refreshDocument(ctx, tx, docID); err != nil {
				return err
			}
		}

		if err := tx.AdjustBalance(ctx, receipt.PartyID, delta.Neg()); err != nil {
			return err
		}
		edited = receipt
		return nil
	})
	if err != nil {
		return nil, err
	}
	return edited, nil
}

// Undo reverses exactly the effect the receipt's creation had and marks it
// undone. Valid once: a second undo is a Conflict, never a silent no-op. A
// receipt against an order that has since been converted to an invoice can no
// longer be undone.
func (e *Engine) Undo(ctx context.Context, receiptID uint) (*models.Receipt, error) {
	var undone *models.Receipt
	err := e.store.Atomically(ctx, func(tx store.Store) error {
		receipt, err := tx.GetReceipt(ctx, receiptID)
		if err != nil {
			return err
		}
		if receipt.Status != models.ReceiptStatusActive {
			return errs.New(errs.Conflict, "receipt %d already undone", receiptID)
		}
		if receipt.ConvertedFromOrderID != nil {
			return errs.New(errs.Conflict,
				"receipt %d carried over from order %d; it can no longer be undone",
				receiptID, *receipt.ConvertedFromOrderID)
		}

		now := time.Now()
		receipt.Status = models.ReceiptStatusUndone
		receipt.UndoneAt = &now
		if err := tx.SaveReceipt(ctx, receipt); err != nil {
			return err
		}

		if docID, linked := receipt.DocumentID(); linked {
			if err := refreshDocument(ctx, tx, docID); err != nil {
				return err
			}
		}

		if err := tx.AdjustBalance(ctx, receipt.PartyID, receipt.Amount); err != nil {
			return err
		}
		undone = receipt
		return nil
	})
	if err != nil {
		return nil, err
	}
	return undone, nil
}

// refreshDocument reloads the document, recomputes its payment rollup from
// active receipts and saves it.
func refreshDocument(ctx context.Context, tx store.Store, docID uint) error {
	doc, err := tx.GetDocument(ctx, docID)
	if err != nil {
		return err
	}
	activeSum, err := tx.SumActiveReceipts(ctx, docID)
	if err != nil {
		return err
	}
	if err := Recompute(doc, activeSum); err != nil {
		return err
	}
	return tx.SaveDocument(ctx, doc)
}
