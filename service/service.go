// Package service orchestrates document creation, order-to-invoice conversion
// and receipt application over the pricing, billing and ledger packages.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"milkroute-backend/billing"
	"milkroute-backend/errs"
	"milkroute-backend/ledger"
	"milkroute-backend/models"
	"milkroute-backend/pricing"
	"milkroute-backend/store"
)

type Service struct {
	store    store.Store
	resolver *pricing.Resolver
	ledger   *ledger.Engine
}

func New(s store.Store, resolver *pricing.Resolver) *Service {
	return &Service{store: s, resolver: resolver, ledger: ledger.New(s)}
}

// LineRequest is one requested document line. UnitPrice, discount and tax are
// resolved server-side; the operator may override the line discount.
type LineRequest struct {
	ProductID     string  `json:"product_id" validate:"required"`
	Quantity      int     `json:"quantity" validate:"required,gt=0"`
	DiscountType  string  `json:"discount_type" validate:"omitempty,oneof=percentage fixed"`
	DiscountValue float64 `json:"discount_value" validate:"gte=0"`
}

type AdjustmentRequest struct {
	Text      string  `json:"text"`
	Value     float64 `json:"value" validate:"gte=0"`
	Type      string  `json:"type" validate:"omitempty,oneof=percentage fixed"`
	Operation string  `json:"operation" validate:"omitempty,oneof=add subtract"`
}

type DocumentRequest struct {
	PartyID uint   `json:"party_id" validate:"required"`
	Number  string `json:"number"`

	Lines []LineRequest `json:"lines" validate:"required,min=1,dive"`

	GlobalDiscountType  string  `json:"global_discount_type" validate:"omitempty,oneof=percentage fixed"`
	GlobalDiscountValue float64 `json:"global_discount_value" validate:"gte=0"`

	Adjustment *AdjustmentRequest `json:"adjustment"`
}

type ReceiptRequest struct {
	PartyID   uint  `json:"party_id" validate:"required"`
	OrderID   *uint `json:"order_id"`
	InvoiceID *uint `json:"invoice_id"`

	Amount      float64 `json:"amount" validate:"required,gt=0"`
	PaymentMode string  `json:"payment_mode" validate:"omitempty,oneof=cash upi cheque bank"`
	Reference   string  `json:"reference"`
	Note        string  `json:"note"`

	// For an unlinked receipt: a one-off counter sale. An invoice is created
	// from these lines on the fly and the receipt applied against it.
	Lines []LineRequest `json:"lines" validate:"omitempty,dive"`
}

// CreateOrder places an order: per-line pricing resolution, line and document
// totals, initial payment state.
func (s *Service) CreateOrder(ctx context.Context, req DocumentRequest) (*models.Document, error) {
	return s.createDocument(ctx, models.DocumentKindOrder, req)
}

// CreateInvoice creates an invoice directly, for a one-off sale not backed by
// an order.
func (s *Service) CreateInvoice(ctx context.Context, req DocumentRequest) (*models.Document, error) {
	return s.createDocument(ctx, models.DocumentKindInvoice, req)
}

func (s *Service) createDocument(ctx context.Context, kind string, req DocumentRequest) (*models.Document, error) {
	party, err := s.store.GetParty(ctx, req.PartyID)
	if err != nil {
		return nil, err
	}

	doc := &models.Document{
		Kind:    kind,
		Number:  req.Number,
		PartyID: party.Id,
	}
	if doc.Number == "" {
		doc.Number = generateNumber(kind)
	}

	for _, line := range req.Lines {
		item, err := s.buildLineItem(ctx, party, line)
		if err != nil {
			return nil, err
		}
		doc.Items = append(doc.Items, *item)
	}

	applyGlobalDiscount(doc, party, req)
	if req.Adjustment != nil {
		doc.AdjustmentText = req.Adjustment.Text
		doc.AdjustmentType = req.Adjustment.Type
		doc.AdjustmentValue = decimal.NewFromFloat(req.Adjustment.Value)
		doc.AdjustmentOperation = req.Adjustment.Operation
	}

	if err := billing.Aggregate(doc); err != nil {
		return nil, err
	}
	ledger.Initialize(doc)

	if err := s.store.CreateDocument(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// buildLineItem resolves pricing for one line and snapshots everything the
// line needs to stay immutable against later catalog edits.
func (s *Service) buildLineItem(ctx context.Context, party *models.Party, line LineRequest) (*models.LineItem, error) {
	quote, err := s.resolver.Resolve(ctx, party, line.ProductID)
	if err != nil {
		return nil, err
	}
	product, err := s.store.GetProduct(ctx, line.ProductID)
	if err != nil {
		return nil, err
	}

	item := &models.LineItem{
		ProductID:    product.Id,
		ProductName:  product.Name,
		SKU:          product.SKU,
		Packaging:    product.Packaging,
		Quantity:     line.Quantity,
		UnitPrice:    quote.UnitPrice,
		IGSTRate:     quote.IGST,
		CGSTRate:     quote.CGST,
		SGSTRate:     quote.SGST,
		TaxInclusive: quote.TaxInclusive,
		PriceSource:  quote.Source,
	}

	// An operator-supplied line discount wins over the override's default.
	if line.DiscountType != "" {
		item.DiscountType = line.DiscountType
		item.DiscountValue = decimal.NewFromFloat(line.DiscountValue)
	} else if quote.DiscountType != "" {
		item.DiscountType = quote.DiscountType
		item.DiscountValue = quote.DiscountValue
	}

	if err := billing.ComputeLine(item); err != nil {
		return nil, err
	}
	return item, nil
}

// applyGlobalDiscount sets the document-level discount. An explicit request
// value wins as-is; otherwise a customer's standing discount percentage is
// auto-applied. Dealers get their pricing at line level, never here.
func applyGlobalDiscount(doc *models.Document, party *models.Party, req DocumentRequest) {
	if req.GlobalDiscountType != "" {
		doc.GlobalDiscountType = req.GlobalDiscountType
		doc.GlobalDiscountValue = decimal.NewFromFloat(req.GlobalDiscountValue)
		return
	}
	if party.Type == models.PartyTypeCustomer && party.DiscountPercent > 0 {
		doc.GlobalDiscountType = models.DiscountTypePercentage
		doc.GlobalDiscountValue = decimal.NewFromFloat(party.DiscountPercent)
	}
}

// ConvertOrderToInvoice freezes a completed order's already-computed totals
// into an invoice. No pricing is re-resolved. The order's active receipts are
// relinked to the invoice so the paid rollup survives the conversion.
func (s *Service) ConvertOrderToInvoice(ctx context.Context, orderID uint) (*models.Document, error) {
	var invoice *models.Document
	err := s.store.Atomically(ctx, func(tx store.Store) error {
		order, err := tx.GetDocument(ctx, orderID)
		if err != nil {
			return err
		}
		if order.Kind != models.DocumentKindOrder {
			return errs.New(errs.Validation, "document %d is not an order", orderID)
		}
		if order.CounterpartID != nil {
			return errs.New(errs.Conflict, "order %d already converted", orderID)
		}

		// Immutable snapshot of the order as it stood at conversion.
		snapshot, err := json.Marshal(order)
		if err != nil {
			return err
		}
		versionNo, err := tx.NextVersionNo(ctx, order.ID)
		if err != nil {
			return err
		}
		if err := tx.CreateDocumentVersion(ctx, &models.DocumentVersion{
			DocumentID: order.ID,
			VersionNo:  versionNo,
			Kind:       models.DocumentKindOrder,
			Snapshot:   datatypes.JSON(snapshot),
		}); err != nil {
			return err
		}

		invoice = freezeInvoice(order)
		if err := tx.CreateDocument(ctx, invoice); err != nil {
			return err
		}

		if err := relinkReceipts(ctx, tx, order, invoice); err != nil {
			return err
		}

		order.CounterpartID = &invoice.ID
		if err := tx.SaveDocument(ctx, order); err != nil {
			return err
		}

		// Rollups land on the invoice now that the receipts moved.
		activeSum, err := tx.SumActiveReceipts(ctx, invoice.ID)
		if err != nil {
			return err
		}
		if err := ledger.Recompute(invoice, activeSum); err != nil {
			return err
		}
		return tx.SaveDocument(ctx, invoice)
	})
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

// freezeInvoice copies an order's items and totals into a fresh invoice
// document without touching the catalog.
func freezeInvoice(order *models.Document) *models.Document {
	invoice := *order
	invoice.ID = 0
	invoice.Kind = models.DocumentKindInvoice
	invoice.Number = generateNumber(models.DocumentKindInvoice)
	invoice.CounterpartID = &order.ID
	invoice.CreatedAt = time.Time{}

	invoice.Items = make([]models.LineItem, len(order.Items))
	for i, item := range order.Items {
		item.ID = 0
		item.DocumentID = 0
		invoice.Items[i] = item
	}
	return &invoice
}

func relinkReceipts(ctx context.Context, tx store.Store, order, invoice *models.Document) error {
	receipts, err := tx.ListReceipts(ctx, order.ID)
	if err != nil {
		return err
	}
	for i := range receipts {
		receipt := receipts[i]
		if receipt.Status != models.ReceiptStatusActive {
			continue
		}
		orderID := order.ID
		receipt.OrderID = nil
		receipt.InvoiceID = &invoice.ID
		receipt.ConvertedFromOrderID = &orderID
		if err := tx.SaveReceipt(ctx, &receipt); err != nil {
			return err
		}
	}
	return nil
}

// ApplyReceipt validates the link target and routes to the ledger engine. An
// unlinked receipt carrying lines triggers on-demand invoice creation first.
func (s *Service) ApplyReceipt(ctx context.Context, req ReceiptRequest) (*models.Receipt, error) {
	if req.OrderID != nil && req.InvoiceID != nil {
		return nil, errs.New(errs.Conflict, "receipt cannot link both an order and an invoice")
	}

	receipt := &models.Receipt{
		PartyID:     req.PartyID,
		OrderID:     req.OrderID,
		InvoiceID:   req.InvoiceID,
		Amount:      decimal.NewFromFloat(req.Amount),
		PaymentMode: req.PaymentMode,
		Reference:   req.Reference,
		Note:        req.Note,
	}

	switch {
	case req.OrderID != nil:
		order, err := s.store.GetDocument(ctx, *req.OrderID)
		if err != nil {
			return nil, err
		}
		if order.Kind != models.DocumentKindOrder {
			return nil, errs.New(errs.Validation, "document %d is not an order", *req.OrderID)
		}
		if order.CounterpartID != nil {
			return nil, errs.New(errs.Conflict,
				"order %d was converted; apply the receipt to invoice %d", order.ID, *order.CounterpartID)
		}
	case req.InvoiceID != nil:
		invoice, err := s.store.GetDocument(ctx, *req.InvoiceID)
		if err != nil {
			return nil, err
		}
		if invoice.Kind != models.DocumentKindInvoice {
			return nil, errs.New(errs.Validation, "document %d is not an invoice", *req.InvoiceID)
		}
	default:
		if len(req.Lines) == 0 {
			return nil, errs.New(errs.Validation, "receipt needs an order, an invoice, or sale lines")
		}
		invoice, err := s.CreateInvoice(ctx, DocumentRequest{
			PartyID: req.PartyID,
			Lines:   req.Lines,
		})
		if err != nil {
			return nil, err
		}
		receipt.InvoiceID = &invoice.ID
	}

	return s.ledger.Create(ctx, receipt)
}

// EditReceipt changes an active receipt's amount.
func (s *Service) EditReceipt(ctx context.Context, receiptID uint, newAmount float64) (*models.Receipt, error) {
	return s.ledger.Edit(ctx, receiptID, decimal.NewFromFloat(newAmount))
}

// UndoReceipt reverses an active receipt exactly once.
func (s *Service) UndoReceipt(ctx context.Context, receiptID uint) (*models.Receipt, error) {
	return s.ledger.Undo(ctx, receiptID)
}

func generateNumber(kind string) string {
	prefix := "ORD"
	if kind == models.DocumentKindInvoice {
		prefix = "INV"
	}
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}
