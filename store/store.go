// Package store is the persistence boundary for the financial core. The
// GORM implementation backs production; the memory implementation backs tests
// and mirrors the same single-writer transactional semantics.
package store

import (
	"context"

	"github.com/shopspring/decimal"

	"milkroute-backend/models"
)

// Store is the collaborator surface consumed by the pricing resolver, the
// ledger engine and the orchestrator.
//
// Override lookups return (nil, nil) when no override exists: absence falls
// back to the next tier, it is not an error.
type Store interface {
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	GetParty(ctx context.Context, id uint) (*models.Party, error)
	GetIndividualPricing(ctx context.Context, partyID uint, productID string) (*models.PricingOverride, error)
	GetGroupPricing(ctx context.Context, groupID uint, productID string) (*models.PricingOverride, error)

	GetDocument(ctx context.Context, id uint) (*models.Document, error)
	CreateDocument(ctx context.Context, doc *models.Document) error
	SaveDocument(ctx context.Context, doc *models.Document) error
	CreateDocumentVersion(ctx context.Context, version *models.DocumentVersion) error
	NextVersionNo(ctx context.Context, documentID uint) (int, error)

	GetReceipt(ctx context.Context, id uint) (*models.Receipt, error)
	CreateReceipt(ctx context.Context, receipt *models.Receipt) error
	SaveReceipt(ctx context.Context, receipt *models.Receipt) error
	ListReceipts(ctx context.Context, documentID uint) ([]models.Receipt, error)
	// SumActiveReceipts totals the amounts of active receipts linked to the
	// document. This is the only source of truth for a document's paid amount.
	SumActiveReceipts(ctx context.Context, documentID uint) (decimal.Decimal, error)

	// AdjustBalance applies a signed delta to the party's current balance.
	AdjustBalance(ctx context.Context, partyID uint, delta decimal.Decimal) error

	// Atomically runs fn inside a transaction spanning every read and write fn
	// makes. Either all writes land or none do; a single logical writer holds
	// a document at a time.
	Atomically(ctx context.Context, fn func(Store) error) error
}
