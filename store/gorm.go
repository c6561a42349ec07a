package store

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"milkroute-backend/errs"
	"milkroute-backend/models"
)

// Gorm implements Store on a *gorm.DB. Handlers construct it per request over
// the tenant transaction opened by the TenantTx middleware, so every call is
// already pinned to the tenant schema.
type Gorm struct {
	db *gorm.DB
}

func NewGorm(db *gorm.DB) *Gorm {
	return &Gorm{db: db}
}

func (s *Gorm) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	err := s.db.WithContext(ctx).First(&product, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.New(errs.NotFound, "product %s not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *Gorm) GetParty(ctx context.Context, id uint) (*models.Party, error) {
	var party models.Party
	err := s.db.WithContext(ctx).First(&party, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.New(errs.NotFound, "party %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &party, nil
}

func (s *Gorm) GetIndividualPricing(ctx context.Context, partyID uint, productID string) (*models.PricingOverride, error) {
	var override models.PricingOverride
	err := s.db.WithContext(ctx).
		Where("party_id = ? AND product_id = ?", partyID, productID).
		First(&override).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &override, nil
}

func (s *Gorm) GetGroupPricing(ctx context.Context, groupID uint, productID string) (*models.PricingOverride, error) {
	var override models.PricingOverride
	err := s.db.WithContext(ctx).
		Where("group_id = ? AND product_id = ?", groupID, productID).
		First(&override).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &override, nil
}

func (s *Gorm) GetDocument(ctx context.Context, id uint) (*models.Document, error) {
	var doc models.Document
	err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Items").
		First(&doc, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.New(errs.NotFound, "document %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (s *Gorm) CreateDocument(ctx context.Context, doc *models.Document) error {
	return s.db.WithContext(ctx).Create(doc).Error
}

func (s *Gorm) SaveDocument(ctx context.Context, doc *models.Document) error {
	return s.db.WithContext(ctx).Save(doc).Error
}

func (s *Gorm) CreateDocumentVersion(ctx context.Context, version *models.DocumentVersion) error {
	return s.db.WithContext(ctx).Create(version).Error
}

func (s *Gorm) NextVersionNo(ctx context.Context, documentID uint) (int, error) {
	var max int
	err := s.db.WithContext(ctx).Model(&models.DocumentVersion{}).
		Where("document_id = ?", documentID).
		Select("COALESCE(MAX(version_no), 0)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	return max + 1, nil
}

func (s *Gorm) GetReceipt(ctx context.Context, id uint) (*models.Receipt, error) {
	var receipt models.Receipt
	err := s.db.WithContext(ctx).First(&receipt, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.New(errs.NotFound, "receipt %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &receipt, nil
}

func (s *Gorm) CreateReceipt(ctx context.Context, receipt *models.Receipt) error {
	return s.db.WithContext(ctx).Create(receipt).Error
}

func (s *Gorm) SaveReceipt(ctx context.Context, receipt *models.Receipt) error {
	return s.db.WithContext(ctx).Save(receipt).Error
}

func (s *Gorm) ListReceipts(ctx context.Context, documentID uint) ([]models.Receipt, error) {
	var receipts []models.Receipt
	err := s.db.WithContext(ctx).
		Where("order_id = ? OR invoice_id = ?", documentID, documentID).
		Order("paid_at").
		Find(&receipts).Error
	return receipts, err
}

func (s *Gorm) SumActiveReceipts(ctx context.Context, documentID uint) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := s.db.WithContext(ctx).Model(&models.Receipt{}).
		Where("(order_id = ? OR invoice_id = ?) AND status = ?",
			documentID, documentID, models.ReceiptStatusActive).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&sum).Error
	if err != nil {
		return decimal.Zero, err
	}
	return sum, nil
}

func (s *Gorm) AdjustBalance(ctx context.Context, partyID uint, delta decimal.Decimal) error {
	res := s.db.WithContext(ctx).Model(&models.Party{}).
		Where("id = ?", partyID).
		Update("current_balance", gorm.Expr("current_balance + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.New(errs.NotFound, "party %d not found", partyID)
	}
	return nil
}

// Atomically wraps fn in a nested gorm transaction. When s already sits on the
// per-request tenant transaction this becomes a savepoint, so a ledger failure
// rolls back the whole mutation with zero partial writes.
func (s *Gorm) Atomically(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Gorm{db: tx})
	})
}
