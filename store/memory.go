package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"milkroute-backend/errs"
	"milkroute-backend/models"
)

// Memory is an in-process Store used by tests. Atomically holds the single
// mutex for its whole extent and restores a snapshot on error, giving the
// same single-writer, all-or-nothing semantics as the Postgres transaction.
type Memory struct {
	mu   *sync.Mutex
	data *memData
	inTx bool
}

type memData struct {
	products  map[string]models.Product
	parties   map[uint]models.Party
	overrides []models.PricingOverride
	documents map[uint]models.Document
	versions  []models.DocumentVersion
	receipts  map[uint]models.Receipt

	nextDocument uint
	nextReceipt  uint
	nextOverride uint
	nextVersion  uint
}

func NewMemory() *Memory {
	return &Memory{
		mu: &sync.Mutex{},
		data: &memData{
			products:  map[string]models.Product{},
			parties:   map[uint]models.Party{},
			documents: map[uint]models.Document{},
			receipts:  map[uint]models.Receipt{},
		},
	}
}

func (m *Memory) lock() func() {
	if m.inTx {
		return func() {}
	}
	m.mu.Lock()
	return m.mu.Unlock
}

func (d *memData) clone() *memData {
	c := &memData{
		products:     make(map[string]models.Product, len(d.products)),
		parties:      make(map[uint]models.Party, len(d.parties)),
		overrides:    append([]models.PricingOverride(nil), d.overrides...),
		documents:    make(map[uint]models.Document, len(d.documents)),
		versions:     append([]models.DocumentVersion(nil), d.versions...),
		receipts:     make(map[uint]models.Receipt, len(d.receipts)),
		nextDocument: d.nextDocument,
		nextReceipt:  d.nextReceipt,
		nextOverride: d.nextOverride,
		nextVersion:  d.nextVersion,
	}
	for k, v := range d.products {
		c.products[k] = v
	}
	for k, v := range d.parties {
		c.parties[k] = v
	}
	for k, v := range d.documents {
		v.Items = append([]models.LineItem(nil), v.Items...)
		c.documents[k] = v
	}
	for k, v := range d.receipts {
		c.receipts[k] = v
	}
	return c
}

// ---- Seeding helpers (tests) ----

func (m *Memory) SeedProduct(product models.Product) {
	defer m.lock()()
	m.data.products[product.Id] = product
}

func (m *Memory) SeedParty(party models.Party) {
	defer m.lock()()
	m.data.parties[party.Id] = party
}

func (m *Memory) SeedOverride(override models.PricingOverride) {
	defer m.lock()()
	m.data.nextOverride++
	override.Id = m.data.nextOverride
	m.data.overrides = append(m.data.overrides, override)
}

// ---- Store ----

func (m *Memory) GetProduct(_ context.Context, id string) (*models.Product, error) {
	defer m.lock()()
	product, ok := m.data.products[id]
	if !ok {
		return nil, errs.New(errs.NotFound, "product %s not found", id)
	}
	return &product, nil
}

func (m *Memory) GetParty(_ context.Context, id uint) (*models.Party, error) {
	defer m.lock()()
	party, ok := m.data.parties[id]
	if !ok {
		return nil, errs.New(errs.NotFound, "party %d not found", id)
	}
	return &party, nil
}

func (m *Memory) GetIndividualPricing(_ context.Context, partyID uint, productID string) (*models.PricingOverride, error) {
	defer m.lock()()
	for i := range m.data.overrides {
		o := m.data.overrides[i]
		if o.PartyID != nil && *o.PartyID == partyID && o.ProductID == productID {
			return &o, nil
		}
	}
	return nil, nil
}

func (m *Memory) GetGroupPricing(_ context.Context, groupID uint, productID string) (*models.PricingOverride, error) {
	defer m.lock()()
	for i := range m.data.overrides {
		o := m.data.overrides[i]
		if o.GroupID != nil && *o.GroupID == groupID && o.ProductID == productID {
			return &o, nil
		}
	}
	return nil, nil
}

func (m *Memory) GetDocument(_ context.Context, id uint) (*models.Document, error) {
	defer m.lock()()
	doc, ok := m.data.documents[id]
	if !ok {
		return nil, errs.New(errs.NotFound, "document %d not found", id)
	}
	doc.Items = append([]models.LineItem(nil), doc.Items...)
	return &doc, nil
}

func (m *Memory) CreateDocument(_ context.Context, doc *models.Document) error {
	defer m.lock()()
	m.data.nextDocument++
	doc.ID = m.data.nextDocument
	doc.CreatedAt = time.Now()
	m.data.documents[doc.ID] = *doc
	return nil
}

func (m *Memory) SaveDocument(_ context.Context, doc *models.Document) error {
	defer m.lock()()
	if _, ok := m.data.documents[doc.ID]; !ok {
		return errs.New(errs.NotFound, "document %d not found", doc.ID)
	}
	m.data.documents[doc.ID] = *doc
	return nil
}

func (m *Memory) CreateDocumentVersion(_ context.Context, version *models.DocumentVersion) error {
	defer m.lock()()
	m.data.nextVersion++
	version.ID = m.data.nextVersion
	version.CreatedAt = time.Now()
	m.data.versions = append(m.data.versions, *version)
	return nil
}

func (m *Memory) NextVersionNo(_ context.Context, documentID uint) (int, error) {
	defer m.lock()()
	max := 0
	for i := range m.data.versions {
		v := m.data.versions[i]
		if v.DocumentID == documentID && v.VersionNo > max {
			max = v.VersionNo
		}
	}
	return max + 1, nil
}

func (m *Memory) GetReceipt(_ context.Context, id uint) (*models.Receipt, error) {
	defer m.lock()()
	receipt, ok := m.data.receipts[id]
	if !ok {
		return nil, errs.New(errs.NotFound, "receipt %d not found", id)
	}
	return &receipt, nil
}

func (m *Memory) CreateReceipt(_ context.Context, receipt *models.Receipt) error {
	defer m.lock()()
	m.data.nextReceipt++
	receipt.ID = m.data.nextReceipt
	receipt.CreatedAt = time.Now()
	m.data.receipts[receipt.ID] = *receipt
	return nil
}

func (m *Memory) SaveReceipt(_ context.Context, receipt *models.Receipt) error {
	defer m.lock()()
	if _, ok := m.data.receipts[receipt.ID]; !ok {
		return errs.New(errs.NotFound, "receipt %d not found", receipt.ID)
	}
	m.data.receipts[receipt.ID] = *receipt
	return nil
}

func (m *Memory) ListReceipts(_ context.Context, documentID uint) ([]models.Receipt, error) {
	defer m.lock()()
	var receipts []models.Receipt
	for id := range m.data.receipts {
		r := m.data.receipts[id]
		if linked, ok := r.DocumentID(); ok && linked == documentID {
			receipts = append(receipts, r)
		}
	}
	sort.Slice(receipts, func(i, j int) bool { return receipts[i].ID < receipts[j].ID })
	return receipts, nil
}

func (m *Memory) SumActiveReceipts(_ context.Context, documentID uint) (decimal.Decimal, error) {
	defer m.lock()()
	sum := decimal.Zero
	for id := range m.data.receipts {
		r := m.data.receipts[id]
		if r.Status != models.ReceiptStatusActive {
			continue
		}
		if linked, ok := r.DocumentID(); ok && linked == documentID {
			sum = sum.Add(r.Amount)
		}
	}
	return sum, nil
}

func (m *Memory) AdjustBalance(_ context.Context, partyID uint, delta decimal.Decimal) error {
	defer m.lock()()
	party, ok := m.data.parties[partyID]
	if !ok {
		return errs.New(errs.NotFound, "party %d not found", partyID)
	}
	party.CurrentBalance = party.CurrentBalance.Add(delta)
	m.data.parties[partyID] = party
	return nil
}

func (m *Memory) Atomically(_ context.Context, fn func(Store) error) error {
	if m.inTx {
		return fn(m)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.data.clone()
	err := fn(&Memory{mu: m.mu, data: m.data, inTx: true})
	if err != nil {
		*m.data = *snapshot
	}
	return err
}
