package ledger_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"milkroute-backend/errs"
	"milkroute-backend/ledger"
	"milkroute-backend/models"
	"milkroute-backend/store"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func uintPtr(v uint) *uint { return &v }

// setup seeds a party owing 1000 against a single invoice of the same amount.
func setup(t *testing.T) (*store.Memory, *ledger.Engine, *models.Document) {
	t.Helper()
	mem := store.NewMemory()
	mem.SeedParty(models.Party{
		Id:             1,
		Type:           models.PartyTypeDealer,
		Name:           "Sharma Dairy",
		CurrentBalance: d("1000"),
	})

	doc := &models.Document{
		Kind:    models.DocumentKindInvoice,
		Number:  "INV-1",
		PartyID: 1,
		Total:   d("1000"),
	}
	ledger.Initialize(doc)
	require.NoError(t, mem.CreateDocument(context.Background(), doc))
	require.Equal(t, models.PaymentStatusPending, doc.PaymentStatus)

	return mem, ledger.New(mem), doc
}

func balance(t *testing.T, mem *store.Memory, partyID uint) string {
	t.Helper()
	party, err := mem.GetParty(context.Background(), partyID)
	require.NoError(t, err)
	return party.CurrentBalance.StringFixed(2)
}

func TestReceiptPartialThenUndo(t *testing.T) {
	mem, engine, doc := setup(t)
	ctx := context.Background()

	receipt, err := engine.Create(ctx, &models.Receipt{
		PartyID:   1,
		InvoiceID: &doc.ID,
		Amount:    d("300"),
	})
	require.NoError(t, err)
	assert.Equal(t, models.ReceiptStatusActive, receipt.Status)
	assert.False(t, receipt.PaidAt.IsZero())

	got, err := mem.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPartial, got.PaymentStatus)
	assert.Equal(t, "300.00", got.PaidAmount.StringFixed(2))
	assert.Equal(t, "700.00", got.DueAmount.StringFixed(2))
	assert.Equal(t, "700.00", balance(t, mem, 1))

	// Undo restores the exact pre-receipt state.
	undone, err := engine.Undo(ctx, receipt.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReceiptStatusUndone, undone.Status)
	require.NotNil(t, undone.UndoneAt)

	got, err = mem.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPending, got.PaymentStatus)
	assert.True(t, got.PaidAmount.IsZero())
	assert.Equal(t, "1000.00", got.DueAmount.StringFixed(2))
	assert.Equal(t, "1000.00", balance(t, mem, 1))
}

func TestReceiptCompletesDocument(t *testing.T) {
	mem, engine, doc := setup(t)
	ctx := context.Background()

	_, err := engine.Create(ctx, &models.Receipt{PartyID: 1, InvoiceID: &doc.ID, Amount: d("600")})
	require.NoError(t, err)
	_, err = engine.Create(ctx, &models.Receipt{PartyID: 1, InvoiceID: &doc.ID, Amount: d("400")})
	require.NoError(t, err)

	got, err := mem.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusCompleted, got.PaymentStatus)
	assert.Equal(t, "1000.00", got.PaidAmount.StringFixed(2))
	assert.True(t, got.DueAmount.IsZero())
	assert.Equal(t, "0.00", balance(t, mem, 1))
}

func TestOverpaymentStaysCompletedWithZeroDue(t *testing.T) {
	mem, engine, doc := setup(t)
	ctx := context.Background()

	_, err := engine.Create(ctx, &models.Receipt{PartyID: 1, InvoiceID: &doc.ID, Amount: d("1200")})
	require.NoError(t, err)

	got, err := mem.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusCompleted, got.PaymentStatus)
	assert.Equal(t, "1200.00", got.PaidAmount.StringFixed(2))
	// Due clamps at zero; the overpayment lives on the party balance.
	assert.True(t, got.DueAmount.IsZero())
	assert.Equal(t, "-200.00", balance(t, mem, 1))
}

func TestEditPropagatesDelta(t *testing.T) {
	mem, engine, doc := setup(t)
	ctx := context.Background()

	receipt, err := engine.Create(ctx, &models.Receipt{PartyID: 1, InvoiceID: &doc.ID, Amount: d("300")})
	require.NoError(t, err)

	edited, err := engine.Edit(ctx, receipt.ID, d("500"))
	require.NoError(t, err)
	assert.Equal(t, "500.00", edited.Amount.StringFixed(2))

	got, err := mem.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "500.00", got.PaidAmount.StringFixed(2))
	assert.Equal(t, "500.00", got.DueAmount.StringFixed(2))
	assert.Equal(t, "500.00", balance(t, mem, 1))

	// Shrinking works the same way, by delta.
	_, err = engine.Edit(ctx, receipt.ID, d("100"))
	require.NoError(t, err)
	assert.Equal(t, "900.00", balance(t, mem, 1))
}

func TestDoubleUndoConflicts(t *testing.T) {
	_, engine, doc := setup(t)
	ctx := context.Background()

	receipt, err := engine.Create(ctx, &models.Receipt{PartyID: 1, InvoiceID: &doc.ID, Amount: d("300")})
	require.NoError(t, err)

	_, err = engine.Undo(ctx, receipt.ID)
	require.NoError(t, err)

	_, err = engine.Undo(ctx, receipt.ID)
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.Conflict))
}

func TestEditUndoneReceiptConflicts(t *testing.T) {
	mem, engine, doc := setup(t)
	ctx := context.Background()

	receipt, err := engine.Create(ctx, &models.Receipt{PartyID: 1, InvoiceID: &doc.ID, Amount: d("300")})
	require.NoError(t, err)
	_, err = engine.Undo(ctx, receipt.ID)
	require.NoError(t, err)

	_, err = engine.Edit(ctx, receipt.ID, d("500"))
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.Conflict))

	// The failed edit must not have moved anything.
	assert.Equal(t, "1000.00", balance(t, mem, 1))
}

func TestUndoBlockedAfterConversion(t *testing.T) {
	mem, engine, doc := setup(t)
	ctx := context.Background()

	receipt, err := engine.Create(ctx, &models.Receipt{PartyID: 1, InvoiceID: &doc.ID, Amount: d("300")})
	require.NoError(t, err)

	// Simulate the relink a conversion performs.
	receipt.ConvertedFromOrderID = uintPtr(42)
	require.NoError(t, mem.SaveReceipt(ctx, receipt))

	_, err = engine.Undo(ctx, receipt.ID)
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.Conflict))
}

func TestCreateValidation(t *testing.T) {
	_, engine, doc := setup(t)
	ctx := context.Background()

	_, err := engine.Create(ctx, &models.Receipt{PartyID: 1, InvoiceID: &doc.ID, Amount: d("0")})
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.Validation))

	_, err = engine.Create(ctx, &models.Receipt{
		PartyID: 1, OrderID: uintPtr(7), InvoiceID: &doc.ID, Amount: d("100"),
	})
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.Conflict))

	_, err = engine.Create(ctx, &models.Receipt{PartyID: 99, InvoiceID: &doc.ID, Amount: d("100")})
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.NotFound))
}

func TestUnlinkedReceiptMovesOnlyBalance(t *testing.T) {
	mem, engine, doc := setup(t)
	ctx := context.Background()

	// An account-level payment with no document link.
	_, err := engine.Create(ctx, &models.Receipt{PartyID: 1, Amount: d("250")})
	require.NoError(t, err)

	got, err := mem.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPending, got.PaymentStatus)
	assert.Equal(t, "750.00", balance(t, mem, 1))
}
