package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

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

func TestAtomicallyRollsBackOnError(t *testing.T) {
	mem := store.NewMemory()
	mem.SeedParty(models.Party{Id: 1, Type: models.PartyTypeDealer, Name: "Sharma Dairy", CurrentBalance: d("100")})
	ctx := context.Background()

	boom := errors.New("boom")
	err := mem.Atomically(ctx, func(tx store.Store) error {
		if err := tx.CreateReceipt(ctx, &models.Receipt{
			PartyID: 1, Amount: d("40"), Status: models.ReceiptStatusActive,
		}); err != nil {
			return err
		}
		if err := tx.AdjustBalance(ctx, 1, d("-40")); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	// Both writes must be gone.
	_, err = mem.GetReceipt(ctx, 1)
	require.Error(t, err)

	party, err := mem.GetParty(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "100.00", party.CurrentBalance.StringFixed(2))
}

func TestAtomicallyCommitsOnSuccess(t *testing.T) {
	mem := store.NewMemory()
	mem.SeedParty(models.Party{Id: 1, Type: models.PartyTypeDealer, Name: "Sharma Dairy"})
	ctx := context.Background()

	err := mem.Atomically(ctx, func(tx store.Store) error {
		return tx.AdjustBalance(ctx, 1, d("25"))
	})
	require.NoError(t, err)

	party, err := mem.GetParty(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "25.00", party.CurrentBalance.StringFixed(2))
}

func TestAtomicallyNests(t *testing.T) {
	mem := store.NewMemory()
	mem.SeedParty(models.Party{Id: 1, Type: models.PartyTypeDealer, Name: "Sharma Dairy"})
	ctx := context.Background()

	err := mem.Atomically(ctx, func(tx store.Store) error {
		return tx.Atomically(ctx, func(inner store.Store) error {
			return inner.AdjustBalance(ctx, 1, d("10"))
		})
	})
	require.NoError(t, err)

	party, err := mem.GetParty(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "10.00", party.CurrentBalance.StringFixed(2))
}

func TestSumActiveReceiptsSkipsUndone(t *testing.T) {
	mem := store.NewMemory()
	ctx := context.Background()

	docID := uint(5)
	require.NoError(t, mem.CreateReceipt(ctx, &models.Receipt{
		PartyID: 1, InvoiceID: &docID, Amount: d("30"), Status: models.ReceiptStatusActive,
	}))
	require.NoError(t, mem.CreateReceipt(ctx, &models.Receipt{
		PartyID: 1, InvoiceID: &docID, Amount: d("70"), Status: models.ReceiptStatusUndone,
	}))

	sum, err := mem.SumActiveReceipts(ctx, docID)
	require.NoError(t, err)
	assert.Equal(t, "30.00", sum.StringFixed(2))
}
