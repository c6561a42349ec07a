package pricing_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"milkroute-backend/errs"
	"milkroute-backend/models"
	"milkroute-backend/pricing"
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

const productMilk = "11111111-1111-1111-1111-111111111111"

func seedCatalog(t *testing.T) *store.Memory {
	t.Helper()
	mem := store.NewMemory()
	mem.SeedProduct(models.Product{
		Id:           productMilk,
		SKU:          "MILK-TONED-500",
		Name:         "Toned Milk 500ml",
		SellingPrice: d("70"),
		CGSTRate:     2.5,
		SGSTRate:     2.5,
	})
	mem.SeedParty(models.Party{Id: 1, Type: models.PartyTypeDealer, Name: "Sharma Dairy", GroupID: uintPtr(10)})
	mem.SeedParty(models.Party{Id: 2, Type: models.PartyTypeDealer, Name: "Lone Dealer"})
	mem.SeedParty(models.Party{Id: 3, Type: models.PartyTypeCustomer, Name: "Walk-in", DiscountPercent: 5})
	return mem
}

func TestResolveIndividualBeatsGroup(t *testing.T) {
	mem := seedCatalog(t)
	mem.SeedOverride(models.PricingOverride{
		GroupID: uintPtr(10), ProductID: productMilk,
		SellingPrice: d("60"),
		IGSTRate:     -1, CGSTRate: -1, SGSTRate: -1,
	})
	mem.SeedOverride(models.PricingOverride{
		PartyID: uintPtr(1), ProductID: productMilk,
		SellingPrice: d("50"),
		IGSTRate:     -1, CGSTRate: -1, SGSTRate: -1,
	})

	resolver := pricing.NewResolver(mem, nil)
	party, err := mem.GetParty(context.Background(), 1)
	require.NoError(t, err)

	quote, err := resolver.Resolve(context.Background(), party, productMilk)
	require.NoError(t, err)

	assert.Equal(t, "50.00", quote.UnitPrice.StringFixed(2))
	assert.Equal(t, pricing.SourceIndividual, quote.Source)
	// The override carried no tax override, so product rates survive.
	assert.Equal(t, 2.5, quote.CGST)
	assert.Equal(t, 2.5, quote.SGST)
}

func TestResolveGroupFallback(t *testing.T) {
	mem := seedCatalog(t)
	mem.SeedOverride(models.PricingOverride{
		GroupID: uintPtr(10), ProductID: productMilk,
		SellingPrice: d("60"),
		IGSTRate:     -1, CGSTRate: -1, SGSTRate: -1,
	})

	resolver := pricing.NewResolver(mem, nil)
	party, err := mem.GetParty(context.Background(), 1)
	require.NoError(t, err)

	quote, err := resolver.Resolve(context.Background(), party, productMilk)
	require.NoError(t, err)

	assert.Equal(t, "60.00", quote.UnitPrice.StringFixed(2))
	assert.Equal(t, pricing.SourceGroup, quote.Source)
}

func TestResolveProductDefault(t *testing.T) {
	mem := seedCatalog(t)
	resolver := pricing.NewResolver(mem, nil)

	// A dealer outside any group and without overrides gets the list price.
	party, err := mem.GetParty(context.Background(), 2)
	require.NoError(t, err)

	quote, err := resolver.Resolve(context.Background(), party, productMilk)
	require.NoError(t, err)

	assert.Equal(t, "70.00", quote.UnitPrice.StringFixed(2))
	assert.Equal(t, pricing.SourceProduct, quote.Source)
}

func TestResolveCustomerSkipsOverrides(t *testing.T) {
	mem := seedCatalog(t)
	// Even a mistaken individual override for a customer must not apply.
	mem.SeedOverride(models.PricingOverride{
		PartyID: uintPtr(3), ProductID: productMilk,
		SellingPrice: d("1"),
		IGSTRate:     -1, CGSTRate: -1, SGSTRate: -1,
	})

	resolver := pricing.NewResolver(mem, nil)
	party, err := mem.GetParty(context.Background(), 3)
	require.NoError(t, err)

	quote, err := resolver.Resolve(context.Background(), party, productMilk)
	require.NoError(t, err)

	assert.Equal(t, "70.00", quote.UnitPrice.StringFixed(2))
	assert.Equal(t, pricing.SourceProduct, quote.Source)
}

func TestResolveTaxOverride(t *testing.T) {
	mem := seedCatalog(t)
	// The override swaps intrastate rates for IGST; the untouched components
	// collapse to zero rather than inheriting the product's.
	mem.SeedOverride(models.PricingOverride{
		PartyID: uintPtr(1), ProductID: productMilk,
		SellingPrice: d("55"),
		IGSTRate:     12, CGSTRate: -1, SGSTRate: -1,
	})

	resolver := pricing.NewResolver(mem, nil)
	party, err := mem.GetParty(context.Background(), 1)
	require.NoError(t, err)

	quote, err := resolver.Resolve(context.Background(), party, productMilk)
	require.NoError(t, err)

	assert.Equal(t, 12.0, quote.IGST)
	assert.Equal(t, 0.0, quote.CGST)
	assert.Equal(t, 0.0, quote.SGST)
	assert.Equal(t, 12.0, quote.TotalRate())
}

func TestResolveUnknownProduct(t *testing.T) {
	mem := seedCatalog(t)
	resolver := pricing.NewResolver(mem, nil)
	party, err := mem.GetParty(context.Background(), 1)
	require.NoError(t, err)

	_, err = resolver.Resolve(context.Background(), party, "99999999-9999-9999-9999-999999999999")
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.NotFound))
}

// mapCache is an in-test QuoteCache counting hits and stores.
type mapCache struct {
	mu     sync.Mutex
	quotes map[string]*pricing.Quote
	gets   int
	sets   int
}

func newMapCache() *mapCache {
	return &mapCache{quotes: map[string]*pricing.Quote{}}
}

func (c *mapCache) Get(_ context.Context, key string) (*pricing.Quote, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	q, ok := c.quotes[key]
	return q, ok, nil
}

func (c *mapCache) Set(_ context.Context, key string, quote *pricing.Quote, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	c.quotes[key] = quote
	return nil
}

func (c *mapCache) Invalidate(_ context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.quotes {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			delete(c.quotes, k)
		}
	}
	return nil
}

func TestResolveUsesCache(t *testing.T) {
	mem := seedCatalog(t)
	cache := newMapCache()
	resolver := pricing.NewResolver(mem, cache)
	party, err := mem.GetParty(context.Background(), 1)
	require.NoError(t, err)

	first, err := resolver.Resolve(context.Background(), party, productMilk)
	require.NoError(t, err)
	require.Equal(t, 1, cache.sets)

	// The seeded price changes underneath; the cached quote is served until
	// invalidation.
	mem.SeedProduct(models.Product{Id: productMilk, SKU: "MILK-TONED-500", SellingPrice: d("80")})
	second, err := resolver.Resolve(context.Background(), party, productMilk)
	require.NoError(t, err)
	assert.True(t, second.UnitPrice.Equal(first.UnitPrice))

	require.NoError(t, cache.Invalidate(context.Background(),
		pricing.PartyPrefix(models.PartyTypeDealer, party.Id)))
	third, err := resolver.Resolve(context.Background(), party, productMilk)
	require.NoError(t, err)
	assert.Equal(t, "80.00", third.UnitPrice.StringFixed(2))
}
