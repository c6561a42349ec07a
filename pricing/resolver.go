// Package pricing resolves the effective unit price and tax rates for a
// buyer/product pair through the two-tier override hierarchy:
// individual override > dealer-group override > product defaults.
package pricing

import (
	"context"

	"github.com/shopspring/decimal"

	"milkroute-backend/errs"
	"milkroute-backend/models"
)

const (
	SourceIndividual = "individual"
	SourceGroup      = "group"
	SourceProduct    = "product"
)

// Quote is a resolved price: everything a line item snapshots at creation.
type Quote struct {
	UnitPrice decimal.Decimal `json:"unit_price"`
	IGST      float64         `json:"igst"`
	CGST      float64         `json:"cgst"`
	SGST      float64         `json:"sgst"`

	// Default line discount carried by the winning override, if any.
	DiscountType  string          `json:"discount_type"`
	DiscountValue decimal.Decimal `json:"discount_value"`

	TaxInclusive bool   `json:"tax_inclusive"`
	Source       string `json:"source"`
}

// TotalRate is the effective combined GST percentage (IGST xor CGST+SGST).
func (q Quote) TotalRate() float64 {
	if q.IGST > 0 {
		return q.IGST
	}
	return q.CGST + q.SGST
}

// Catalog is the slice of the store the resolver reads. Lookups returning
// (nil, nil) mean "no such override"; only GetProduct/GetParty report NotFound.
type Catalog interface {
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	GetParty(ctx context.Context, id uint) (*models.Party, error)
	GetIndividualPricing(ctx context.Context, partyID uint, productID string) (*models.PricingOverride, error)
	GetGroupPricing(ctx context.Context, groupID uint, productID string) (*models.PricingOverride, error)
}

type Resolver struct {
	catalog Catalog
	cache   QuoteCache
}

func NewResolver(catalog Catalog, cache QuoteCache) *Resolver {
	if cache == nil {
		cache = NoopQuoteCache{}
	}
	return &Resolver{catalog: catalog, cache: cache}
}

// Resolve returns the effective quote for the buyer/product pair.
//
// Dealers walk the override hierarchy. Customers never get line-level
// overrides; their standing discount is applied document-level by the caller.
// A product lacking price/tax data yields zero-valued defaults rather than
// failing.
func (r *Resolver) Resolve(ctx context.Context, party *models.Party, productID string) (Quote, error) {
	if key, ok := cacheKey(party, productID); ok {
		if q, hit, err := r.cache.Get(ctx, key); err == nil && hit {
			return *q, nil
		}
	}

	product, err := r.catalog.GetProduct(ctx, productID)
	if err != nil {
		return Quote{}, err
	}
	if product == nil {
		return Quote{}, errs.New(errs.NotFound, "product %s not found", productID)
	}

	quote := productQuote(product)

	if party != nil && party.Type == models.PartyTypeDealer {
		override, err := r.lookupOverride(ctx, party, productID)
		if err != nil {
			return Quote{}, err
		}
		if override != nil {
			applyOverride(&quote, override)
		}
	}

	if key, ok := cacheKey(party, productID); ok {
		_ = r.cache.Set(ctx, key, &quote, quoteTTL)
	}
	return quote, nil
}

// lookupOverride returns the winning override: individual if present, else the
// dealer group's, else nil. Recency never matters.
func (r *Resolver) lookupOverride(ctx context.Context, party *models.Party, productID string) (*models.PricingOverride, error) {
	individual, err := r.catalog.GetIndividualPricing(ctx, party.Id, productID)
	if err != nil {
		return nil, err
	}
	if individual != nil {
		return individual, nil
	}
	if party.GroupID == nil {
		return nil, nil
	}
	return r.catalog.GetGroupPricing(ctx, *party.GroupID, productID)
}

func productQuote(product *models.Product) Quote {
	return Quote{
		UnitPrice:    product.SellingPrice,
		IGST:         product.IGSTRate,
		CGST:         product.CGSTRate,
		SGST:         product.SGSTRate,
		TaxInclusive: product.TaxInclusive,
		Source:       SourceProduct,
	}
}

func applyOverride(quote *Quote, override *models.PricingOverride) {
	quote.UnitPrice = override.SellingPrice
	quote.DiscountType = override.DiscountType
	quote.DiscountValue = override.DiscountValue
	if override.HasTaxOverride() {
		quote.IGST = nonNegative(override.IGSTRate)
		quote.CGST = nonNegative(override.CGSTRate)
		quote.SGST = nonNegative(override.SGSTRate)
	}
	if override.PartyID != nil {
		quote.Source = SourceIndividual
	} else {
		quote.Source = SourceGroup
	}
}

func nonNegative(rate float64) float64 {
	if rate < 0 {
		return 0
	}
	return rate
}
