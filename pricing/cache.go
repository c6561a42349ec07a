package pricing

import (
	"context"
	"fmt"
	"time"

	"milkroute-backend/models"
)

// Resolved quotes may be served stale relative to concurrent catalog edits;
// line items snapshot the resolved values at creation and never re-read them,
// so a short TTL cache is safe.
const quoteTTL = 30 * time.Second

type QuoteCache interface {
	Get(ctx context.Context, key string) (*Quote, bool, error)
	Set(ctx context.Context, key string, quote *Quote, ttl time.Duration) error
	// Invalidate drops every cached quote for the given party scope.
	Invalidate(ctx context.Context, prefix string) error
}

type NoopQuoteCache struct{}

func (NoopQuoteCache) Get(_ context.Context, _ string) (*Quote, bool, error) {
	return nil, false, nil
}

func (NoopQuoteCache) Set(_ context.Context, _ string, _ *Quote, _ time.Duration) error {
	return nil
}

func (NoopQuoteCache) Invalidate(_ context.Context, _ string) error {
	return nil
}

// cacheKey builds a stable key for a buyer/product pair. Unkeyed (nil party)
// lookups go through uncached.
func cacheKey(party *models.Party, productID string) (string, bool) {
	if party == nil {
		return "", false
	}
	return fmt.Sprintf("quote:%s:%d:%s", party.Type, party.Id, productID), true
}

// PartyPrefix is the invalidation prefix covering all of one party's quotes.
func PartyPrefix(partyType string, partyID uint) string {
	return fmt.Sprintf("quote:%s:%d:", partyType, partyID)
}
