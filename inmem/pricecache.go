package inmem

import (
	"context"
	"sync"
	"time"

	"github.com/xybotsu/coinpit"
)

// PriceCache decorates a price source with a TTL cache. The upstream
// API is rate-limited, so all engine operations and evaluator ticks
// within the TTL share one upstream call.
type PriceCache struct {
	source coinpit.PriceSource
	ttl    time.Duration
	clock  func() time.Time

	cacheMutex sync.Mutex

	prices          coinpit.PriceSnapshot
	pricesFetchedAt time.Time

	listings          []*coinpit.Listing
	listingsLimit     int
	listingsFetchedAt time.Time
}

func NewPriceCache(
	source coinpit.PriceSource,
	ttl time.Duration,
) *PriceCache {
	return &PriceCache{
		source: source,
		ttl:    ttl,
		clock:  time.Now,
	}
}

func (pc *PriceCache) Prices(
	ctx context.Context,
) (coinpit.PriceSnapshot, error) {
	pc.cacheMutex.Lock()
	defer pc.cacheMutex.Unlock()

	now := pc.clock()

	if pc.prices != nil && now.Sub(pc.pricesFetchedAt) < pc.ttl {
		return pc.prices, nil
	}

	prices, err := pc.source.Prices(ctx)
	if err != nil {
		return nil, err
	}

	pc.prices = prices
	pc.pricesFetchedAt = now

	return prices, nil
}

func (pc *PriceCache) TopListings(
	ctx context.Context,
	limit int,
) ([]*coinpit.Listing, error) {
	pc.cacheMutex.Lock()
	defer pc.cacheMutex.Unlock()

	now := pc.clock()

	cacheValid := pc.listings != nil &&
		pc.listingsLimit >= limit &&
		now.Sub(pc.listingsFetchedAt) < pc.ttl

	if cacheValid {
		if len(pc.listings) > limit {
			return pc.listings[:limit], nil
		}

		return pc.listings, nil
	}

	listings, err := pc.source.TopListings(ctx, limit)
	if err != nil {
		return nil, err
	}

	pc.listings = listings
	pc.listingsLimit = limit
	pc.listingsFetchedAt = now

	return listings, nil
}
