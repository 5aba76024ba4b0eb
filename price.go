package coinpit

import (
	"context"
	"math/big"
	"strings"
)

// PriceSnapshot maps a lower-cased ticker symbol to its current USD price.
type PriceSnapshot map[string]*big.Float

func (ps PriceSnapshot) PriceOf(ticker string) (*big.Float, bool) {
	price, exists := ps[strings.ToLower(ticker)]
	return price, exists
}

type Listing struct {
	Symbol           string
	Price            *big.Float
	Volume24h        *big.Float
	MarketCap        *big.Float
	PercentChange1h  float64
	PercentChange24h float64
	PercentChange7d  float64
}

// PriceSource supplies market prices. Staleness and caching are the
// source's concern; callers only rely on a single consistent snapshot
// per call.
type PriceSource interface {
	Prices(ctx context.Context) (PriceSnapshot, error)

	TopListings(ctx context.Context, limit int) ([]*Listing, error)
}
