package binance

import (
	"context"
	"fmt"
	"math/big"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/adshao/go-binance"

	"github.com/xybotsu/coinpit"
)

const requestTimeout = 1 * time.Minute

// PriceSource reads spot prices from binance. Tickers are derived from
// the symbols of the configured quote asset: with quote asset USDT, the
// BTCUSDT symbol becomes the "btc" ticker.
type PriceSource struct {
	client     *binance.Client
	quoteAsset string
}

func NewPriceSource(apiKey, secretKey, quoteAsset string) *PriceSource {
	if quoteAsset == "" {
		quoteAsset = "USDT"
	}

	return &PriceSource{
		client:     binance.NewClient(apiKey, secretKey),
		quoteAsset: strings.ToUpper(quoteAsset),
	}
}

func (ps *PriceSource) Prices(
	ctx context.Context,
) (coinpit.PriceSnapshot, error) {
	requestCtx, cancelRequestCtx := context.WithTimeout(ctx, requestTimeout)
	defer cancelRequestCtx()

	symbolPrices, err := ps.client.NewListPricesService().Do(requestCtx)
	if err != nil {
		return nil, err
	}

	snapshot := make(coinpit.PriceSnapshot)

	for _, symbolPrice := range symbolPrices {
		ticker, ok := ps.ticker(symbolPrice.Symbol)
		if !ok {
			continue
		}

		price, ok := new(big.Float).SetString(symbolPrice.Price)
		if !ok {
			return nil, fmt.Errorf(
				"could not parse price for symbol [%v]: [%v]",
				symbolPrice.Symbol,
				symbolPrice.Price,
			)
		}

		snapshot[ticker] = price
	}

	return snapshot, nil
}

// TopListings returns the highest-volume listings of the quote asset's
// market. Binance exposes 24h statistics only; the 1h/7d change and
// market cap fields stay zero.
func (ps *PriceSource) TopListings(
	ctx context.Context,
	limit int,
) ([]*coinpit.Listing, error) {
	requestCtx, cancelRequestCtx := context.WithTimeout(ctx, requestTimeout)
	defer cancelRequestCtx()

	stats, err := ps.client.NewListPriceChangeStatsService().Do(requestCtx)
	if err != nil {
		return nil, err
	}

	listings := make([]*coinpit.Listing, 0)

	for _, stat := range stats {
		ticker, ok := ps.ticker(stat.Symbol)
		if !ok {
			continue
		}

		price, ok := new(big.Float).SetString(stat.LastPrice)
		if !ok {
			continue
		}

		volume, ok := new(big.Float).SetString(stat.QuoteVolume)
		if !ok {
			continue
		}

		percentChange24h, err := strconv.ParseFloat(
			stat.PriceChangePercent, 64,
		)
		if err != nil {
			continue
		}

		listings = append(listings, &coinpit.Listing{
			Symbol:           ticker,
			Price:            price,
			Volume24h:        volume,
			MarketCap:        big.NewFloat(0),
			PercentChange24h: percentChange24h,
		})
	}

	sort.SliceStable(listings, func(i, j int) bool {
		return listings[i].Volume24h.Cmp(listings[j].Volume24h) > 0
	})

	if len(listings) > limit {
		listings = listings[:limit]
	}

	return listings, nil
}

func (ps *PriceSource) ticker(symbol string) (string, bool) {
	if !strings.HasSuffix(symbol, ps.quoteAsset) {
		return "", false
	}

	base := strings.TrimSuffix(symbol, ps.quoteAsset)
	if base == "" {
		return "", false
	}

	return strings.ToLower(base), true
}
