package coinmarketcap

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/xybotsu/coinpit"
)

const (
	defaultBaseURL      = "https://pro-api.coinmarketcap.com"
	listingsPath        = "/v1/cryptocurrency/listings/latest"
	defaultListingLimit = 100
	requestTimeout      = 1 * time.Minute
)

// PriceSource reads listings from the CoinMarketCap pro API. One
// listings call backs both Prices and TopListings; the API is heavily
// rate-limited, so this source is meant to sit behind a cache.
type PriceSource struct {
	apiKey       string
	baseURL      string
	listingLimit int
	httpClient   *http.Client
}

func NewPriceSource(apiKey string, listingLimit int) *PriceSource {
	if listingLimit <= 0 {
		listingLimit = defaultListingLimit
	}

	return &PriceSource{
		apiKey:       apiKey,
		baseURL:      defaultBaseURL,
		listingLimit: listingLimit,
		httpClient:   &http.Client{Timeout: requestTimeout},
	}
}

func (ps *PriceSource) Prices(
	ctx context.Context,
) (coinpit.PriceSnapshot, error) {
	listings, err := ps.fetchListings(ctx, ps.listingLimit)
	if err != nil {
		return nil, err
	}

	snapshot := make(coinpit.PriceSnapshot)

	for _, listing := range listings {
		quote, exists := listing.Quote["USD"]
		if !exists {
			continue
		}

		snapshot[strings.ToLower(listing.Symbol)] =
			big.NewFloat(quote.Price)
	}

	return snapshot, nil
}

func (ps *PriceSource) TopListings(
	ctx context.Context,
	limit int,
) ([]*coinpit.Listing, error) {
	listings, err := ps.fetchListings(ctx, limit)
	if err != nil {
		return nil, err
	}

	result := make([]*coinpit.Listing, 0, len(listings))

	for _, listing := range listings {
		quote, exists := listing.Quote["USD"]
		if !exists {
			continue
		}

		result = append(result, &coinpit.Listing{
			Symbol:           strings.ToLower(listing.Symbol),
			Price:            big.NewFloat(quote.Price),
			Volume24h:        big.NewFloat(quote.Volume24h),
			MarketCap:        big.NewFloat(quote.MarketCap),
			PercentChange1h:  quote.PercentChange1h,
			PercentChange24h: quote.PercentChange24h,
			PercentChange7d:  quote.PercentChange7d,
		})
	}

	return result, nil
}

func (ps *PriceSource) fetchListings(
	ctx context.Context,
	limit int,
) ([]listing, error) {
	requestCtx, cancelRequestCtx := context.WithTimeout(ctx, requestTimeout)
	defer cancelRequestCtx()

	url := fmt.Sprintf(
		"%s%s?limit=%d&convert=USD",
		ps.baseURL,
		listingsPath,
		limit,
	)

	request, err := http.NewRequestWithContext(
		requestCtx,
		http.MethodGet,
		url,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("could not create request: [%v]", err)
	}

	request.Header.Set("X-CMC_PRO_API_KEY", ps.apiKey)
	request.Header.Set("Accept", "application/json")

	response, err := ps.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("could not perform request: [%v]", err)
	}
	defer func() {
		_ = response.Body.Close()
	}()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf(
			"unexpected response status: [%v]",
			response.Status,
		)
	}

	var listingsResponse listingsResponse

	decoder := json.NewDecoder(response.Body)
	if err := decoder.Decode(&listingsResponse); err != nil {
		return nil, fmt.Errorf("could not decode response: [%v]", err)
	}

	if listingsResponse.Status.ErrorCode != 0 {
		return nil, fmt.Errorf(
			"api error [%v]: [%v]",
			listingsResponse.Status.ErrorCode,
			listingsResponse.Status.ErrorMessage,
		)
	}

	return listingsResponse.Data, nil
}

type listingsResponse struct {
	Status status    `json:"status"`
	Data   []listing `json:"data"`
}

type status struct {
	ErrorCode    int    `json:"error_code"`
	ErrorMessage string `json:"error_message"`
}

type listing struct {
	ID     int              `json:"id"`
	Name   string           `json:"name"`
	Symbol string           `json:"symbol"`
	Rank   int              `json:"cmc_rank"`
	Quote  map[string]quote `json:"quote"`
}

type quote struct {
	Price            float64 `json:"price"`
	Volume24h        float64 `json:"volume_24h"`
	PercentChange1h  float64 `json:"percent_change_1h"`
	PercentChange24h float64 `json:"percent_change_24h"`
	PercentChange7d  float64 `json:"percent_change_7d"`
	MarketCap        float64 `json:"market_cap"`
}
