package coinmarketcap

import (
	"context"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
)

const listingsFixture = `{
	"status": {"error_code": 0, "error_message": null},
	"data": [
		{
			"id": 1,
			"name": "Bitcoin",
			"symbol": "BTC",
			"cmc_rank": 1,
			"quote": {
				"USD": {
					"price": 40000.5,
					"volume_24h": 30000000000,
					"percent_change_1h": 0.1,
					"percent_change_24h": 2.5,
					"percent_change_7d": -1.2,
					"market_cap": 750000000000
				}
			}
		},
		{
			"id": 1027,
			"name": "Ethereum",
			"symbol": "ETH",
			"cmc_rank": 2,
			"quote": {
				"USD": {
					"price": 2500.25,
					"volume_24h": 15000000000,
					"percent_change_1h": 0.2,
					"percent_change_24h": 3.1,
					"percent_change_7d": 4.7,
					"market_cap": 290000000000
				}
			}
		}
	]
}`

func TestPriceSource_Prices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(
		func(writer http.ResponseWriter, request *http.Request) {
			if request.Header.Get("X-CMC_PRO_API_KEY") != "test-key" {
				t.Errorf("missing api key header")
			}

			_, _ = writer.Write([]byte(listingsFixture))
		},
	))
	defer server.Close()

	priceSource := NewPriceSource("test-key", 100)
	priceSource.baseURL = server.URL

	prices, err := priceSource.Prices(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if len(prices) != 2 {
		t.Fatalf(
			"unexpected prices count\n"+
				"expected: [%v]\n"+
				"actual:   [%v]",
			2,
			len(prices),
		)
	}

	btcPrice, exists := prices.PriceOf("btc")
	if !exists {
		t.Fatal("expected btc price in snapshot")
	}

	if btcPrice.Cmp(big.NewFloat(40000.5)) != 0 {
		t.Errorf(
			"unexpected btc price\n"+
				"expected: [%v]\n"+
				"actual:   [%v]",
			"40000.5",
			btcPrice.Text('f', -1),
		)
	}
}

func TestPriceSource_TopListings(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(
		func(writer http.ResponseWriter, request *http.Request) {
			_, _ = writer.Write([]byte(listingsFixture))
		},
	))
	defer server.Close()

	priceSource := NewPriceSource("test-key", 100)
	priceSource.baseURL = server.URL

	listings, err := priceSource.TopListings(context.Background(), 2)
	if err != nil {
		t.Fatal(err)
	}

	if len(listings) != 2 {
		t.Fatalf(
			"unexpected listings count\n"+
				"expected: [%v]\n"+
				"actual:   [%v]",
			2,
			len(listings),
		)
	}

	if listings[0].Symbol != "btc" {
		t.Errorf(
			"unexpected first listing\n"+
				"expected: [%v]\n"+
				"actual:   [%v]",
			"btc",
			listings[0].Symbol,
		)
	}

	if listings[0].PercentChange24h != 2.5 {
		t.Errorf(
			"unexpected 24h change\n"+
				"expected: [%v]\n"+
				"actual:   [%v]",
			2.5,
			listings[0].PercentChange24h,
		)
	}
}

func TestPriceSource_ApiError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(
		func(writer http.ResponseWriter, request *http.Request) {
			_, _ = writer.Write([]byte(`{
				"status": {
					"error_code": 1001,
					"error_message": "API key invalid"
				},
				"data": []
			}`))
		},
	))
	defer server.Close()

	priceSource := NewPriceSource("bad-key", 100)
	priceSource.baseURL = server.URL

	_, err := priceSource.Prices(context.Background())
	if err == nil {
		t.Errorf("expected an api error")
	}
}
