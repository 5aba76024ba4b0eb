package main

import (
	"time"

	"github.com/sherifabdlnaby/configuro"
)

// Config values can be set using either environment variables with `CONFIG_`
// prefix or config.yml file placed in working directory.
// See https://github.com/sherifabdlnaby/configuro.
type Config struct {
	Logging     Logging
	Database    Database
	PriceSource PriceSource
	Trading     Trading
	PubSub      PubSub
}

type Logging struct {
	Level  string
	Format string
}

type Database struct {
	Address      string
	User         string
	Password     string
	Name         string
	SSLMode      string
	MigrationDir string
}

type PriceSource struct {
	// Provider selects the upstream market data source. Supported
	// values are "binance" and "coinmarketcap".
	Provider      string
	CacheTTL      time.Duration
	Binance       Binance
	CoinMarketCap CoinMarketCap
}

type Binance struct {
	ApiKey     string
	SecretKey  string
	QuoteAsset string
}

type CoinMarketCap struct {
	ApiKey       string
	ListingLimit int
}

type Trading struct {
	Group          string
	InitialBalance float64
	EvalInterval   time.Duration
}

type PubSub struct {
	Enabled            bool
	ProjectID          string
	NotificationsTopic string
}

func readConfig() (*Config, error) {
	loader, err := configuro.NewConfig()
	if err != nil {
		return nil, err
	}

	// Default config values.
	config := &Config{
		Logging: Logging{
			Level: "info",
		},
		Database: Database{
			Address:      "localhost:5432",
			User:         "postgres",
			Password:     "postgres",
			Name:         "postgres",
			SSLMode:      "disabled",
			MigrationDir: "./database/migrations",
		},
		PriceSource: PriceSource{
			Provider: "binance",
			CacheTTL: 1 * time.Minute,
		},
		Trading: Trading{
			Group:          "default",
			InitialBalance: 100000,
			EvalInterval:   30 * time.Minute,
		},
	}

	err = loader.Load(config)
	if err != nil {
		return nil, err
	}

	err = loader.Validate(config)
	if err != nil {
		return nil, err
	}

	return config, nil
}
