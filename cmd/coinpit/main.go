package main

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"syscall"

	"github.com/xybotsu/coinpit"
	"github.com/xybotsu/coinpit/binance"
	"github.com/xybotsu/coinpit/coinmarketcap"
	"github.com/xybotsu/coinpit/daemon"
	"github.com/xybotsu/coinpit/inmem"
	"github.com/xybotsu/coinpit/logrus"
	"github.com/xybotsu/coinpit/postgres"
	"github.com/xybotsu/coinpit/pubsub"
)

func main() {
	ctx, cancelCtx := context.WithCancel(context.Background())
	defer cancelCtx()

	go handleSignals(cancelCtx)

	config, err := readConfig()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "could not read config: [%v]", err)
		os.Exit(1)
	}

	logger := logrus.ConfigureStandardLogger(
		config.Logging.Format,
		config.Logging.Level,
	)

	postgresClient, err := connectPostgres(ctx, logger, &config.Database)
	if err != nil {
		logger.Fatalf("could not connect postgres: [%v]", err)
	}

	priceSource, err := createPriceSource(&config.PriceSource)
	if err != nil {
		logger.Fatalf("could not create price source: [%v]", err)
	}

	eventService, err := createEventService(ctx, logger, &config.PubSub)
	if err != nil {
		logger.Fatalf("could not create event service: [%v]", err)
	}

	engine := coinpit.NewEngine(
		config.Trading.Group,
		big.NewFloat(config.Trading.InitialBalance),
		postgres.NewStore(postgresClient),
		priceSource,
		postgres.NewTradeRepository(postgresClient),
		eventService,
		logger,
	)

	daemon.RunEvaluator(
		ctx,
		logger,
		engine,
		priceSource,
		eventService,
		config.Trading.EvalInterval,
	)

	<-ctx.Done()
}

func handleSignals(cancelCtx context.CancelFunc) {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	<-signals

	cancelCtx()
}

func connectPostgres(
	ctx context.Context,
	logger coinpit.Logger,
	config *Database,
) (*postgres.Client, error) {
	if err := postgres.RunMigration(
		logger,
		(*postgres.Config)(config),
	); err != nil {
		return nil, fmt.Errorf(
			"could not run postgres migration: [%v]",
			err,
		)
	}

	client, err := postgres.NewClient(
		ctx,
		logger,
		(*postgres.Config)(config),
	)
	if err != nil {
		return nil, fmt.Errorf(
			"could not create postgres client: [%v]",
			err,
		)
	}

	return client, nil
}

func createPriceSource(config *PriceSource) (coinpit.PriceSource, error) {
	var source coinpit.PriceSource

	switch config.Provider {
	case "binance":
		source = binance.NewPriceSource(
			config.Binance.ApiKey,
			config.Binance.SecretKey,
			config.Binance.QuoteAsset,
		)
	case "coinmarketcap":
		source = coinmarketcap.NewPriceSource(
			config.CoinMarketCap.ApiKey,
			config.CoinMarketCap.ListingLimit,
		)
	default:
		return nil, fmt.Errorf(
			"unknown price source provider: [%v]",
			config.Provider,
		)
	}

	if config.CacheTTL > 0 {
		source = inmem.NewPriceCache(source, config.CacheTTL)
	}

	return source, nil
}

func createEventService(
	ctx context.Context,
	logger coinpit.Logger,
	config *PubSub,
) (coinpit.EventService, error) {
	if !config.Enabled {
		logger.Infof("pubsub disabled; events will be logged only")
		return &loggingEventService{logger}, nil
	}

	pubsubClient, err := pubsub.NewClient(
		ctx,
		config.ProjectID,
		config.NotificationsTopic,
	)
	if err != nil {
		return nil, fmt.Errorf(
			"could not create pubsub client: [%v]",
			err,
		)
	}

	return pubsub.NewEventService(pubsubClient, logger), nil
}

type loggingEventService struct {
	logger coinpit.Logger
}

func (les *loggingEventService) Publish(event *coinpit.Event) {
	les.logger.WithField("account", event.AccountID).
		Infof("event: %v", event.Payload)
}
