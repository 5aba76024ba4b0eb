package daemon

import (
	"context"
	"math/big"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/xybotsu/coinpit"
)

// priceMoveThreshold is the relative price change between two
// consecutive ticks that triggers a broadcast notification.
const priceMoveThreshold = 0.1

// Engine is the part of the trading engine the evaluator drives.
type Engine interface {
	Accounts() ([]*coinpit.Account, error)

	EvaluateAndExecute(
		ctx context.Context,
		accountID string,
		prices coinpit.PriceSnapshot,
	) ([]*coinpit.ExecutionResult, error)
}

// Evaluator periodically re-evaluates the rules of all known accounts.
// Each tick takes one price snapshot and evaluates every account against
// it, so that all accounts see consistent prices within a tick. The
// evaluator holds no durable state; accounts own everything that matters.
type Evaluator struct {
	engine       Engine
	priceSource  coinpit.PriceSource
	eventService coinpit.EventService
	logger       coinpit.Logger
	interval     time.Duration

	lastPrices coinpit.PriceSnapshot
}

func RunEvaluator(
	ctx context.Context,
	logger coinpit.Logger,
	engine Engine,
	priceSource coinpit.PriceSource,
	eventService coinpit.EventService,
	interval time.Duration,
) *Evaluator {
	evaluator := &Evaluator{
		engine:       engine,
		priceSource:  priceSource,
		eventService: eventService,
		logger:       logger,
		interval:     interval,
	}

	go evaluator.loop(ctx)

	return evaluator
}

func (e *Evaluator) loop(ctx context.Context) {
	// Evaluate once right away; the first ticker fire is an interval away.
	if err := e.EvaluateAll(ctx); err != nil {
		e.logger.Errorf("evaluation pass failed: [%v]", err)
	}

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := e.EvaluateAll(ctx); err != nil {
				e.logger.Errorf("evaluation pass failed: [%v]", err)
			}
		case <-ctx.Done():
			e.logger.Infof("terminating evaluator")
			return
		}
	}
}

// EvaluateAll performs one evaluation pass: a single fresh price
// snapshot, shared across all accounts. A failing account is logged
// and does not block evaluation of the remaining accounts.
func (e *Evaluator) EvaluateAll(ctx context.Context) error {
	prices, err := e.priceSource.Prices(ctx)
	if err != nil {
		return err
	}

	e.notifyPriceMoves(prices)

	accounts, err := e.engine.Accounts()
	if err != nil {
		return err
	}

	e.logger.Debugf("evaluating [%v] accounts", len(accounts))

	group, groupCtx := errgroup.WithContext(ctx)

	for _, account := range accounts {
		accountID := account.ID

		group.Go(func() error {
			results, err := e.engine.EvaluateAndExecute(
				groupCtx,
				accountID,
				prices,
			)

			for _, result := range results {
				e.logger.Infof(
					"account [%v] rule %v: %v",
					accountID,
					result.Rule,
					result.Outcome,
				)
			}

			if err != nil {
				e.logger.Errorf(
					"could not evaluate account [%v]: [%v]",
					accountID,
					err,
				)
			}

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return err
	}

	return nil
}

// notifyPriceMoves publishes a broadcast event for every ticker that
// moved more than the threshold since the previous tick.
func (e *Evaluator) notifyPriceMoves(prices coinpit.PriceSnapshot) {
	defer func() {
		e.lastPrices = prices
	}()

	if e.lastPrices == nil || e.eventService == nil {
		return
	}

	threshold := big.NewFloat(priceMoveThreshold)

	for ticker, price := range prices {
		oldPrice, exists := e.lastPrices[ticker]
		if !exists || oldPrice.Sign() == 0 {
			continue
		}

		change := new(big.Float).Sub(
			new(big.Float).Quo(price, oldPrice),
			big.NewFloat(1),
		)

		if new(big.Float).Abs(change).Cmp(threshold) >= 0 {
			e.eventService.Publish(
				coinpit.NewPriceMoveEvent(ticker, change),
			)
		}
	}
}
