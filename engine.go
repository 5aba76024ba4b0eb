package coinpit

import (
	"context"
	"fmt"
	"math/big"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Engine owns all mutations of account state: buy/sell execution,
// rule lifecycle and rule evaluation. Mutations of a single account are
// serialized with a per-account lock so that concurrent commands cannot
// lose updates during the read-modify-write against the store.
type Engine struct {
	group           string
	initialBalance  *big.Float
	store           Store
	priceSource     PriceSource
	tradeRepository TradeRepository
	eventService    EventService
	logger          Logger

	accountLocksMutex sync.Mutex
	accountLocks      map[string]*sync.Mutex
}

func NewEngine(
	group string,
	initialBalance *big.Float,
	store Store,
	priceSource PriceSource,
	tradeRepository TradeRepository,
	eventService EventService,
	logger Logger,
) *Engine {
	return &Engine{
		group:           group,
		initialBalance:  initialBalance,
		store:           store,
		priceSource:     priceSource,
		tradeRepository: tradeRepository,
		eventService:    eventService,
		logger:          logger,
		accountLocks:    make(map[string]*sync.Mutex),
	}
}

func (e *Engine) keyPrefix() string {
	return fmt.Sprintf("cryptoTrader.%v.", e.group)
}

func (e *Engine) key(accountID string) string {
	return e.keyPrefix() + accountID
}

func (e *Engine) lockAccount(accountID string) *sync.Mutex {
	e.accountLocksMutex.Lock()
	defer e.accountLocksMutex.Unlock()

	lock, exists := e.accountLocks[accountID]
	if !exists {
		lock = &sync.Mutex{}
		e.accountLocks[accountID] = lock
	}

	lock.Lock()

	return lock
}

// loadOrCreateAccount reads the account record, lazily creating it with
// the initial balance on first access. Caller must hold the account lock.
func (e *Engine) loadOrCreateAccount(accountID string) (*Account, error) {
	value, err := e.store.Get(e.key(accountID))
	if err != nil {
		return nil, fmt.Errorf(
			"could not read account [%v]: [%v]",
			accountID,
			err,
		)
	}

	if value == nil {
		account := NewAccount(accountID, e.initialBalance)

		if err := e.persistAccount(account); err != nil {
			return nil, err
		}

		return account, nil
	}

	return UnmarshalAccount(value)
}

func (e *Engine) persistAccount(account *Account) error {
	value, err := MarshalAccount(account)
	if err != nil {
		return fmt.Errorf(
			"could not marshal account [%v]: [%v]",
			account.ID,
			err,
		)
	}

	if err := e.store.Set(e.key(account.ID), value); err != nil {
		return fmt.Errorf(
			"could not persist account [%v]: [%v]",
			account.ID,
			err,
		)
	}

	return nil
}

func (e *Engine) CreateAccount(accountID string) (*Account, error) {
	lock := e.lockAccount(accountID)
	defer lock.Unlock()

	return e.loadOrCreateAccount(accountID)
}

func (e *Engine) DeleteAccount(accountID string) error {
	lock := e.lockAccount(accountID)
	defer lock.Unlock()

	if err := e.store.Delete(e.key(accountID)); err != nil {
		return fmt.Errorf(
			"could not delete account [%v]: [%v]",
			accountID,
			err,
		)
	}

	return nil
}

// Accounts returns all accounts of the engine's trading group. Records
// that fail to deserialize are logged and skipped so that one corrupted
// entry does not take down operations over the whole group.
func (e *Engine) Accounts() ([]*Account, error) {
	keys, err := e.store.Keys(e.keyPrefix())
	if err != nil {
		return nil, fmt.Errorf("could not list account keys: [%v]", err)
	}

	if len(keys) == 0 {
		return []*Account{}, nil
	}

	values, err := e.store.MGet(keys...)
	if err != nil {
		return nil, fmt.Errorf("could not read account records: [%v]", err)
	}

	accounts := make([]*Account, 0, len(values))

	for index, value := range values {
		if value == nil {
			continue
		}

		account, err := UnmarshalAccount(value)
		if err != nil {
			e.logger.Errorf(
				"skipping corrupted account record [%v]: [%v]",
				keys[index],
				err,
			)
			continue
		}

		accounts = append(accounts, account)
	}

	return accounts, nil
}

func (e *Engine) Buy(
	ctx context.Context,
	accountID string,
	ticker string,
	quantity QuantitySpec,
) (*Trade, error) {
	return e.trade(ctx, accountID, SideBuy, ticker, quantity)
}

func (e *Engine) Sell(
	ctx context.Context,
	accountID string,
	ticker string,
	quantity QuantitySpec,
) (*Trade, error) {
	return e.trade(ctx, accountID, SideSell, ticker, quantity)
}

func (e *Engine) trade(
	ctx context.Context,
	accountID string,
	side OrderSide,
	ticker string,
	quantity QuantitySpec,
) (*Trade, error) {
	prices, err := e.priceSource.Prices(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not get prices: [%v]", err)
	}

	lock := e.lockAccount(accountID)
	defer lock.Unlock()

	account, err := e.loadOrCreateAccount(accountID)
	if err != nil {
		return nil, err
	}

	trade, err := e.executeTrade(account, prices, side, ticker, quantity)
	if err != nil {
		return nil, err
	}

	if err := e.persistAccount(account); err != nil {
		return nil, err
	}

	e.journalTrade(trade)
	e.publish(NewTradeExecutedEvent(account, trade))

	return trade, nil
}

// executeTrade validates and applies a buy/sell against the in-memory
// account. It does not persist; callers persist once they are done with
// all mutations of the account.
func (e *Engine) executeTrade(
	account *Account,
	prices PriceSnapshot,
	side OrderSide,
	ticker string,
	quantitySpec QuantitySpec,
) (*Trade, error) {
	ticker = strings.ToLower(strings.TrimSpace(ticker))

	price, exists := prices.PriceOf(ticker)
	if !exists {
		return nil, &InvalidCoinError{Ticker: ticker}
	}

	var quantity, cost *big.Float

	switch side {
	case SideBuy:
		// Relative specs resolve in budget space so that "max" spends
		// exactly the balance instead of a rounded quantity's worth.
		if quantitySpec.IsRelative() {
			budget, err := quantitySpec.Resolve(account.Balance)
			if err != nil {
				return nil, err
			}

			cost = budget
			quantity = new(big.Float).Quo(budget, price)
		} else {
			resolved, err := quantitySpec.Resolve(account.Balance)
			if err != nil {
				return nil, err
			}

			quantity = resolved
			cost = new(big.Float).Mul(price, quantity)
		}

		if quantity.Sign() <= 0 {
			return nil, &InvalidQuantityError{Spec: quantitySpec}
		}

		if account.Balance.Cmp(cost) < 0 {
			return nil, &InsufficientFundsError{
				AccountID: account.ID,
				Cost:      cost,
				Balance:   account.Balance,
			}
		}

		holding := account.Holding(ticker)
		account.Portfolio[ticker] = new(big.Float).Add(holding, quantity)
		account.Balance = new(big.Float).Sub(account.Balance, cost)
	case SideSell:
		holding := account.Holding(ticker)

		resolved, err := quantitySpec.Resolve(holding)
		if err != nil {
			return nil, err
		}

		quantity = resolved
		cost = new(big.Float).Mul(price, quantity)

		if quantity.Sign() <= 0 {
			return nil, &InvalidQuantityError{Spec: quantitySpec}
		}

		if holding.Cmp(quantity) < 0 {
			return nil, &InsufficientCoinsError{
				AccountID: account.ID,
				Ticker:    ticker,
				Requested: quantity,
				Held:      holding,
			}
		}

		account.Portfolio[ticker] = new(big.Float).Sub(holding, quantity)
		account.Balance = new(big.Float).Add(account.Balance, cost)
	default:
		return nil, fmt.Errorf("unknown order side: [%v]", side)
	}

	return &Trade{
		ID:        uuid.New(),
		AccountID: account.ID,
		Side:      side,
		Ticker:    ticker,
		Quantity:  quantity,
		Price:     price,
		Total:     cost,
		Time:      time.Now(),
	}, nil
}

// journalTrade records an executed trade. The journal is auxiliary
// reporting state; a write failure must not undo an executed trade.
func (e *Engine) journalTrade(trade *Trade) {
	if e.tradeRepository == nil {
		return
	}

	if err := e.tradeRepository.CreateTrade(trade); err != nil {
		e.logger.Errorf(
			"could not journal trade [%v]: [%v]",
			trade.ID,
			err,
		)
	}
}

func (e *Engine) publish(event *Event) {
	if e.eventService == nil {
		return
	}

	e.eventService.Publish(event)
}

// AddRule validates and appends a conditional rule. Referenced coins
// must have a known price and the condition must not already hold,
// otherwise the rule would fire on the very next tick. Sufficiency of
// funds/coins is deliberately not checked here; it is re-checked at
// firing time since the market may move before then.
func (e *Engine) AddRule(
	ctx context.Context,
	accountID string,
	condition Condition,
	action Action,
) (*Rule, error) {
	condition.Coin = strings.ToLower(strings.TrimSpace(condition.Coin))
	action.Coin = strings.ToLower(strings.TrimSpace(action.Coin))

	if condition.Comparator != LessThan &&
		condition.Comparator != GreaterThan {
		return nil, &InvalidConditionError{
			Comparator: fmt.Sprintf("%d", condition.Comparator),
		}
	}

	prices, err := e.priceSource.Prices(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not get prices: [%v]", err)
	}

	if _, exists := prices.PriceOf(condition.Coin); !exists {
		return nil, &InvalidCoinError{Ticker: condition.Coin}
	}

	switch action.Type {
	case ActionAlert:
		// no further validation
	case ActionBuy, ActionSell:
		if _, exists := prices.PriceOf(action.Coin); !exists {
			return nil, &InvalidCoinError{Ticker: action.Coin}
		}

		if err := action.Quantity.Validate(); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown action type: [%v]", action.Type)
	}

	met, err := condition.Met(prices)
	if err != nil {
		return nil, err
	}

	if met {
		return nil, &InvalidAlertError{Condition: condition}
	}

	lock := e.lockAccount(accountID)
	defer lock.Unlock()

	account, err := e.loadOrCreateAccount(accountID)
	if err != nil {
		return nil, err
	}

	rule := &Rule{
		ID:        account.NextRuleID(),
		Condition: condition,
		Action:    action,
	}

	account.Rules = append(account.Rules, rule)

	if err := e.persistAccount(account); err != nil {
		return nil, err
	}

	return rule, nil
}

// DeleteRule removes the rule with the given id. Deleting an absent
// rule is a no-op.
func (e *Engine) DeleteRule(accountID string, ruleID int) error {
	lock := e.lockAccount(accountID)
	defer lock.Unlock()

	account, err := e.loadOrCreateAccount(accountID)
	if err != nil {
		return err
	}

	if !account.RemoveRule(ruleID) {
		return nil
	}

	return e.persistAccount(account)
}

func (e *Engine) Rules(accountID string) ([]*Rule, error) {
	lock := e.lockAccount(accountID)
	defer lock.Unlock()

	account, err := e.loadOrCreateAccount(accountID)
	if err != nil {
		return nil, err
	}

	return account.Rules, nil
}

type ExecutionOutcome int

const (
	OutcomeAlerted ExecutionOutcome = iota
	OutcomeTraded
	OutcomeFailed
)

func (eo ExecutionOutcome) String() string {
	switch eo {
	case OutcomeAlerted:
		return "ALERTED"
	case OutcomeTraded:
		return "TRADED"
	case OutcomeFailed:
		return "FAILED"
	default:
		panic("unknown execution outcome")
	}
}

type ExecutionResult struct {
	Rule    *Rule
	Outcome ExecutionOutcome
	Err     error
}

// EvaluateAndExecute evaluates all rules of the account, in list order,
// against the given snapshot. Rules whose action succeeds are removed
// and do not re-arm; rules whose action fails stay in place and are
// retried on the next pass, without blocking sibling rules. A missing
// price for a condition coin aborts the pass for this account and is
// surfaced to the caller.
func (e *Engine) EvaluateAndExecute(
	ctx context.Context,
	accountID string,
	prices PriceSnapshot,
) ([]*ExecutionResult, error) {
	lock := e.lockAccount(accountID)
	defer lock.Unlock()

	value, err := e.store.Get(e.key(accountID))
	if err != nil {
		return nil, fmt.Errorf(
			"could not read account [%v]: [%v]",
			accountID,
			err,
		)
	}

	if value == nil {
		return nil, nil
	}

	account, err := UnmarshalAccount(value)
	if err != nil {
		return nil, err
	}

	results := make([]*ExecutionResult, 0)
	fired := make([]int, 0)

	var evaluationErr error

	for _, rule := range account.Rules {
		met, err := rule.Condition.Met(prices)
		if err != nil {
			evaluationErr = fmt.Errorf(
				"could not evaluate rule [%v] of account [%v]: [%v]",
				rule.ID,
				accountID,
				err,
			)
			break
		}

		if !met {
			e.logger.Debugf(
				"rule of account [%v] not met: %v",
				accountID,
				rule,
			)
			continue
		}

		e.logger.Infof(
			"rule of account [%v] triggered: %v",
			accountID,
			rule,
		)

		switch rule.Action.Type {
		case ActionAlert:
			e.publish(NewAlertEvent(account, rule))

			results = append(results, &ExecutionResult{
				Rule:    rule,
				Outcome: OutcomeAlerted,
			})
			fired = append(fired, rule.ID)
		case ActionBuy, ActionSell:
			side := SideBuy
			if rule.Action.Type == ActionSell {
				side = SideSell
			}

			trade, err := e.executeTrade(
				account,
				prices,
				side,
				rule.Action.Coin,
				rule.Action.Quantity,
			)
			if err != nil {
				e.logger.Warningf(
					"execution of rule [%v] of account [%v] "+
						"failed: [%v]",
					rule.ID,
					accountID,
					err,
				)
				e.publish(NewRuleFailedEvent(account, rule, err))

				results = append(results, &ExecutionResult{
					Rule:    rule,
					Outcome: OutcomeFailed,
					Err:     err,
				})
				continue
			}

			e.journalTrade(trade)
			e.publish(NewTradeExecutedEvent(account, trade))

			results = append(results, &ExecutionResult{
				Rule:    rule,
				Outcome: OutcomeTraded,
			})
			fired = append(fired, rule.ID)
		}
	}

	for _, ruleID := range fired {
		account.RemoveRule(ruleID)
	}

	// Single batch persist for the whole pass, covering both the trade
	// mutations and the rule list changes.
	if err := e.persistAccount(account); err != nil {
		return results, err
	}

	return results, evaluationErr
}

type AccountStatus struct {
	AccountID      string
	Balance        *big.Float
	Portfolio      map[string]*big.Float
	PortfolioValue *big.Float
	TotalValue     *big.Float
}

func (e *Engine) Status(
	ctx context.Context,
	accountID string,
) (*AccountStatus, error) {
	prices, err := e.priceSource.Prices(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not get prices: [%v]", err)
	}

	lock := e.lockAccount(accountID)
	defer lock.Unlock()

	account, err := e.loadOrCreateAccount(accountID)
	if err != nil {
		return nil, err
	}

	portfolioValue, err := account.PortfolioValue(prices)
	if err != nil {
		return nil, fmt.Errorf(
			"could not value portfolio of account [%v]: [%v]",
			accountID,
			err,
		)
	}

	return &AccountStatus{
		AccountID:      account.ID,
		Balance:        account.Balance,
		Portfolio:      account.DisplayPortfolio(),
		PortfolioValue: portfolioValue,
		TotalValue:     new(big.Float).Add(account.Balance, portfolioValue),
	}, nil
}

// maxTopCoins caps the top coins query regardless of what the caller
// asks for, to keep chat output readable.
const maxTopCoins = 25

// TopCoins returns the top market listings, at most maxTopCoins of them.
func (e *Engine) TopCoins(ctx context.Context, limit int) ([]*Listing, error) {
	if limit <= 0 || limit > maxTopCoins {
		limit = maxTopCoins
	}

	listings, err := e.priceSource.TopListings(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("could not get top listings: [%v]", err)
	}

	return listings, nil
}

type LeaderboardEntry struct {
	AccountID  string
	Portfolio  map[string]*big.Float
	CoinsValue *big.Float
	Cash       *big.Float
	Total      *big.Float
}

// Leaderboard values every account of the group against one snapshot
// and returns entries sorted descending by total value.
func (e *Engine) Leaderboard(ctx context.Context) ([]*LeaderboardEntry, error) {
	prices, err := e.priceSource.Prices(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not get prices: [%v]", err)
	}

	accounts, err := e.Accounts()
	if err != nil {
		return nil, err
	}

	entries := make([]*LeaderboardEntry, 0, len(accounts))

	for _, account := range accounts {
		coinsValue, err := account.PortfolioValue(prices)
		if err != nil {
			e.logger.Errorf(
				"skipping account [%v] on leaderboard: [%v]",
				account.ID,
				err,
			)
			continue
		}

		entries = append(entries, &LeaderboardEntry{
			AccountID:  account.ID,
			Portfolio:  account.DisplayPortfolio(),
			CoinsValue: coinsValue,
			Cash:       account.Balance,
			Total:      new(big.Float).Add(account.Balance, coinsValue),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Total.Cmp(entries[j].Total) > 0
	})

	return entries, nil
}
