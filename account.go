package coinpit

import (
	"fmt"
	"math/big"
)

// Store is a namespaced key-value persistence backend for account records.
// It holds no business logic; accounts are mutated exclusively through the
// Engine and written back as opaque serialized records.
type Store interface {
	// Get returns the value stored under the key, or nil when absent.
	Get(key string) ([]byte, error)

	Set(key string, value []byte) error

	Delete(key string) error

	Keys(prefix string) ([]string, error)

	// MGet returns values in the order of the requested keys,
	// with nil entries for absent keys.
	MGet(keys ...string) ([][]byte, error)
}

type Account struct {
	ID        string
	Balance   *big.Float
	Portfolio map[string]*big.Float
	Rules     []*Rule
}

func NewAccount(id string, initialBalance *big.Float) *Account {
	return &Account{
		ID:        id,
		Balance:   new(big.Float).Copy(initialBalance),
		Portfolio: make(map[string]*big.Float),
	}
}

// Holding returns the held quantity of the given ticker, zero when the
// ticker is not part of the portfolio.
func (a *Account) Holding(ticker string) *big.Float {
	if quantity, exists := a.Portfolio[ticker]; exists {
		return quantity
	}

	return big.NewFloat(0)
}

// DisplayPortfolio filters out entries with zero quantity.
func (a *Account) DisplayPortfolio() map[string]*big.Float {
	portfolio := make(map[string]*big.Float)

	for ticker, quantity := range a.Portfolio {
		if quantity.Sign() != 0 {
			portfolio[ticker] = quantity
		}
	}

	return portfolio
}

// PortfolioValue sums the value of all holdings against the given snapshot.
func (a *Account) PortfolioValue(prices PriceSnapshot) (*big.Float, error) {
	value := new(big.Float)

	for ticker, quantity := range a.Portfolio {
		price, exists := prices.PriceOf(ticker)
		if !exists {
			return nil, fmt.Errorf(
				"no price for portfolio ticker: [%v]",
				ticker,
			)
		}

		value.Add(value, new(big.Float).Mul(price, quantity))
	}

	return value, nil
}

// NextRuleID returns max(existing ids) + 1, starting at 1.
func (a *Account) NextRuleID() int {
	nextID := 1

	for _, rule := range a.Rules {
		if rule.ID >= nextID {
			nextID = rule.ID + 1
		}
	}

	return nextID
}

func (a *Account) Rule(id int) (*Rule, bool) {
	for _, rule := range a.Rules {
		if rule.ID == id {
			return rule, true
		}
	}

	return nil, false
}

// RemoveRule removes the rule with the given id and reports whether
// it was present.
func (a *Account) RemoveRule(id int) bool {
	for index, rule := range a.Rules {
		if rule.ID == id {
			a.Rules = append(a.Rules[:index], a.Rules[index+1:]...)
			return true
		}
	}

	return false
}
