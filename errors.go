package coinpit

import (
	"fmt"
	"math/big"
)

// Business errors are returned as typed values so that callers can
// match them with errors.As and report a descriptive message instead
// of a raw failure. None of them is fatal for the process.

type InvalidCoinError struct {
	Ticker string
}

func (e *InvalidCoinError) Error() string {
	return fmt.Sprintf("no known price for coin [%v]", e.Ticker)
}

type InvalidQuantityError struct {
	Spec QuantitySpec
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf(
		"invalid quantity [%v]: expected a positive number, "+
			"a percentage, or one of: max, all, half",
		e.Spec,
	)
}

type InsufficientFundsError struct {
	AccountID string
	Cost      *big.Float
	Balance   *big.Float
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf(
		"%v is out of dough: needs [%v] but has [%v]",
		e.AccountID,
		e.Cost.Text('f', 2),
		e.Balance.Text('f', 2),
	)
}

type InsufficientCoinsError struct {
	AccountID string
	Ticker    string
	Requested *big.Float
	Held      *big.Float
}

func (e *InsufficientCoinsError) Error() string {
	return fmt.Sprintf(
		"%v does not have [%v] x [%v] to sell, holds only [%v]",
		e.AccountID,
		e.Ticker,
		e.Requested.Text('f', 6),
		e.Held.Text('f', 6),
	)
}

type InvalidConditionError struct {
	Comparator string
}

func (e *InvalidConditionError) Error() string {
	return fmt.Sprintf(
		"invalid condition comparator [%v]: expected < or >",
		e.Comparator,
	)
}

// InvalidAlertError rejects a rule whose condition already holds at
// creation time. Such a rule would trigger itself on the next tick.
type InvalidAlertError struct {
	Condition Condition
}

func (e *InvalidAlertError) Error() string {
	return fmt.Sprintf(
		"condition [%v] is already true; rule would fire immediately",
		e.Condition,
	)
}
