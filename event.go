package coinpit

import (
	"fmt"
	"math/big"
)

// Event is a user-facing notification produced by the engine. An empty
// AccountID marks a broadcast event addressed to the whole group.
type Event struct {
	AccountID string
	Payload   string
}

type EventService interface {
	Publish(event *Event)
}

func NewAlertEvent(account *Account, rule *Rule) *Event {
	payload := rule.Action.Message
	if payload == "" {
		payload = fmt.Sprintf("Condition %v has been met", rule.Condition)
	}

	return &Event{
		AccountID: account.ID,
		Payload:   payload,
	}
}

func NewTradeExecutedEvent(account *Account, trade *Trade) *Event {
	return &Event{
		AccountID: account.ID,
		Payload: fmt.Sprintf(
			"Trade executed: %v %v x %v at %v USD, "+
				"balance is now %v USD",
			trade.Side,
			trade.Ticker,
			trade.Quantity.Text('f', 6),
			trade.Price.Text('f', 2),
			account.Balance.Text('f', 2),
		),
	}
}

func NewRuleFailedEvent(account *Account, rule *Rule, err error) *Event {
	return &Event{
		AccountID: account.ID,
		Payload: fmt.Sprintf(
			"Execution of %v failed: %v",
			rule,
			err,
		),
	}
}

func NewPriceMoveEvent(ticker string, change *big.Float) *Event {
	direction := "UP"
	percent := new(big.Float).Mul(change, big.NewFloat(100))

	if change.Sign() < 0 {
		direction = "DOWN"
		percent.Abs(percent)
	}

	return &Event{
		Payload: fmt.Sprintf(
			"%v is %v %v%% since the last tick",
			ticker,
			direction,
			percent.Text('f', 1),
		),
	}
}
