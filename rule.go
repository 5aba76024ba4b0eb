package coinpit

import (
	"fmt"
	"math/big"
)

type Comparator int

const (
	LessThan Comparator = iota
	GreaterThan
)

func ParseComparator(value string) (Comparator, error) {
	switch value {
	case "<":
		return LessThan, nil
	case ">":
		return GreaterThan, nil
	}

	return -1, &InvalidConditionError{Comparator: value}
}

func (c Comparator) String() string {
	switch c {
	case LessThan:
		return "<"
	case GreaterThan:
		return ">"
	default:
		panic("unknown comparator")
	}
}

type Condition struct {
	Coin       string
	Comparator Comparator
	Threshold  *big.Float
}

// Met evaluates the condition against the snapshot. A missing price for
// the condition's coin is a data error and is surfaced, not skipped.
func (c Condition) Met(prices PriceSnapshot) (bool, error) {
	price, exists := prices.PriceOf(c.Coin)
	if !exists {
		return false, fmt.Errorf(
			"no price in snapshot for condition coin: [%v]",
			c.Coin,
		)
	}

	switch c.Comparator {
	case LessThan:
		return price.Cmp(c.Threshold) < 0, nil
	case GreaterThan:
		return price.Cmp(c.Threshold) > 0, nil
	default:
		return false, &InvalidConditionError{
			Comparator: fmt.Sprintf("%d", c.Comparator),
		}
	}
}

func (c Condition) String() string {
	return fmt.Sprintf(
		"%v %v %v",
		c.Coin,
		c.Comparator,
		c.Threshold.Text('f', -1),
	)
}

type ActionType int

const (
	ActionAlert ActionType = iota
	ActionBuy
	ActionSell
)

func ParseActionType(value string) (ActionType, error) {
	switch value {
	case "alert":
		return ActionAlert, nil
	case "buy":
		return ActionBuy, nil
	case "sell":
		return ActionSell, nil
	}

	return -1, fmt.Errorf("unknown action type: [%v]", value)
}

func (at ActionType) String() string {
	switch at {
	case ActionAlert:
		return "alert"
	case ActionBuy:
		return "buy"
	case ActionSell:
		return "sell"
	default:
		panic("unknown action type")
	}
}

// Action is a closed union of the three rule outcomes. Type selects the
// variant; Message applies to alerts, Coin and Quantity to trades.
type Action struct {
	Type     ActionType
	Message  string
	Coin     string
	Quantity QuantitySpec
}

func NewAlertAction(message string) Action {
	return Action{Type: ActionAlert, Message: message}
}

func NewBuyAction(coin string, quantity QuantitySpec) Action {
	return Action{Type: ActionBuy, Coin: coin, Quantity: quantity}
}

func NewSellAction(coin string, quantity QuantitySpec) Action {
	return Action{Type: ActionSell, Coin: coin, Quantity: quantity}
}

func (a Action) String() string {
	switch a.Type {
	case ActionAlert:
		return "alert"
	case ActionBuy, ActionSell:
		return fmt.Sprintf("%v %v %v", a.Type, a.Coin, a.Quantity)
	default:
		panic("unknown action type")
	}
}

// Rule is a stored condition-action pair ("if"). It fires at most once:
// once the action succeeds the rule is removed and does not re-arm.
type Rule struct {
	ID        int
	Condition Condition
	Action    Action
}

func (r *Rule) String() string {
	return fmt.Sprintf("[%v] if %v then %v", r.ID, r.Condition, r.Action)
}
