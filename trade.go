package coinpit

import (
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
)

type OrderSide int

const (
	SideBuy OrderSide = iota
	SideSell
)

func ParseOrderSide(value string) (OrderSide, error) {
	switch value {
	case "BUY":
		return SideBuy, nil
	case "SELL":
		return SideSell, nil
	}

	return -1, fmt.Errorf("unknown order side: [%v]", value)
}

func (os OrderSide) String() string {
	switch os {
	case SideBuy:
		return "BUY"
	case SideSell:
		return "SELL"
	default:
		panic("unknown order side")
	}
}

// Trade is a journal record of an executed buy or sell.
type Trade struct {
	ID        uuid.UUID
	AccountID string
	Side      OrderSide
	Ticker    string
	Quantity  *big.Float
	Price     *big.Float
	Total     *big.Float
	Time      time.Time
}

type TradeRepository interface {
	CreateTrade(trade *Trade) error

	Trades(accountID string) ([]*Trade, error)
}
