package inmem

import (
	"sync"

	"github.com/xybotsu/coinpit"
)

type TradeRepository struct {
	tradesMutex sync.RWMutex
	trades      []*coinpit.Trade
}

func NewTradeRepository() *TradeRepository {
	return &TradeRepository{
		trades: make([]*coinpit.Trade, 0),
	}
}

func (tr *TradeRepository) CreateTrade(trade *coinpit.Trade) error {
	tr.tradesMutex.Lock()
	defer tr.tradesMutex.Unlock()

	tr.trades = append(tr.trades, trade)

	return nil
}

func (tr *TradeRepository) Trades(
	accountID string,
) ([]*coinpit.Trade, error) {
	tr.tradesMutex.RLock()
	defer tr.tradesMutex.RUnlock()

	trades := make([]*coinpit.Trade, 0)

	for _, trade := range tr.trades {
		if trade.AccountID == accountID {
			trades = append(trades, trade)
		}
	}

	return trades, nil
}
