package postgres

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgtype"

	"github.com/xybotsu/coinpit"
)

type TradeRepository struct {
	client *Client
}

func NewTradeRepository(client *Client) *TradeRepository {
	return &TradeRepository{client}
}

func (tr *TradeRepository) CreateTrade(trade *coinpit.Trade) error {
	query := `INSERT INTO
    	trade (id, account_id, side, ticker, quantity, price, total, time)
    	VALUES (:id, :account_id, :side, :ticker, :quantity, :price,
    	        :total, :time)`

	tradeRow, err := new(tradeRow).wrap(trade)
	if err != nil {
		return fmt.Errorf(
			"could not convert trade [%v] to pg row: [%v]",
			trade.ID,
			err,
		)
	}

	_, err = tr.client.instance().NamedExec(query, tradeRow)
	if err != nil {
		return fmt.Errorf(
			"could not execute command for trade [%v]: [%v]",
			trade.ID,
			err,
		)
	}

	return nil
}

func (tr *TradeRepository) Trades(
	accountID string,
) ([]*coinpit.Trade, error) {
	var tradeRows []tradeRow

	query := `SELECT * FROM trade WHERE account_id = $1 ORDER BY time`

	err := tr.client.instance().Select(&tradeRows, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("could not execute query: [%v]", err)
	}

	trades := make([]*coinpit.Trade, len(tradeRows))

	for index := range tradeRows {
		trade, err := tradeRows[index].unwrap()
		if err != nil {
			return nil, fmt.Errorf(
				"could not convert pg row to trade: [%v]",
				err,
			)
		}

		trades[index] = trade
	}

	return trades, nil
}

type tradeRow struct {
	ID        string
	AccountID string `db:"account_id"`
	Side      string
	Ticker    string
	Quantity  pgtype.Numeric
	Price     pgtype.Numeric
	Total     pgtype.Numeric
	Time      time.Time
}

func (tr *tradeRow) wrap(trade *coinpit.Trade) (*tradeRow, error) {
	quantity, err := floatToNumeric(trade.Quantity)
	if err != nil {
		return nil, err
	}

	price, err := floatToNumeric(trade.Price)
	if err != nil {
		return nil, err
	}

	total, err := floatToNumeric(trade.Total)
	if err != nil {
		return nil, err
	}

	tr.ID = trade.ID.String()
	tr.AccountID = trade.AccountID
	tr.Side = trade.Side.String()
	tr.Ticker = trade.Ticker
	tr.Quantity = quantity
	tr.Price = price
	tr.Total = total
	tr.Time = trade.Time

	return tr, nil
}

func (tr *tradeRow) unwrap() (*coinpit.Trade, error) {
	ID, err := uuid.Parse(tr.ID)
	if err != nil {
		return nil, err
	}

	side, err := coinpit.ParseOrderSide(tr.Side)
	if err != nil {
		return nil, err
	}

	quantity, err := numericToFloat(tr.Quantity)
	if err != nil {
		return nil, err
	}

	price, err := numericToFloat(tr.Price)
	if err != nil {
		return nil, err
	}

	total, err := numericToFloat(tr.Total)
	if err != nil {
		return nil, err
	}

	return &coinpit.Trade{
		ID:        ID,
		AccountID: tr.AccountID,
		Side:      side,
		Ticker:    tr.Ticker,
		Quantity:  quantity,
		Price:     price,
		Total:     total,
		Time:      tr.Time,
	}, nil
}
