package coinpit

import (
	"encoding/json"
	"fmt"
	"math/big"
)

// Account records are persisted as JSON with all decimal values encoded
// as strings, so that a serialize/deserialize round trip is lossless.

type accountRecord struct {
	ID        string            `json:"id"`
	Balance   string            `json:"balance"`
	Portfolio map[string]string `json:"portfolio"`
	Rules     []ruleRecord      `json:"rules,omitempty"`
}

type ruleRecord struct {
	ID         int          `json:"id"`
	Coin       string       `json:"coin"`
	Comparator string       `json:"comparator"`
	Threshold  string       `json:"threshold"`
	Action     actionRecord `json:"action"`
}

type actionRecord struct {
	Type     string `json:"type"`
	Message  string `json:"message,omitempty"`
	Coin     string `json:"coin,omitempty"`
	Quantity string `json:"quantity,omitempty"`
}

func MarshalAccount(account *Account) ([]byte, error) {
	record := accountRecord{
		ID:        account.ID,
		Balance:   account.Balance.Text('f', -1),
		Portfolio: make(map[string]string),
	}

	for ticker, quantity := range account.Portfolio {
		record.Portfolio[ticker] = quantity.Text('f', -1)
	}

	for _, rule := range account.Rules {
		record.Rules = append(record.Rules, ruleRecord{
			ID:         rule.ID,
			Coin:       rule.Condition.Coin,
			Comparator: rule.Condition.Comparator.String(),
			Threshold:  rule.Condition.Threshold.Text('f', -1),
			Action: actionRecord{
				Type:     rule.Action.Type.String(),
				Message:  rule.Action.Message,
				Coin:     rule.Action.Coin,
				Quantity: string(rule.Action.Quantity),
			},
		})
	}

	return json.Marshal(&record)
}

func UnmarshalAccount(value []byte) (*Account, error) {
	var record accountRecord

	if err := json.Unmarshal(value, &record); err != nil {
		return nil, fmt.Errorf("could not unmarshal account: [%v]", err)
	}

	balance, err := parseDecimal(record.Balance)
	if err != nil {
		return nil, fmt.Errorf(
			"could not parse balance of account [%v]: [%v]",
			record.ID,
			err,
		)
	}

	account := &Account{
		ID:        record.ID,
		Balance:   balance,
		Portfolio: make(map[string]*big.Float),
	}

	for ticker, quantityText := range record.Portfolio {
		quantity, err := parseDecimal(quantityText)
		if err != nil {
			return nil, fmt.Errorf(
				"could not parse [%v] quantity of account [%v]: [%v]",
				ticker,
				record.ID,
				err,
			)
		}

		account.Portfolio[ticker] = quantity
	}

	for _, rule := range record.Rules {
		comparator, err := ParseComparator(rule.Comparator)
		if err != nil {
			return nil, fmt.Errorf(
				"could not parse rule [%v] of account [%v]: [%v]",
				rule.ID,
				record.ID,
				err,
			)
		}

		threshold, err := parseDecimal(rule.Threshold)
		if err != nil {
			return nil, fmt.Errorf(
				"could not parse rule [%v] of account [%v]: [%v]",
				rule.ID,
				record.ID,
				err,
			)
		}

		actionType, err := ParseActionType(rule.Action.Type)
		if err != nil {
			return nil, fmt.Errorf(
				"could not parse rule [%v] of account [%v]: [%v]",
				rule.ID,
				record.ID,
				err,
			)
		}

		account.Rules = append(account.Rules, &Rule{
			ID: rule.ID,
			Condition: Condition{
				Coin:       rule.Coin,
				Comparator: comparator,
				Threshold:  threshold,
			},
			Action: Action{
				Type:     actionType,
				Message:  rule.Action.Message,
				Coin:     rule.Action.Coin,
				Quantity: QuantitySpec(rule.Action.Quantity),
			},
		})
	}

	return account, nil
}

func parseDecimal(text string) (*big.Float, error) {
	value, ok := new(big.Float).SetString(text)
	if !ok {
		return nil, fmt.Errorf("malformed decimal: [%v]", text)
	}

	return value, nil
}
