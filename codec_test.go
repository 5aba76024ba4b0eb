package coinpit

import (
	"math/big"
	"testing"
)

func TestAccountCodec_RoundTrip(t *testing.T) {
	account := NewAccount("alice", big.NewFloat(100000))
	account.Balance = big.NewFloat(58000.25)
	account.Portfolio["btc"] = big.NewFloat(1.05)
	account.Portfolio["eth"] = big.NewFloat(0)
	account.Rules = []*Rule{
		{
			ID: 1,
			Condition: Condition{
				Coin:       "btc",
				Comparator: LessThan,
				Threshold:  big.NewFloat(30000),
			},
			Action: NewBuyAction("btc", "half"),
		},
		{
			ID: 3,
			Condition: Condition{
				Coin:       "eth",
				Comparator: GreaterThan,
				Threshold:  big.NewFloat(5000),
			},
			Action: NewAlertAction("eth is mooning"),
		},
	}

	value, err := MarshalAccount(account)
	if err != nil {
		t.Fatal(err)
	}

	restored, err := UnmarshalAccount(value)
	if err != nil {
		t.Fatal(err)
	}

	if restored.ID != account.ID {
		t.Errorf(
			"unexpected account ID\n"+
				"expected: [%v]\n"+
				"actual:   [%v]",
			account.ID,
			restored.ID,
		)
	}

	if restored.Balance.Cmp(account.Balance) != 0 {
		t.Errorf(
			"unexpected balance\n"+
				"expected: [%v]\n"+
				"actual:   [%v]",
			account.Balance.Text('f', -1),
			restored.Balance.Text('f', -1),
		)
	}

	for ticker, quantity := range account.Portfolio {
		if restored.Holding(ticker).Cmp(quantity) != 0 {
			t.Errorf(
				"unexpected [%v] holding\n"+
					"expected: [%v]\n"+
					"actual:   [%v]",
				ticker,
				quantity.Text('f', -1),
				restored.Holding(ticker).Text('f', -1),
			)
		}
	}

	if len(restored.Rules) != len(account.Rules) {
		t.Fatalf(
			"unexpected rules count\n"+
				"expected: [%v]\n"+
				"actual:   [%v]",
			len(account.Rules),
			len(restored.Rules),
		)
	}

	for index, rule := range account.Rules {
		expected := rule.String()
		actual := restored.Rules[index].String()

		if actual != expected {
			t.Errorf(
				"unexpected rule\n"+
					"expected: [%v]\n"+
					"actual:   [%v]",
				expected,
				actual,
			)
		}
	}
}

func TestUnmarshalAccount_Malformed(t *testing.T) {
	tests := map[string]string{
		"not json":          "definitely not json",
		"malformed balance": `{"id":"alice","balance":"lots"}`,
		"malformed rule comparator": `{
			"id":"alice",
			"balance":"100",
			"rules":[{
				"id":1,
				"coin":"btc",
				"comparator":">=",
				"threshold":"100",
				"action":{"type":"alert"}
			}]
		}`,
	}

	for testName, value := range tests {
		t.Run(testName, func(t *testing.T) {
			_, err := UnmarshalAccount([]byte(value))
			if err == nil {
				t.Errorf("expected an unmarshalling error")
			}
		})
	}
}
