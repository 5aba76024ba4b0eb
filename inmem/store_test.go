package inmem

import (
	"bytes"
	"testing"
)

func TestStore_GetSetDelete(t *testing.T) {
	store := NewStore()

	value, err := store.Get("cryptoTrader.test.alice")
	if err != nil {
		t.Fatal(err)
	}

	if value != nil {
		t.Errorf("expected nil for an absent key, got [%v]", value)
	}

	if err := store.Set(
		"cryptoTrader.test.alice", []byte("record"),
	); err != nil {
		t.Fatal(err)
	}

	value, err = store.Get("cryptoTrader.test.alice")
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(value, []byte("record")) {
		t.Errorf(
			"unexpected value\n"+
				"expected: [%v]\n"+
				"actual:   [%v]",
			"record",
			string(value),
		)
	}

	if err := store.Delete("cryptoTrader.test.alice"); err != nil {
		t.Fatal(err)
	}

	value, err = store.Get("cryptoTrader.test.alice")
	if err != nil {
		t.Fatal(err)
	}

	if value != nil {
		t.Errorf("expected nil after deletion, got [%v]", value)
	}
}

func TestStore_Keys(t *testing.T) {
	store := NewStore()

	records := map[string][]byte{
		"cryptoTrader.test.bob":    []byte("b"),
		"cryptoTrader.test.alice":  []byte("a"),
		"cryptoTrader.other.carol": []byte("c"),
	}

	for key, value := range records {
		if err := store.Set(key, value); err != nil {
			t.Fatal(err)
		}
	}

	keys, err := store.Keys("cryptoTrader.test.")
	if err != nil {
		t.Fatal(err)
	}

	expected := []string{
		"cryptoTrader.test.alice",
		"cryptoTrader.test.bob",
	}

	if len(keys) != len(expected) {
		t.Fatalf(
			"unexpected keys count\n"+
				"expected: [%v]\n"+
				"actual:   [%v]",
			len(expected),
			len(keys),
		)
	}

	for index, key := range expected {
		if keys[index] != key {
			t.Errorf(
				"unexpected key at [%v]\n"+
					"expected: [%v]\n"+
					"actual:   [%v]",
				index,
				key,
				keys[index],
			)
		}
	}
}

func TestStore_MGet(t *testing.T) {
	store := NewStore()

	if err := store.Set(
		"cryptoTrader.test.alice", []byte("a"),
	); err != nil {
		t.Fatal(err)
	}

	if err := store.Set(
		"cryptoTrader.test.bob", []byte("b"),
	); err != nil {
		t.Fatal(err)
	}

	values, err := store.MGet(
		"cryptoTrader.test.bob",
		"cryptoTrader.test.nobody",
		"cryptoTrader.test.alice",
	)
	if err != nil {
		t.Fatal(err)
	}

	if len(values) != 3 {
		t.Fatalf(
			"unexpected values count\n"+
				"expected: [%v]\n"+
				"actual:   [%v]",
			3,
			len(values),
		)
	}

	if !bytes.Equal(values[0], []byte("b")) {
		t.Errorf("unexpected value at [0]: [%v]", string(values[0]))
	}

	if values[1] != nil {
		t.Errorf("expected nil for an absent key, got [%v]", values[1])
	}

	if !bytes.Equal(values[2], []byte("a")) {
		t.Errorf("unexpected value at [2]: [%v]", string(values[2]))
	}
}

func TestStore_GetReturnsCopy(t *testing.T) {
	store := NewStore()

	if err := store.Set("key", []byte("value")); err != nil {
		t.Fatal(err)
	}

	value, err := store.Get("key")
	if err != nil {
		t.Fatal(err)
	}

	value[0] = 'X'

	unchanged, err := store.Get("key")
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(unchanged, []byte("value")) {
		t.Errorf(
			"stored record mutated through a returned value: [%v]",
			string(unchanged),
		)
	}
}
