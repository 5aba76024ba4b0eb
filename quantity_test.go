package coinpit

import (
	"errors"
	"math/big"
	"testing"
)

func TestQuantitySpec_Resolve(t *testing.T) {
	available := big.NewFloat(10)

	tests := map[string]struct {
		spec     QuantitySpec
		expected *big.Float
	}{
		"absolute": {
			spec:     "2.5",
			expected: big.NewFloat(2.5),
		},
		"max keyword": {
			spec:     "max",
			expected: big.NewFloat(10),
		},
		"all keyword": {
			spec:     "all",
			expected: big.NewFloat(10),
		},
		"half keyword": {
			spec:     "half",
			expected: big.NewFloat(5),
		},
		"percentage": {
			spec:     "25%",
			expected: big.NewFloat(2.5),
		},
		"uppercase keyword": {
			spec:     "MAX",
			expected: big.NewFloat(10),
		},
		"surrounding whitespace": {
			spec:     " half ",
			expected: big.NewFloat(5),
		},
	}

	for testName, test := range tests {
		t.Run(testName, func(t *testing.T) {
			actual, err := test.spec.Resolve(available)
			if err != nil {
				t.Fatal(err)
			}

			if test.expected.Cmp(actual) != 0 {
				t.Errorf(
					"unexpected resolved quantity\n"+
						"expected: [%v]\n"+
						"actual:   [%v]",
					test.expected.Text('f', -1),
					actual.Text('f', -1),
				)
			}
		})
	}
}

func TestQuantitySpec_Resolve_Invalid(t *testing.T) {
	tests := map[string]QuantitySpec{
		"empty":               "",
		"not a number":        "plenty",
		"negative":            "-1",
		"zero":                "0",
		"negative percentage": "-10%",
		"malformed percent":   "ten%",
	}

	for testName, spec := range tests {
		t.Run(testName, func(t *testing.T) {
			_, err := spec.Resolve(big.NewFloat(10))

			var invalidQuantityErr *InvalidQuantityError
			if !errors.As(err, &invalidQuantityErr) {
				t.Errorf(
					"unexpected error\n"+
						"expected: [%T]\n"+
						"actual:   [%v]",
					invalidQuantityErr,
					err,
				)
			}
		})
	}
}

func TestQuantitySpec_IsRelative(t *testing.T) {
	relative := []QuantitySpec{"max", "all", "half", "25%", "MAX", " half "}
	absolute := []QuantitySpec{"1", "2.5", "0.00042"}

	for _, spec := range relative {
		if !spec.IsRelative() {
			t.Errorf("expected [%v] to be relative", spec)
		}
	}

	for _, spec := range absolute {
		if spec.IsRelative() {
			t.Errorf("expected [%v] to be absolute", spec)
		}
	}
}

func TestQuantitySpec_ResolveMax_SpendsExactlyAvailable(t *testing.T) {
	available := big.NewFloat(100000)

	resolved, err := QuantitySpec("max").Resolve(available)
	if err != nil {
		t.Fatal(err)
	}

	if available.Cmp(resolved) != 0 {
		t.Errorf(
			"unexpected resolved quantity\n"+
				"expected: [%v]\n"+
				"actual:   [%v]",
			available.Text('f', -1),
			resolved.Text('f', -1),
		)
	}

	// The resolved value must be a copy; mutating it must not touch
	// the caller's amount.
	resolved.Sub(resolved, big.NewFloat(1))

	if available.Cmp(big.NewFloat(100000)) != 0 {
		t.Errorf(
			"available amount mutated through resolved quantity: [%v]",
			available.Text('f', -1),
		)
	}
}
