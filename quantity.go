package coinpit

import (
	"math/big"
	"strconv"
	"strings"
)

// QuantitySpec is a buy/sell amount as entered by the user: either an
// absolute decimal number, a percentage of the available amount ("25%"),
// or one of the keywords "max"/"all" (100%) and "half" (50%).
type QuantitySpec string

// IsRelative reports whether the spec resolves against an available
// amount rather than being an absolute quantity.
func (qs QuantitySpec) IsRelative() bool {
	spec := strings.ToLower(strings.TrimSpace(string(qs)))

	switch spec {
	case "max", "all", "half":
		return true
	}

	return strings.HasSuffix(spec, "%")
}

// Validate checks the spec structurally, without resolving it against
// an available amount. Used at rule creation time, when the market may
// still move before the rule fires.
func (qs QuantitySpec) Validate() error {
	_, err := qs.Resolve(big.NewFloat(1))
	return err
}

// Resolve turns the spec into an absolute quantity. Relative specs
// resolve against the given available amount: the full balance worth
// for buys, the held quantity for sells.
func (qs QuantitySpec) Resolve(available *big.Float) (*big.Float, error) {
	spec := strings.ToLower(strings.TrimSpace(string(qs)))

	switch spec {
	case "max", "all":
		return new(big.Float).Copy(available), nil
	case "half":
		return new(big.Float).Quo(available, big.NewFloat(2)), nil
	}

	if strings.HasSuffix(spec, "%") {
		percent, err := strconv.ParseFloat(
			strings.TrimSuffix(spec, "%"), 64,
		)
		if err != nil || percent <= 0 {
			return nil, &InvalidQuantityError{Spec: qs}
		}

		return new(big.Float).Quo(
			new(big.Float).Mul(available, big.NewFloat(percent)),
			big.NewFloat(100),
		), nil
	}

	quantity, ok := new(big.Float).SetString(spec)
	if !ok || quantity.Sign() <= 0 {
		return nil, &InvalidQuantityError{Spec: qs}
	}

	return quantity, nil
}
