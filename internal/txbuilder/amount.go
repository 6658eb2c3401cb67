package txbuilder

import (
	"fmt"
	"math/big"
	"strings"
)

// ParseEth converts a decimal ETH string ("0.001") to wei.
func ParseEth(amount string) (*big.Int, error) {
	v, err := ParseUnits(amount, 18)
	if err != nil {
		return nil, &ValidationError{Field: "amount", Reason: err.Error()}
	}
	return v, nil
}

// ParseUnits scales a decimal string by 10^decimals into an integer.
func ParseUnits(amount string, decimals uint8) (*big.Int, error) {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return nil, fmt.Errorf("amount is empty")
	}
	if strings.HasPrefix(amount, "-") {
		return nil, fmt.Errorf("amount must be non-negative")
	}
	parts := strings.SplitN(amount, ".", 2)
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	if len(fracPart) > int(decimals) {
		return nil, fmt.Errorf("too many decimal places: %d > %d", len(fracPart), decimals)
	}
	fracPart = fracPart + strings.Repeat("0", int(decimals)-len(fracPart))
	combined := intPart + fracPart
	combined = strings.TrimLeft(combined, "0")
	if combined == "" {
		return big.NewInt(0), nil
	}
	v, ok := new(big.Int).SetString(combined, 10)
	if !ok {
		return nil, fmt.Errorf("invalid number format")
	}
	return v, nil
}

// GweiToWei converts a gwei amount (possibly fractional) to wei, truncating
// below one wei.
func GweiToWei(gwei float64) (*big.Int, error) {
	if gwei < 0 {
		return nil, fmt.Errorf("gwei must be non-negative")
	}
	v := new(big.Rat).SetFloat64(gwei)
	v.Mul(v, new(big.Rat).SetInt(big.NewInt(1_000_000_000)))
	out := new(big.Int)
	out.Div(v.Num(), v.Denom())
	return out, nil
}
