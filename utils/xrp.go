package utils

import (
	"fmt"
	"math/big"
	"strings"
)

const DropsPerXRP = 1000000

// DropsToXRP formats an integer drop amount as a decimal XRP string without trailing zeros.
func DropsToXRP(drops string) (string, error) {
	amount, ok := new(big.Int).SetString(drops, 10)
	if !ok {
		return "", fmt.Errorf("invalid drops amount %q", drops)
	}
	sign := ""
	if amount.Sign() < 0 {
		sign = "-"
		amount.Neg(amount)
	}
	whole, frac := new(big.Int).QuoRem(amount, big.NewInt(DropsPerXRP), new(big.Int))
	if frac.Sign() == 0 {
		return sign + whole.String(), nil
	}
	fracStr := strings.TrimRight(fmt.Sprintf("%06d", frac.Int64()), "0")
	return sign + whole.String() + "." + fracStr, nil
}
