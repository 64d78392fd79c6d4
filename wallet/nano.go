package wallet

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
)

const nanoDigits = 9

var ErrBadAmount = errors.New("invalid amount")

var nanoPerTon = big.NewInt(1_000_000_000)

// ToNano converts a decimal TON amount like "0.123" to nanotons.
func ToNano(amount string) (*big.Int, error) {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return nil, ErrBadAmount
	}

	whole, frac, _ := strings.Cut(amount, ".")
	if len(frac) > nanoDigits {
		return nil, fmt.Errorf("%w: more than %d decimals in %q", ErrBadAmount, nanoDigits, amount)
	}

	if whole == "" {
		whole = "0"
	}

	digits := whole + frac + strings.Repeat("0", nanoDigits-len(frac))
	for _, c := range digits {
		if c < '0' || c > '9' {
			return nil, fmt.Errorf("%w: %q", ErrBadAmount, amount)
		}
	}

	v, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrBadAmount, amount)
	}

	return v, nil
}

// FromNano renders nanotons as a decimal TON amount without trailing zeros.
func FromNano(nano *big.Int) string {
	sign := ""
	v := new(big.Int).Set(nano)
	if v.Sign() < 0 {
		sign = "-"
		v.Neg(v)
	}

	whole, frac := new(big.Int).QuoRem(v, nanoPerTon, new(big.Int))
	if frac.Sign() == 0 {
		return sign + whole.String()
	}

	f := frac.String()
	f = strings.Repeat("0", nanoDigits-len(f)) + f
	f = strings.TrimRight(f, "0")

	return sign + whole.String() + "." + f
}
