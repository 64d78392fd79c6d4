package wallet

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/xssnick/tonutils-go/address"
)

var ErrBadAddress = errors.New("invalid address")

// ParseAddress accepts the raw "wc:hex" form and user-friendly addresses in
// either base64 alphabet. Raw addresses are not bounceable.
func ParseAddress(s string) (*address.Address, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, ":") {
		a, err := address.ParseRawAddr(s)
		if err != nil {
			return nil, fmt.Errorf("%w %q: %v", ErrBadAddress, s, err)
		}
		a.SetBounce(false)
		return a, nil
	}

	a, err := address.ParseAddr(strings.NewReplacer("+", "-", "/", "_").Replace(s))
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrBadAddress, s, err)
	}

	return a, nil
}

// RawAddress renders a as "wc:hex".
func RawAddress(a *address.Address) string {
	return fmt.Sprintf("%d:%s", a.Workchain(), hex.EncodeToString(a.Data()))
}

// FormatAddress renders a with the given flags. The raw form ignores the
// remaining flags.
func FormatAddress(a *address.Address, userFriendly, urlSafe, bounceable, testOnly bool) string {
	if !userFriendly {
		return RawAddress(a)
	}

	s := a.Bounce(bounceable).Testnet(testOnly).String()
	if !urlSafe {
		s = strings.NewReplacer("-", "+", "_", "/").Replace(s)
	}

	return s
}
