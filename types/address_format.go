package types

import (
	"fmt"

	"github.com/xssnick/tonutils-go/address"

	"github.com/status-im/ton-ledger-go/wallet"
)

// AddressFormat selects how the device renders an address on screen. It is
// sent as P2 of GET_ADDRESS.
type AddressFormat uint8

const (
	AddressFormatHex          AddressFormat = 0x00
	AddressFormatUserFriendly AddressFormat = 0x01
	AddressFormatURLSafe      AddressFormat = 0x02
	AddressFormatBounceable   AddressFormat = 0x04
	AddressFormatTestOnly     AddressFormat = 0x08

	addressFormatMask = AddressFormatUserFriendly | AddressFormatURLSafe | AddressFormatBounceable | AddressFormatTestOnly

	// DefaultAddressFormat is a bounceable url-safe user-friendly address.
	DefaultAddressFormat = AddressFormatUserFriendly | AddressFormatURLSafe | AddressFormatBounceable
)

func (f AddressFormat) Validate() error {
	if f&^addressFormatMask != 0 {
		return fmt.Errorf("unknown address format bits %02x", uint8(f&^addressFormatMask))
	}

	return nil
}

func (f AddressFormat) Has(flag AddressFormat) bool {
	return f&flag == flag
}

// Render formats a using f.
func (f AddressFormat) Render(a *address.Address) string {
	return wallet.FormatAddress(a,
		f.Has(AddressFormatUserFriendly),
		f.Has(AddressFormatURLSafe),
		f.Has(AddressFormatBounceable),
		f.Has(AddressFormatTestOnly),
	)
}
