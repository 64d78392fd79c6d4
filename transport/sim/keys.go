package sim

import (
	"crypto/ed25519"
	"errors"

	"github.com/anyproto/go-slip10"
	"github.com/tyler-smith/go-bip39"
	"golang.org/x/text/unicode/norm"

	"github.com/status-im/ton-ledger-go/derivationpath"
)

var (
	ErrInvalidMnemonic = errors.New("invalid mnemonic")
	ErrInvalidSeed     = errors.New("seed must be between 16 and 64 bytes")
	ErrNotHardened     = errors.New("ed25519 derivation supports hardened indexes only")
)

const (
	minSeedLength = 16
	maxSeedLength = 64

	mnemonicEntropyBits = 256
)

// deriveKey derives an Ed25519 key along path following SLIP-0010.
func deriveKey(seed []byte, path []uint32) (ed25519.PrivateKey, error) {
	node, err := slip10.NewMasterNode(seed)
	if err != nil {
		return nil, err
	}

	for _, index := range path {
		if index < derivationpath.HardenedStart {
			return nil, ErrNotHardened
		}

		if node, err = node.Derive(index); err != nil {
			return nil, err
		}
	}

	_, key := node.Keypair()

	return key, nil
}

// NewMnemonic returns a random 24 word BIP-39 mnemonic.
func NewMnemonic() (string, error) {
	entropy, err := bip39.NewEntropy(mnemonicEntropyBits)
	if err != nil {
		return "", err
	}

	return bip39.NewMnemonic(entropy)
}

// SeedFromMnemonic validates mnemonic and returns its BIP-39 seed. Both the
// mnemonic and the passphrase are NFKD normalized first.
func SeedFromMnemonic(mnemonic, passphrase string) ([]byte, error) {
	mnemonic = norm.NFKD.String(mnemonic)
	passphrase = norm.NFKD.String(passphrase)

	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, ErrInvalidMnemonic
	}

	return bip39.NewSeed(mnemonic, passphrase), nil
}
