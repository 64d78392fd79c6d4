package sim

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/google/uuid"
)

const keystoreVersion = 3

var (
	ErrWrongPassphrase     = errors.New("wrong passphrase")
	ErrUnsupportedKeystore = errors.New("unsupported keystore")
)

// ScryptParams are the key derivation parameters of a keystore.
type ScryptParams struct {
	N int
	P int
}

var (
	StandardScryptParams = ScryptParams{N: keystore.StandardScryptN, P: keystore.StandardScryptP}
	// LightScryptParams trade strength for speed.
	LightScryptParams = ScryptParams{N: keystore.LightScryptN, P: keystore.LightScryptP}
)

// KeystoreJSON is a keystore v3 document holding an encrypted mnemonic
// instead of a private key.
type KeystoreJSON struct {
	Version int                 `json:"version"`
	ID      string              `json:"id"`
	Crypto  keystore.CryptoJSON `json:"crypto"`
}

// EncryptMnemonic seals mnemonic with a key derived from passphrase.
func EncryptMnemonic(mnemonic, passphrase string, params ScryptParams) (*KeystoreJSON, error) {
	c, err := keystore.EncryptDataV3([]byte(mnemonic), []byte(passphrase), params.N, params.P)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt mnemonic: %w", err)
	}

	return &KeystoreJSON{
		Version: keystoreVersion,
		ID:      uuid.New().String(),
		Crypto:  c,
	}, nil
}

// DecryptMnemonic opens a keystore sealed by EncryptMnemonic.
func DecryptMnemonic(ks *KeystoreJSON, passphrase string) (string, error) {
	if ks.Version != keystoreVersion {
		return "", fmt.Errorf("%w: version %d", ErrUnsupportedKeystore, ks.Version)
	}

	plaintext, err := keystore.DecryptDataV3(ks.Crypto, passphrase)
	if errors.Is(err, keystore.ErrDecrypt) {
		return "", ErrWrongPassphrase
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnsupportedKeystore, err)
	}

	return string(plaintext), nil
}

func WriteKeystore(path string, ks *KeystoreJSON) error {
	data, err := json.MarshalIndent(ks, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

func ReadKeystore(path string) (*KeystoreJSON, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	ks := &KeystoreJSON{}
	if err := json.Unmarshal(data, ks); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedKeystore, err)
	}

	return ks, nil
}

// OpenKeystore decrypts the mnemonic stored at path and returns a simulator
// holding its keys.
func OpenKeystore(path, passphrase string, opts ...Option) (*Transport, error) {
	ks, err := ReadKeystore(path)
	if err != nil {
		return nil, err
	}

	mnemonic, err := DecryptMnemonic(ks, passphrase)
	if err != nil {
		return nil, err
	}

	return NewFromMnemonic(mnemonic, "", opts...)
}
