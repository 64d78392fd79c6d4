package types

import (
	"crypto/ed25519"
	"fmt"
)

// ParsePublicKey decodes the GET_ADDRESS reply: a length byte followed by the key.
func ParsePublicKey(data []byte) (ed25519.PublicKey, error) {
	value, err := parseLengthPrefixed("public key", data, ed25519.PublicKeySize)
	if err != nil {
		return nil, err
	}

	return ed25519.PublicKey(value), nil
}

func SerializePublicKey(key ed25519.PublicKey) []byte {
	return append([]byte{byte(len(key))}, key...)
}

// ParseSignature decodes the DEPLOY and TRANSFER replies: a length byte
// followed by the signature.
func ParseSignature(data []byte) ([]byte, error) {
	return parseLengthPrefixed("signature", data, ed25519.SignatureSize)
}

func SerializeSignature(sig []byte) []byte {
	return append([]byte{byte(len(sig))}, sig...)
}

func parseLengthPrefixed(layout string, data []byte, size int) ([]byte, error) {
	if len(data) != size+1 {
		return nil, &LengthError{Layout: layout, Expected: size + 1, Got: len(data)}
	}

	if int(data[0]) != size {
		return nil, fmt.Errorf("%s: length prefix %d, expected %d", layout, data[0], size)
	}

	return append([]byte{}, data[1:]...), nil
}
