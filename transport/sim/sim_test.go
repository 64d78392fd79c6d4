package sim

import (
	"crypto/ed25519"
	"encoding/hex"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tonledger "github.com/status-im/ton-ledger-go"
	"github.com/status-im/ton-ledger-go/derivationpath"
	"github.com/status-im/ton-ledger-go/transport"
	"github.com/status-im/ton-ledger-go/types"
)

const testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

func hexMustDecode(str string) []byte {
	out, _ := hex.DecodeString(str)
	return out
}

func testTransport(t *testing.T, opts ...Option) *Transport {
	tr, err := NewFromMnemonic(testMnemonic, "TREZOR", opts...)
	require.NoError(t, err)
	return tr
}

func TestDeriveKeySLIP10(t *testing.T) {
	seed := hexMustDecode("000102030405060708090a0b0c0d0e0f")
	h := uint32(derivationpath.HardenedStart)

	key, err := deriveKey(seed, nil)
	require.NoError(t, err)
	assert.Equal(t, hexMustDecode("2b4be7f19ee27bbf30c667b642d5f4aa69fd169872f8fc3059c08ebae2eb19e7"), []byte(key.Seed()))

	key, err = deriveKey(seed, []uint32{h})
	require.NoError(t, err)
	assert.Equal(t, hexMustDecode("68e0fe46dfb67e368c75379acec591dad19df3cde26e63b93a8e704f1dade7a3"), []byte(key.Seed()))
	assert.Equal(t, hexMustDecode("8c8a13df77a28f3445213a0f432fde644acaa215fc72dcdf300d5efaa85d350c"), []byte(key.Public().(ed25519.PublicKey)))

	key, err = deriveKey(seed, []uint32{h, h + 1, h + 2, h + 2, h + 1000000000})
	require.NoError(t, err)
	assert.Equal(t, hexMustDecode("8f94d394a8e8fd6b1bc2f3f49f5c47e385281d5c17e65324b0f62483e37e8793"), []byte(key.Seed()))

	_, err = deriveKey(seed, []uint32{1})
	assert.ErrorIs(t, err, ErrNotHardened)
}

func TestSeedFromMnemonic(t *testing.T) {
	seed, err := SeedFromMnemonic(testMnemonic, "TREZOR")
	require.NoError(t, err)
	assert.Equal(t, "c55257c360c07c72029aebc1b53c05ed0362ada38ead3e3e9efa3708e53495531f09a6987599d18264c1e1c92f2cf141630c7a3c4ab7c81b2f001698e7463b04", hex.EncodeToString(seed))

	_, err = SeedFromMnemonic("abandon abandon", "")
	assert.ErrorIs(t, err, ErrInvalidMnemonic)

	m, err := NewMnemonic()
	require.NoError(t, err)
	_, err = SeedFromMnemonic(m, "")
	assert.NoError(t, err)
}

func TestDebugAddress(t *testing.T) {
	tr := testTransport(t)

	pub, err := tr.DebugAddress(0)
	require.NoError(t, err)
	assert.Equal(t, "75a453521be62e198deb4e56f115f722f3781fae7898fa25f1cafd07a22a77cd", hex.EncodeToString(pub))

	pub, err = tr.DebugAddress(1)
	require.NoError(t, err)
	assert.Equal(t, "e873f0c13e31b49afd9ad11b2bc20be42f9cf24c54aac06df923051ea616c2d0", hex.EncodeToString(pub))
}

func TestExchangeGetAddress(t *testing.T) {
	tr := testTransport(t)

	resp, err := tr.Exchange(hexMustDecode("e00201050400000000"))
	require.NoError(t, err)
	require.Len(t, resp, 35)
	assert.Equal(t, []byte{0x90, 0x00}, resp[33:])

	pub, err := types.ParsePublicKey(resp[:33])
	require.NoError(t, err)
	assert.Equal(t, "75a453521be62e198deb4e56f115f722f3781fae7898fa25f1cafd07a22a77cd", hex.EncodeToString(pub))
}

func TestExchangeStatusWords(t *testing.T) {
	tr := testTransport(t, WithVersion(1, 2, 3))

	scenarios := []struct {
		name     string
		frame    string
		expected string
	}{
		{"config", "e001000000", "0102039000"},
		{"wrong cla", "b001000000", "6e00"},
		{"unknown ins", "e0ff000000", "6d00"},
		{"short frame", "e001", "6700"},
		{"config with data", "e00100000101", "6700"},
		{"address wrong p1", "e00202000400000000", "6b00"},
		{"address unknown format", "e00200100400000000", "6b00"},
		{"address non hardened account", "e00200000480000000", "6a80"},
		{"deploy wrong length", "e003000003000000", "6700"},
	}

	for _, s := range scenarios {
		t.Run(s.name, func(t *testing.T) {
			resp, err := tr.Exchange(hexMustDecode(s.frame))
			require.NoError(t, err)
			assert.Equal(t, s.expected, hex.EncodeToString(resp))
		})
	}
}

func TestClosedTransport(t *testing.T) {
	tr := testTransport(t)
	require.NoError(t, tr.Close())

	_, err := tr.Exchange(hexMustDecode("e001000000"))
	assert.ErrorIs(t, err, transport.ErrClosed)
}

func TestLinkIsVerifiable(t *testing.T) {
	link := testTransport(t).Link()
	assert.Equal(t, transport.KindSim, link.Kind())

	d, ok := link.Debugger()
	require.True(t, ok)

	cfg, err := d.DebugConfig()
	require.NoError(t, err)
	assert.Equal(t, DefaultVersion, cfg.Version)
}

func TestDebugDeployIsSignedByAccountKey(t *testing.T) {
	tr := testTransport(t)

	result, err := tr.DebugDeploy(0)
	require.NoError(t, err)
	assert.Equal(t, types.TransactionDeploy, result.Intent().Kind)

	first, err := result.BOC()
	require.NoError(t, err)

	again, err := tr.DebugDeploy(0)
	require.NoError(t, err)
	second, err := again.BOC()
	require.NoError(t, err)
	assert.Equal(t, first, second)

	corrupt, err := testTransport(t, WithCorruptDebug()).DebugDeploy(0)
	require.NoError(t, err)
	third, err := corrupt.BOC()
	require.NoError(t, err)
	assert.Equal(t, len(first), len(third))
	assert.NotEqual(t, first, third)
}

func TestNewRejectsBadSeed(t *testing.T) {
	_, err := New([]byte{1, 2, 3})
	assert.ErrorIs(t, err, ErrInvalidSeed)

	_, err = testTransport(t).DebugAddress(tonledger.MaxAccount + 1)
	var encErr *tonledger.EncodingError
	assert.ErrorAs(t, err, &encErr)
}

func TestKeystoreRoundTrip(t *testing.T) {
	ks, err := EncryptMnemonic(testMnemonic, "secret", LightScryptParams)
	require.NoError(t, err)
	assert.Equal(t, 3, ks.Version)
	assert.NotEmpty(t, ks.ID)

	path := filepath.Join(t.TempDir(), "sim.json")
	require.NoError(t, WriteKeystore(path, ks))

	loaded, err := ReadKeystore(path)
	require.NoError(t, err)

	mnemonic, err := DecryptMnemonic(loaded, "secret")
	require.NoError(t, err)
	assert.Equal(t, testMnemonic, mnemonic)

	_, err = DecryptMnemonic(loaded, "wrong")
	assert.ErrorIs(t, err, ErrWrongPassphrase)

	plain, err := keystore.DecryptDataV3(loaded.Crypto, "secret")
	require.NoError(t, err)
	assert.Equal(t, testMnemonic, string(plain))
	assert.Equal(t, "scrypt", loaded.Crypto.KDF)
	assert.Equal(t, float64(keystore.LightScryptN), loaded.Crypto.KDFParams["n"])

	loaded.Version = 1
	_, err = DecryptMnemonic(loaded, "secret")
	assert.ErrorIs(t, err, ErrUnsupportedKeystore)

	tr, err := OpenKeystore(path, "secret")
	require.NoError(t, err)
	pub, err := tr.DebugAddress(0)
	require.NoError(t, err)
	assert.Len(t, pub, 32)
}
