package main

import (
	"bytes"
	"encoding/base64"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xssnick/tonutils-go/tvm/cell"

	"github.com/status-im/ton-ledger-go/derivationpath"
)

const testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

func run(t *testing.T, args ...string) string {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())
	return buf.String()
}

func TestConfig(t *testing.T) {
	out := run(t, "config", "--mnemonic", testMnemonic)
	assert.Equal(t, "TON app 2.0.0\n", out)
}

func TestDeployAndTransfer(t *testing.T) {
	out := run(t, "deploy", "--mnemonic", testMnemonic)
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(out))
	require.NoError(t, err)

	msg, err := cell.FromBOC(raw)
	require.NoError(t, err)
	// code and data of the state init
	assert.Equal(t, uint(2), msg.RefsNum())

	out = run(t, "transfer", "--mnemonic", testMnemonic,
		"--to", "EQA0i8-CdGnF_DhUHHf92R1ONH6sIA9vLZ_WLcCIhfBBXwtG", "--amount", "0.1", "--seqno", "2")
	raw, err = base64.StdEncoding.DecodeString(strings.TrimSpace(out))
	require.NoError(t, err)

	msg, err = cell.FromBOC(raw)
	require.NoError(t, err)
	assert.Equal(t, uint(1), msg.RefsNum())
}

func TestKeystoreMatchesMnemonic(t *testing.T) {
	t.Setenv(passphraseEnv, "secret")
	path := filepath.Join(t.TempDir(), "sim.json")

	run(t, "keystore", "new", "--out", path, "--from-mnemonic", testMnemonic, "--light")

	fromMnemonic := run(t, "address", "--mnemonic", testMnemonic, "--keystore", "")
	fromKeystore := run(t, "address", "--keystore", path)
	assert.Equal(t, fromMnemonic, fromKeystore)
	assert.Contains(t, fromKeystore, "raw:        0:")
}

func TestAccountFromPath(t *testing.T) {
	t.Cleanup(func() {
		require.NoError(t, rootCmd.PersistentFlags().Set(cfgPath, ""))
		require.NoError(t, rootCmd.PersistentFlags().Set(cfgAccount, "0"))
	})

	fromIndex := run(t, "address", "--mnemonic", testMnemonic, "--keystore", "", "--account", "1")
	fromPath := run(t, "address", "--mnemonic", testMnemonic, "--keystore", "", "--account", "0", "--path", "m/44'/607'/0'/0'/1'/0'")
	assert.Equal(t, fromIndex, fromPath)
	assert.NotEqual(t, run(t, "address", "--mnemonic", testMnemonic, "--keystore", "", "--account", "0", "--path", ""), fromPath)

	rootCmd.SetOut(new(bytes.Buffer))
	rootCmd.SetArgs([]string{"address", "--mnemonic", testMnemonic, "--keystore", "", "--path", "m/44'/0'/0'/0'/1'/0'"})
	err := rootCmd.Execute()
	assert.ErrorIs(t, err, derivationpath.ErrNotTonAccount)
}
