package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	cfgConfig     = "config"
	cfgTransport  = "transport"
	cfgDevice     = "device"
	cfgBLEMTU     = "ble-mtu"
	cfgTimeout    = "timeout"
	cfgDebug      = "debug"
	cfgAccount    = "account"
	cfgPath       = "path"
	cfgWorkchain  = "workchain"
	cfgMnemonic   = "mnemonic"
	cfgKeystore   = "keystore"
	cfgEndpoint   = "endpoint"
	cfgAPIKey     = "api-key"
	cfgVerify     = "verify"
	cfgBroadcast  = "broadcast"
	cfgLogLevel   = "log-level"
	cfgMetricsOut = "metrics-textfile"
)

var logger = log.New("package", "ton-ledger-go/cmd/ton-ledger")

var rootCmd = &cobra.Command{
	Use:   "ton-ledger",
	Short: "Sign TON wallet messages with a hardware wallet",
	Long: `Sign TON wallet messages with a Ledger device running the TON app, or with
an in-process simulator. Settings can also be given as TONLEDGER_* environment
variables or in a config file.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig, initLogger)

	flags := rootCmd.PersistentFlags()
	flags.String(cfgConfig, "", "config file (yaml, json or toml)")
	flags.String(cfgTransport, "sim", "transport, one of: sim, hid, ble")
	flags.String(cfgDevice, "", "hid device path or ble pipe, the first Ledger found is used for hid when empty")
	flags.Int(cfgBLEMTU, 0, "negotiated BLE payload size, 0 for the default")
	flags.Duration(cfgTimeout, 30*time.Second, "timeout of a single device exchange")
	flags.Bool(cfgDebug, false, "log every APDU frame")
	flags.Uint32(cfgAccount, 0, "account index")
	flags.String(cfgPath, "", "TON account derivation path like m/44'/607'/0'/0'/1'/0', overrides --account")
	flags.Int8(cfgWorkchain, 0, "workchain of the wallet")
	flags.String(cfgMnemonic, "", "simulator mnemonic")
	flags.String(cfgKeystore, "", "simulator keystore file")
	flags.String(cfgEndpoint, "https://toncenter.com/api/v2/jsonRPC", "toncenter JSON-RPC endpoint")
	flags.String(cfgAPIKey, "", "toncenter API key")
	flags.Bool(cfgVerify, true, "cross verify results when the transport supports it")
	flags.Bool(cfgBroadcast, false, "send signed messages to the network")
	flags.String(cfgLogLevel, "info", `log level, one of: "error", "warn", "info", "debug", "trace"`)
	flags.String(cfgMetricsOut, "", "write transport metrics to this file on exit")

	if err := viper.BindPFlags(flags); err != nil {
		panic(err)
	}

	rootCmd.AddCommand(
		newConfigCmd(),
		newAddressCmd(),
		newDeployCmd(),
		newTransferCmd(),
		newKeystoreCmd(),
	)
}

func initConfig() {
	viper.SetEnvPrefix("TONLEDGER")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if path := viper.GetString(cfgConfig); path != "" {
		viper.SetConfigFile(path)
		if err := viper.ReadInConfig(); err != nil {
			fail("cannot read config", "path", path, "error", err)
		}
	}
}

func initLogger() {
	level, err := log.LvlFromString(strings.ToLower(viper.GetString(cfgLogLevel)))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log.SetDefault(log.NewLogger(log.NewTerminalHandlerWithLevel(os.Stderr, level, true)))
}

func fail(msg string, ctx ...interface{}) {
	logger.Error(msg, ctx...)
	os.Exit(1)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fail("command failed", "error", err)
	}
}
