package main

import (
	"encoding/base64"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	tonledger "github.com/status-im/ton-ledger-go"
	"github.com/status-im/ton-ledger-go/derivationpath"
	"github.com/status-im/ton-ledger-go/tonclient"
	"github.com/status-im/ton-ledger-go/types"
	"github.com/status-im/ton-ledger-go/wallet"
)

// account returns the account index, taken from --path when it is set.
func account() (uint32, error) {
	if path := viper.GetString(cfgPath); path != "" {
		index, err := derivationpath.AccountFromPath(path)
		if err != nil {
			return 0, errors.Wrapf(err, "bad --%s %q", cfgPath, path)
		}
		return index, nil
	}

	return viper.GetUint32(cfgAccount), nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the version of the TON app",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := startApp()
			if err != nil {
				return err
			}
			defer a.close()

			conf, err := a.session.GetAppConfiguration()
			if err != nil {
				return errors.Wrap(err, "cannot get app configuration")
			}

			fmt.Fprintf(cmd.OutOrStdout(), "TON app %s\n", conf)

			return nil
		},
	}
}

func newAddressCmd() *cobra.Command {
	var display bool

	cmd := &cobra.Command{
		Use:   "address",
		Short: "Print the wallet address of an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := startApp()
			if err != nil {
				return err
			}
			defer a.close()

			res, err := getAddress(a, display)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "address:    %s\n", res.Address)
			fmt.Fprintf(out, "raw:        %s\n", wallet.RawAddress(res.Address))
			fmt.Fprintf(out, "public key: %x\n", []byte(res.PublicKey))

			return nil
		},
	}

	cmd.Flags().BoolVar(&display, "display", false, "show the address on the device")

	return cmd
}

func getAddress(a *app, display bool) (*tonledger.AddressResult, error) {
	index, err := account()
	if err != nil {
		return nil, err
	}

	res, err := a.session.GetAddress(index, display)
	if err != nil {
		return nil, errors.Wrap(err, "cannot get address")
	}

	if v := a.verifier(); v != nil {
		if err := v.VerifyAddress(res); err != nil {
			return nil, err
		}
		logger.Info("address verified", "account", index)
	}

	return res, nil
}

func newDeployCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deploy",
		Short: "Sign the message that deploys the wallet contract",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := startApp()
			if err != nil {
				return err
			}
			defer a.close()

			res, err := getAddress(a, false)
			if err != nil {
				return err
			}

			tx, err := a.session.Deploy(res.Wallet.Account(), res.Wallet)
			if err != nil {
				return errors.Wrap(err, "cannot sign deploy")
			}

			return finish(cmd, a, tx)
		},
	}
}

func newTransferCmd() *cobra.Command {
	var (
		to     string
		amount string
		seqno  uint32
	)

	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Sign a transfer from the wallet",
		RunE: func(cmd *cobra.Command, args []string) error {
			nano, err := wallet.ToNano(amount)
			if err != nil {
				return err
			}

			a, err := startApp()
			if err != nil {
				return err
			}
			defer a.close()

			res, err := getAddress(a, false)
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("seqno") {
				info, err := newClient().GetWalletInfo(res.Address.String())
				if err != nil {
					return err
				}
				seqno = tonclient.NextSeqno(info)
				logger.Info("using seqno from network", "seqno", seqno, "state", info.AccountState)
			}

			tx, err := a.session.Transfer(res.Wallet.Account(), res.Wallet, to, nano, seqno)
			if err != nil {
				return errors.Wrap(err, "cannot sign transfer")
			}

			return finish(cmd, a, tx)
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "destination address")
	cmd.Flags().StringVar(&amount, "amount", "", "amount in TON, e.g. 0.05")
	cmd.Flags().Uint32Var(&seqno, "seqno", 0, "wallet seqno, queried from the network when omitted")
	cmd.MarkFlagRequired("to")
	cmd.MarkFlagRequired("amount")

	return cmd
}

// finish verifies tx when possible, prints it and broadcasts it on request.
func finish(cmd *cobra.Command, a *app, tx *types.TransactionResult) error {
	if v := a.verifier(); v != nil {
		if err := v.Verify(tx); err != nil {
			return err
		}
		logger.Info("signed message verified", "kind", tx.Intent().Kind)
	}

	boc, err := tx.BOC()
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), base64.StdEncoding.EncodeToString(boc))

	if !viper.GetBool(cfgBroadcast) {
		return nil
	}

	return newClient().SendBoc(boc)
}
