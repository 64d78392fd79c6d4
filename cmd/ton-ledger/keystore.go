package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/status-im/ton-ledger-go/transport/sim"
)

func newKeystoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keystore",
		Short: "Manage simulator keystores",
	}

	cmd.AddCommand(newKeystoreNewCmd())

	return cmd
}

func newKeystoreNewCmd() *cobra.Command {
	var (
		out      string
		mnemonic string
		light    bool
	)

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Encrypt a mnemonic into a keystore file",
		Long: `Encrypt a mnemonic into a keystore file usable with --keystore. A new random
mnemonic is generated unless one is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			generated := mnemonic == ""
			if generated {
				m, err := sim.NewMnemonic()
				if err != nil {
					return err
				}
				mnemonic = m
			} else if _, err := sim.SeedFromMnemonic(mnemonic, ""); err != nil {
				return err
			}

			passphrase, err := readNewPassphrase()
			if err != nil {
				return err
			}

			params := sim.StandardScryptParams
			if light {
				params = sim.LightScryptParams
			}

			ks, err := sim.EncryptMnemonic(mnemonic, passphrase, params)
			if err != nil {
				return err
			}

			if err := sim.WriteKeystore(out, ks); err != nil {
				return err
			}

			logger.Info("keystore written", "path", out, "id", ks.ID)

			if generated {
				fmt.Fprintf(cmd.OutOrStdout(), "mnemonic: %s\n", mnemonic)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "keystore.json", "output file")
	cmd.Flags().StringVar(&mnemonic, "from-mnemonic", "", "mnemonic to encrypt instead of a new one")
	cmd.Flags().BoolVar(&light, "light", false, "use light scrypt parameters")

	return cmd
}
