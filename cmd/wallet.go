package cmd

import (
	"fmt"

	"github.com/Mohsinsiddi/w3dex/internal/devchain"
	"github.com/Mohsinsiddi/w3dex/internal/ui"
	"github.com/Mohsinsiddi/w3dex/internal/wallet"
	"github.com/spf13/cobra"
)

var (
	walletKeyFlag    string
	walletDevIndex   int
	walletGenerate   bool
	walletRemoveYes  bool
	walletSetDefault bool
)

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Manage wallets",
	Long: `Manage the accounts the RPC provider signs with. Signing keys live in
the OS keychain, or in <config>/keyring unlocked with W3DEX_KEYRING_PASSWORD
when no keychain is available. W3DEX_KEY overrides the stored key of the
wallet in use. Wallet metadata lives in <config>/wallets.json.`,
}

var walletAddCmd = &cobra.Command{
	Use:   "add <name> [address]",
	Short: "Add a wallet",
	Long: `Add a wallet. With --key the wallet can sign; with --generate a fresh
key is created and shown once; with --dev-account N the key of local development
account N (as funded by Hardhat and Anvil) is imported; otherwise the wallet
is watch-only.

Examples:
  w3dex wallet add watcher 0x70997970C51812dc3A010C7d01b50e0d17dc79C8
  w3dex wallet add alice --key 0xac09...ff80 --default
  w3dex wallet add deployer --dev-account 0
  w3dex wallet add bob --generate`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		name := args[0]
		mgr := newWalletMgr()

		switch {
		case walletGenerate:
			w, hexKey, err := mgr.Generate(name)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, ui.Success(fmt.Sprintf("Signing wallet %q generated: %s", name, ui.Addr(w.Address.Hex()))))
			fmt.Fprintln(out, ui.KeyValueBlock("", [][2]string{{"Private key", ui.Val(hexKey)}}))
			fmt.Fprintln(out, ui.Warn("Shown only once. Store it somewhere safe."))

		case walletKeyFlag != "" || cmd.Flags().Changed("dev-account"):
			key := walletKeyFlag
			if key == "" {
				var err error
				if key, err = devchain.DevKey(walletDevIndex); err != nil {
					return err
				}
			}
			w, err := mgr.Import(name, key)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, ui.Success(fmt.Sprintf("Signing wallet %q added: %s", name, ui.Addr(w.Address.Hex()))))

		default:
			if len(args) < 2 {
				return fmt.Errorf("address required for watch-only wallet\n  Usage: w3dex wallet add <name> <address>\n  Or for signing: w3dex wallet add <name> --key <private-key>")
			}
			w, err := mgr.AddWatchOnly(name, args[1])
			if err != nil {
				return err
			}
			fmt.Fprintln(out, ui.Success(fmt.Sprintf("Watch-only wallet %q added: %s", name, ui.Addr(w.Address.Hex()))))
		}

		if walletSetDefault {
			return useWallet(cmd, mgr, name)
		}
		return nil
	},
}

var walletListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all wallets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		wallets, err := newWalletMgr().List()
		if err != nil {
			return err
		}
		if len(wallets) == 0 {
			fmt.Fprintln(out, ui.Info("No wallets configured yet."))
			return nil
		}

		t := ui.NewTable([]ui.Column{
			{Title: "Name", Width: 16},
			{Title: "Address", Width: 44},
			{Title: "Type", Width: 12},
			{Title: "Default", Width: 8},
		})
		for _, w := range wallets {
			def := ""
			if w.IsDefault {
				def = ui.StyleSuccess.Render("✓")
			}
			t.AddRow(ui.Row{ui.Val(w.Name), ui.Addr(w.Address.Hex()), ui.Meta(string(w.Kind)), def})
		}
		fmt.Fprintln(out, t.Render())
		fmt.Fprintln(out, ui.Meta(fmt.Sprintf("%d wallet(s) configured", len(wallets))))
		return nil
	},
}

var walletUseCmd = &cobra.Command{
	Use:     "use <name>",
	Aliases: []string{"default"},
	Short:   "Set the default wallet",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return useWallet(cmd, newWalletMgr(), args[0])
	},
}

var walletRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a wallet and its stored key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		name := args[0]
		if !walletRemoveYes && !ui.Confirm(cmd.InOrStdin(), out, fmt.Sprintf("Remove wallet %q?", name)) {
			fmt.Fprintln(out, ui.Meta("Cancelled."))
			return nil
		}
		if err := newWalletMgr().Remove(name); err != nil {
			return err
		}
		if cfg.DefaultWallet == name {
			cfg.DefaultWallet = ""
			if err := cfg.Save(); err != nil {
				return err
			}
		}
		fmt.Fprintln(out, ui.Success(fmt.Sprintf("Wallet %q removed.", name)))
		return nil
	},
}

func init() {
	walletAddCmd.Flags().StringVar(&walletKeyFlag, "key", "", "private key for a signing wallet (stored in the OS keychain)")
	walletAddCmd.Flags().IntVar(&walletDevIndex, "dev-account", 0, "import the key of local development account `N`")
	walletAddCmd.Flags().BoolVar(&walletGenerate, "generate", false, "generate a new signing key")
	walletAddCmd.Flags().BoolVar(&walletSetDefault, "default", false, "make this the default wallet")
	walletAddCmd.MarkFlagsMutuallyExclusive("key", "generate", "dev-account")
	walletRemoveCmd.Flags().BoolVarP(&walletRemoveYes, "yes", "y", false, "skip the confirmation prompt")

	walletCmd.AddCommand(walletAddCmd, walletListCmd, walletUseCmd, walletRemoveCmd)
}

// useWallet marks name as the default in the wallet store and the config.
func useWallet(cmd *cobra.Command, mgr *wallet.Manager, name string) error {
	if err := mgr.SetDefault(name); err != nil {
		return err
	}
	cfg.DefaultWallet = name
	if err := cfg.Save(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Default wallet set to %q.", name)))
	return nil
}
