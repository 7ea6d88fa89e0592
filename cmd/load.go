package cmd

import (
	"context"
	"fmt"

	"github.com/Mohsinsiddi/w3dex/internal/config"
	"github.com/Mohsinsiddi/w3dex/internal/ui"
	"github.com/spf13/cobra"
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Run the load sequence once and print the resulting state",
	Long: `Connect to the provider and load, in order: network, account and ether
balance, the DAPP and eETH tokens, the exchange and the account's token
balances. The first failing step stops the sequence and is reported.

Examples:
  w3dex load --dev
  w3dex load --rpc http://127.0.0.1:8545 --wallet alice`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		shell, err := newShell()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), config.LoadTimeout)
		defer cancel()

		out := cmd.OutOrStdout()
		spin := ui.NewSpinner(cmd.ErrOrStderr(), "Loading…")
		spin.Start()
		_, loadErr := shell.Load(ctx)
		spin.Stop()

		fmt.Fprint(out, ui.RenderState(shell.Store().State()))
		if loadErr != nil {
			return loadErr
		}
		fmt.Fprintln(out, ui.Success("Loaded."))
		return nil
	},
}
