package cmd

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/Mohsinsiddi/w3dex/internal/chain"
	"github.com/Mohsinsiddi/w3dex/internal/config"
	"github.com/Mohsinsiddi/w3dex/internal/devchain"
	"github.com/Mohsinsiddi/w3dex/internal/rpc"
	chainsync "github.com/Mohsinsiddi/w3dex/internal/sync"
	"github.com/Mohsinsiddi/w3dex/internal/ui"
	"github.com/spf13/cobra"
)

var (
	netDAPP     string
	netEETH     string
	netExchange string
	syncWatch   time.Duration
)

var networkCmd = &cobra.Command{
	Use:   "network",
	Short: "Manage the chain config and check the RPC endpoint",
}

var networkListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the chains with configured contracts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		path := chainConfigFile()
		chains, err := config.LoadChainConfig(path)
		if err != nil {
			return err
		}
		if len(chains) == 0 {
			fmt.Fprintln(out, ui.Info("No chains configured in "+path))
			return nil
		}

		ids := make([]string, 0, len(chains))
		for id := range chains {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool {
			a, _ := strconv.ParseInt(ids[i], 10, 64)
			b, _ := strconv.ParseInt(ids[j], 10, 64)
			return a < b
		})

		t := ui.NewTable([]ui.Column{
			{Title: "Chain ID", Width: 10},
			{Title: "DAPP", Width: 14},
			{Title: "eETH", Width: 14},
			{Title: "Exchange", Width: 14},
		})
		for _, id := range ids {
			c := chains[id]
			t.AddRow(ui.Row{
				ui.ChainName(id),
				ui.Addr(ui.TruncateAddr(c.DAPP.Address)),
				ui.Addr(ui.TruncateAddr(c.EETH.Address)),
				ui.Addr(ui.TruncateAddr(c.Exchange.Address)),
			})
		}
		fmt.Fprintln(out, t.Render())
		fmt.Fprintln(out, ui.Meta(fmt.Sprintf("%d chain(s) in %s", len(chains), path)))
		return nil
	},
}

var networkSetCmd = &cobra.Command{
	Use:   "set <chain-id>",
	Short: "Set the contract addresses for a chain",
	Long: `Set the DAPP, eETH and exchange addresses for a chain ID.

Examples:
  w3dex network set 11155111 --dapp 0x... --eeth 0x... --exchange 0x...`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := chainConfigFile()
		chains, err := config.LoadChainConfig(path)
		if err != nil {
			return err
		}
		chains[args[0]] = config.ChainContracts{
			DAPP:     config.ContractRef{Address: netDAPP},
			EETH:     config.ContractRef{Address: netEETH},
			Exchange: config.ContractRef{Address: netExchange},
		}
		if err := chains.Validate(); err != nil {
			return err
		}
		if err := chains.Save(path); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Chain %s saved to %s", ui.ChainName(args[0]), path)))
		return nil
	},
}

var networkSetDevCmd = &cobra.Command{
	Use:   "set-dev",
	Short: "Add the local Hardhat deployment (chain 31337) to the chain config",
	Long: `Write the addresses a fresh Hardhat node assigns when the deploy script
deploys DAPP, eETH and the exchange from the first account, in that order.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := chainConfigFile()
		chains, err := config.LoadChainConfig(path)
		if err != nil {
			return err
		}
		for id, c := range devchain.New().Config() {
			chains[id] = c
		}
		if err := chains.Save(path); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Chain %d saved to %s", devchain.ChainID, path)))
		return nil
	},
}

var networkPingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Probe the RPC endpoint and its fallbacks",
	Long: `Ping rpc_url and every rpc_fallbacks entry in parallel and show which
one the configured rpc_strategy would dial.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		ctx, cancel := context.WithTimeout(cmd.Context(), config.DialTimeout)
		defer cancel()

		strategy, err := rpc.ParseStrategy(cfg.RPCStrategy)
		if err != nil {
			return err
		}
		urls := append([]string{endpoint()}, fallbacks()...)
		cands := rpc.Probe(ctx, urls, chain.WithLogger(logger))
		winner, pickErr := rpc.Pick(cands, strategy)

		t := ui.NewTable([]ui.Column{
			{Title: "Endpoint", Width: 36},
			{Title: "Block", Width: 10},
			{Title: "Latency", Width: 10},
			{Title: "Status", Width: 24},
		})
		for _, c := range cands {
			status := ui.Success("ok")
			if !c.Healthy() {
				status = ui.Err(c.Err.Error())
			}
			if pickErr == nil && c.URL == winner.URL {
				status += " " + ui.ChainName("← "+string(strategy))
			}
			t.AddRow(ui.Row{
				ui.Addr(c.URL),
				strconv.FormatUint(c.Block, 10),
				ui.Meta(c.Latency.Round(time.Millisecond).String()),
				status,
			})
		}
		fmt.Fprintln(out, t.Render())
		return pickErr
	},
}

var networkSyncCmd = &cobra.Command{
	Use:   "sync [url]",
	Short: "Merge a published chain config into the local one",
	Long: `Fetch a chain config JSON document and merge it into the local chain
config. Chains in the document replace local entries with the same ID;
chains only present locally are kept. A URL argument is saved as
chain_config_source for later runs.

Examples:
  w3dex network sync https://example.org/w3dex/chains.json
  w3dex network sync --watch 10m`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		s := chainsync.New(cfg, chainConfigFile(), logger)
		if len(args) == 1 {
			if err := s.SetSource(args[0]); err != nil {
				return err
			}
		}

		report := func(res *chainsync.Result, err error) {
			if err != nil {
				fmt.Fprintln(out, ui.Err(err.Error()))
				return
			}
			fmt.Fprintln(out, ui.Success(fmt.Sprintf("Synced from %s: %d added, %d updated, %d unchanged",
				cfg.ChainSource, len(res.Added), len(res.Updated), len(res.Unchanged))))
			for _, id := range res.Added {
				fmt.Fprintln(out, "  + "+ui.ChainName(id))
			}
			for _, id := range res.Updated {
				fmt.Fprintln(out, "  ~ "+ui.ChainName(id))
			}
		}

		if syncWatch > 0 {
			fmt.Fprintln(out, ui.Meta(fmt.Sprintf("Syncing every %s, Ctrl+C to stop", syncWatch)))
			return s.Watch(cmd.Context(), syncWatch, report)
		}

		res, err := s.Run(cmd.Context())
		if err != nil {
			return err
		}
		report(res, nil)
		return nil
	},
}

func init() {
	networkSyncCmd.Flags().DurationVar(&syncWatch, "watch", 0, "keep syncing at this interval")
	networkSetCmd.Flags().StringVar(&netDAPP, "dapp", "", "DAPP token address")
	networkSetCmd.Flags().StringVar(&netEETH, "eeth", "", "eETH token address")
	networkSetCmd.Flags().StringVar(&netExchange, "exchange", "", "exchange address")
	for _, f := range []string{"dapp", "eeth", "exchange"} {
		networkSetCmd.MarkFlagRequired(f) //nolint:errcheck
	}
	networkCmd.AddCommand(networkListCmd, networkSetCmd, networkSetDevCmd, networkPingCmd, networkSyncCmd)
}
