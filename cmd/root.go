package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Mohsinsiddi/w3dex/internal/app"
	"github.com/Mohsinsiddi/w3dex/internal/config"
	"github.com/Mohsinsiddi/w3dex/internal/contract"
	"github.com/Mohsinsiddi/w3dex/internal/devchain"
	"github.com/Mohsinsiddi/w3dex/internal/logging"
	"github.com/Mohsinsiddi/w3dex/internal/providers"
	"github.com/Mohsinsiddi/w3dex/internal/rpc"
	"github.com/Mohsinsiddi/w3dex/internal/store"
	"github.com/Mohsinsiddi/w3dex/internal/ui"
	"github.com/Mohsinsiddi/w3dex/internal/wallet"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Version is the current release. Overridable via build ldflags:
//
//	go build -ldflags "-X github.com/Mohsinsiddi/w3dex/cmd.Version=1.2.3" .
var Version = "0.1.0"

var (
	cfgDir        string
	chainCfgPath  string
	rpcURL        string
	walletName    string
	devMode       bool
	devAccount    int
	verbose       bool
	cfg           *config.Config
	logger        = zap.NewNop()
	newWalletMgr  = defaultWalletManager
	skipConfigFor = map[string]bool{"help": true, "completion": true}
)

// rootCmd is the top-level command.
var rootCmd = &cobra.Command{
	Use:   "w3dex",
	Short: "DAPP / eETH exchange shell",
	Long: `w3dex loads the exchange dapp state from an Ethereum node: provider,
network, account, the DAPP and eETH tokens, the exchange and balances.

Contract addresses come from the chain config, keyed by chain ID.
With --dev every command runs against an in-process development chain
laid out like a fresh Hardhat deploy; nothing persists between runs.`,
	Version:      Version,
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), ui.Banner(Version))
		cmd.Help() //nolint:errcheck
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if skipConfigFor[cmd.Name()] {
			return nil
		}
		var err error
		cfg, err = config.Load(cfgDir)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		logger = logging.Nop()
		if verbose {
			level := cfg.LogLevel
			if level == "info" || level == "" {
				level = "debug"
			}
			if logger, err = logging.New(level); err != nil {
				return err
			}
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync() //nolint:errcheck
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// CHAIN_CONFIG_DIR env var overrides --config flag.
	if envDir := os.Getenv("CHAIN_CONFIG_DIR"); envDir != "" {
		cfgDir = envDir
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgDir, "config", cfgDir, "config directory (default: ~/.w3dex)")
	pf.StringVar(&chainCfgPath, "chain-config", "", "chain config file (default: <config>/chains.json)")
	pf.StringVar(&rpcURL, "rpc", "", "JSON-RPC endpoint (overrides rpc_url)")
	pf.StringVar(&walletName, "wallet", "", "signing wallet (default: the default wallet)")
	pf.BoolVar(&devMode, "dev", false, "use the in-process development chain")
	pf.IntVar(&devAccount, "account", 0, "development account index (with --dev)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(
		loadCmd,
		dashboardCmd,
		tokenCmd,
		walletCmd,
		networkCmd,
		configCmd,
	)
}

// newShell builds a shell over the configured provider: the development
// chain with --dev, otherwise the RPC endpoint signing as the selected
// wallet when it is a signing wallet.
func newShell() (*app.Shell, error) {
	if devMode {
		dev := devchain.New()
		if err := dev.UseAccount(devAccount); err != nil {
			return nil, err
		}
		return app.NewShell(providers.NewDialer(dev, providers.Options{}), dev.Config(), store.New(logger), logger), nil
	}

	chains, err := config.LoadChainConfig(chainConfigFile())
	if err != nil {
		return nil, err
	}
	signer, err := selectedSigner()
	if err != nil {
		return nil, err
	}
	strategy, err := rpc.ParseStrategy(cfg.RPCStrategy)
	if err != nil {
		return nil, err
	}
	dial := providers.NewDialer(nil, providers.Options{
		URL:       endpoint(),
		Fallbacks: fallbacks(),
		Strategy:  strategy,
		RateLimit: cfg.RPCRateLimit,
		Burst:     cfg.RPCBurst,
		Signer:    signer,
		Logger:    logger,
	})
	return app.NewShell(dial, chains, store.New(logger), logger), nil
}

// selectedSigner returns the signer for --wallet or the default wallet. It
// returns nil when no wallet is selected or the wallet is watch-only.
func selectedSigner() (contract.TxSigner, error) {
	name := walletName
	if name == "" {
		name = cfg.DefaultWallet
	}
	if name == "" {
		return nil, nil
	}
	s, err := newWalletMgr().Signer(name)
	switch {
	case errors.Is(err, wallet.ErrWatchOnly) && walletName == "":
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("wallet %q: %w", name, err)
	}
	return s, nil
}

// defaultWalletManager creates a Manager backed by the config-dir JSON store.
func defaultWalletManager() *wallet.Manager {
	return wallet.NewManager(
		wallet.WithStore(wallet.NewJSONStore(cfg.WalletsPath())),
		wallet.WithKeyringDir(filepath.Join(cfg.Dir(), "keyring")),
	)
}

// endpoint is --rpc when given, else the configured rpc_url. Flag
// overrides never reach the saved config.
func endpoint() string {
	if rpcURL != "" {
		return rpcURL
	}
	return cfg.RPCURL
}

// fallbacks are the configured endpoints other than endpoint(). An explicit
// --rpc pins the endpoint and disables them.
func fallbacks() []string {
	if rpcURL != "" {
		return nil
	}
	var out []string
	for _, u := range cfg.Endpoints() {
		if u != cfg.RPCURL {
			out = append(out, u)
		}
	}
	return out
}

func chainConfigFile() string {
	if chainCfgPath != "" {
		if abs, err := filepath.Abs(chainCfgPath); err == nil {
			return abs
		}
		return chainCfgPath
	}
	return cfg.ChainConfigFile()
}
