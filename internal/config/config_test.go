package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Mohsinsiddi/w3dex/internal/config"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultConfig(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "http://127.0.0.1:8545", cfg.RPCURL)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Zero(t, cfg.RPCRateLimit)
	assert.Equal(t, 1, cfg.RPCBurst)
	assert.Equal(t, filepath.Join(dir, "chains.json"), cfg.ChainConfigFile())
	assert.Equal(t, filepath.Join(dir, "wallets.json"), cfg.WalletsPath())
}

func TestSaveAndReloadConfig(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.Load(dir)
	require.NoError(t, err)

	cfg.RPCURL = "http://node:8545"
	cfg.DefaultWallet = "mywallet"
	cfg.RPCRateLimit = 5

	require.NoError(t, cfg.Save())

	reloaded, err := config.Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "http://node:8545", reloaded.RPCURL)
	assert.Equal(t, "mywallet", reloaded.DefaultWallet)
	assert.Equal(t, 5.0, reloaded.RPCRateLimit)
}

func TestConfigFileCreatedOnSave(t *testing.T) {
	dir := t.TempDir()
	cfg, _ := config.Load(dir)
	require.NoError(t, cfg.Save())

	_, err := os.Stat(filepath.Join(dir, "config.json"))
	assert.NoError(t, err, "config.json should be created on save")
}

func TestConfigDir(t *testing.T) {
	dir := t.TempDir()
	cfg, _ := config.Load(dir)
	assert.Equal(t, dir, cfg.Dir())
}

func TestLoadFromNonExistentDir(t *testing.T) {
	dir := t.TempDir() + "/subdir"
	cfg, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:8545", cfg.RPCURL)
}

func TestLoadMalformedConfigErrors(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte("{nope"), 0o600))
	_, err := config.Load(dir)
	assert.Error(t, err)
}

func TestSetKnownKeys(t *testing.T) {
	cfg, _ := config.Load(t.TempDir())

	require.NoError(t, cfg.Set("rpc_url", "http://other:8545"))
	require.NoError(t, cfg.Set("log_level", "debug"))
	require.NoError(t, cfg.Set("rpc_rate_limit", "2.5"))
	require.NoError(t, cfg.Set("rpc_burst", "4"))

	assert.Equal(t, "http://other:8545", cfg.RPCURL)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 2.5, cfg.RPCRateLimit)
	assert.Equal(t, 4, cfg.RPCBurst)
}

func TestSetRejectsBadValues(t *testing.T) {
	cfg, _ := config.Load(t.TempDir())

	assert.ErrorIs(t, cfg.Set("nope", "x"), config.ErrUnknownKey)
	assert.Error(t, cfg.Set("rpc_rate_limit", "-1"))
	assert.Error(t, cfg.Set("rpc_burst", "0"))
}

func TestChainConfigPathResolution(t *testing.T) {
	dir := t.TempDir()
	cfg, _ := config.Load(dir)

	cfg.ChainConfigPath = "custom.json"
	assert.Equal(t, filepath.Join(dir, "custom.json"), cfg.ChainConfigFile())

	cfg.ChainConfigPath = "/etc/w3dex/chains.json"
	assert.Equal(t, "/etc/w3dex/chains.json", cfg.ChainConfigFile())
}

func TestFieldsSorted(t *testing.T) {
	cfg, _ := config.Load(t.TempDir())
	fields := cfg.Fields()
	require.Len(t, fields, 10)
	assert.Equal(t, "chain_config", fields[0][0])
	assert.Equal(t, "chain_config_source", fields[1][0])
	assert.Equal(t, "rpc_url", fields[9][0])
}

func TestRPCFallbacksAndStrategy(t *testing.T) {
	dir := t.TempDir()
	cfg, _ := config.Load(dir)
	assert.Equal(t, "failover", cfg.RPCStrategy)
	assert.Equal(t, []string{"http://127.0.0.1:8545"}, cfg.Endpoints())

	require.NoError(t, cfg.Set("rpc_fallbacks", " http://b:8545, ,http://127.0.0.1:8545,http://c:8545"))
	require.NoError(t, cfg.Set("rpc_strategy", "fastest"))
	assert.Error(t, cfg.Set("rpc_strategy", "round-robin"))
	assert.Equal(t, []string{"http://127.0.0.1:8545", "http://b:8545", "http://c:8545"}, cfg.Endpoints())

	require.NoError(t, cfg.Save())
	reloaded, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "fastest", reloaded.RPCStrategy)
	assert.Len(t, reloaded.RPCFallbacks, 3)

	require.NoError(t, reloaded.Set("rpc_fallbacks", ""))
	assert.Empty(t, reloaded.RPCFallbacks)
}

// ---------------------------------------------------------------------------
// chain config
// ---------------------------------------------------------------------------

const chainJSON = `{
  "31337": {
    "DAPP":     {"address": "0x5FbDB2315678afecb367f032d93F642f64180aa3"},
    "eETH":     {"address": "0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512"},
    "exchange": {"address": "0x9fE46736679d2D9a65F0992F2272dE9f3c7fa6e0"}
  }
}`

func writeChainConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chains.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadChainConfig(t *testing.T) {
	cc, err := config.LoadChainConfig(writeChainConfig(t, chainJSON))
	require.NoError(t, err)

	contracts, err := cc.ForChain(31337)
	require.NoError(t, err)

	assert.Equal(t, []common.Address{
		common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3"),
		common.HexToAddress("0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512"),
	}, contracts.TokenAddresses())
	assert.Equal(t, common.HexToAddress("0x9fE46736679d2D9a65F0992F2272dE9f3c7fa6e0"), contracts.ExchangeAddress())
}

func TestChainNotConfigured(t *testing.T) {
	cc, err := config.LoadChainConfig(writeChainConfig(t, chainJSON))
	require.NoError(t, err)

	_, err = cc.ForChain(1)
	assert.ErrorIs(t, err, config.ErrChainNotConfigured)
}

func TestLoadChainConfigMissingFile(t *testing.T) {
	cc, err := config.LoadChainConfig(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	assert.Empty(t, cc)

	_, err = cc.ForChain(31337)
	assert.ErrorIs(t, err, config.ErrChainNotConfigured)
}

func TestLoadChainConfigRejectsBadAddress(t *testing.T) {
	_, err := config.LoadChainConfig(writeChainConfig(t,
		`{"1": {"DAPP": {"address": "0x123"}, "eETH": {"address": "0x5FbDB2315678afecb367f032d93F642f64180aa3"}, "exchange": {"address": "0x5FbDB2315678afecb367f032d93F642f64180aa3"}}}`))
	assert.Error(t, err)
}

func TestLoadChainConfigRejectsBadChainID(t *testing.T) {
	_, err := config.LoadChainConfig(writeChainConfig(t, `{"mainnet": {}}`))
	assert.Error(t, err)
}

func TestChainConfigSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chains.json")
	in := config.ChainConfig{
		"5": {
			DAPP:     config.ContractRef{Address: "0x5FbDB2315678afecb367f032d93F642f64180aa3"},
			EETH:     config.ContractRef{Address: "0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512"},
			Exchange: config.ContractRef{Address: "0x9fE46736679d2D9a65F0992F2272dE9f3c7fa6e0"},
		},
	}
	require.NoError(t, in.Save(path))

	out, err := config.LoadChainConfig(path)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}
