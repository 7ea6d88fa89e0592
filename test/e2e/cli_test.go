package e2e_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Mohsinsiddi/w3dex/test/fixtures"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var binaryPath string

func TestMain(m *testing.M) {
	// Build the binary before all E2E tests.
	tmp, err := os.MkdirTemp("", "w3dex-e2e-test")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(tmp)

	binaryPath = filepath.Join(tmp, "w3dex")
	// Build from the module root (two levels up from test/e2e/).
	moduleRoot, err := filepath.Abs(filepath.Join("..", ".."))
	if err != nil {
		panic(err)
	}
	cmd := exec.Command("go", "build", "-o", binaryPath, ".")
	cmd.Dir = moduleRoot
	if out, err := cmd.CombinedOutput(); err != nil {
		panic("build failed: " + string(out))
	}

	os.Exit(m.Run())
}

func runCLI(t *testing.T, configDir string, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(binaryPath, args...)
	cmd.Env = append(os.Environ(), "CHAIN_CONFIG_DIR="+configDir)
	out, err := cmd.CombinedOutput()
	return string(out), err
}

func TestVersionFlag(t *testing.T) {
	dir := t.TempDir()
	out, err := runCLI(t, dir, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "w3dex")
	assert.Contains(t, out, "0.1.0")
}

func TestHelpCommand(t *testing.T) {
	dir := t.TempDir()
	out, err := runCLI(t, dir, "--help")
	require.NoError(t, err)
	for _, sub := range []string{"load", "dashboard", "token", "wallet", "network", "config", "--dev"} {
		assert.Contains(t, out, sub)
	}
}

func TestLoadDev(t *testing.T) {
	dir := t.TempDir()
	out, err := runCLI(t, dir, "load", "--dev")
	require.NoError(t, err, out)
	assert.Contains(t, out, "31337")
	assert.Contains(t, out, "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	assert.Contains(t, out, "DAPP")
	assert.Contains(t, out, "eETH")
	assert.Contains(t, out, "10%")
	assert.Contains(t, out, "Loaded")
}

func TestLoadDevOtherAccount(t *testing.T) {
	dir := t.TempDir()
	out, err := runCLI(t, dir, "load", "--dev", "--account", "1")
	require.NoError(t, err, out)
	assert.Contains(t, out, "0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
}

func TestLoadUnreachableNodeFailsAtProvider(t *testing.T) {
	dir := t.TempDir()
	fixtures.CopyChainConfig(t, "hardhat.json", dir)
	out, err := runCLI(t, dir, "load", "--rpc", "http://127.0.0.1:1")
	assert.Error(t, err)
	assert.Contains(t, out, "provider")
}

func TestTokenInfoDev(t *testing.T) {
	dir := t.TempDir()
	out, err := runCLI(t, dir, "token", "info", "DAPP", "--dev")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Dapp Coin")
	assert.Contains(t, out, "1000000")
	assert.Contains(t, out, "18")
}

func TestTokenTransferDev(t *testing.T) {
	dir := t.TempDir()
	out, err := runCLI(t, dir, "token", "transfer", "eETH",
		"0x70997970C51812dc3A010C7d01b50e0d17dc79C8", "100", "--dev", "--yes")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Confirmed")
	assert.Contains(t, out, "Transfer")
}

func TestTokenTransferInsufficientBalanceDev(t *testing.T) {
	dir := t.TempDir()
	out, err := runCLI(t, dir, "token", "transfer", "DAPP",
		"0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266", "1", "--dev", "--account", "2", "--yes")
	assert.Error(t, err)
	assert.Contains(t, out, "insufficient balance")
}

func TestTokenTransferCancelled(t *testing.T) {
	dir := t.TempDir()
	cmd := exec.Command(binaryPath, "token", "approve", "DAPP", "exchange", "5", "--dev")
	cmd.Env = append(os.Environ(), "CHAIN_CONFIG_DIR="+dir)
	cmd.Stdin = strings.NewReader("n\n")
	out, err := cmd.CombinedOutput()
	require.NoError(t, err)
	assert.Contains(t, string(out), "Cancelled")
}

func TestNetworkSetDevAndList(t *testing.T) {
	dir := t.TempDir()
	_, err := runCLI(t, dir, "network", "set-dev")
	require.NoError(t, err)

	out, err := runCLI(t, dir, "network", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "31337")
	assert.Contains(t, out, "0x5FbD")
}

func TestNetworkSetRejectsBadAddress(t *testing.T) {
	dir := t.TempDir()
	_, err := runCLI(t, dir, "network", "set", "5", "--dapp", "0x1", "--eeth", "0x2", "--exchange", "0x3")
	assert.Error(t, err)
}

func TestWalletAddAndList(t *testing.T) {
	dir := t.TempDir()

	_, err := runCLI(t, dir, "wallet", "add", "testwal", "0x1234567890abcdef1234567890abcdef12345678")
	require.NoError(t, err)

	out, err := runCLI(t, dir, "wallet", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "testwal")
	assert.Contains(t, out, "0x1234")
}

func TestWalletRemove(t *testing.T) {
	dir := t.TempDir()

	runCLI(t, dir, "wallet", "add", "w1", "0x1234567890abcdef1234567890abcdef12345678") //nolint:errcheck

	// Use stdin to auto-confirm the prompt.
	cmd := exec.Command(binaryPath, "wallet", "remove", "w1")
	cmd.Env = append(os.Environ(), "CHAIN_CONFIG_DIR="+dir)
	cmd.Stdin = strings.NewReader("y\n")
	cmd.Run() //nolint:errcheck

	out, err := runCLI(t, dir, "wallet", "list")
	require.NoError(t, err)
	assert.NotContains(t, out, "w1")
}

func TestConfigList(t *testing.T) {
	dir := t.TempDir()
	out, err := runCLI(t, dir, "config", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "rpc_url")
	assert.Contains(t, out, "chain_config")
}

func TestConfigSet(t *testing.T) {
	dir := t.TempDir()
	_, err := runCLI(t, dir, "config", "set", "rpc_url", "http://10.0.0.2:8545")
	require.NoError(t, err)

	out, _ := runCLI(t, dir, "config", "list")
	assert.Contains(t, out, "10.0.0.2")
}

func TestConfigSetUnknownKey(t *testing.T) {
	dir := t.TempDir()
	_, err := runCLI(t, dir, "config", "set", "network_mode", "testnet")
	assert.Error(t, err)
}

func TestUnknownCommandShowsError(t *testing.T) {
	dir := t.TempDir()
	out, _ := runCLI(t, dir, "unknowncommand")
	assert.Contains(t, strings.ToLower(out), "unknown command")
}
