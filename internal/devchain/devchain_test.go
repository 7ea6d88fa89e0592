package devchain_test

import (
	"context"
	"math/big"
	"testing"

	"github.com/Mohsinsiddi/w3dex/internal/devchain"
	"github.com/Mohsinsiddi/w3dex/internal/interactions"
	"github.com/Mohsinsiddi/w3dex/internal/token"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	account0 = common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	account1 = common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	dappAddr = common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	eethAddr = common.HexToAddress("0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512")
	exAddr   = common.HexToAddress("0x9fE46736679d2D9a65F0992F2272dE9f3c7fa6e0")
)

func TestAccountsAreHardhatDefaults(t *testing.T) {
	c := devchain.New()
	accounts, err := c.Accounts(context.Background())
	require.NoError(t, err)
	require.Len(t, accounts, 4)
	assert.Equal(t, account0, accounts[0])
	assert.Equal(t, account1, accounts[1])
}

func TestDeploymentAddressesMatchHardhat(t *testing.T) {
	cc := devchain.New().Config()
	contracts, err := cc.ForChain(devchain.ChainID)
	require.NoError(t, err)

	assert.Equal(t, []common.Address{dappAddr, eethAddr}, contracts.TokenAddresses())
	assert.Equal(t, exAddr, contracts.ExchangeAddress())
	assert.NoError(t, cc.Validate())
}

func TestTokensDeployed(t *testing.T) {
	ctx := context.Background()
	c := devchain.New()

	dapp, err := c.Token(ctx, dappAddr)
	require.NoError(t, err)
	name, _ := dapp.Name(ctx)
	symbol, _ := dapp.Symbol(ctx)
	assert.Equal(t, "Dapp Coin", name)
	assert.Equal(t, "DAPP", symbol)

	bal, err := dapp.BalanceOf(ctx, account0)
	require.NoError(t, err)
	assert.Equal(t, 0, bal.Cmp(token.Tokens(1_000_000)))

	eeth, err := c.Token(ctx, eethAddr)
	require.NoError(t, err)
	symbol, _ = eeth.Symbol(ctx)
	assert.Equal(t, "eETH", symbol)
}

func TestUnknownContract(t *testing.T) {
	ctx := context.Background()
	c := devchain.New()

	_, err := c.Token(ctx, common.HexToAddress("0x01"))
	assert.ErrorIs(t, err, interactions.ErrNoContract)
	_, err = c.Exchange(ctx, dappAddr)
	assert.ErrorIs(t, err, interactions.ErrNoContract)
	_, err = c.Transactor(ctx, exAddr)
	assert.ErrorIs(t, err, interactions.ErrNoContract)
}

func TestExchangeFees(t *testing.T) {
	ctx := context.Background()
	ex, err := devchain.New().Exchange(ctx, exAddr)
	require.NoError(t, err)

	fee, err := ex.FeeAccount(ctx)
	require.NoError(t, err)
	assert.Equal(t, account1, fee)

	pct, err := ex.FeePercent(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(10), pct.Int64())
}

func TestNativeBalances(t *testing.T) {
	ctx := context.Background()
	c := devchain.New()

	bal, err := c.BalanceAt(ctx, account0)
	require.NoError(t, err)
	want, _ := new(big.Int).SetString("10000000000000000000000", 10)
	assert.Equal(t, 0, bal.Cmp(want))

	bal, err = c.BalanceAt(ctx, common.HexToAddress("0x01"))
	require.NoError(t, err)
	assert.Zero(t, bal.Sign())
}

func TestUseAccountSwitchesSender(t *testing.T) {
	ctx := context.Background()
	c := devchain.New()
	require.NoError(t, c.UseAccount(1))

	accounts, _ := c.Accounts(ctx)
	assert.Equal(t, account1, accounts[0])
	assert.Len(t, accounts, 4)

	tx, err := c.Transactor(ctx, dappAddr)
	require.NoError(t, err)
	assert.Equal(t, account1, tx.From())

	assert.Error(t, c.UseAccount(9))
}

func TestTransactorWritesLedger(t *testing.T) {
	ctx := context.Background()
	c := devchain.New()

	tx, err := c.Transactor(ctx, dappAddr)
	require.NoError(t, err)
	_, err = tx.Transfer(ctx, account1, token.Tokens(25))
	require.NoError(t, err)

	ledger, ok := c.Ledger(dappAddr)
	require.True(t, ok)
	bal, _ := ledger.BalanceOf(ctx, account1)
	assert.Equal(t, 0, bal.Cmp(token.Tokens(25)))
}

func TestDevKeyMatchesAccount(t *testing.T) {
	accounts, err := devchain.New().Accounts(context.Background())
	require.NoError(t, err)

	for i, want := range accounts {
		hexKey, err := devchain.DevKey(i)
		require.NoError(t, err)
		key, err := crypto.HexToECDSA(hexKey[2:])
		require.NoError(t, err)
		assert.Equal(t, want, crypto.PubkeyToAddress(key.PublicKey), "account %d", i)
	}

	_, err = devchain.DevKey(len(accounts))
	assert.Error(t, err)
	_, err = devchain.DevKey(-1)
	assert.Error(t, err)
}
