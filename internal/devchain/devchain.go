// Package devchain is an in-process development chain: the well-known
// Hardhat accounts, the DAPP and eETH tokens and an exchange, deployed the
// way the local deploy script lays them out.
package devchain

import (
	"context"
	"fmt"
	"math/big"
	"strconv"
	"sync"

	"github.com/Mohsinsiddi/w3dex/internal/config"
	"github.com/Mohsinsiddi/w3dex/internal/exchange"
	"github.com/Mohsinsiddi/w3dex/internal/interactions"
	"github.com/Mohsinsiddi/w3dex/internal/token"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// ChainID is the Hardhat network chain ID.
const ChainID int64 = 31337

const (
	endpoint = "devchain"

	tokenSupply = 1_000_000 // whole tokens minted to the deployer
	feePercent  = 10
	etherFunds  = 10_000 // whole ether per account
)

// Well-known Hardhat development keys. Never fund these on a real network.
var devKeys = []string{
	"ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80",
	"59c6995e998f97a5a0044966f0945389dc9e86dae88c7a8412f4603b6b78690d",
	"5de4111afa1a4b94908f83103eb1f1706367c2e68ca870fc3fb9a804cdab365a",
	"7c852118294e51e653712a81e05800f419141751be58f605c371e15141b007a6",
}

// Chain is an in-process chain. It satisfies interactions.Provider and
// interactions.Writer.
type Chain struct {
	mu       sync.RWMutex
	accounts []common.Address
	ether    map[common.Address]*big.Int
	tokens   map[common.Address]*token.Ledger
	exchange *exchange.Local
	sender   common.Address

	dapp, eeth common.Address
}

var (
	_ interactions.Provider = (*Chain)(nil)
	_ interactions.Writer   = (*Chain)(nil)
)

// New deploys DAPP, eETH and the exchange from the first account, in that
// order, so their addresses match a fresh Hardhat node.
func New() *Chain {
	c := &Chain{
		ether:  make(map[common.Address]*big.Int),
		tokens: make(map[common.Address]*token.Ledger),
	}
	funds := new(big.Int).Mul(big.NewInt(etherFunds), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
	for _, hexKey := range devKeys {
		key, err := crypto.HexToECDSA(hexKey)
		if err != nil {
			panic(fmt.Sprintf("devchain: bad builtin key: %v", err))
		}
		addr := crypto.PubkeyToAddress(key.PublicKey)
		c.accounts = append(c.accounts, addr)
		c.ether[addr] = new(big.Int).Set(funds)
	}

	deployer := c.accounts[0]
	c.sender = deployer
	c.dapp = crypto.CreateAddress(deployer, 0)
	c.eeth = crypto.CreateAddress(deployer, 1)
	c.tokens[c.dapp] = token.Deploy(c.dapp, deployer, "Dapp Coin", "DAPP", big.NewInt(tokenSupply))
	c.tokens[c.eeth] = token.Deploy(c.eeth, deployer, "Dapp Ether", "eETH", big.NewInt(tokenSupply))
	c.exchange = exchange.NewLocal(crypto.CreateAddress(deployer, 2), c.accounts[1], feePercent)
	return c
}

// Config returns the chain configuration pointing at this chain's contracts.
func (c *Chain) Config() config.ChainConfig {
	return config.ChainConfig{
		strconv.FormatInt(ChainID, 10): {
			DAPP:     config.ContractRef{Address: c.dapp.Hex()},
			EETH:     config.ContractRef{Address: c.eeth.Hex()},
			Exchange: config.ContractRef{Address: c.exchange.Address().Hex()},
		},
	}
}

// DevKey returns the 0x-prefixed private key of development account i, the
// same key a local Hardhat or Anvil node funds at that index.
func DevKey(i int) (string, error) {
	if i < 0 || i >= len(devKeys) {
		return "", fmt.Errorf("account index %d out of range [0,%d)", i, len(devKeys))
	}
	return "0x" + devKeys[i], nil
}

// UseAccount makes account i the connected account.
func (c *Chain) UseAccount(i int) error {
	if i < 0 || i >= len(c.accounts) {
		return fmt.Errorf("account index %d out of range [0,%d)", i, len(c.accounts))
	}
	c.mu.Lock()
	c.sender = c.accounts[i]
	c.mu.Unlock()
	return nil
}

// Ledger returns the token deployed at address.
func (c *Chain) Ledger(address common.Address) (*token.Ledger, bool) {
	l, ok := c.tokens[address]
	return l, ok
}

func (c *Chain) Endpoint() string { return endpoint }

func (c *Chain) ChainID(context.Context) (int64, error) { return ChainID, nil }

// Accounts lists every development account with the connected one first.
func (c *Chain) Accounts(context.Context) ([]common.Address, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := []common.Address{c.sender}
	for _, a := range c.accounts {
		if a != c.sender {
			out = append(out, a)
		}
	}
	return out, nil
}

func (c *Chain) BalanceAt(_ context.Context, account common.Address) (*big.Int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if b, ok := c.ether[account]; ok {
		return new(big.Int).Set(b), nil
	}
	return new(big.Int), nil
}

func (c *Chain) Token(_ context.Context, address common.Address) (token.Token, error) {
	l, ok := c.tokens[address]
	if !ok {
		return nil, fmt.Errorf("%w: %s", interactions.ErrNoContract, address.Hex())
	}
	return l, nil
}

func (c *Chain) Exchange(_ context.Context, address common.Address) (exchange.Exchange, error) {
	if address != c.exchange.Address() {
		return nil, fmt.Errorf("%w: %s", interactions.ErrNoContract, address.Hex())
	}
	return c.exchange, nil
}

// Transactor connects the current account to the token at tokenAddr.
func (c *Chain) Transactor(_ context.Context, tokenAddr common.Address) (token.Transactor, error) {
	l, ok := c.tokens[tokenAddr]
	if !ok {
		return nil, fmt.Errorf("%w: %s", interactions.ErrNoContract, tokenAddr.Hex())
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return l.Connect(c.sender), nil
}
