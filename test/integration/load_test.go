package integration_test

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Mohsinsiddi/w3dex/internal/app"
	"github.com/Mohsinsiddi/w3dex/internal/providers"
	"github.com/Mohsinsiddi/w3dex/internal/store"
	"github.com/Mohsinsiddi/w3dex/internal/token"
	"github.com/Mohsinsiddi/w3dex/test/fixtures"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	account  = common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	feeAcct  = common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	dapp     = common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	eeth     = common.HexToAddress("0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512")
	exchange = common.HexToAddress("0x9fE46736679d2D9a65F0992F2272dE9f3c7fa6e0")
)

type tokenFixture struct {
	symbol  string
	balance *big.Int
}

func abiString(s string) string {
	data := hex.EncodeToString([]byte(s))
	if rem := len(data) % 64; rem != 0 {
		data += strings.Repeat("0", 64-rem)
	}
	return fmt.Sprintf("0x%064x%064x%s", 32, len(s), data)
}

func word(v *big.Int) string { return fmt.Sprintf("0x%064x", v) }

// mockNode mimics a Hardhat node after the deploy script has run.
func mockNode(t *testing.T, chainID int64, tokens map[common.Address]tokenFixture) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string            `json:"method"`
			Params []json.RawMessage `json:"params"`
			ID     int64             `json:"id"`
		}
		json.NewDecoder(r.Body).Decode(&req) //nolint:errcheck

		var result interface{}
		switch req.Method {
		case "eth_blockNumber":
			result = "0x3"
		case "eth_chainId":
			result = fmt.Sprintf("0x%x", chainID)
		case "eth_accounts":
			result = []string{account.Hex(), feeAcct.Hex()}
		case "eth_getBalance":
			result = "0x21e19e0c9bab2400000" // 10000 ether
		case "eth_getCode":
			result = "0x6080604052"
		case "eth_call":
			var call struct {
				To   string `json:"to"`
				Data string `json:"data"`
			}
			json.Unmarshal(req.Params[0], &call) //nolint:errcheck
			to := common.HexToAddress(call.To)
			sel := call.Data[:10]
			switch {
			case to == exchange && sel == "0x65e17c9d":
				result = "0x" + strings.Repeat("0", 24) + strings.ToLower(feeAcct.Hex()[2:])
			case to == exchange && sel == "0x7fd6f15c":
				result = word(big.NewInt(10))
			case sel == "0x95d89b41":
				result = abiString(tokens[to].symbol)
			case sel == "0x70a08231":
				result = word(tokens[to].balance)
			default:
				result = "0x"
			}
		default:
			http.Error(w, "method not found", http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{ //nolint:errcheck
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result":  result,
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestLoadAgainstNode(t *testing.T) {
	server := mockNode(t, 31337, map[common.Address]tokenFixture{
		dapp: {"DAPP", token.Tokens(1_000_000)},
		eeth: {"eETH", token.Tokens(250)},
	})

	st := store.New(nil)
	shell := app.NewShell(
		providers.NewDialer(nil, providers.Options{URL: server.URL}),
		fixtures.LoadChainConfig(t, "hardhat.json"),
		st, nil,
	)

	session, err := shell.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(31337), session.ChainID)
	assert.Equal(t, account, session.Account)
	require.Len(t, session.Tokens, 2)

	s := st.State()
	assert.True(t, s.Provider.Connected)
	assert.Equal(t, server.URL, s.Provider.Endpoint)
	assert.Equal(t, "DAPP", s.Tokens[0].Symbol)
	assert.Equal(t, "eETH", s.Tokens[1].Symbol)
	assert.Equal(t, token.Tokens(1_000_000), s.Tokens[0].Balance)
	assert.Equal(t, token.Tokens(250), s.Tokens[1].Balance)
	assert.Equal(t, exchange, s.Exchange.Address)
	assert.Equal(t, feeAcct, s.Exchange.FeeAccount)
	assert.Equal(t, int64(10), s.Exchange.FeePercent.Int64())
	assert.Equal(t, "10000", token.FormatUnits(s.Account.Balance, token.Decimals))
	assert.Nil(t, s.Failure)
}

func TestLoadUnconfiguredChainStopsAtConfig(t *testing.T) {
	server := mockNode(t, 11155111, nil)

	st := store.New(nil)
	shell := app.NewShell(
		providers.NewDialer(nil, providers.Options{URL: server.URL}),
		fixtures.LoadChainConfig(t, "hardhat.json"),
		st, nil,
	)

	_, err := shell.Load(context.Background())
	require.Error(t, err)

	s := st.State()
	assert.Equal(t, int64(11155111), s.Provider.ChainID)
	require.NotNil(t, s.Failure)
	assert.Equal(t, app.StepConfig, s.Failure.Step)
	assert.False(t, s.Account.Loaded)
	assert.Empty(t, s.Tokens)
}

func TestLoadUnreachableNode(t *testing.T) {
	st := store.New(nil)
	shell := app.NewShell(
		providers.NewDialer(nil, providers.Options{URL: "http://127.0.0.1:1"}),
		fixtures.LoadChainConfig(t, "hardhat.json"),
		st, nil,
	)

	_, err := shell.Load(context.Background())
	require.Error(t, err)
	require.NotNil(t, st.State().Failure)
	assert.Equal(t, app.StepProvider, st.State().Failure.Step)
	assert.False(t, st.State().Provider.Connected)
}
