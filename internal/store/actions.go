package store

import (
	"math/big"

	"github.com/Mohsinsiddi/w3dex/internal/exchange"
	"github.com/Mohsinsiddi/w3dex/internal/token"
	"github.com/ethereum/go-ethereum/common"
)

// Action is a state transition applied by Reduce.
type Action interface {
	Type() string
}

// ProviderLoaded records a live provider connection.
type ProviderLoaded struct {
	Endpoint string
}

// NetworkLoaded records the active chain ID.
type NetworkLoaded struct {
	ChainID int64
}

// AccountLoaded records the connected account.
type AccountLoaded struct {
	Account common.Address
}

// EtherBalanceLoaded records the account's native balance in wei.
type EtherBalanceLoaded struct {
	Balance *big.Int
}

// TokenLoaded records one token binding. Index is its position in the
// configured token list (0 = DAPP, 1 = eETH).
type TokenLoaded struct {
	Index  int
	Token  token.Token
	Symbol string
}

// ExchangeLoaded records the exchange binding and its fee settings.
type ExchangeLoaded struct {
	Exchange   exchange.Exchange
	FeeAccount common.Address
	FeePercent *big.Int
}

// BalancesLoaded records the account's balance of every loaded token, in
// token order.
type BalancesLoaded struct {
	Balances []*big.Int
}

// LoadFailed records the step that failed and why.
type LoadFailed struct {
	Step string
	Err  error
}

func (ProviderLoaded) Type() string     { return "PROVIDER_LOADED" }
func (NetworkLoaded) Type() string      { return "NETWORK_LOADED" }
func (AccountLoaded) Type() string      { return "ACCOUNT_LOADED" }
func (EtherBalanceLoaded) Type() string { return "ETHER_BALANCE_LOADED" }
func (TokenLoaded) Type() string        { return "TOKEN_LOADED" }
func (ExchangeLoaded) Type() string     { return "EXCHANGE_LOADED" }
func (BalancesLoaded) Type() string     { return "BALANCES_LOADED" }
func (LoadFailed) Type() string         { return "LOAD_FAILED" }
