package store

import (
	"math/big"

	"github.com/Mohsinsiddi/w3dex/internal/exchange"
	"github.com/Mohsinsiddi/w3dex/internal/token"
	"github.com/ethereum/go-ethereum/common"
)

// State is the shell's view of the chain. Values are replaced, never
// mutated in place, so a State handed to a subscriber stays valid.
type State struct {
	Provider ProviderState
	Account  AccountState
	Tokens   []TokenState
	Exchange ExchangeState

	// Failure is the most recent load error, if any.
	Failure *LoadFailed
}

// ProviderState is the connection and the chain it points at.
type ProviderState struct {
	Connected bool
	Endpoint  string
	ChainID   int64
}

// AccountState is the connected account and its native balance.
type AccountState struct {
	Address common.Address
	Loaded  bool
	Balance *big.Int
}

// TokenState is one loaded token binding and, once known, the account's
// balance of it.
type TokenState struct {
	Address common.Address
	Symbol  string
	Loaded  bool
	Balance *big.Int

	binding token.Token
}

// Binding returns the token binding, or nil before it is loaded.
func (t TokenState) Binding() token.Token { return t.binding }

// ExchangeState is the loaded exchange binding.
type ExchangeState struct {
	Loaded     bool
	Address    common.Address
	FeeAccount common.Address
	FeePercent *big.Int

	contract exchange.Exchange
}

// Contract returns the exchange binding, or nil before it is loaded.
func (e ExchangeState) Contract() exchange.Exchange { return e.contract }

// Reduce applies a to s and returns the new state.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case ProviderLoaded:
		s.Provider.Connected = true
		s.Provider.Endpoint = a.Endpoint
	case NetworkLoaded:
		s.Provider.ChainID = a.ChainID
	case AccountLoaded:
		s.Account = AccountState{Address: a.Account, Loaded: true}
	case EtherBalanceLoaded:
		s.Account.Balance = a.Balance
	case TokenLoaded:
		tokens := make([]TokenState, max(len(s.Tokens), a.Index+1))
		copy(tokens, s.Tokens)
		tokens[a.Index] = TokenState{
			Address: a.Token.Address(),
			Symbol:  a.Symbol,
			Loaded:  true,
			binding: a.Token,
		}
		s.Tokens = tokens
	case ExchangeLoaded:
		s.Exchange = ExchangeState{
			Loaded:     true,
			Address:    a.Exchange.Address(),
			FeeAccount: a.FeeAccount,
			FeePercent: a.FeePercent,
			contract:   a.Exchange,
		}
	case BalancesLoaded:
		tokens := make([]TokenState, len(s.Tokens))
		copy(tokens, s.Tokens)
		for i, b := range a.Balances {
			if i < len(tokens) {
				tokens[i].Balance = b
			}
		}
		s.Tokens = tokens
	case LoadFailed:
		f := a
		s.Failure = &f
	}
	return s
}
