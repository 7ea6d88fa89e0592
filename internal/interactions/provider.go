// Package interactions holds the load steps the shell runs against a
// provider. Each step dispatches its result into the store and returns it.
package interactions

import (
	"context"
	"errors"
	"math/big"

	"github.com/Mohsinsiddi/w3dex/internal/exchange"
	"github.com/Mohsinsiddi/w3dex/internal/store"
	"github.com/Mohsinsiddi/w3dex/internal/token"
	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrNoAccounts is returned when the provider exposes no accounts.
	ErrNoAccounts = errors.New("provider exposes no accounts")
	// ErrNoContract is returned when a configured address holds no contract.
	ErrNoContract = errors.New("no contract deployed at address")
	// ErrReadOnly is returned for writes through a provider with no signer.
	ErrReadOnly = errors.New("provider has no signing account")
)

// Provider is a connection to an Ethereum-compatible chain.
type Provider interface {
	// Endpoint describes the connection for display.
	Endpoint() string
	ChainID(ctx context.Context) (int64, error)
	// Accounts lists the accounts the provider can act for. The first is
	// the connected account.
	Accounts(ctx context.Context) ([]common.Address, error)
	BalanceAt(ctx context.Context, account common.Address) (*big.Int, error)
	Token(ctx context.Context, address common.Address) (token.Token, error)
	Exchange(ctx context.Context, address common.Address) (exchange.Exchange, error)
}

// Writer is implemented by providers that can send token transactions from
// the connected account.
type Writer interface {
	Transactor(ctx context.Context, tokenAddr common.Address) (token.Transactor, error)
}

// Dialer opens a provider connection.
type Dialer func(ctx context.Context) (Provider, error)

// Dispatcher receives load results. *store.Store satisfies it.
type Dispatcher interface {
	Dispatch(store.Action)
}
