package interactions

import (
	"context"
	"fmt"
	"math/big"

	"github.com/Mohsinsiddi/w3dex/internal/exchange"
	"github.com/Mohsinsiddi/w3dex/internal/store"
	"github.com/Mohsinsiddi/w3dex/internal/token"
	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"
)

// LoadProvider establishes the provider connection.
func LoadProvider(ctx context.Context, dial Dialer, d Dispatcher) (Provider, error) {
	p, err := dial(ctx)
	if err != nil {
		return nil, fmt.Errorf("connecting provider: %w", err)
	}
	d.Dispatch(store.ProviderLoaded{Endpoint: p.Endpoint()})
	return p, nil
}

// LoadNetwork resolves the chain ID the provider is connected to.
func LoadNetwork(ctx context.Context, p Provider, d Dispatcher) (int64, error) {
	id, err := p.ChainID(ctx)
	if err != nil {
		return 0, fmt.Errorf("resolving chain id: %w", err)
	}
	d.Dispatch(store.NetworkLoaded{ChainID: id})
	return id, nil
}

// LoadAccount loads the connected account and its native balance.
func LoadAccount(ctx context.Context, p Provider, d Dispatcher) (common.Address, error) {
	accounts, err := p.Accounts(ctx)
	if err != nil {
		return common.Address{}, fmt.Errorf("listing accounts: %w", err)
	}
	if len(accounts) == 0 {
		return common.Address{}, ErrNoAccounts
	}
	account := accounts[0]
	d.Dispatch(store.AccountLoaded{Account: account})

	balance, err := p.BalanceAt(ctx, account)
	if err != nil {
		return account, fmt.Errorf("reading balance of %s: %w", account.Hex(), err)
	}
	d.Dispatch(store.EtherBalanceLoaded{Balance: balance})
	return account, nil
}

// LoadTokens binds every token address in order and reads its symbol.
func LoadTokens(ctx context.Context, p Provider, addresses []common.Address, d Dispatcher) ([]token.Token, error) {
	tokens := make([]token.Token, 0, len(addresses))
	for i, addr := range addresses {
		t, err := p.Token(ctx, addr)
		if err != nil {
			return tokens, fmt.Errorf("binding token %s: %w", addr.Hex(), err)
		}
		symbol, err := t.Symbol(ctx)
		if err != nil {
			return tokens, fmt.Errorf("reading symbol of %s: %w", addr.Hex(), err)
		}
		d.Dispatch(store.TokenLoaded{Index: i, Token: t, Symbol: symbol})
		tokens = append(tokens, t)
	}
	return tokens, nil
}

// LoadExchange binds the exchange and reads its fee settings.
func LoadExchange(ctx context.Context, p Provider, address common.Address, d Dispatcher) (exchange.Exchange, error) {
	ex, err := p.Exchange(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("binding exchange %s: %w", address.Hex(), err)
	}
	feeAccount, err := ex.FeeAccount(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading fee account: %w", err)
	}
	feePercent, err := ex.FeePercent(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading fee percent: %w", err)
	}
	d.Dispatch(store.ExchangeLoaded{Exchange: ex, FeeAccount: feeAccount, FeePercent: feePercent})
	return ex, nil
}

// LoadBalances reads account's balance of every token concurrently. Nothing
// is dispatched unless every read succeeds.
func LoadBalances(ctx context.Context, tokens []token.Token, account common.Address, d Dispatcher) ([]*big.Int, error) {
	balances := make([]*big.Int, len(tokens))
	g, gctx := errgroup.WithContext(ctx)
	for i, t := range tokens {
		g.Go(func() error {
			b, err := t.BalanceOf(gctx, account)
			if err != nil {
				return fmt.Errorf("balance of %s in %s: %w", account.Hex(), t.Address().Hex(), err)
			}
			balances[i] = b
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	d.Dispatch(store.BalancesLoaded{Balances: balances})
	return balances, nil
}
