// Package app wires the load steps into a shell that runs them once.
package app

import (
	"context"
	"sync"

	"github.com/Mohsinsiddi/w3dex/internal/config"
	"github.com/Mohsinsiddi/w3dex/internal/exchange"
	"github.com/Mohsinsiddi/w3dex/internal/interactions"
	"github.com/Mohsinsiddi/w3dex/internal/store"
	"github.com/Mohsinsiddi/w3dex/internal/token"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// Load step names, as recorded in store.LoadFailed.
const (
	StepProvider = "provider"
	StepNetwork  = "network"
	StepConfig   = "config"
	StepAccount  = "account"
	StepTokens   = "tokens"
	StepExchange = "exchange"
	StepBalances = "balances"
)

// Session is what a completed load leaves behind.
type Session struct {
	Provider  interactions.Provider
	ChainID   int64
	Account   common.Address
	Contracts config.ChainContracts
	Tokens    []token.Token
	Exchange  exchange.Exchange
}

// Shell runs the load sequence against a provider and records every result
// in its store.
type Shell struct {
	dial   interactions.Dialer
	chains config.ChainConfig
	store  *store.Store
	log    *zap.Logger

	once    sync.Once
	session *Session
	err     error
}

// NewShell creates a shell. A nil logger discards.
func NewShell(dial interactions.Dialer, chains config.ChainConfig, st *store.Store, log *zap.Logger) *Shell {
	if log == nil {
		log = zap.NewNop()
	}
	return &Shell{
		dial:   dial,
		chains: chains,
		store:  st,
		log:    log.Named("shell"),
	}
}

// Store returns the shell's store.
func (s *Shell) Store() *store.Store { return s.store }

// Load runs provider, network, account, tokens, exchange and balances in
// order. It runs at most once; later calls return the first result. A
// failing step is dispatched as store.LoadFailed and ends the sequence.
func (s *Shell) Load(ctx context.Context) (*Session, error) {
	s.once.Do(func() {
		s.session, s.err = s.load(ctx)
	})
	return s.session, s.err
}

func (s *Shell) load(ctx context.Context) (*Session, error) {
	sess := &Session{}

	p, err := interactions.LoadProvider(ctx, s.dial, s.store)
	if err != nil {
		return nil, s.fail(StepProvider, err)
	}
	sess.Provider = p

	if sess.ChainID, err = interactions.LoadNetwork(ctx, p, s.store); err != nil {
		return nil, s.fail(StepNetwork, err)
	}
	s.log.Debug("network", zap.Int64("chain_id", sess.ChainID))

	if sess.Contracts, err = s.chains.ForChain(sess.ChainID); err != nil {
		return nil, s.fail(StepConfig, err)
	}

	if sess.Account, err = interactions.LoadAccount(ctx, p, s.store); err != nil {
		return nil, s.fail(StepAccount, err)
	}
	s.log.Debug("account", zap.Stringer("address", sess.Account))

	if sess.Tokens, err = interactions.LoadTokens(ctx, p, sess.Contracts.TokenAddresses(), s.store); err != nil {
		return nil, s.fail(StepTokens, err)
	}

	if sess.Exchange, err = interactions.LoadExchange(ctx, p, sess.Contracts.ExchangeAddress(), s.store); err != nil {
		return nil, s.fail(StepExchange, err)
	}

	if _, err = interactions.LoadBalances(ctx, sess.Tokens, sess.Account, s.store); err != nil {
		return nil, s.fail(StepBalances, err)
	}

	s.log.Info("loaded",
		zap.String("endpoint", p.Endpoint()),
		zap.Int64("chain_id", sess.ChainID),
		zap.Int("tokens", len(sess.Tokens)))
	return sess, nil
}

func (s *Shell) fail(step string, err error) error {
	s.log.Error("load failed", zap.String("step", step), zap.Error(err))
	s.store.Dispatch(store.LoadFailed{Step: step, Err: err})
	return &StepError{Step: step, Err: err}
}

// StepError names the load step that failed.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string { return e.Step + ": " + e.Err.Error() }

func (e *StepError) Unwrap() error { return e.Err }
