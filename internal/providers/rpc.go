package providers

import (
	"context"
	"fmt"
	"math/big"
	"net/http"
	"sync"

	"github.com/Mohsinsiddi/w3dex/internal/chain"
	"github.com/Mohsinsiddi/w3dex/internal/contract"
	"github.com/Mohsinsiddi/w3dex/internal/exchange"
	"github.com/Mohsinsiddi/w3dex/internal/interactions"
	"github.com/Mohsinsiddi/w3dex/internal/rpc"
	"github.com/Mohsinsiddi/w3dex/internal/token"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// RPC is a provider backed by a JSON-RPC node. With a signer it acts for
// that account; otherwise it uses the node's own unlocked accounts and is
// read-only.
type RPC struct {
	client *chain.EVMClient
	signer contract.TxSigner
	log    *zap.Logger

	mu     sync.Mutex
	tokens map[common.Address]*contract.ERC20
}

var (
	_ interactions.Provider = (*RPC)(nil)
	_ interactions.Writer   = (*RPC)(nil)
)

// NewRPC wraps an existing client.
func NewRPC(client *chain.EVMClient, signer contract.TxSigner, log *zap.Logger) *RPC {
	if log == nil {
		log = zap.NewNop()
	}
	return &RPC{
		client: client,
		signer: signer,
		log:    log.Named("provider"),
		tokens: make(map[common.Address]*contract.ERC20),
	}
}

// Options configures DialRPC.
type Options struct {
	URL        string
	Fallbacks  []string // tried when URL is down, see Strategy
	Strategy   rpc.Strategy
	RateLimit  float64 // requests per second, 0 = unlimited
	Burst      int
	Signer     contract.TxSigner
	Logger     *zap.Logger
	HTTPClient *http.Client
}

// DialRPC connects to opts.URL and checks that the node answers. With
// fallbacks configured the endpoint is chosen by opts.Strategy first.
func DialRPC(ctx context.Context, opts Options) (*RPC, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	var probeOpts []chain.Option
	if opts.HTTPClient != nil {
		probeOpts = append(probeOpts, chain.WithHTTPClient(opts.HTTPClient))
	}
	url, err := rpc.Select(ctx, endpoints(opts), opts.Strategy, log.Named("rpc"), probeOpts...)
	if err != nil {
		return nil, err
	}

	clientOpts := append([]chain.Option{
		chain.WithRateLimit(opts.RateLimit, opts.Burst),
		chain.WithLogger(log),
	}, probeOpts...)
	client := chain.NewEVMClient(url, clientOpts...)

	latency, block, err := client.Ping(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s unreachable: %w", url, err)
	}
	p := NewRPC(client, opts.Signer, log)
	p.log.Info("connected",
		zap.String("url", url),
		zap.Duration("latency", latency),
		zap.Uint64("block", block))
	return p, nil
}

func endpoints(opts Options) []string {
	urls := []string{opts.URL}
	for _, u := range opts.Fallbacks {
		if u != "" && u != opts.URL {
			urls = append(urls, u)
		}
	}
	return urls
}

func (p *RPC) Endpoint() string { return p.client.URL() }

func (p *RPC) ChainID(ctx context.Context) (int64, error) { return p.client.ChainID(ctx) }

// Accounts returns the signer's account when one is set, otherwise the
// node's unlocked accounts.
func (p *RPC) Accounts(ctx context.Context) ([]common.Address, error) {
	if p.signer != nil {
		return []common.Address{common.HexToAddress(p.signer.Address())}, nil
	}
	raw, err := p.client.Accounts(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]common.Address, 0, len(raw))
	for _, a := range raw {
		if common.IsHexAddress(a) {
			out = append(out, common.HexToAddress(a))
		}
	}
	return out, nil
}

func (p *RPC) BalanceAt(ctx context.Context, account common.Address) (*big.Int, error) {
	return p.client.GetBalance(ctx, account.Hex())
}

// Token binds the ERC-20 at address. Bindings are reused so their metadata
// cache outlives a single call.
func (p *RPC) Token(ctx context.Context, address common.Address) (token.Token, error) {
	return p.erc20(ctx, address)
}

func (p *RPC) Exchange(ctx context.Context, address common.Address) (exchange.Exchange, error) {
	if err := p.requireCode(ctx, address); err != nil {
		return nil, err
	}
	return contract.NewExchange(address, p.client), nil
}

// Transactor connects the signer to the token at tokenAddr.
func (p *RPC) Transactor(ctx context.Context, tokenAddr common.Address) (token.Transactor, error) {
	if p.signer == nil {
		return nil, interactions.ErrReadOnly
	}
	t, err := p.erc20(ctx, tokenAddr)
	if err != nil {
		return nil, err
	}
	id, err := p.client.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolving chain id: %w", err)
	}
	return t.Connect(p.signer, big.NewInt(id)), nil
}

func (p *RPC) erc20(ctx context.Context, address common.Address) (*contract.ERC20, error) {
	p.mu.Lock()
	t, ok := p.tokens[address]
	p.mu.Unlock()
	if ok {
		return t, nil
	}

	if err := p.requireCode(ctx, address); err != nil {
		return nil, err
	}
	t = contract.NewERC20(address, p.client)

	p.mu.Lock()
	defer p.mu.Unlock()
	if existing, ok := p.tokens[address]; ok {
		return existing, nil
	}
	p.tokens[address] = t
	return t, nil
}

func (p *RPC) requireCode(ctx context.Context, address common.Address) error {
	ok, err := contract.HasCode(ctx, p.client, address.Hex())
	if err != nil {
		return fmt.Errorf("checking code at %s: %w", address.Hex(), err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", interactions.ErrNoContract, address.Hex())
	}
	return nil
}
