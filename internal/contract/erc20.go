package contract

import (
	"context"
	"fmt"
	"math/big"
	"strconv"

	"github.com/Mohsinsiddi/w3dex/internal/token"
	"github.com/ethereum/go-ethereum/common"
	"github.com/patrickmn/go-cache"
)

// ERC20 is an on-chain token binding. name, symbol and decimals never
// change after deployment and are cached for the binding's lifetime.
type ERC20 struct {
	address common.Address
	backend Backend
	caller  *Caller
	meta    *cache.Cache
}

var _ token.Token = (*ERC20)(nil)

// NewERC20 binds the token at address.
func NewERC20(address common.Address, backend Backend) *ERC20 {
	return &ERC20{
		address: address,
		backend: backend,
		caller:  NewCaller(backend, erc20ABI),
		meta:    cache.New(cache.NoExpiration, 0),
	}
}

func (t *ERC20) Address() common.Address { return t.address }

func (t *ERC20) Name(ctx context.Context) (string, error) {
	return t.cachedString(ctx, "name")
}

func (t *ERC20) Symbol(ctx context.Context) (string, error) {
	return t.cachedString(ctx, "symbol")
}

func (t *ERC20) Decimals(ctx context.Context) (uint8, error) {
	s, err := t.cachedString(ctx, "decimals")
	if err != nil {
		return 0, err
	}
	d, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		return 0, fmt.Errorf("decimals out of range: %s", s)
	}
	return uint8(d), nil
}

func (t *ERC20) TotalSupply(ctx context.Context) (*big.Int, error) {
	return t.caller.callBig(ctx, t.address.Hex(), "totalSupply")
}

func (t *ERC20) BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error) {
	return t.caller.callBig(ctx, t.address.Hex(), "balanceOf", owner.Hex())
}

func (t *ERC20) Allowance(ctx context.Context, owner, spender common.Address) (*big.Int, error) {
	return t.caller.callBig(ctx, t.address.Hex(), "allowance", owner.Hex(), spender.Hex())
}

// Connect returns a Transactor that signs with signer on chainID.
func (t *ERC20) Connect(signer TxSigner, chainID *big.Int) token.Transactor {
	return &erc20Transactor{
		token:  t,
		from:   common.HexToAddress(signer.Address()),
		sender: NewSender(t.backend, erc20ABI, signer, chainID),
	}
}

func (t *ERC20) cachedString(ctx context.Context, fn string) (string, error) {
	if v, ok := t.meta.Get(fn); ok {
		return v.(string), nil
	}
	out, err := t.caller.Call(ctx, t.address.Hex(), fn)
	if err != nil {
		return "", err
	}
	t.meta.SetDefault(fn, out[0])
	return out[0], nil
}

type erc20Transactor struct {
	token  *ERC20
	from   common.Address
	sender *Sender
}

func (tx *erc20Transactor) From() common.Address { return tx.from }

func (tx *erc20Transactor) Transfer(ctx context.Context, to common.Address, value *big.Int) (*token.Receipt, error) {
	return tx.send(ctx, "transfer", value, to.Hex())
}

func (tx *erc20Transactor) Approve(ctx context.Context, spender common.Address, value *big.Int) (*token.Receipt, error) {
	return tx.send(ctx, "approve", value, spender.Hex())
}

func (tx *erc20Transactor) TransferFrom(ctx context.Context, from, to common.Address, value *big.Int) (*token.Receipt, error) {
	return tx.send(ctx, "transferFrom", value, from.Hex(), to.Hex())
}

// send appends value as the trailing uint256 argument.
func (tx *erc20Transactor) send(ctx context.Context, fn string, value *big.Int, addrs ...string) (*token.Receipt, error) {
	if value == nil || value.Sign() < 0 || value.Cmp(token.MaxUint256) > 0 {
		return nil, token.ErrInvalidAmount
	}
	args := append(addrs, value.String())

	receipt, err := tx.sender.Send(ctx, tx.token.address.Hex(), fn, args...)
	if err != nil {
		return nil, err
	}
	return &token.Receipt{
		TxHash: common.HexToHash(receipt.Hash),
		Events: decodeEvents(receipt.Logs, tx.token.address),
	}, nil
}
