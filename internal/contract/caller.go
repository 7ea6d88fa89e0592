package contract

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/Mohsinsiddi/w3dex/internal/chain"
	"github.com/ethereum/go-ethereum/core/types"
)

// Backend is the node surface the bindings need. *chain.EVMClient
// satisfies it.
type Backend interface {
	CallContract(ctx context.Context, toAddr, calldata string) (string, error)
	GetCode(ctx context.Context, address string) (string, error)
	EstimateGas(ctx context.Context, from, to, data string, value *big.Int) (uint64, error)
	GasPrice(ctx context.Context) (*big.Int, error)
	GetPendingNonce(ctx context.Context, address string) (uint64, error)
	SendRawTransaction(ctx context.Context, rawTx string) (string, error)
	WaitForReceipt(ctx context.Context, hash string) (*chain.TxReceipt, error)
}

// TxSigner signs transactions for one account. *wallet.Signer satisfies it.
type TxSigner interface {
	Address() string
	SignTx(tx *types.Transaction, chainID *big.Int) ([]byte, error)
}

// Caller calls read-only (view/pure) contract functions.
type Caller struct {
	backend Backend
	abi     []ABIEntry
}

// NewCaller creates a Caller from parsed ABI entries.
func NewCaller(backend Backend, abi []ABIEntry) *Caller {
	return &Caller{backend: backend, abi: abi}
}

// Call calls a read function on a contract and returns decoded results as strings.
func (c *Caller) Call(ctx context.Context, contractAddr, funcName string, args ...string) ([]string, error) {
	fn := findEntry(c.abi, "function", funcName)
	if fn == nil {
		return nil, fmt.Errorf("function %q not found in ABI", funcName)
	}
	if !fn.IsReadFunction() {
		return nil, fmt.Errorf("function %q is not a read function (stateMutability: %s)", funcName, fn.StateMutability)
	}

	calldata, err := encodeCall(fn, args)
	if err != nil {
		return nil, fmt.Errorf("encoding call: %w", err)
	}

	result, err := c.backend.CallContract(ctx, contractAddr, calldata)
	if err != nil {
		return nil, fmt.Errorf("%s call failed: %w", funcName, err)
	}

	decoded, err := decodeResult(fn, result)
	if err != nil {
		return nil, fmt.Errorf("decoding result: %w", err)
	}
	return decoded, nil
}

// callBig calls a function returning a single uint.
func (c *Caller) callBig(ctx context.Context, contractAddr, funcName string, args ...string) (*big.Int, error) {
	out, err := c.Call(ctx, contractAddr, funcName, args...)
	if err != nil {
		return nil, err
	}
	n, ok := new(big.Int).SetString(out[0], 10)
	if !ok {
		return nil, fmt.Errorf("%s returned non-integer %q", funcName, out[0])
	}
	return n, nil
}

// HasCode reports whether address holds deployed bytecode.
func HasCode(ctx context.Context, backend Backend, address string) (bool, error) {
	code, err := backend.GetCode(ctx, address)
	if err != nil {
		return false, err
	}
	return strings.TrimPrefix(code, "0x") != "", nil
}
