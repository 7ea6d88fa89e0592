package contract

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/Mohsinsiddi/w3dex/internal/chain"
	"github.com/Mohsinsiddi/w3dex/internal/token"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
)

// fallbackGas is used when the node cannot estimate for reasons other than
// a revert.
const fallbackGas = uint64(100_000)

// Sender sends write transactions to contracts.
type Sender struct {
	backend Backend
	abi     []ABIEntry
	signer  TxSigner
	chainID *big.Int
}

// NewSender creates a Sender.
func NewSender(backend Backend, abi []ABIEntry, signer TxSigner, chainID *big.Int) *Sender {
	return &Sender{
		backend: backend,
		abi:     abi,
		signer:  signer,
		chainID: chainID,
	}
}

// Send calls a write function, broadcasts the transaction and waits for
// it to be mined. Reverts, whether found during estimation or after mining,
// are returned as *token.RevertError.
func (s *Sender) Send(ctx context.Context, contractAddr, funcName string, args ...string) (*chain.TxReceipt, error) {
	fn := findEntry(s.abi, "function", funcName)
	if fn == nil {
		return nil, fmt.Errorf("function %q not found in ABI", funcName)
	}
	if !fn.IsWriteFunction() {
		return nil, fmt.Errorf("function %q is not a write function", funcName)
	}

	calldata, err := encodeCall(fn, args)
	if err != nil {
		return nil, fmt.Errorf("encoding call: %w", err)
	}

	from := s.signer.Address()

	gas, err := s.backend.EstimateGas(ctx, from, contractAddr, calldata, nil)
	if err != nil {
		if chain.IsRevert(err) {
			return nil, &token.RevertError{Reason: chain.RevertReason(err)}
		}
		gas = fallbackGas
	}

	gasPrice, err := s.backend.GasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting gas price: %w", err)
	}

	nonce, err := s.backend.GetPendingNonce(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("getting nonce: %w", err)
	}

	toAddr := common.HexToAddress(contractAddr)
	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   s.chainID,
		Nonce:     nonce,
		GasTipCap: gasPrice,
		GasFeeCap: new(big.Int).Mul(gasPrice, big.NewInt(2)),
		Gas:       gas,
		To:        &toAddr,
		Value:     big.NewInt(0),
		Data:      common.FromHex(calldata),
	})

	raw, err := s.signer.SignTx(tx, s.chainID)
	if err != nil {
		return nil, fmt.Errorf("signing transaction: %w", err)
	}

	hash, err := s.backend.SendRawTransaction(ctx, hexutil.Encode(raw))
	if err != nil {
		if chain.IsRevert(err) {
			return nil, &token.RevertError{Reason: chain.RevertReason(err)}
		}
		return nil, fmt.Errorf("broadcasting transaction: %w", err)
	}

	receipt, err := s.backend.WaitForReceipt(ctx, hash)
	if errors.Is(err, chain.ErrTxReverted) {
		return receipt, &token.RevertError{Reason: "transaction " + hash + " reverted"}
	}
	if err != nil {
		return nil, fmt.Errorf("waiting for %s: %w", hash, err)
	}
	return receipt, nil
}
