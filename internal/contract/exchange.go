package contract

import (
	"context"
	"math/big"

	"github.com/Mohsinsiddi/w3dex/internal/exchange"
	"github.com/ethereum/go-ethereum/common"
)

// Exchange is an on-chain exchange binding.
type Exchange struct {
	address common.Address
	caller  *Caller
}

var _ exchange.Exchange = (*Exchange)(nil)

// NewExchange binds the exchange at address.
func NewExchange(address common.Address, backend Backend) *Exchange {
	return &Exchange{address: address, caller: NewCaller(backend, exchangeABI)}
}

func (e *Exchange) Address() common.Address { return e.address }

func (e *Exchange) FeeAccount(ctx context.Context) (common.Address, error) {
	out, err := e.caller.Call(ctx, e.address.Hex(), "feeAccount")
	if err != nil {
		return common.Address{}, err
	}
	return common.HexToAddress(out[0]), nil
}

func (e *Exchange) FeePercent(ctx context.Context) (*big.Int, error) {
	return e.caller.callBig(ctx, e.address.Hex(), "feePercent")
}
