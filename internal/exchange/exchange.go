// Package exchange describes the exchange contract the dashboard binds to.
package exchange

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Exchange is the read surface of the exchange contract.
type Exchange interface {
	Address() common.Address
	FeeAccount(ctx context.Context) (common.Address, error)
	FeePercent(ctx context.Context) (*big.Int, error)
}

// Local is an exchange held in memory, deployed alongside in-process tokens.
type Local struct {
	address    common.Address
	feeAccount common.Address
	feePercent *big.Int
}

// NewLocal returns an exchange at address charging feePercent to feeAccount.
func NewLocal(address, feeAccount common.Address, feePercent int64) *Local {
	return &Local{
		address:    address,
		feeAccount: feeAccount,
		feePercent: big.NewInt(feePercent),
	}
}

func (e *Local) Address() common.Address { return e.address }

func (e *Local) FeeAccount(context.Context) (common.Address, error) { return e.feeAccount, nil }

func (e *Local) FeePercent(context.Context) (*big.Int, error) {
	return new(big.Int).Set(e.feePercent), nil
}
