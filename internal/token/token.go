// Package token defines the ERC-20 surface the dapp shell and the test
// harness talk to, plus an in-process ledger that implements it.
package token

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Decimals is the precision of every token this repo deploys.
const Decimals = 18

// Event names emitted by ERC-20 contracts.
const (
	EventTransfer = "Transfer"
	EventApproval = "Approval"
)

// Token is the read side of an ERC-20 contract.
type Token interface {
	Address() common.Address
	Name(ctx context.Context) (string, error)
	Symbol(ctx context.Context) (string, error)
	Decimals(ctx context.Context) (uint8, error)
	TotalSupply(ctx context.Context) (*big.Int, error)
	BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error)
	Allowance(ctx context.Context, owner, spender common.Address) (*big.Int, error)
}

// Transactor submits state-changing calls on behalf of one account.
type Transactor interface {
	From() common.Address
	Transfer(ctx context.Context, to common.Address, value *big.Int) (*Receipt, error)
	Approve(ctx context.Context, spender common.Address, value *big.Int) (*Receipt, error)
	TransferFrom(ctx context.Context, from, to common.Address, value *big.Int) (*Receipt, error)
}

// Event is a decoded Transfer or Approval log. Transfer fills From/To,
// Approval fills Owner/Spender.
type Event struct {
	Name    string
	From    common.Address
	To      common.Address
	Owner   common.Address
	Spender common.Address
	Value   *big.Int
}

// Receipt is the outcome of a mined, successful transaction.
type Receipt struct {
	TxHash common.Hash
	Events []Event
}

// Event returns the first event with the given name.
func (r *Receipt) Event(name string) (Event, bool) {
	if r == nil {
		return Event{}, false
	}
	for _, e := range r.Events {
		if e.Name == name {
			return e, true
		}
	}
	return Event{}, false
}
