package token

import (
	"context"
	"encoding/binary"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Ledger is an in-process ERC-20 contract. Every write is applied
// atomically: either all checks pass and state changes, or nothing changes.
type Ledger struct {
	mu sync.RWMutex

	address     common.Address
	name        string
	symbol      string
	decimals    uint8
	totalSupply *big.Int
	balances    map[common.Address]*big.Int
	allowances  map[common.Address]map[common.Address]*big.Int
	txCount     uint64
}

// Deploy creates a ledger at address and credits the full supply,
// wholeSupply scaled by Decimals, to deployer.
func Deploy(address, deployer common.Address, name, symbol string, wholeSupply *big.Int) *Ledger {
	supply := new(big.Int).Mul(wholeSupply, pow10(Decimals))
	return &Ledger{
		address:     address,
		name:        name,
		symbol:      symbol,
		decimals:    Decimals,
		totalSupply: supply,
		balances:    map[common.Address]*big.Int{deployer: new(big.Int).Set(supply)},
		allowances:  make(map[common.Address]map[common.Address]*big.Int),
	}
}

func (l *Ledger) Address() common.Address { return l.address }

func (l *Ledger) Name(context.Context) (string, error) { return l.name, nil }

func (l *Ledger) Symbol(context.Context) (string, error) { return l.symbol, nil }

func (l *Ledger) Decimals(context.Context) (uint8, error) { return l.decimals, nil }

func (l *Ledger) TotalSupply(context.Context) (*big.Int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return new(big.Int).Set(l.totalSupply), nil
}

func (l *Ledger) BalanceOf(_ context.Context, owner common.Address) (*big.Int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.balanceLocked(owner), nil
}

func (l *Ledger) Allowance(_ context.Context, owner, spender common.Address) (*big.Int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.allowanceLocked(owner, spender), nil
}

// Connect returns a Transactor that acts as caller, the way a signer is
// attached to a contract handle.
func (l *Ledger) Connect(caller common.Address) Transactor {
	return &ledgerAccount{ledger: l, caller: caller}
}

// Holders returns every address with a non-zero balance.
func (l *Ledger) Holders() []common.Address {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]common.Address, 0, len(l.balances))
	for addr, bal := range l.balances {
		if bal.Sign() > 0 {
			out = append(out, addr)
		}
	}
	return out
}

func (l *Ledger) transfer(caller, to common.Address, value *big.Int) (*Receipt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := checkAmount(value); err != nil {
		return nil, err
	}
	if err := l.checkTransferLocked(caller, to, value); err != nil {
		return nil, err
	}
	l.moveLocked(caller, to, value)
	return l.receiptLocked(caller, transferEvent(caller, to, value)), nil
}

func (l *Ledger) approve(caller, spender common.Address, value *big.Int) (*Receipt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := checkAmount(value); err != nil {
		return nil, err
	}
	if spender == (common.Address{}) {
		return nil, ErrZeroAddress
	}

	if l.allowances[caller] == nil {
		l.allowances[caller] = make(map[common.Address]*big.Int)
	}
	l.allowances[caller][spender] = new(big.Int).Set(value)

	return l.receiptLocked(caller, Event{
		Name:    EventApproval,
		Owner:   caller,
		Spender: spender,
		Value:   new(big.Int).Set(value),
	}), nil
}

func (l *Ledger) transferFrom(caller, from, to common.Address, value *big.Int) (*Receipt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := checkAmount(value); err != nil {
		return nil, err
	}
	if err := l.checkTransferLocked(from, to, value); err != nil {
		return nil, err
	}
	allowed := l.allowanceLocked(from, caller)
	if value.Cmp(allowed) > 0 {
		return nil, ErrInsufficientAllowance
	}

	if l.allowances[from] == nil {
		l.allowances[from] = make(map[common.Address]*big.Int)
	}
	l.allowances[from][caller] = allowed.Sub(allowed, value)
	l.moveLocked(from, to, value)
	return l.receiptLocked(caller, transferEvent(from, to, value)), nil
}

func (l *Ledger) checkTransferLocked(from, to common.Address, value *big.Int) error {
	if value.Cmp(l.balanceLocked(from)) > 0 {
		return ErrInsufficientBalance
	}
	if to == (common.Address{}) {
		return ErrZeroAddress
	}
	return nil
}

func (l *Ledger) moveLocked(from, to common.Address, value *big.Int) {
	l.balances[from] = new(big.Int).Sub(l.balanceLocked(from), value)
	l.balances[to] = new(big.Int).Add(l.balanceLocked(to), value)
}

func (l *Ledger) balanceLocked(owner common.Address) *big.Int {
	if b, ok := l.balances[owner]; ok {
		return new(big.Int).Set(b)
	}
	return new(big.Int)
}

func (l *Ledger) allowanceLocked(owner, spender common.Address) *big.Int {
	if a, ok := l.allowances[owner][spender]; ok {
		return new(big.Int).Set(a)
	}
	return new(big.Int)
}

// receiptLocked derives a deterministic hash from the ledger address, the
// caller and a running counter.
func (l *Ledger) receiptLocked(caller common.Address, events ...Event) *Receipt {
	l.txCount++
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], l.txCount)
	return &Receipt{
		TxHash: crypto.Keccak256Hash(l.address.Bytes(), caller.Bytes(), n[:]),
		Events: events,
	}
}

func transferEvent(from, to common.Address, value *big.Int) Event {
	return Event{
		Name:  EventTransfer,
		From:  from,
		To:    to,
		Value: new(big.Int).Set(value),
	}
}

func checkAmount(value *big.Int) error {
	if value == nil || value.Sign() < 0 || value.Cmp(MaxUint256) > 0 {
		return ErrInvalidAmount
	}
	return nil
}

type ledgerAccount struct {
	ledger *Ledger
	caller common.Address
}

func (a *ledgerAccount) From() common.Address { return a.caller }

func (a *ledgerAccount) Transfer(_ context.Context, to common.Address, value *big.Int) (*Receipt, error) {
	return a.ledger.transfer(a.caller, to, value)
}

func (a *ledgerAccount) Approve(_ context.Context, spender common.Address, value *big.Int) (*Receipt, error) {
	return a.ledger.approve(a.caller, spender, value)
}

func (a *ledgerAccount) TransferFrom(_ context.Context, from, to common.Address, value *big.Int) (*Receipt, error) {
	return a.ledger.transferFrom(a.caller, from, to, value)
}
