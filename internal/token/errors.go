package token

import "errors"

// ErrReverted matches every revert, whatever the reason.
var ErrReverted = errors.New("execution reverted")

// Reverts raised by the ledger. On-chain reverts carry the node's reason
// string instead and only match ErrReverted.
var (
	ErrInsufficientBalance   = &RevertError{Reason: "insufficient balance"}
	ErrInsufficientAllowance = &RevertError{Reason: "insufficient allowance"}
	ErrZeroAddress           = &RevertError{Reason: "zero address"}
	ErrInvalidAmount         = &RevertError{Reason: "amount out of uint256 range"}
)

// RevertError is a call rejected by the contract runtime.
type RevertError struct {
	Reason string
}

func (e *RevertError) Error() string {
	if e.Reason == "" {
		return ErrReverted.Error()
	}
	return ErrReverted.Error() + ": " + e.Reason
}

// Is reports a match against ErrReverted.
func (e *RevertError) Is(target error) bool {
	return target == ErrReverted
}
