package ledger

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("record not found")
	ErrReverted        = errors.New("execution reverted")
	ErrUnknownFunction = errors.New("unknown contract function")
	ErrBadArguments    = errors.New("bad call arguments")
	ErrReadOnly        = errors.New("ledger client has no signer")
	ErrUnexpectedShape = errors.New("unexpected result shape")
)

// RevertError carries the revert reason reported by the contract.
type RevertError struct {
	Function string
	Reason   string
}

func (e *RevertError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s: execution reverted", e.Function)
	}
	return fmt.Sprintf("%s: execution reverted: %s", e.Function, e.Reason)
}

func (e *RevertError) Unwrap() error {
	return ErrReverted
}
