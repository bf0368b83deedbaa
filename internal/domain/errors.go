package domain

import (
	"errors"
	"fmt"
)

var (
	ErrOrderNotFound     = errors.New("payment order not found")
	ErrCardNotFound      = errors.New("card not found")
	ErrCardNotActive     = errors.New("card is not active")
	ErrNotOrderOwner     = errors.New("order belongs to another user")
	ErrActiveCardExists  = errors.New("user already has an active card")
	ErrActiveOrderExists = errors.New("user already has a live order of this kind")
	ErrAmountOutOfRange  = errors.New("amount is outside the allowed range")

	// ErrStatusConflict is returned by conditional repository updates when the
	// order is no longer in the expected status. Callers re-read and decide.
	ErrStatusConflict = errors.New("order is not in the expected status")
	// ErrTxAlreadyUsed is raised by the tx_signature uniqueness constraint:
	// one on-chain transaction fulfills at most one order.
	ErrTxAlreadyUsed = errors.New("transaction already attached to another order")

	ErrTxNotFound       = errors.New("transaction not found")
	ErrTxFailed         = errors.New("transaction failed on-chain")
	ErrWrongDestination = errors.New("transaction does not credit the expected wallet")
	ErrAmountTooLow     = errors.New("transferred amount is below the required minimum")
)

// TransientError marks infrastructure failures (RPC timeout, provider
// unavailable) that must never be read as a payment verdict. Orders keep
// their state and callers retry later.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

func Transient(op string, err error) error {
	return &TransientError{Op: op, Err: err}
}

func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}
