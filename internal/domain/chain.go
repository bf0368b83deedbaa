package domain

import "context"

type ConfirmationState string

const (
	ConfirmationUnconfirmed ConfirmationState = "UNCONFIRMED"
	ConfirmationConfirmed   ConfirmationState = "CONFIRMED"
	ConfirmationFinalized   ConfirmationState = "FINALIZED"
	ConfirmationFailed      ConfirmationState = "FAILED"
)

// Transfer is an observed on-chain movement of funds into a watched wallet.
// Amount is the net credited amount in whole coins.
type Transfer struct {
	TxSignature  string
	Amount       float64
	Sender       string
	Wallet       string
	BlockTime    int64
	Confirmation ConfirmationState
}

type TransferCheck struct {
	Amount float64
	Sender string
}

// ChainObserver wraps the blockchain RPC capability. Both methods are
// read-only. Semantic failures come back as ErrTxNotFound, ErrTxFailed,
// ErrWrongDestination or ErrAmountTooLow; infrastructure failures are
// wrapped in TransientError and must be treated as "try again later".
type ChainObserver interface {
	// ListIncomingTransfers returns up to limit most recent transfers
	// credited to wallet, most recent first.
	ListIncomingTransfers(ctx context.Context, wallet string, limit int) ([]Transfer, error)
	// VerifyTransfer fetches a single transaction and checks that it
	// credits wallet with at least minAmount.
	VerifyTransfer(ctx context.Context, txSignature, wallet string, minAmount float64) (*TransferCheck, error)
}

// TokenBalanceCheck is the token-gate verdict for a wallet. A wallet with no
// token accounts is a valid Passes=false result, not an error.
type TokenBalanceCheck struct {
	Balance  float64
	Required float64
	Passes   bool
}

type TokenGate interface {
	CheckBalance(ctx context.Context, wallet string) (*TokenBalanceCheck, error)
}
