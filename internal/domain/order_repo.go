package domain

import (
	"context"
	"time"
)

// TransferEvidence is the observed-payment snapshot attached to an order when
// it moves from PENDING to PROCESSING.
type TransferEvidence struct {
	TxSignature string
	Amount      float64
	Sender      string
	PaidAt      time.Time
}

// LiveOrderGuard is checked inside the creation transaction: the insert fails
// with ErrActiveOrderExists if the user already holds a PENDING or PROCESSING
// order of any of the listed kinds.
type LiveOrderGuard struct {
	UserID string
	Kinds  []OrderKind
}

// PaymentOrderRepository is the single source of truth for order state.
// All status transitions are conditional writes: the WHERE clause on the
// current status is the only concurrency-control primitive the reconciler
// relies on, so the same transition attempted twice fails the second time
// with ErrStatusConflict instead of being applied twice.
type PaymentOrderRepository interface {
	CreateOrder(ctx context.Context, order *PaymentOrder, guard *LiveOrderGuard) error
	GetOrderByID(ctx context.Context, orderID string) (*PaymentOrder, error)
	GetOrdersByUserID(ctx context.Context, userID string, status OrderStatus, limit int) ([]*PaymentOrder, error)
	FindLiveOrderByKind(ctx context.Context, userID string, kind OrderKind) (*PaymentOrder, error)

	// FindPendingByAmountRange returns live PENDING orders on wallet whose
	// quoted crypto amount lies in [minAmount, maxAmount], most recently
	// created first. Used by the webhook path.
	FindPendingByAmountRange(ctx context.Context, wallet string, minAmount, maxAmount float64) ([]*PaymentOrder, error)

	TxSignatureUsed(ctx context.Context, txSignature string) (bool, error)

	// AttachTransfer moves the order from `from` to PROCESSING and records
	// the evidence in one conditional write. Returns ErrStatusConflict when
	// the order left `from`, ErrTxAlreadyUsed when the signature is already
	// claimed by any order.
	AttachTransfer(ctx context.Context, orderID string, from OrderStatus, ev TransferEvidence) error

	UpdateStatusIf(ctx context.Context, orderID string, from, to OrderStatus) error
	MarkTokenGate(ctx context.Context, orderID string, passed bool) error

	// ClaimDispatch elects the single caller allowed to invoke the
	// fulfillment executor for this order. Only the first claim on a
	// PROCESSING order succeeds.
	ClaimDispatch(ctx context.Context, orderID string) error

	// MarkFulfilled is the terminal success transition; conditional on the
	// order still being PROCESSING with no recorded fulfillment.
	MarkFulfilled(ctx context.Context, orderID, cardID string) error
	// MarkFailed is terminal; evidence fields are retained for operators.
	MarkFailed(ctx context.Context, orderID string) error
}
