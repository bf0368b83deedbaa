package domain

import "time"

type OrderStatus string

const (
	StatusPending    OrderStatus = "PENDING"
	StatusProcessing OrderStatus = "PROCESSING"
	StatusFulfilled  OrderStatus = "FULFILLED"
	StatusFailed     OrderStatus = "FAILED"
	StatusExpired    OrderStatus = "EXPIRED"
)

type OrderKind string

const (
	KindCardCreation      OrderKind = "CARD_CREATION"
	KindCardTopUp         OrderKind = "CARD_TOPUP"
	KindTokenVerification OrderKind = "TOKEN_VERIFICATION"
)

// PaymentOrder is the record of a user's intent to pay. Amounts are quoted
// once at creation: AmountCrypto is never recomputed from a later rate.
type PaymentOrder struct {
	ID     string
	UserID string
	Kind   OrderKind

	AmountFiat   float64
	AmountCrypto float64
	ExchangeRate float64
	CardFee      float64
	TopUpFee     float64
	TopUpAmount  float64

	CardTitle   string
	Email       string
	PhoneNumber string
	CardID      string

	VerificationMemo string
	ExpectedWallet   string

	TxSignature   string
	PaidAmount    float64
	SenderAddress string
	PaidAt        *time.Time

	TokenGateChecked bool
	TokenGatePassed  bool

	FulfilledCardID string
	FulfilledAt     *time.Time

	Status    OrderStatus
	CreatedAt time.Time
	ExpiresAt time.Time
}

func (o *PaymentOrder) IsTerminal() bool {
	switch o.Status {
	case StatusFulfilled, StatusFailed, StatusExpired:
		return true
	}
	return false
}

// IsExpired reports whether a still-pending order is past its payment window.
// Processing orders are past the point of no return and never expire.
func (o *PaymentOrder) IsExpired(now time.Time) bool {
	return o.Status == StatusPending && now.After(o.ExpiresAt)
}

// RequiresTokenGate reports whether fulfillment is conditional on the paying
// wallet holding the configured token.
func (o *PaymentOrder) RequiresTokenGate() bool {
	return o.Kind == KindCardCreation || o.Kind == KindTokenVerification
}
