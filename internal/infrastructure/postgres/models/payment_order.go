package models

import "time"

type PaymentOrderModel struct {
	ID     string `gorm:"primaryKey;type:uuid"`
	UserID string `gorm:"index:idx_orders_user"`
	Kind   string `gorm:"index:idx_orders_user_kind"`

	AmountFiat   float64
	AmountCrypto float64 `gorm:"index:idx_orders_amount_crypto"`
	ExchangeRate float64
	CardFee      float64
	TopUpFee     float64
	TopUpAmount  float64

	CardTitle   string
	Email       string
	PhoneNumber string
	CardID      string

	VerificationMemo string
	ExpectedWallet   string `gorm:"index:idx_orders_wallet"`

	// NULL until a transfer is attached; the unique index is the arbiter for
	// the one-transaction-one-order invariant.
	TxSignature   *string `gorm:"uniqueIndex:idx_orders_tx_signature"`
	PaidAmount    float64
	SenderAddress string
	PaidAt        *time.Time

	TokenGateChecked bool
	TokenGatePassed  bool

	DispatchStartedAt *time.Time
	FulfilledCardID   string
	FulfilledAt       *time.Time

	Status    string    `gorm:"index:idx_orders_status_expires"`
	ExpiresAt time.Time `gorm:"index:idx_orders_status_expires"`
	CreatedAt time.Time `gorm:"index:idx_orders_created_at"`
	UpdatedAt time.Time
}
