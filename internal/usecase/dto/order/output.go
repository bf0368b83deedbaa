package orderdto

import (
	"time"

	"github.com/solcard/card-order-service/internal/domain"
)

// PaymentDetails is the quote the caller renders for the user: pay exactly
// this crypto amount to this wallet before the deadline.
type PaymentDetails struct {
	WalletAddress string    `json:"wallet_address"`
	AmountCrypto  float64   `json:"amount_crypto"`
	AmountFiat    float64   `json:"amount_fiat"`
	ExchangeRate  float64   `json:"exchange_rate"`
	CardFee       float64   `json:"card_fee"`
	TopUpAmount   float64   `json:"topup_amount"`
	TopUpFee      float64   `json:"topup_fee"`
	Memo          string    `json:"memo,omitempty"`
	ExpiresAt     time.Time `json:"expires_at"`
}

type CreateOrderOutput struct {
	Order   *domain.PaymentOrder `json:"order"`
	Payment PaymentDetails       `json:"payment"`
}

// OrderStatusOutput is what every poll/submit entry point returns: the order,
// the card if fulfillment produced or touched one, and a human-readable
// message the layer above can surface directly.
type OrderStatusOutput struct {
	Order   *domain.PaymentOrder `json:"order"`
	Card    *domain.Card         `json:"card,omitempty"`
	Message string               `json:"message,omitempty"`
}
