package publisher

import "time"

const (
	EventOrderCreated   = "order.created"
	EventOrderMatched   = "order.matched"
	EventOrderFulfilled = "order.fulfilled"
	EventOrderFailed    = "order.failed"
	EventOrderExpired   = "order.expired"
)

type OrderEvent struct {
	Event        string    `json:"event"`
	OrderID      string    `json:"order_id"`
	UserID       string    `json:"user_id"`
	Kind         string    `json:"kind"`
	Status       string    `json:"status"`
	AmountFiat   float64   `json:"amount_fiat"`
	AmountCrypto float64   `json:"amount_crypto"`
	TxSignature  string    `json:"tx_signature,omitempty"`
	CardID       string    `json:"card_id,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}
