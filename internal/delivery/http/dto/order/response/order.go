package response

import (
	"time"

	"github.com/solcard/card-order-service/internal/domain"
	orderdto "github.com/solcard/card-order-service/internal/usecase/dto/order"
)

type OrderResponse struct {
	OrderID      string     `json:"order_id"`
	Kind         string     `json:"kind"`
	Status       string     `json:"status"`
	AmountFiat   float64    `json:"amount_fiat"`
	AmountCrypto float64    `json:"amount_crypto"`
	ExchangeRate float64    `json:"exchange_rate"`
	TxSignature  string     `json:"tx_signature,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	ExpiresAt    time.Time  `json:"expires_at"`
	FulfilledAt  *time.Time `json:"fulfilled_at,omitempty"`
}

type CardResponse struct {
	CardID   string  `json:"card_id"`
	Title    string  `json:"title"`
	Status   string  `json:"status"`
	Balance  float64 `json:"balance"`
	Currency string  `json:"currency"`
}

type CreateOrderResponse struct {
	Order   OrderResponse           `json:"order"`
	Payment orderdto.PaymentDetails `json:"payment"`
}

type OrderStatusResponse struct {
	Order   OrderResponse `json:"order"`
	Card    *CardResponse `json:"card,omitempty"`
	Message string        `json:"message,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func FromOrder(order *domain.PaymentOrder) OrderResponse {
	return OrderResponse{
		OrderID:      order.ID,
		Kind:         string(order.Kind),
		Status:       string(order.Status),
		AmountFiat:   order.AmountFiat,
		AmountCrypto: order.AmountCrypto,
		ExchangeRate: order.ExchangeRate,
		TxSignature:  order.TxSignature,
		CreatedAt:    order.CreatedAt,
		ExpiresAt:    order.ExpiresAt,
		FulfilledAt:  order.FulfilledAt,
	}
}

func FromCard(card *domain.Card) *CardResponse {
	if card == nil {
		return nil
	}
	return &CardResponse{
		CardID:   card.ID,
		Title:    card.Title,
		Status:   string(card.Status),
		Balance:  card.Balance,
		Currency: card.Currency,
	}
}

func FromStatusOutput(out *orderdto.OrderStatusOutput) OrderStatusResponse {
	return OrderStatusResponse{
		Order:   FromOrder(out.Order),
		Card:    FromCard(out.Card),
		Message: out.Message,
	}
}
