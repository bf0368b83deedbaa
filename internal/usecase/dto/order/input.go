package orderdto

import "github.com/solcard/card-order-service/internal/domain"

type CreateOrderInput struct {
	UserID      string
	Kind        domain.OrderKind
	CardTitle   string
	Email       string
	PhoneNumber string
	TopUpAmount float64
	CardID      string
}

type SubmitTransactionInput struct {
	UserID      string
	OrderID     string
	TxSignature string
}
