package request

type CreateOrderRequest struct {
	Kind        string  `json:"kind" validate:"required,oneof=CARD_CREATION CARD_TOPUP"`
	CardTitle   string  `json:"card_title" validate:"omitempty,max=64"`
	Email       string  `json:"email" validate:"omitempty,email"`
	PhoneNumber string  `json:"phone_number" validate:"omitempty,max=32"`
	TopUpAmount float64 `json:"topup_amount" validate:"omitempty,gt=0"`
	CardID      string  `json:"card_id" validate:"omitempty,uuid"`
}

type SubmitTransactionRequest struct {
	TxSignature string `json:"tx_signature" validate:"required,min=32,max=128"`
}
