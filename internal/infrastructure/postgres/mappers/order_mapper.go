package mappers

import (
	"github.com/solcard/card-order-service/internal/domain"
	"github.com/solcard/card-order-service/internal/infrastructure/postgres/models"
)

func ToGORMOrder(order *domain.PaymentOrder) *models.PaymentOrderModel {
	model := &models.PaymentOrderModel{
		ID:               order.ID,
		UserID:           order.UserID,
		Kind:             string(order.Kind),
		AmountFiat:       order.AmountFiat,
		AmountCrypto:     order.AmountCrypto,
		ExchangeRate:     order.ExchangeRate,
		CardFee:          order.CardFee,
		TopUpFee:         order.TopUpFee,
		TopUpAmount:      order.TopUpAmount,
		CardTitle:        order.CardTitle,
		Email:            order.Email,
		PhoneNumber:      order.PhoneNumber,
		CardID:           order.CardID,
		VerificationMemo: order.VerificationMemo,
		ExpectedWallet:   order.ExpectedWallet,
		PaidAmount:       order.PaidAmount,
		SenderAddress:    order.SenderAddress,
		PaidAt:           order.PaidAt,
		TokenGateChecked: order.TokenGateChecked,
		TokenGatePassed:  order.TokenGatePassed,
		FulfilledCardID:  order.FulfilledCardID,
		FulfilledAt:      order.FulfilledAt,
		Status:           string(order.Status),
		ExpiresAt:        order.ExpiresAt,
		CreatedAt:        order.CreatedAt,
	}
	if order.TxSignature != "" {
		sig := order.TxSignature
		model.TxSignature = &sig
	}
	return model
}

func ToDomainOrder(model *models.PaymentOrderModel) *domain.PaymentOrder {
	order := &domain.PaymentOrder{
		ID:               model.ID,
		UserID:           model.UserID,
		Kind:             domain.OrderKind(model.Kind),
		AmountFiat:       model.AmountFiat,
		AmountCrypto:     model.AmountCrypto,
		ExchangeRate:     model.ExchangeRate,
		CardFee:          model.CardFee,
		TopUpFee:         model.TopUpFee,
		TopUpAmount:      model.TopUpAmount,
		CardTitle:        model.CardTitle,
		Email:            model.Email,
		PhoneNumber:      model.PhoneNumber,
		CardID:           model.CardID,
		VerificationMemo: model.VerificationMemo,
		ExpectedWallet:   model.ExpectedWallet,
		PaidAmount:       model.PaidAmount,
		SenderAddress:    model.SenderAddress,
		PaidAt:           model.PaidAt,
		TokenGateChecked: model.TokenGateChecked,
		TokenGatePassed:  model.TokenGatePassed,
		FulfilledCardID:  model.FulfilledCardID,
		FulfilledAt:      model.FulfilledAt,
		Status:           domain.OrderStatus(model.Status),
		ExpiresAt:        model.ExpiresAt,
		CreatedAt:        model.CreatedAt,
	}
	if model.TxSignature != nil {
		order.TxSignature = *model.TxSignature
	}
	return order
}
