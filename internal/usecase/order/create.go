package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/solcard/card-order-service/internal/domain"
	publisher "github.com/solcard/card-order-service/internal/infrastructure/kafka"
	orderdto "github.com/solcard/card-order-service/internal/usecase/dto/order"
)

func (uc *DefaultOrderUsecase) CreateOrder(ctx context.Context, input *orderdto.CreateOrderInput) (*orderdto.CreateOrderOutput, error) {
	switch input.Kind {
	case domain.KindCardCreation:
		return uc.createCardCreationOrder(ctx, input)
	case domain.KindCardTopUp:
		return uc.createTopUpOrder(ctx, input)
	default:
		return nil, fmt.Errorf("unsupported order kind: %s", input.Kind)
	}
}

func (uc *DefaultOrderUsecase) createCardCreationOrder(ctx context.Context, input *orderdto.CreateOrderInput) (*orderdto.CreateOrderOutput, error) {
	if _, err := uc.CardRepo.FindActiveCardByUserID(ctx, input.UserID); err == nil {
		return nil, domain.ErrActiveCardExists
	} else if !errors.Is(err, domain.ErrCardNotFound) {
		return nil, err
	}

	topUp := input.TopUpAmount
	if topUp == 0 {
		topUp = uc.Settings.Pricing.DefaultTopUp
	}
	if err := uc.checkTopUpRange(topUp); err != nil {
		return nil, err
	}

	topUpFee := uc.topUpFee(topUp)
	total := uc.Settings.Pricing.CardCreationFee + topUp + topUpFee

	order, err := uc.newQuotedOrder(ctx, input.UserID, domain.KindCardCreation, total)
	if err != nil {
		return nil, err
	}
	order.CardFee = uc.Settings.Pricing.CardCreationFee
	order.TopUpAmount = topUp
	order.TopUpFee = topUpFee
	order.CardTitle = input.CardTitle
	order.Email = input.Email
	order.PhoneNumber = input.PhoneNumber

	// One live card-creation or verification order per user at a time.
	guard := &domain.LiveOrderGuard{
		UserID: input.UserID,
		Kinds:  []domain.OrderKind{domain.KindCardCreation, domain.KindTokenVerification},
	}
	if err := uc.OrderRepo.CreateOrder(ctx, order, guard); err != nil {
		return nil, err
	}

	uc.Metrics.RecordOrderCreated(string(order.Kind), order.AmountFiat)
	uc.publishEvent(publisher.EventOrderCreated, order, "")

	return uc.createOutput(order), nil
}

func (uc *DefaultOrderUsecase) createTopUpOrder(ctx context.Context, input *orderdto.CreateOrderInput) (*orderdto.CreateOrderOutput, error) {
	card, err := uc.CardRepo.GetCardByID(ctx, input.CardID)
	if err != nil {
		return nil, err
	}
	// Hide other users' cards rather than confirming they exist.
	if card.UserID != input.UserID {
		return nil, domain.ErrCardNotFound
	}
	if card.Status != domain.CardStatusActive {
		return nil, domain.ErrCardNotActive
	}

	if err := uc.checkTopUpRange(input.TopUpAmount); err != nil {
		return nil, err
	}

	topUpFee := uc.topUpFee(input.TopUpAmount)
	total := input.TopUpAmount + topUpFee

	order, err := uc.newQuotedOrder(ctx, input.UserID, domain.KindCardTopUp, total)
	if err != nil {
		return nil, err
	}
	order.TopUpAmount = input.TopUpAmount
	order.TopUpFee = topUpFee
	order.CardID = card.ID

	if err := uc.OrderRepo.CreateOrder(ctx, order, nil); err != nil {
		return nil, err
	}

	uc.Metrics.RecordOrderCreated(string(order.Kind), order.AmountFiat)
	uc.publishEvent(publisher.EventOrderCreated, order, "")

	return uc.createOutput(order), nil
}

func (uc *DefaultOrderUsecase) checkTopUpRange(amount float64) error {
	p := uc.Settings.Pricing
	if amount < p.MinTopUp || amount > p.MaxTopUp {
		return fmt.Errorf("%w: top-up must be between $%.2f and $%.2f", domain.ErrAmountOutOfRange, p.MinTopUp, p.MaxTopUp)
	}
	return nil
}

func (uc *DefaultOrderUsecase) topUpFee(amount float64) float64 {
	p := uc.Settings.Pricing
	return amount*p.TopUpFeePercent/100 + p.TopUpFeeFlat
}

// newQuotedOrder fixes the crypto amount at the current rate. The quote is
// final: later rate movement is absorbed by the match tolerance, never by
// requoting.
func (uc *DefaultOrderUsecase) newQuotedOrder(ctx context.Context, userID string, kind domain.OrderKind, totalFiat float64) (*domain.PaymentOrder, error) {
	rate, err := uc.RateProvider.GetRate(ctx, pricePair)
	if err != nil {
		return nil, fmt.Errorf("quoting %s: %w", pricePair, err)
	}

	now := time.Now()
	return &domain.PaymentOrder{
		ID:             uuid.New().String(),
		UserID:         userID,
		Kind:           kind,
		AmountFiat:     totalFiat,
		AmountCrypto:   totalFiat / rate,
		ExchangeRate:   rate,
		ExpectedWallet: uc.Settings.DepositWallet,
		Status:         domain.StatusPending,
		CreatedAt:      now,
		ExpiresAt:      now.Add(uc.Settings.orderTTL()),
	}, nil
}

func (uc *DefaultOrderUsecase) createOutput(order *domain.PaymentOrder) *orderdto.CreateOrderOutput {
	return &orderdto.CreateOrderOutput{
		Order: order,
		Payment: orderdto.PaymentDetails{
			WalletAddress: order.ExpectedWallet,
			AmountCrypto:  order.AmountCrypto,
			AmountFiat:    order.AmountFiat,
			ExchangeRate:  order.ExchangeRate,
			CardFee:       order.CardFee,
			TopUpAmount:   order.TopUpAmount,
			TopUpFee:      order.TopUpFee,
			Memo:          order.VerificationMemo,
			ExpiresAt:     order.ExpiresAt,
		},
	}
}
