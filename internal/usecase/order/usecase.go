package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/solcard/card-order-service/internal/config"
	"github.com/solcard/card-order-service/internal/domain"
	publisher "github.com/solcard/card-order-service/internal/infrastructure/kafka"
	"github.com/solcard/card-order-service/internal/infrastructure/metrics"
	orderdto "github.com/solcard/card-order-service/internal/usecase/dto/order"
	"github.com/solcard/card-order-service/internal/usecase/fulfillment"
)

const (
	// amountTolerance is the accepted drift between the quoted crypto amount
	// and the observed transfer, covering rate movement between quote and
	// payment time.
	amountTolerance = 0.05
	// recencyWindow guards against matching transfers that predate the order.
	recencyWindow = 60 * time.Second
	// matchScanLimit bounds how many recent transfers one match pass reads.
	matchScanLimit = 20

	pricePair = "SOL/USD"
)

const (
	msgWaiting            = "Waiting for payment..."
	msgChainUnreachable   = "Waiting for payment... (could not verify blockchain at this moment)"
	msgProcessing         = "Payment received, processing..."
	msgGatePending        = "Payment received, verification pending"
	msgExpired            = "Payment order has expired, create a new order"
	msgVerificationFailed = "Payment received but verification failed"
	msgFulfillmentFailed  = "Payment received but fulfillment failed, contact support"
	msgFulfilled          = "Order fulfilled"
)

type OrderUsecase interface {
	CreateOrder(ctx context.Context, input *orderdto.CreateOrderInput) (*orderdto.CreateOrderOutput, error)
	CreateTokenVerification(ctx context.Context, userID string) (*orderdto.CreateOrderOutput, error)

	PollOrder(ctx context.Context, userID, orderID string) (*orderdto.OrderStatusOutput, error)
	SubmitTransaction(ctx context.Context, input *orderdto.SubmitTransactionInput) (*orderdto.OrderStatusOutput, error)
	HandleTransferNotification(ctx context.Context, transfer domain.Transfer) error

	GetOrdersByUserID(ctx context.Context, userID string, status domain.OrderStatus) ([]*domain.PaymentOrder, error)
}

// EventPublisher is the slice of the kafka publisher the reconciler needs.
type EventPublisher interface {
	PublishOrder(topic string, event publisher.OrderEvent) error
}

// Settings is the ambient configuration captured once at startup and passed
// in explicitly, so quote-time and match-time values cannot diverge.
type Settings struct {
	DepositWallet string
	Pricing       config.Pricing
	EventsTopic   string
}

func (s Settings) orderTTL() time.Duration {
	return time.Duration(s.Pricing.OrderTTLMinutes) * time.Minute
}

type DefaultOrderUsecase struct {
	OrderRepo    domain.PaymentOrderRepository
	CardRepo     domain.CardRepository
	Chain        domain.ChainObserver
	Gate         domain.TokenGate
	RateProvider domain.ExchangeRateProvider
	Executor     *fulfillment.Executor
	Publisher    EventPublisher
	Metrics      *metrics.OrderMetrics
	Settings     Settings
}

func NewDefaultOrderUsecase(
	orderRepo domain.PaymentOrderRepository,
	cardRepo domain.CardRepository,
	chain domain.ChainObserver,
	gate domain.TokenGate,
	rateProvider domain.ExchangeRateProvider,
	executor *fulfillment.Executor,
	eventPublisher EventPublisher,
	orderMetrics *metrics.OrderMetrics,
	settings Settings) *DefaultOrderUsecase {

	return &DefaultOrderUsecase{
		OrderRepo:    orderRepo,
		CardRepo:     cardRepo,
		Chain:        chain,
		Gate:         gate,
		RateProvider: rateProvider,
		Executor:     executor,
		Publisher:    eventPublisher,
		Metrics:      orderMetrics,
		Settings:     settings,
	}
}

func (uc *DefaultOrderUsecase) publishEvent(event string, order *domain.PaymentOrder, cardID string) {
	go func(ev publisher.OrderEvent) {
		if err := uc.Publisher.PublishOrder(uc.Settings.EventsTopic, ev); err != nil {
			slog.Error("failed to publish order event", "event", ev.Event, "order_id", ev.OrderID, "error", err.Error())
		}
	}(publisher.OrderEvent{
		Event:        event,
		OrderID:      order.ID,
		UserID:       order.UserID,
		Kind:         string(order.Kind),
		Status:       string(order.Status),
		AmountFiat:   order.AmountFiat,
		AmountCrypto: order.AmountCrypto,
		TxSignature:  order.TxSignature,
		CardID:       cardID,
		Timestamp:    time.Now(),
	})
}

func statusMessage(order *domain.PaymentOrder) string {
	switch order.Status {
	case domain.StatusPending:
		return msgWaiting
	case domain.StatusProcessing:
		return msgProcessing
	case domain.StatusExpired:
		return msgExpired
	case domain.StatusFulfilled:
		return msgFulfilled
	case domain.StatusFailed:
		if order.TokenGateChecked && !order.TokenGatePassed {
			return msgVerificationFailed
		}
		return msgFulfillmentFailed
	}
	return ""
}

// statusOutput renders the order's current state; the four user-visible
// outcomes are derivable from status alone.
func (uc *DefaultOrderUsecase) statusOutput(ctx context.Context, order *domain.PaymentOrder) (*orderdto.OrderStatusOutput, error) {
	out := &orderdto.OrderStatusOutput{
		Order:   order,
		Message: statusMessage(order),
	}
	if order.FulfilledCardID != "" {
		card, err := uc.CardRepo.GetCardByID(ctx, order.FulfilledCardID)
		if err != nil {
			slog.Warn("failed to load fulfilled card", "order_id", order.ID, "card_id", order.FulfilledCardID, "error", err.Error())
		} else {
			out.Card = card
		}
	}
	return out, nil
}

// expireIfDue lazily applies the only cancellation path. A conflict means a
// concurrent trigger matched the order first, which wins: once payment is
// observed the order is past expiry.
func (uc *DefaultOrderUsecase) expireIfDue(ctx context.Context, order *domain.PaymentOrder) (*domain.PaymentOrder, error) {
	if !order.IsExpired(time.Now()) {
		return order, nil
	}

	err := uc.OrderRepo.UpdateStatusIf(ctx, order.ID, domain.StatusPending, domain.StatusExpired)
	if err != nil {
		if errors.Is(err, domain.ErrStatusConflict) {
			return uc.OrderRepo.GetOrderByID(ctx, order.ID)
		}
		return nil, err
	}

	order.Status = domain.StatusExpired
	uc.Metrics.RecordOrderExpired(string(order.Kind))
	uc.publishEvent(publisher.EventOrderExpired, order, "")
	return order, nil
}

func (uc *DefaultOrderUsecase) getOwnedOrder(ctx context.Context, userID, orderID string) (*domain.PaymentOrder, error) {
	order, err := uc.OrderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, domain.ErrNotOrderOwner
	}
	return order, nil
}
