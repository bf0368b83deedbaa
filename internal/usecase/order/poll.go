package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/solcard/card-order-service/internal/domain"
	publisher "github.com/solcard/card-order-service/internal/infrastructure/kafka"
	orderdto "github.com/solcard/card-order-service/internal/usecase/dto/order"
)

// PollOrder is the main reconciliation entry point. Every dashboard poll
// drives the order as far forward as current conditions allow: expire it,
// match a payment, run the token gate, fulfill. There is no background
// worker; an unpolled order simply stays where it is.
func (uc *DefaultOrderUsecase) PollOrder(ctx context.Context, userID, orderID string) (*orderdto.OrderStatusOutput, error) {
	order, err := uc.getOwnedOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}

	order, err = uc.expireIfDue(ctx, order)
	if err != nil {
		return nil, err
	}
	if order.IsTerminal() {
		return uc.statusOutput(ctx, order)
	}

	if order.Status == domain.StatusPending {
		matched, err := uc.tryMatch(ctx, order, "poll")
		if err != nil {
			if domain.IsTransient(err) {
				// The chain being unreachable is not the user's problem;
				// report the order as still waiting and let the next poll
				// retry.
				slog.Warn("chain scan failed, order stays pending",
					"order_id", order.ID, "error", err.Error())
				return &orderdto.OrderStatusOutput{Order: order, Message: msgChainUnreachable}, nil
			}
			return nil, err
		}
		if !matched {
			return uc.statusOutput(ctx, order)
		}
		order, err = uc.OrderRepo.GetOrderByID(ctx, order.ID)
		if err != nil {
			return nil, err
		}
	}

	if order.Status == domain.StatusProcessing {
		return uc.processOrder(ctx, order)
	}
	return uc.statusOutput(ctx, order)
}

// processOrder drives a PROCESSING order toward a terminal state: token gate
// first, then a single-winner dispatch claim, then the issuing side effect.
func (uc *DefaultOrderUsecase) processOrder(ctx context.Context, order *domain.PaymentOrder) (*orderdto.OrderStatusOutput, error) {
	if order.RequiresTokenGate() {
		if !order.TokenGateChecked {
			check, err := uc.Gate.CheckBalance(ctx, order.SenderAddress)
			if err != nil {
				if domain.IsTransient(err) {
					slog.Warn("token gate check failed, order stays processing",
						"order_id", order.ID, "error", err.Error())
					uc.Metrics.RecordError("token_gate")
					return &orderdto.OrderStatusOutput{Order: order, Message: msgGatePending}, nil
				}
				return nil, err
			}

			if err := uc.OrderRepo.MarkTokenGate(ctx, order.ID, check.Passes); err != nil {
				return nil, err
			}
			uc.Metrics.RecordTokenGateCheck(check.Passes)
			order.TokenGateChecked = true
			order.TokenGatePassed = check.Passes

			if !check.Passes {
				slog.Info("token gate failed, order terminally failed",
					"order_id", order.ID, "sender", order.SenderAddress,
					"balance", check.Balance, "required", check.Required)
			}
		}

		// A recorded failed verdict bars dispatch permanently, including when
		// an earlier trigger stopped between recording the verdict and the
		// terminal transition.
		if !order.TokenGatePassed {
			if err := uc.OrderRepo.MarkFailed(ctx, order.ID); err != nil && !errors.Is(err, domain.ErrStatusConflict) {
				return nil, err
			}
			order.Status = domain.StatusFailed
			uc.Metrics.RecordOrderFailed(string(order.Kind), "token_gate")
			uc.publishEvent(publisher.EventOrderFailed, order, "")
			return uc.statusOutput(ctx, order)
		}
	}

	// Only the first claimer runs the executor. Everyone else reports the
	// order as they find it.
	if err := uc.OrderRepo.ClaimDispatch(ctx, order.ID); err != nil {
		if errors.Is(err, domain.ErrStatusConflict) {
			current, err := uc.OrderRepo.GetOrderByID(ctx, order.ID)
			if err != nil {
				return nil, err
			}
			return uc.statusOutput(ctx, current)
		}
		return nil, err
	}

	started := time.Now()
	result, err := uc.Executor.Fulfill(ctx, order)
	if err != nil {
		slog.Error("fulfillment failed", "order_id", order.ID, "kind", order.Kind, "error", err.Error())
		if mfErr := uc.OrderRepo.MarkFailed(ctx, order.ID); mfErr != nil && !errors.Is(mfErr, domain.ErrStatusConflict) {
			return nil, mfErr
		}
		order.Status = domain.StatusFailed
		uc.Metrics.RecordOrderFailed(string(order.Kind), "fulfillment")
		uc.publishEvent(publisher.EventOrderFailed, order, "")
		return uc.statusOutput(ctx, order)
	}

	if err := uc.OrderRepo.MarkFulfilled(ctx, order.ID, result.CardID); err != nil && !errors.Is(err, domain.ErrStatusConflict) {
		return nil, err
	}
	now := time.Now()
	order.Status = domain.StatusFulfilled
	order.FulfilledCardID = result.CardID
	order.FulfilledAt = &now

	uc.Metrics.RecordOrderFulfilled(string(order.Kind))
	uc.Metrics.RecordFulfillmentDuration(string(order.Kind), time.Since(started).Seconds())
	uc.publishEvent(publisher.EventOrderFulfilled, order, result.CardID)

	return uc.statusOutput(ctx, order)
}
