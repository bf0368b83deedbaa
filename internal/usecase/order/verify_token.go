package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/jaevor/go-nanoid"
	"github.com/solcard/card-order-service/internal/domain"
	publisher "github.com/solcard/card-order-service/internal/infrastructure/kafka"
	orderdto "github.com/solcard/card-order-service/internal/usecase/dto/order"
)

// CreateTokenVerification starts (or resumes) the token-gate verification
// flow. An unexpired pending verification order is returned as-is so the user
// keeps paying against the same quote instead of accumulating duplicates.
func (uc *DefaultOrderUsecase) CreateTokenVerification(ctx context.Context, userID string) (*orderdto.CreateOrderOutput, error) {
	existing, err := uc.OrderRepo.FindLiveOrderByKind(ctx, userID, domain.KindTokenVerification)
	switch {
	case err == nil:
		existing, err = uc.expireIfDue(ctx, existing)
		if err != nil {
			return nil, err
		}
		if !existing.IsTerminal() {
			return uc.createOutput(existing), nil
		}
	case !errors.Is(err, domain.ErrOrderNotFound):
		return nil, err
	}

	if _, err := uc.CardRepo.FindActiveCardByUserID(ctx, userID); err == nil {
		return nil, domain.ErrActiveCardExists
	} else if !errors.Is(err, domain.ErrCardNotFound) {
		return nil, err
	}

	memo, err := uc.newVerificationMemo(userID)
	if err != nil {
		return nil, err
	}

	order, err := uc.newQuotedOrder(ctx, userID, domain.KindTokenVerification, uc.Settings.Pricing.VerificationFee)
	if err != nil {
		return nil, err
	}
	order.VerificationMemo = memo

	guard := &domain.LiveOrderGuard{
		UserID: userID,
		Kinds:  []domain.OrderKind{domain.KindTokenVerification},
	}
	if err := uc.OrderRepo.CreateOrder(ctx, order, guard); err != nil {
		return nil, err
	}

	uc.Metrics.RecordOrderCreated(string(order.Kind), order.AmountFiat)
	uc.publishEvent(publisher.EventOrderCreated, order, "")

	return uc.createOutput(order), nil
}

// newVerificationMemo builds a correlation tag the user may include in the
// payment memo. It is display-only: matching goes by amount and sender, the
// tag just helps operators tie a transfer to a user when reconciling by hand.
func (uc *DefaultOrderUsecase) newVerificationMemo(userID string) (string, error) {
	gen, err := nanoid.Standard(10)
	if err != nil {
		return "", fmt.Errorf("failed to create memo generator: %w", err)
	}
	return fmt.Sprintf("verify_%s_%s", userID, gen()), nil
}
