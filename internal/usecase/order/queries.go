package usecase

import (
	"context"

	"github.com/solcard/card-order-service/internal/domain"
)

const listLimit = 50

func (uc *DefaultOrderUsecase) GetOrdersByUserID(ctx context.Context, userID string, status domain.OrderStatus) ([]*domain.PaymentOrder, error) {
	return uc.OrderRepo.GetOrdersByUserID(ctx, userID, status, listLimit)
}
