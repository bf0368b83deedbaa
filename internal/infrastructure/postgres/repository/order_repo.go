package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/solcard/card-order-service/internal/domain"
	"github.com/solcard/card-order-service/internal/infrastructure/postgres/mappers"
	"github.com/solcard/card-order-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultOrderRepository struct {
	DB *gorm.DB
}

func NewDefaultOrderRepository(db *gorm.DB) *DefaultOrderRepository {
	return &DefaultOrderRepository{DB: db}
}

var liveStatuses = []string{string(domain.StatusPending), string(domain.StatusProcessing)}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// CreateOrder inserts the order, rejecting it when the guard finds a live
// order of a guarded kind for the same user. The count is advisory; the
// partial unique index on (user_id, kind) for live guarded orders is what
// holds under concurrent inserts, surfacing as a unique violation here.
func (r *DefaultOrderRepository) CreateOrder(ctx context.Context, order *domain.PaymentOrder, guard *domain.LiveOrderGuard) error {
	orderModel := mappers.ToGORMOrder(order)
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if guard != nil && len(guard.Kinds) > 0 {
			var count int64
			err := tx.Model(&models.PaymentOrderModel{}).
				Where("user_id = ? AND kind IN ? AND status IN ?", guard.UserID, kindStrings(guard.Kinds), liveStatuses).
				Count(&count).Error
			if err != nil {
				return err
			}
			if count > 0 {
				return domain.ErrActiveOrderExists
			}
		}
		return tx.Create(orderModel).Error
	})
	if err != nil && order.RequiresTokenGate() && isUniqueViolation(err) {
		return domain.ErrActiveOrderExists
	}
	return err
}

func kindStrings(kinds []domain.OrderKind) []string {
	out := make([]string, len(kinds))
	for i, k := range kinds {
		out[i] = string(k)
	}
	return out
}

func (r *DefaultOrderRepository) GetOrderByID(ctx context.Context, orderID string) (*domain.PaymentOrder, error) {
	var orderModel models.PaymentOrderModel
	if err := r.DB.WithContext(ctx).First(&orderModel, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}
	return mappers.ToDomainOrder(&orderModel), nil
}

func (r *DefaultOrderRepository) GetOrdersByUserID(ctx context.Context, userID string, status domain.OrderStatus, limit int) ([]*domain.PaymentOrder, error) {
	query := r.DB.WithContext(ctx).Where("user_id = ?", userID)
	if status != "" {
		query = query.Where("status = ?", string(status))
	}
	var orderModels []models.PaymentOrderModel
	if err := query.Order("created_at DESC").Limit(limit).Find(&orderModels).Error; err != nil {
		return nil, err
	}
	orders := make([]*domain.PaymentOrder, len(orderModels))
	for i := range orderModels {
		orders[i] = mappers.ToDomainOrder(&orderModels[i])
	}
	return orders, nil
}

func (r *DefaultOrderRepository) FindLiveOrderByKind(ctx context.Context, userID string, kind domain.OrderKind) (*domain.PaymentOrder, error) {
	var orderModel models.PaymentOrderModel
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND kind = ? AND status IN ?", userID, string(kind), liveStatuses).
		Order("created_at DESC").
		First(&orderModel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}
	return mappers.ToDomainOrder(&orderModel), nil
}

func (r *DefaultOrderRepository) FindPendingByAmountRange(ctx context.Context, wallet string, minAmount, maxAmount float64) ([]*domain.PaymentOrder, error) {
	var orderModels []models.PaymentOrderModel
	err := r.DB.WithContext(ctx).
		Where("expected_wallet = ? AND status = ? AND amount_crypto BETWEEN ? AND ? AND expires_at > ?",
			wallet, string(domain.StatusPending), minAmount, maxAmount, time.Now()).
		Order("created_at DESC").
		Find(&orderModels).Error
	if err != nil {
		return nil, err
	}
	orders := make([]*domain.PaymentOrder, len(orderModels))
	for i := range orderModels {
		orders[i] = mappers.ToDomainOrder(&orderModels[i])
	}
	return orders, nil
}

func (r *DefaultOrderRepository) TxSignatureUsed(ctx context.Context, txSignature string) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&models.PaymentOrderModel{}).
		Where("tx_signature = ?", txSignature).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// AttachTransfer is the PENDING -> PROCESSING transition plus evidence in one
// conditional write. The WHERE on status serializes racing triggers for the
// same order; the unique index on tx_signature serializes racing orders for
// the same transaction.
func (r *DefaultOrderRepository) AttachTransfer(ctx context.Context, orderID string, from domain.OrderStatus, ev domain.TransferEvidence) error {
	res := r.DB.WithContext(ctx).Model(&models.PaymentOrderModel{}).
		Where("id = ? AND status = ?", orderID, string(from)).
		Updates(map[string]interface{}{
			"status":         string(domain.StatusProcessing),
			"tx_signature":   ev.TxSignature,
			"paid_amount":    ev.Amount,
			"sender_address": ev.Sender,
			"paid_at":        ev.PaidAt,
		})
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return domain.ErrTxAlreadyUsed
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrStatusConflict
	}
	return nil
}

func (r *DefaultOrderRepository) UpdateStatusIf(ctx context.Context, orderID string, from, to domain.OrderStatus) error {
	res := r.DB.WithContext(ctx).Model(&models.PaymentOrderModel{}).
		Where("id = ? AND status = ?", orderID, string(from)).
		Update("status", string(to))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrStatusConflict
	}
	return nil
}

func (r *DefaultOrderRepository) MarkTokenGate(ctx context.Context, orderID string, passed bool) error {
	return r.DB.WithContext(ctx).Model(&models.PaymentOrderModel{}).
		Where("id = ?", orderID).
		Updates(map[string]interface{}{
			"token_gate_checked": true,
			"token_gate_passed":  passed,
		}).Error
}

// ClaimDispatch elects exactly one fulfillment dispatcher per order: the
// first caller flips dispatch_started_at, everyone else gets a conflict.
func (r *DefaultOrderRepository) ClaimDispatch(ctx context.Context, orderID string) error {
	res := r.DB.WithContext(ctx).Model(&models.PaymentOrderModel{}).
		Where("id = ? AND status = ? AND dispatch_started_at IS NULL", orderID, string(domain.StatusProcessing)).
		Update("dispatch_started_at", time.Now())
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrStatusConflict
	}
	return nil
}

func (r *DefaultOrderRepository) MarkFulfilled(ctx context.Context, orderID, cardID string) error {
	res := r.DB.WithContext(ctx).Model(&models.PaymentOrderModel{}).
		Where("id = ? AND status = ? AND fulfilled_at IS NULL", orderID, string(domain.StatusProcessing)).
		Updates(map[string]interface{}{
			"status":            string(domain.StatusFulfilled),
			"fulfilled_card_id": cardID,
			"fulfilled_at":      time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrStatusConflict
	}
	return nil
}

func (r *DefaultOrderRepository) MarkFailed(ctx context.Context, orderID string) error {
	res := r.DB.WithContext(ctx).Model(&models.PaymentOrderModel{}).
		Where("id = ? AND status IN ?", orderID, liveStatuses).
		Update("status", string(domain.StatusFailed))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrStatusConflict
	}
	return nil
}
