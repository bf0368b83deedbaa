package repository

import (
	"context"
	"errors"

	"github.com/solcard/card-order-service/internal/domain"
	"github.com/solcard/card-order-service/internal/infrastructure/postgres/mappers"
	"github.com/solcard/card-order-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultCardRepository struct {
	DB *gorm.DB
}

func NewDefaultCardRepository(db *gorm.DB) *DefaultCardRepository {
	return &DefaultCardRepository{DB: db}
}

func (r *DefaultCardRepository) CreateCard(ctx context.Context, card *domain.Card) error {
	return r.DB.WithContext(ctx).Create(mappers.ToGORMCard(card)).Error
}

func (r *DefaultCardRepository) GetCardByID(ctx context.Context, cardID string) (*domain.Card, error) {
	var cardModel models.CardModel
	if err := r.DB.WithContext(ctx).First(&cardModel, "id = ?", cardID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCardNotFound
		}
		return nil, err
	}
	return mappers.ToDomainCard(&cardModel), nil
}

func (r *DefaultCardRepository) FindActiveCardByUserID(ctx context.Context, userID string) (*domain.Card, error) {
	var cardModel models.CardModel
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, string(domain.CardStatusActive)).
		First(&cardModel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCardNotFound
		}
		return nil, err
	}
	return mappers.ToDomainCard(&cardModel), nil
}

func (r *DefaultCardRepository) AddBalance(ctx context.Context, cardID string, delta float64) error {
	res := r.DB.WithContext(ctx).Model(&models.CardModel{}).
		Where("id = ?", cardID).
		Update("balance", gorm.Expr("balance + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrCardNotFound
	}
	return nil
}

func (r *DefaultCardRepository) UpdateCardStatus(ctx context.Context, cardID string, status domain.CardStatus) error {
	res := r.DB.WithContext(ctx).Model(&models.CardModel{}).
		Where("id = ?", cardID).
		Update("status", string(status))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrCardNotFound
	}
	return nil
}
