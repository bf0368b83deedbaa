package repository

import (
	"context"

	"github.com/solcard/card-order-service/internal/domain"
	"github.com/solcard/card-order-service/internal/infrastructure/postgres/mappers"
	"github.com/solcard/card-order-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultLedgerRepository struct {
	DB *gorm.DB
}

func NewDefaultLedgerRepository(db *gorm.DB) *DefaultLedgerRepository {
	return &DefaultLedgerRepository{DB: db}
}

func (r *DefaultLedgerRepository) Record(ctx context.Context, entry *domain.LedgerEntry) error {
	return r.DB.WithContext(ctx).Create(mappers.ToGORMLedgerEntry(entry)).Error
}

func (r *DefaultLedgerRepository) ListByUserID(ctx context.Context, userID string, limit int) ([]*domain.LedgerEntry, error) {
	var entryModels []models.LedgerEntryModel
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&entryModels).Error
	if err != nil {
		return nil, err
	}
	entries := make([]*domain.LedgerEntry, len(entryModels))
	for i := range entryModels {
		entries[i] = mappers.ToDomainLedgerEntry(&entryModels[i])
	}
	return entries, nil
}
