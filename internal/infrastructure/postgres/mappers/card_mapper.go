package mappers

import (
	"github.com/solcard/card-order-service/internal/domain"
	"github.com/solcard/card-order-service/internal/infrastructure/postgres/models"
)

func ToGORMCard(card *domain.Card) *models.CardModel {
	return &models.CardModel{
		ID:           card.ID,
		UserID:       card.UserID,
		IssuerCardID: card.IssuerCardID,
		Title:        card.Title,
		Status:       string(card.Status),
		Balance:      card.Balance,
		Currency:     card.Currency,
		CreatedAt:    card.CreatedAt,
	}
}

func ToDomainCard(model *models.CardModel) *domain.Card {
	return &domain.Card{
		ID:           model.ID,
		UserID:       model.UserID,
		IssuerCardID: model.IssuerCardID,
		Title:        model.Title,
		Status:       domain.CardStatus(model.Status),
		Balance:      model.Balance,
		Currency:     model.Currency,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}
}

func ToGORMLedgerEntry(entry *domain.LedgerEntry) *models.LedgerEntryModel {
	return &models.LedgerEntryModel{
		UserID:      entry.UserID,
		CardID:      entry.CardID,
		Type:        entry.Type,
		Amount:      entry.Amount,
		Currency:    entry.Currency,
		Description: entry.Description,
		Reference:   entry.Reference,
	}
}

func ToDomainLedgerEntry(model *models.LedgerEntryModel) *domain.LedgerEntry {
	return &domain.LedgerEntry{
		ID:          model.ID,
		UserID:      model.UserID,
		CardID:      model.CardID,
		Type:        model.Type,
		Amount:      model.Amount,
		Currency:    model.Currency,
		Description: model.Description,
		Reference:   model.Reference,
		CreatedAt:   model.CreatedAt,
	}
}
