package models

import "time"

type CardModel struct {
	ID           string `gorm:"primaryKey;type:uuid"`
	UserID       string `gorm:"index:idx_cards_user"`
	IssuerCardID string `gorm:"index:idx_cards_issuer"`
	Title        string
	Status       string `gorm:"index:idx_cards_status"`
	Balance      float64
	Currency     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type LedgerEntryModel struct {
	ID          uint   `gorm:"primaryKey"`
	UserID      string `gorm:"index:idx_ledger_user"`
	CardID      string
	Type        string
	Amount      float64
	Currency    string
	Description string
	Reference   string `gorm:"index:idx_ledger_reference"`
	CreatedAt   time.Time
}
