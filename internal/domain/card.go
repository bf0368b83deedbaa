package domain

import (
	"context"
	"time"
)

type CardStatus string

const (
	CardStatusActive CardStatus = "ACTIVE"
	CardStatusFrozen CardStatus = "FROZEN"
)

// Card is the local record of a virtual card issued through the card
// platform. Balance mirrors the net credited amounts, after platform fees.
type Card struct {
	ID           string
	UserID       string
	IssuerCardID string
	Title        string
	Status       CardStatus
	Balance      float64
	Currency     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type CardRepository interface {
	CreateCard(ctx context.Context, card *Card) error
	GetCardByID(ctx context.Context, cardID string) (*Card, error)
	FindActiveCardByUserID(ctx context.Context, userID string) (*Card, error)
	AddBalance(ctx context.Context, cardID string, delta float64) error
	UpdateCardStatus(ctx context.Context, cardID string, status CardStatus) error
}
