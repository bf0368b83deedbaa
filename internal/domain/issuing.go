package domain

import "context"

type CreateCardRequest struct {
	Title       string
	Email       string
	PhoneNumber string
}

type IssuedCard struct {
	CardID   string
	Title    string
	Status   string
	Balance  float64
	LastFour string
}

// CardIssuer is the card-platform capability. Calls are irreversible once
// acknowledged; the executor never retries them in a loop.
type CardIssuer interface {
	CreateCard(ctx context.Context, req *CreateCardRequest) (string, error)
	// TopUpCard returns the net amount credited after the platform's fee.
	TopUpCard(ctx context.Context, cardID string, amount float64) (float64, error)
	FreezeCard(ctx context.Context, cardID string) error
	UnfreezeCard(ctx context.Context, cardID string) error
	GetCard(ctx context.Context, cardID string) (*IssuedCard, error)
}
