package domain

import (
	"context"
	"time"
)

// LedgerEntry is the per-fulfillment audit row. Reference carries the
// on-chain transaction signature that paid for the action.
type LedgerEntry struct {
	ID          uint
	UserID      string
	CardID      string
	Type        string
	Amount      float64
	Currency    string
	Description string
	Reference   string
	CreatedAt   time.Time
}

type LedgerRepository interface {
	Record(ctx context.Context, entry *LedgerEntry) error
	ListByUserID(ctx context.Context, userID string, limit int) ([]*LedgerEntry, error)
}
