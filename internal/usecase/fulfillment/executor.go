package fulfillment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/solcard/card-order-service/internal/domain"
)

// Result reports the single external side effect performed for an order.
type Result struct {
	CardID       string
	IssuerCardID string
	NetTopUp     float64
}

// Executor performs the one irreversible issuing-platform action per order.
// It never retries a rejected call: by the time it runs, the user's funds
// are already on-chain, so a platform failure is surfaced as a terminal
// order failure for an operator to resolve, not looped on.
type Executor struct {
	Issuer     domain.CardIssuer
	CardRepo   domain.CardRepository
	LedgerRepo domain.LedgerRepository
}

func NewExecutor(issuer domain.CardIssuer, cardRepo domain.CardRepository, ledgerRepo domain.LedgerRepository) *Executor {
	return &Executor{
		Issuer:     issuer,
		CardRepo:   cardRepo,
		LedgerRepo: ledgerRepo,
	}
}

func (e *Executor) Fulfill(ctx context.Context, order *domain.PaymentOrder) (*Result, error) {
	switch order.Kind {
	case domain.KindCardCreation:
		return e.createCard(ctx, order)
	case domain.KindCardTopUp:
		return e.topUpCard(ctx, order)
	case domain.KindTokenVerification:
		// The passed token gate is the whole outcome; nothing to issue.
		return &Result{}, nil
	default:
		return nil, fmt.Errorf("unknown order kind: %s", order.Kind)
	}
}

func (e *Executor) createCard(ctx context.Context, order *domain.PaymentOrder) (*Result, error) {
	title := order.CardTitle
	if title == "" {
		title = "My Card"
	}

	issuerCardID, err := e.Issuer.CreateCard(ctx, &domain.CreateCardRequest{
		Title:       title,
		Email:       order.Email,
		PhoneNumber: order.PhoneNumber,
	})
	if err != nil {
		return nil, fmt.Errorf("issuer rejected card creation: %w", err)
	}

	// Initial top-up is a secondary step: the card already exists and the
	// payment is irreversible, so a failure here is a partial success that
	// goes to manual follow-up instead of failing the order.
	balance := 0.0
	netTopUp := 0.0
	if order.TopUpAmount > 0 {
		netTopUp, err = e.Issuer.TopUpCard(ctx, issuerCardID, order.TopUpAmount)
		if err != nil {
			slog.Error("initial top-up failed after card creation, needs manual follow-up",
				"order_id", order.ID, "issuer_card_id", issuerCardID, "amount", order.TopUpAmount, "error", err.Error())
			netTopUp = 0
		}
		balance = netTopUp
	}

	card := &domain.Card{
		ID:           uuid.New().String(),
		UserID:       order.UserID,
		IssuerCardID: issuerCardID,
		Title:        title,
		Status:       domain.CardStatusActive,
		Balance:      balance,
		Currency:     "USD",
		CreatedAt:    time.Now(),
	}
	if err := e.CardRepo.CreateCard(ctx, card); err != nil {
		// The card exists on the platform already; losing the local record
		// is an operator problem, not grounds for another issuing call.
		slog.Error("issuer card created but local record failed",
			"order_id", order.ID, "issuer_card_id", issuerCardID, "error", err.Error())
		return nil, fmt.Errorf("persisting card record: %w", err)
	}

	e.recordLedger(ctx, order, card.ID, "card_creation", fmt.Sprintf("Card created: %s", title))

	return &Result{CardID: card.ID, IssuerCardID: issuerCardID, NetTopUp: netTopUp}, nil
}

func (e *Executor) topUpCard(ctx context.Context, order *domain.PaymentOrder) (*Result, error) {
	card, err := e.CardRepo.GetCardByID(ctx, order.CardID)
	if err != nil {
		return nil, err
	}

	netAmount, err := e.Issuer.TopUpCard(ctx, card.IssuerCardID, order.TopUpAmount)
	if err != nil {
		return nil, fmt.Errorf("issuer rejected top-up: %w", err)
	}

	if err := e.CardRepo.AddBalance(ctx, card.ID, netAmount); err != nil {
		slog.Error("issuer top-up succeeded but balance update failed",
			"order_id", order.ID, "card_id", card.ID, "net_amount", netAmount, "error", err.Error())
		return nil, fmt.Errorf("updating card balance: %w", err)
	}

	e.recordLedger(ctx, order, card.ID, "card_topup", fmt.Sprintf("Top-up: $%.2f", order.TopUpAmount))

	return &Result{CardID: card.ID, IssuerCardID: card.IssuerCardID, NetTopUp: netAmount}, nil
}

func (e *Executor) recordLedger(ctx context.Context, order *domain.PaymentOrder, cardID, entryType, description string) {
	err := e.LedgerRepo.Record(ctx, &domain.LedgerEntry{
		UserID:      order.UserID,
		CardID:      cardID,
		Type:        entryType,
		Amount:      -order.AmountFiat,
		Currency:    "USD",
		Description: description,
		Reference:   order.TxSignature,
	})
	if err != nil {
		slog.Error("failed to record ledger entry", "order_id", order.ID, "error", err.Error())
	}
}
