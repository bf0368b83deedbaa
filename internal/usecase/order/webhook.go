package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/solcard/card-order-service/internal/domain"
	publisher "github.com/solcard/card-order-service/internal/infrastructure/kafka"
)

// HandleTransferNotification reacts to a pushed deposit notification by
// finding the order it pays. Unmatched transfers are dropped silently: a
// deposit with no order is an operator concern, not a processing error.
func (uc *DefaultOrderUsecase) HandleTransferNotification(ctx context.Context, transfer domain.Transfer) error {
	if transfer.Wallet != uc.Settings.DepositWallet {
		slog.Warn("transfer notification for unknown wallet dropped", "wallet", transfer.Wallet)
		return nil
	}
	if transfer.Amount <= 0 || transfer.TxSignature == "" {
		return nil
	}

	used, err := uc.OrderRepo.TxSignatureUsed(ctx, transfer.TxSignature)
	if err != nil {
		return err
	}
	if used {
		// Redelivery of an already-reconciled transfer.
		return nil
	}

	// Invert the tolerance band: find orders whose quote this amount could
	// satisfy. Candidates come back most recently created first, so ties go
	// to the newest order.
	minQuote := transfer.Amount / (1 + amountTolerance)
	maxQuote := transfer.Amount / (1 - amountTolerance)
	candidates, err := uc.OrderRepo.FindPendingByAmountRange(ctx, transfer.Wallet, minQuote, maxQuote)
	if err != nil {
		return err
	}

	for _, order := range candidates {
		if !uc.transferMatches(order, transfer) {
			continue
		}

		err := uc.OrderRepo.AttachTransfer(ctx, order.ID, domain.StatusPending, domain.TransferEvidence{
			TxSignature: transfer.TxSignature,
			Amount:      transfer.Amount,
			Sender:      transfer.Sender,
			PaidAt:      time.Now(),
		})
		switch {
		case err == nil:
			slog.Info("webhook matched transfer to order",
				"order_id", order.ID, "tx_signature", transfer.TxSignature, "amount", transfer.Amount)
			uc.Metrics.RecordMatchAttempt("webhook", "matched")
			order.TxSignature = transfer.TxSignature
			uc.publishEvent(publisher.EventOrderMatched, order, "")

			matched, err := uc.OrderRepo.GetOrderByID(ctx, order.ID)
			if err != nil {
				return err
			}
			if _, err := uc.processOrder(ctx, matched); err != nil {
				// The match is durable; fulfillment will be retried by the
				// next poll.
				slog.Error("webhook-triggered processing failed",
					"order_id", order.ID, "error", err.Error())
			}
			return nil
		case errors.Is(err, domain.ErrTxAlreadyUsed):
			// A concurrent trigger claimed this signature already.
			return nil
		case errors.Is(err, domain.ErrStatusConflict):
			// This order was matched by something else; the transfer may
			// still pay an older candidate.
			continue
		default:
			return err
		}
	}

	uc.Metrics.RecordMatchAttempt("webhook", "no_match")
	slog.Info("transfer notification matched no order",
		"tx_signature", transfer.TxSignature, "amount", transfer.Amount, "sender", transfer.Sender)
	return nil
}
