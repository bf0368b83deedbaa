package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/solcard/card-order-service/internal/domain"
	publisher "github.com/solcard/card-order-service/internal/infrastructure/kafka"
	orderdto "github.com/solcard/card-order-service/internal/usecase/dto/order"
)

// transferMatches applies the matching rule: amount inside the tolerance
// band around the quote, and the transfer not older than the order minus a
// small clock-skew allowance.
func (uc *DefaultOrderUsecase) transferMatches(order *domain.PaymentOrder, t domain.Transfer) bool {
	minAmount := order.AmountCrypto * (1 - amountTolerance)
	maxAmount := order.AmountCrypto * (1 + amountTolerance)
	if t.Amount < minAmount || t.Amount > maxAmount {
		return false
	}
	// A transfer without a block time cannot prove it is recent.
	if t.BlockTime <= 0 {
		return false
	}
	blockTime := time.Unix(t.BlockTime, 0)
	if blockTime.Before(order.CreatedAt.Add(-recencyWindow)) {
		return false
	}
	return true
}

// tryMatch scans recent deposits for one that pays this PENDING order and
// attaches the first match. Returns true when the order reached PROCESSING,
// whether we attached the transfer or lost the race to another trigger.
func (uc *DefaultOrderUsecase) tryMatch(ctx context.Context, order *domain.PaymentOrder, trigger string) (bool, error) {
	transfers, err := uc.Chain.ListIncomingTransfers(ctx, order.ExpectedWallet, matchScanLimit)
	if err != nil {
		uc.Metrics.RecordError("chain_scan")
		return false, err
	}

	for _, t := range transfers {
		if !uc.transferMatches(order, t) {
			continue
		}

		used, err := uc.OrderRepo.TxSignatureUsed(ctx, t.TxSignature)
		if err != nil {
			return false, err
		}
		if used {
			continue
		}

		err = uc.OrderRepo.AttachTransfer(ctx, order.ID, domain.StatusPending, domain.TransferEvidence{
			TxSignature: t.TxSignature,
			Amount:      t.Amount,
			Sender:      t.Sender,
			PaidAt:      time.Now(),
		})
		switch {
		case err == nil:
			slog.Info("matched transfer to order",
				"order_id", order.ID, "tx_signature", t.TxSignature, "amount", t.Amount, "trigger", trigger)
			uc.Metrics.RecordMatchAttempt(trigger, "matched")
			order.TxSignature = t.TxSignature
			uc.publishEvent(publisher.EventOrderMatched, order, "")
			return true, nil
		case errors.Is(err, domain.ErrTxAlreadyUsed):
			// Lost this signature to another order between the check and
			// the write. The next transfer may still pay this one.
			continue
		case errors.Is(err, domain.ErrStatusConflict):
			// The order already left PENDING under a concurrent trigger.
			uc.Metrics.RecordMatchAttempt(trigger, "raced")
			return true, nil
		default:
			return false, err
		}
	}

	uc.Metrics.RecordMatchAttempt(trigger, "no_match")
	return false, nil
}

// SubmitTransaction is the manual fallback: the user pastes the transaction
// signature instead of waiting for the scan to find it. Verification
// failures are reported without touching order state so the user can correct
// a typo and resubmit.
func (uc *DefaultOrderUsecase) SubmitTransaction(ctx context.Context, input *orderdto.SubmitTransactionInput) (*orderdto.OrderStatusOutput, error) {
	order, err := uc.getOwnedOrder(ctx, input.UserID, input.OrderID)
	if err != nil {
		return nil, err
	}

	order, err = uc.expireIfDue(ctx, order)
	if err != nil {
		return nil, err
	}
	if order.IsTerminal() {
		return uc.statusOutput(ctx, order)
	}

	if order.Status == domain.StatusPending {
		minAmount := order.AmountCrypto * (1 - amountTolerance)
		check, err := uc.Chain.VerifyTransfer(ctx, input.TxSignature, order.ExpectedWallet, minAmount)
		if err != nil {
			uc.Metrics.RecordMatchAttempt("manual", "rejected")
			return nil, err
		}

		used, err := uc.OrderRepo.TxSignatureUsed(ctx, input.TxSignature)
		if err != nil {
			return nil, err
		}
		if used {
			return nil, domain.ErrTxAlreadyUsed
		}

		err = uc.OrderRepo.AttachTransfer(ctx, order.ID, domain.StatusPending, domain.TransferEvidence{
			TxSignature: input.TxSignature,
			Amount:      check.Amount,
			Sender:      check.Sender,
			PaidAt:      time.Now(),
		})
		switch {
		case err == nil:
			uc.Metrics.RecordMatchAttempt("manual", "matched")
			order.TxSignature = input.TxSignature
			uc.publishEvent(publisher.EventOrderMatched, order, "")
		case errors.Is(err, domain.ErrStatusConflict):
			// A concurrent trigger already matched this order; proceed with
			// whatever it attached.
		default:
			return nil, err
		}

		order, err = uc.OrderRepo.GetOrderByID(ctx, order.ID)
		if err != nil {
			return nil, err
		}
	}

	if order.Status == domain.StatusProcessing {
		return uc.processOrder(ctx, order)
	}
	return uc.statusOutput(ctx, order)
}
