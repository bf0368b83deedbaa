package solana

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"
	"github.com/solcard/card-order-service/internal/domain"
)

const lamportDecimals = 9

// Observer implements domain.ChainObserver over the RPC client: it turns raw
// balance deltas into net credited transfers for a watched wallet.
type Observer struct {
	client *Client
}

func NewObserver(client *Client) *Observer {
	return &Observer{client: client}
}

func lamportsToSol(lamports int64) float64 {
	v, _ := decimal.New(lamports, -lamportDecimals).Float64()
	return v
}

func mapConfirmation(status string) domain.ConfirmationState {
	switch status {
	case "finalized":
		return domain.ConfirmationFinalized
	case "confirmed":
		return domain.ConfirmationConfirmed
	default:
		return domain.ConfirmationUnconfirmed
	}
}

// netCredit returns the wallet's balance change and the sender address, or
// found=false when the wallet is not part of the transaction.
func netCredit(tx *parsedTransaction, wallet string) (amount int64, sender string, found bool) {
	if tx.Meta == nil {
		return 0, "", false
	}
	keys := tx.Transaction.Message.AccountKeys
	walletIndex := -1
	for i, key := range keys {
		if key.Pubkey == wallet {
			walletIndex = i
			break
		}
	}
	if walletIndex == -1 || walletIndex >= len(tx.Meta.PostBalances) || walletIndex >= len(tx.Meta.PreBalances) {
		return 0, "", false
	}

	amount = tx.Meta.PostBalances[walletIndex] - tx.Meta.PreBalances[walletIndex]

	// The sender is the first other account that lost funds.
	sender = "unknown"
	for i := range keys {
		if i == walletIndex || i >= len(tx.Meta.PostBalances) || i >= len(tx.Meta.PreBalances) {
			continue
		}
		if tx.Meta.PostBalances[i]-tx.Meta.PreBalances[i] < 0 {
			sender = keys[i].Pubkey
			break
		}
	}
	return amount, sender, true
}

func (o *Observer) ListIncomingTransfers(ctx context.Context, wallet string, limit int) ([]domain.Transfer, error) {
	signatures, err := o.client.getSignaturesForAddress(ctx, wallet, limit)
	if err != nil {
		return nil, err
	}

	transfers := make([]domain.Transfer, 0, len(signatures))
	for _, sig := range signatures {
		if len(sig.Err) > 0 && string(sig.Err) != "null" {
			continue
		}
		tx, err := o.client.getTransaction(ctx, sig.Signature)
		if err != nil {
			// One unreadable transaction must not hide the rest.
			slog.Warn("failed to fetch transaction", "signature", sig.Signature, "error", err.Error())
			continue
		}
		if tx == nil || tx.Meta == nil {
			continue
		}
		if len(tx.Meta.Err) > 0 && string(tx.Meta.Err) != "null" {
			continue
		}

		credit, sender, found := netCredit(tx, wallet)
		if !found || credit <= 0 {
			continue
		}

		var blockTime int64
		if sig.BlockTime != nil {
			blockTime = *sig.BlockTime
		}
		transfers = append(transfers, domain.Transfer{
			TxSignature:  sig.Signature,
			Amount:       lamportsToSol(credit),
			Sender:       sender,
			Wallet:       wallet,
			BlockTime:    blockTime,
			Confirmation: mapConfirmation(sig.ConfirmationStatus),
		})
	}
	return transfers, nil
}

func (o *Observer) VerifyTransfer(ctx context.Context, txSignature, wallet string, minAmount float64) (*domain.TransferCheck, error) {
	tx, err := o.client.getTransaction(ctx, txSignature)
	if err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, domain.ErrTxNotFound
	}
	if tx.Meta != nil && len(tx.Meta.Err) > 0 && string(tx.Meta.Err) != "null" {
		return nil, domain.ErrTxFailed
	}

	credit, sender, found := netCredit(tx, wallet)
	if !found || credit <= 0 {
		return nil, domain.ErrWrongDestination
	}

	amount := lamportsToSol(credit)
	if amount < minAmount {
		return nil, fmt.Errorf("%w: got %.9f, need %.9f", domain.ErrAmountTooLow, amount, minAmount)
	}
	return &domain.TransferCheck{Amount: amount, Sender: sender}, nil
}
