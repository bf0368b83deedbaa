package handlers

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/solcard/card-order-service/internal/delivery/http/dto/order/request"
	"github.com/solcard/card-order-service/internal/domain"
	usecase "github.com/solcard/card-order-service/internal/usecase/order"
)

type WebhookHandler struct {
	Usecase       usecase.OrderUsecase
	DepositWallet string
	Secret        string
}

func NewWebhookHandler(uc usecase.OrderUsecase, depositWallet, secret string) *WebhookHandler {
	return &WebhookHandler{
		Usecase:       uc,
		DepositWallet: depositWallet,
		Secret:        secret,
	}
}

// HandleHelius accepts Helius enhanced-webhook deliveries. It always answers
// 200 for authenticated well-formed payloads so the provider does not retry
// transfers we have decided to drop.
func (h *WebhookHandler) HandleHelius(c echo.Context) error {
	got := c.Request().Header.Get("x-helius-secret")
	if subtle.ConstantTimeCompare([]byte(got), []byte(h.Secret)) != 1 {
		return echo.NewHTTPError(http.StatusUnauthorized, "bad webhook secret")
	}

	var payload request.HeliusWebhookPayload
	if err := c.Bind(&payload); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid webhook body")
	}

	ctx := c.Request().Context()
	for _, tx := range payload {
		if tx.TransactionErr != nil {
			continue
		}
		for _, nt := range tx.NativeTransfers {
			if nt.ToUserAccount != h.DepositWallet || nt.Amount <= 0 {
				continue
			}
			amount, _ := decimal.New(nt.Amount, -9).Float64()
			err := h.Usecase.HandleTransferNotification(ctx, domain.Transfer{
				TxSignature: tx.Signature,
				Amount:      amount,
				Sender:      nt.FromUserAccount,
				Wallet:      nt.ToUserAccount,
				BlockTime:   tx.Timestamp,
			})
			if err != nil {
				// Let the provider redeliver later.
				slog.Error("webhook transfer processing failed",
					"tx_signature", tx.Signature, "error", err.Error())
				return echo.NewHTTPError(http.StatusInternalServerError, "processing failed")
			}
		}
	}

	return c.NoContent(http.StatusOK)
}
