package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/solcard/card-order-service/internal/delivery/http/dto/order/request"
	"github.com/solcard/card-order-service/internal/delivery/http/dto/order/response"
	"github.com/solcard/card-order-service/internal/domain"
	orderdto "github.com/solcard/card-order-service/internal/usecase/dto/order"
	usecase "github.com/solcard/card-order-service/internal/usecase/order"
)

const userIDHeader = "X-User-ID"

type OrderHandler struct {
	Usecase usecase.OrderUsecase
}

func NewOrderHandler(uc usecase.OrderUsecase) *OrderHandler {
	return &OrderHandler{Usecase: uc}
}

func userID(c echo.Context) (string, error) {
	id := c.Request().Header.Get(userIDHeader)
	if id == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing "+userIDHeader+" header")
	}
	return id, nil
}

// writeError maps domain sentinels onto HTTP statuses. Transient failures
// become 503 so callers know to retry, semantic rejections become 4xx.
func writeError(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrOrderNotFound), errors.Is(err, domain.ErrCardNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrNotOrderOwner):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrActiveCardExists),
		errors.Is(err, domain.ErrActiveOrderExists),
		errors.Is(err, domain.ErrTxAlreadyUsed),
		errors.Is(err, domain.ErrStatusConflict):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrAmountOutOfRange),
		errors.Is(err, domain.ErrCardNotActive),
		errors.Is(err, domain.ErrTxNotFound),
		errors.Is(err, domain.ErrTxFailed),
		errors.Is(err, domain.ErrWrongDestination),
		errors.Is(err, domain.ErrAmountTooLow):
		status = http.StatusBadRequest
	case domain.IsTransient(err):
		status = http.StatusServiceUnavailable
	}
	return c.JSON(status, response.ErrorResponse{Error: err.Error()})
}

func (h *OrderHandler) CreateOrder(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}

	var req request.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	out, err := h.Usecase.CreateOrder(c.Request().Context(), &orderdto.CreateOrderInput{
		UserID:      uid,
		Kind:        domain.OrderKind(req.Kind),
		CardTitle:   req.CardTitle,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		TopUpAmount: req.TopUpAmount,
		CardID:      req.CardID,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, response.CreateOrderResponse{
		Order:   response.FromOrder(out.Order),
		Payment: out.Payment,
	})
}

func (h *OrderHandler) VerifyToken(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}

	out, err := h.Usecase.CreateTokenVerification(c.Request().Context(), uid)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, response.CreateOrderResponse{
		Order:   response.FromOrder(out.Order),
		Payment: out.Payment,
	})
}

func (h *OrderHandler) GetOrder(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}

	out, err := h.Usecase.PollOrder(c.Request().Context(), uid, c.Param("orderId"))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, response.FromStatusOutput(out))
}

func (h *OrderHandler) SubmitTransaction(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}

	var req request.SubmitTransactionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	out, err := h.Usecase.SubmitTransaction(c.Request().Context(), &orderdto.SubmitTransactionInput{
		UserID:      uid,
		OrderID:     c.Param("orderId"),
		TxSignature: req.TxSignature,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, response.FromStatusOutput(out))
}

func (h *OrderHandler) ListOrders(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}

	orders, err := h.Usecase.GetOrdersByUserID(c.Request().Context(), uid, domain.OrderStatus(c.QueryParam("status")))
	if err != nil {
		return writeError(c, err)
	}

	resp := make([]response.OrderResponse, 0, len(orders))
	for _, order := range orders {
		resp = append(resp, response.FromOrder(order))
	}
	return c.JSON(http.StatusOK, resp)
}
