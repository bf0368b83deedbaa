package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/solcard/card-order-service/internal/config"
	"github.com/solcard/card-order-service/internal/delivery/http/handlers"
	usecase "github.com/solcard/card-order-service/internal/usecase/order"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

type Server struct {
	cfg  *config.ServiceConfig
	echo *echo.Echo
}

func NewServer(cfg *config.ServiceConfig, uc usecase.OrderUsecase) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Validator = &CustomValidator{validator: validator.New()}

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "healthy",
			"service": "card-order-service",
		})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	orderHandler := handlers.NewOrderHandler(uc)
	webhookHandler := handlers.NewWebhookHandler(uc, cfg.Solana.DepositWallet, cfg.Webhook.HeliusSecret)

	api := e.Group("/api")
	api.POST("/payment-orders", orderHandler.CreateOrder)
	api.GET("/payment-orders", orderHandler.ListOrders)
	api.GET("/payment-orders/:orderId", orderHandler.GetOrder)
	api.POST("/payment-orders/:orderId/verify", orderHandler.SubmitTransaction)
	api.POST("/verify-token", orderHandler.VerifyToken)
	api.POST("/webhooks/helius", webhookHandler.HandleHelius)

	return &Server{cfg: cfg, echo: e}
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%s", s.cfg.HTTPServer.Host, s.cfg.HTTPServer.Port)
	return s.echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
