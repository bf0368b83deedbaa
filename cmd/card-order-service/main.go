package main

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/solcard/card-order-service/internal/config"
	httpserver "github.com/solcard/card-order-service/internal/delivery/http"
	infrastructure "github.com/solcard/card-order-service/internal/infrastructure/exchange_providers"
	publisher "github.com/solcard/card-order-service/internal/infrastructure/kafka"
	"github.com/solcard/card-order-service/internal/infrastructure/metrics"
	"github.com/solcard/card-order-service/internal/infrastructure/migrate"
	"github.com/solcard/card-order-service/internal/infrastructure/postgres"
	"github.com/solcard/card-order-service/internal/infrastructure/postgres/repository"
	"github.com/solcard/card-order-service/internal/infrastructure/solana"
	"github.com/solcard/card-order-service/internal/infrastructure/zeroid"
	"github.com/solcard/card-order-service/internal/usecase/fulfillment"
	usecase "github.com/solcard/card-order-service/internal/usecase/order"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("failed to load .env")
	}
	// Reading config
	cfg := config.MustLoad()
	// Init database
	db := postgres.MustInitDB(cfg)
	if cfg.OrderDB.MigrationsPath != "" {
		if err := migrate.RunMigrations(db, cfg.OrderDB.MigrationsPath); err != nil {
			log.Fatalf("failed to run migrations: %v", err)
		}
	}

	// Init kafka publisher
	brokers := []string{fmt.Sprintf("%s:%s", cfg.KafkaService.Host, cfg.KafkaService.Port)}
	pub := publisher.NewDefaultKafkaPublisher(brokers)

	// Init repos
	orderRepo := repository.NewDefaultOrderRepository(db)
	cardRepo := repository.NewDefaultCardRepository(db)
	ledgerRepo := repository.NewDefaultLedgerRepository(db)

	// Init chain access
	solanaClient := solana.NewClient(cfg.Solana.RPCURL)
	chainObserver := solana.NewObserver(solanaClient)
	tokenGate := solana.NewGate(solanaClient, cfg.TokenGate.Mint, cfg.TokenGate.RequiredBalance)

	// Init exchange rate provider
	rateProvider := infrastructure.NewCoinGeckoProvider()

	// Init issuing platform client and fulfillment executor
	issuer := zeroid.NewClient(cfg.Issuing.BaseURL, cfg.Issuing.APIKey, cfg.Issuing.CommissionID, cfg.Issuing.CurrencyID)
	executor := fulfillment.NewExecutor(issuer, cardRepo, ledgerRepo)

	// Init metrics
	orderMetrics := metrics.NewOrderMetrics()

	// Init order usecase
	uc := usecase.NewDefaultOrderUsecase(
		orderRepo,
		cardRepo,
		chainObserver,
		tokenGate,
		rateProvider,
		executor,
		pub,
		orderMetrics,
		usecase.Settings{
			DepositWallet: cfg.Solana.DepositWallet,
			Pricing:       cfg.Pricing,
			EventsTopic:   cfg.KafkaService.Topic,
		},
	)

	// Start HTTP server
	server := httpserver.NewServer(cfg, uc)
	if err := server.Start(); err != nil {
		log.Fatalf("http server stopped: %v", err)
	}
}
