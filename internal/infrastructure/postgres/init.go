package postgres

import (
	"log"

	"github.com/solcard/card-order-service/internal/config"
	"github.com/solcard/card-order-service/internal/infrastructure/postgres/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func MustInitDB(cfg *config.ServiceConfig) *gorm.DB {
	dsn := cfg.OrderDB.Dsn
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("failed to init db: %v\n", err.Error())
	}

	db.AutoMigrate(&models.PaymentOrderModel{}, &models.CardModel{}, &models.LedgerEntryModel{})

	return db
}
