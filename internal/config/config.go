package config

import (
	"log"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

type ServiceConfig struct {
	Env          string `yaml:"env" env-default:"local"`
	HTTPServer   `yaml:"http_server"`
	OrderDB      `yaml:"order_db"`
	Solana       `yaml:"solana"`
	TokenGate    `yaml:"token_gate"`
	Issuing      `yaml:"issuing"`
	Pricing      `yaml:"pricing"`
	KafkaService `yaml:"kafka-service"`
	Webhook      `yaml:"webhook"`
}

type HTTPServer struct {
	Host string `yaml:"host" env-default:"0.0.0.0"`
	Port string `yaml:"port" env-default:"8080"`
}

type OrderDB struct {
	Dsn            string `yaml:"dsn" env:"ORDER_DB_DSN"`
	MigrationsPath string `yaml:"migrations_path"`
}

type Solana struct {
	RPCURL        string `yaml:"rpc_url" env:"SOLANA_RPC_URL"`
	DepositWallet string `yaml:"deposit_wallet"`
}

type TokenGate struct {
	Mint            string  `yaml:"mint"`
	RequiredBalance float64 `yaml:"required_balance"`
}

type Issuing struct {
	BaseURL      string `yaml:"base_url"`
	APIKey       string `yaml:"api_key" env:"ZEROID_API_KEY"`
	CommissionID string `yaml:"commission_id" env-default:"5"`
	CurrencyID   string `yaml:"currency_id" env-default:"usdc"`
}

// Pricing is the fee schedule quoted into each order at creation time.
// It is passed into the reconciler explicitly so quote-time and match-time
// values can never diverge mid-flow.
type Pricing struct {
	CardCreationFee float64 `yaml:"card_creation_fee" env-default:"30"`
	TopUpFeePercent float64 `yaml:"topup_fee_percent" env-default:"2.5"`
	TopUpFeeFlat    float64 `yaml:"topup_fee_flat" env-default:"2"`
	MinTopUp        float64 `yaml:"min_topup" env-default:"10"`
	MaxTopUp        float64 `yaml:"max_topup" env-default:"5000"`
	DefaultTopUp    float64 `yaml:"default_topup" env-default:"15"`
	VerificationFee float64 `yaml:"verification_fee" env-default:"5"`
	OrderTTLMinutes int     `yaml:"order_ttl_minutes" env-default:"30"`
}

type KafkaService struct {
	Host  string `yaml:"host"`
	Port  string `yaml:"port"`
	Topic string `yaml:"topic" env-default:"card-order-events"`
}

type Webhook struct {
	HeliusSecret string `yaml:"helius_secret" env:"HELIUS_WEBHOOK_SECRET"`
}

func MustLoad() *ServiceConfig {

	configPath := os.Getenv("CARD_ORDER_CONFIG_PATH")

	if configPath == "" {
		log.Fatalf("CARD_ORDER_CONFIG_PATH was not found\n")
	}

	if _, err := os.Stat(configPath); err != nil {
		log.Fatalf("failed to find config file: %v\n", err)
	}

	var cfg ServiceConfig
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("failed to read config file: %v", err)
	}

	return &cfg
}
