package usecase

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/solcard/card-order-service/internal/config"
	"github.com/solcard/card-order-service/internal/domain"
	"github.com/solcard/card-order-service/internal/infrastructure/metrics"
	"github.com/solcard/card-order-service/internal/usecase/fulfillment"
)

const testWallet = "DepositWa11et1111111111111111111111111111111"

var testPricing = config.Pricing{
	CardCreationFee: 30,
	TopUpFeePercent: 2.5,
	TopUpFeeFlat:    2,
	MinTopUp:        10,
	MaxTopUp:        5000,
	DefaultTopUp:    15,
	VerificationFee: 5,
	OrderTTLMinutes: 30,
}

type testEnv struct {
	repo   *memOrderRepo
	cards  *memCardRepo
	ledger *memLedgerRepo
	chain  *stubChain
	gate   *stubGate
	rates  *stubRateProvider
	issuer *stubIssuer
	pub    *stubPublisher
	uc     *DefaultOrderUsecase
}

func newTestEnv() *testEnv {
	env := &testEnv{
		repo:   newMemOrderRepo(),
		cards:  newMemCardRepo(),
		ledger: &memLedgerRepo{},
		chain:  &stubChain{},
		gate:   &stubGate{check: &domain.TokenBalanceCheck{Balance: 100, Required: 10, Passes: true}},
		rates:  &stubRateProvider{rate: 100},
		issuer: &stubIssuer{},
		pub:    &stubPublisher{},
	}
	env.uc = NewDefaultOrderUsecase(
		env.repo,
		env.cards,
		env.chain,
		env.gate,
		env.rates,
		fulfillment.NewExecutor(env.issuer, env.cards, env.ledger),
		env.pub,
		metrics.NewOrderMetricsWith(prometheus.NewRegistry()),
		Settings{
			DepositWallet: testWallet,
			Pricing:       testPricing,
			EventsTopic:   "card-order-events",
		},
	)
	return env
}
