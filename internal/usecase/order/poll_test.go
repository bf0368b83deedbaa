package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solcard/card-order-service/internal/domain"
	orderdto "github.com/solcard/card-order-service/internal/usecase/dto/order"
)

func createCardOrder(t *testing.T, env *testEnv, userID string) *domain.PaymentOrder {
	t.Helper()
	out, err := env.uc.CreateOrder(context.Background(), &orderdto.CreateOrderInput{
		UserID:      userID,
		Kind:        domain.KindCardCreation,
		TopUpAmount: 50,
	})
	require.NoError(t, err)
	return out.Order
}

func transferFor(order *domain.PaymentOrder, sig string) domain.Transfer {
	return domain.Transfer{
		TxSignature: sig,
		Amount:      order.AmountCrypto,
		Sender:      "SenderWa11et",
		Wallet:      order.ExpectedWallet,
		BlockTime:   time.Now().Unix(),
	}
}

func TestPollOrder_MatchesAndFulfills(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	order := createCardOrder(t, env, "user-1")
	env.chain.transfers = []domain.Transfer{transferFor(order, "sig-1")}

	out, err := env.uc.PollOrder(ctx, "user-1", order.ID)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusFulfilled, out.Order.Status)
	require.NotNil(t, out.Card)
	assert.Equal(t, 1, env.issuer.CreateCalls())

	stored, err := env.repo.GetOrderByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFulfilled, stored.Status)
	assert.Equal(t, "sig-1", stored.TxSignature)
	assert.Equal(t, "SenderWa11et", stored.SenderAddress)
	assert.True(t, stored.TokenGateChecked)
	assert.True(t, stored.TokenGatePassed)
}

func TestPollOrder_AmountToleranceBoundaries(t *testing.T) {
	cases := []struct {
		name    string
		factor  float64
		matches bool
	}{
		{"exactly 95 percent", 0.95, true},
		{"just below band", 0.949, false},
		{"exactly 105 percent", 1.05, true},
		{"just above band", 1.051, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv()
			ctx := context.Background()
			order := createCardOrder(t, env, "user-1")

			tr := transferFor(order, "sig-1")
			tr.Amount = order.AmountCrypto * tc.factor
			env.chain.transfers = []domain.Transfer{tr}

			out, err := env.uc.PollOrder(ctx, "user-1", order.ID)
			require.NoError(t, err)
			if tc.matches {
				assert.Equal(t, domain.StatusFulfilled, out.Order.Status)
			} else {
				assert.Equal(t, domain.StatusPending, out.Order.Status)
			}
		})
	}
}

func TestPollOrder_SkipsStaleTransfers(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	order := createCardOrder(t, env, "user-1")

	stale := transferFor(order, "sig-old")
	stale.BlockTime = time.Now().Add(-2 * time.Minute).Unix()
	env.chain.transfers = []domain.Transfer{stale}

	out, err := env.uc.PollOrder(ctx, "user-1", order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, out.Order.Status)
}

func TestPollOrder_PicksMostRecentTransferFirst(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	order := createCardOrder(t, env, "user-1")

	newest := transferFor(order, "sig-newest")
	older := transferFor(order, "sig-older")
	env.chain.transfers = []domain.Transfer{newest, older}

	_, err := env.uc.PollOrder(ctx, "user-1", order.ID)
	require.NoError(t, err)

	stored, err := env.repo.GetOrderByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "sig-newest", stored.TxSignature)
}

func TestPollOrder_OneTransferFulfillsOneOrder(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	first := createCardOrder(t, env, "user-1")
	second := createCardOrder(t, env, "user-2")
	require.InDelta(t, first.AmountCrypto, second.AmountCrypto, 1e-9)

	env.chain.transfers = []domain.Transfer{transferFor(first, "sig-shared")}

	_, err := env.uc.PollOrder(ctx, "user-1", first.ID)
	require.NoError(t, err)

	out, err := env.uc.PollOrder(ctx, "user-2", second.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, out.Order.Status, "signature is spent, second order keeps waiting")
	assert.Equal(t, 1, env.issuer.CreateCalls())
}

func TestPollOrder_ConcurrentPollsFulfillExactlyOnce(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	order := createCardOrder(t, env, "user-1")
	env.chain.transfers = []domain.Transfer{transferFor(order, "sig-1")}

	const polls = 20
	var wg sync.WaitGroup
	wg.Add(polls)
	for i := 0; i < polls; i++ {
		go func() {
			defer wg.Done()
			_, err := env.uc.PollOrder(ctx, "user-1", order.ID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, env.issuer.CreateCalls())
	stored, err := env.repo.GetOrderByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFulfilled, stored.Status)
}

func TestPollOrder_TerminalOrderIsIdempotent(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	order := createCardOrder(t, env, "user-1")
	env.chain.transfers = []domain.Transfer{transferFor(order, "sig-1")}

	_, err := env.uc.PollOrder(ctx, "user-1", order.ID)
	require.NoError(t, err)

	out, err := env.uc.PollOrder(ctx, "user-1", order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFulfilled, out.Order.Status)
	assert.Equal(t, 1, env.issuer.CreateCalls())
}

func TestPollOrder_ExpiresUnpaidOrder(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	order := createCardOrder(t, env, "user-1")

	env.repo.mu.Lock()
	env.repo.orders[order.ID].ExpiresAt = time.Now().Add(-time.Second)
	env.repo.mu.Unlock()

	// A matching transfer arriving after expiry must not resurrect the order.
	env.chain.transfers = []domain.Transfer{transferFor(order, "sig-late")}

	out, err := env.uc.PollOrder(ctx, "user-1", order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusExpired, out.Order.Status)
	assert.Equal(t, msgExpired, out.Message)
	assert.Equal(t, 0, env.issuer.CreateCalls())

	// And it stays expired on later polls.
	out, err = env.uc.PollOrder(ctx, "user-1", order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusExpired, out.Order.Status)
}

func TestPollOrder_ProcessingOrderNeverExpires(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	order := createCardOrder(t, env, "user-1")
	env.chain.transfers = []domain.Transfer{transferFor(order, "sig-1")}

	// Break the gate so the order parks in PROCESSING.
	env.gate.err = domain.Transient("solana rpc", errors.New("connection refused"))
	_, err := env.uc.PollOrder(ctx, "user-1", order.ID)
	require.NoError(t, err)

	env.repo.mu.Lock()
	env.repo.orders[order.ID].ExpiresAt = time.Now().Add(-time.Hour)
	env.repo.mu.Unlock()

	env.gate.err = nil
	out, err := env.uc.PollOrder(ctx, "user-1", order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFulfilled, out.Order.Status)
}

func TestPollOrder_ChainOutageKeepsOrderPending(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	order := createCardOrder(t, env, "user-1")
	env.chain.listErr = domain.Transient("solana rpc", errors.New("timeout"))

	out, err := env.uc.PollOrder(ctx, "user-1", order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, out.Order.Status)
	assert.Equal(t, msgChainUnreachable, out.Message)
}

func TestPollOrder_TokenGateFailureIsTerminal(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	order := createCardOrder(t, env, "user-1")
	env.chain.transfers = []domain.Transfer{transferFor(order, "sig-1")}
	env.gate.check = &domain.TokenBalanceCheck{Balance: 1, Required: 10, Passes: false}

	out, err := env.uc.PollOrder(ctx, "user-1", order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, out.Order.Status)
	assert.Equal(t, msgVerificationFailed, out.Message)
	assert.Equal(t, 0, env.issuer.CreateCalls())

	// Evidence stays on the failed order for operators.
	stored, err := env.repo.GetOrderByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "sig-1", stored.TxSignature)
	assert.True(t, stored.TokenGateChecked)
	assert.False(t, stored.TokenGatePassed)
}

func TestPollOrder_RecordedGateFailureNeverDispatches(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	order := createCardOrder(t, env, "user-1")

	// Simulate a trigger that recorded the failed verdict and stopped
	// before the terminal transition: the order sits in PROCESSING with
	// TokenGateChecked set and TokenGatePassed clear.
	require.NoError(t, env.repo.AttachTransfer(ctx, order.ID, domain.StatusPending, domain.TransferEvidence{
		TxSignature: "sig-1",
		Amount:      order.AmountCrypto,
		Sender:      "SenderWa11et",
		PaidAt:      time.Now(),
	}))
	require.NoError(t, env.repo.MarkTokenGate(ctx, order.ID, false))

	out, err := env.uc.PollOrder(ctx, "user-1", order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, out.Order.Status)
	assert.Equal(t, msgVerificationFailed, out.Message)
	assert.Equal(t, 0, env.issuer.CreateCalls())
	assert.Equal(t, 0, env.gate.Calls())

	stored, err := env.repo.GetOrderByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, stored.Status)
}

func TestPollOrder_SkipsTransfersWithoutBlockTime(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	order := createCardOrder(t, env, "user-1")

	unknown := transferFor(order, "sig-no-time")
	unknown.BlockTime = 0
	env.chain.transfers = []domain.Transfer{unknown}

	out, err := env.uc.PollOrder(ctx, "user-1", order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, out.Order.Status)
}

func TestPollOrder_GateOutageLeavesOrderProcessing(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	order := createCardOrder(t, env, "user-1")
	env.chain.transfers = []domain.Transfer{transferFor(order, "sig-1")}
	env.gate.err = domain.Transient("solana rpc", errors.New("503"))

	out, err := env.uc.PollOrder(ctx, "user-1", order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusProcessing, out.Order.Status)
	assert.Equal(t, msgGatePending, out.Message)

	stored, err := env.repo.GetOrderByID(ctx, order.ID)
	require.NoError(t, err)
	assert.False(t, stored.TokenGateChecked, "an outage is not a verdict")
}

func TestPollOrder_IssuerRejectionFailsOrder(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	order := createCardOrder(t, env, "user-1")
	env.chain.transfers = []domain.Transfer{transferFor(order, "sig-1")}
	env.issuer.createErr = errors.New("card limit reached")

	out, err := env.uc.PollOrder(ctx, "user-1", order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, out.Order.Status)
	assert.Equal(t, msgFulfillmentFailed, out.Message)
}

func TestPollOrder_InitialTopUpFailureStillFulfills(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	order := createCardOrder(t, env, "user-1")
	env.chain.transfers = []domain.Transfer{transferFor(order, "sig-1")}
	env.issuer.topUpErr = errors.New("topup endpoint down")

	out, err := env.uc.PollOrder(ctx, "user-1", order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFulfilled, out.Order.Status)
	require.NotNil(t, out.Card)
	assert.Equal(t, 0.0, out.Card.Balance)
}

func TestPollOrder_OwnershipEnforced(t *testing.T) {
	env := newTestEnv()
	order := createCardOrder(t, env, "user-1")

	_, err := env.uc.PollOrder(context.Background(), "user-2", order.ID)
	assert.ErrorIs(t, err, domain.ErrNotOrderOwner)
}

func TestPollOrder_TokenVerificationFulfillsWithoutIssuer(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	out, err := env.uc.CreateTokenVerification(ctx, "user-1")
	require.NoError(t, err)
	env.chain.transfers = []domain.Transfer{transferFor(out.Order, "sig-1")}

	status, err := env.uc.PollOrder(ctx, "user-1", out.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFulfilled, status.Order.Status)
	assert.Equal(t, 0, env.issuer.CreateCalls())
	assert.Equal(t, 1, env.gate.calls)
}
