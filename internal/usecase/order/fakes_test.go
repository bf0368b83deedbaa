package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/solcard/card-order-service/internal/domain"
	publisher "github.com/solcard/card-order-service/internal/infrastructure/kafka"
)

// memOrderRepo reproduces the repository's conditional-update contract in
// memory so concurrency behavior can be tested without a database.
type memOrderRepo struct {
	mu         sync.Mutex
	orders     map[string]*domain.PaymentOrder
	dispatched map[string]bool
	txIndex    map[string]string
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{
		orders:     make(map[string]*domain.PaymentOrder),
		dispatched: make(map[string]bool),
		txIndex:    make(map[string]string),
	}
}

func copyOrder(o *domain.PaymentOrder) *domain.PaymentOrder {
	c := *o
	return &c
}

func isLive(s domain.OrderStatus) bool {
	return s == domain.StatusPending || s == domain.StatusProcessing
}

func (r *memOrderRepo) CreateOrder(_ context.Context, order *domain.PaymentOrder, guard *domain.LiveOrderGuard) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if guard != nil {
		for _, o := range r.orders {
			if o.UserID != guard.UserID || !isLive(o.Status) {
				continue
			}
			for _, kind := range guard.Kinds {
				if o.Kind == kind {
					return domain.ErrActiveOrderExists
				}
			}
		}
	}
	r.orders[order.ID] = copyOrder(order)
	return nil
}

func (r *memOrderRepo) GetOrderByID(_ context.Context, orderID string) (*domain.PaymentOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[orderID]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return copyOrder(o), nil
}

func (r *memOrderRepo) GetOrdersByUserID(_ context.Context, userID string, status domain.OrderStatus, limit int) ([]*domain.PaymentOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.PaymentOrder
	for _, o := range r.orders {
		if o.UserID != userID {
			continue
		}
		if status != "" && o.Status != status {
			continue
		}
		out = append(out, copyOrder(o))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memOrderRepo) FindLiveOrderByKind(_ context.Context, userID string, kind domain.OrderKind) (*domain.PaymentOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var found *domain.PaymentOrder
	for _, o := range r.orders {
		if o.UserID == userID && o.Kind == kind && isLive(o.Status) {
			if found == nil || o.CreatedAt.After(found.CreatedAt) {
				found = o
			}
		}
	}
	if found == nil {
		return nil, domain.ErrOrderNotFound
	}
	return copyOrder(found), nil
}

func (r *memOrderRepo) FindPendingByAmountRange(_ context.Context, wallet string, minAmount, maxAmount float64) ([]*domain.PaymentOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	var out []*domain.PaymentOrder
	for _, o := range r.orders {
		if o.Status != domain.StatusPending || o.ExpectedWallet != wallet {
			continue
		}
		if o.AmountCrypto < minAmount || o.AmountCrypto > maxAmount {
			continue
		}
		if !o.ExpiresAt.After(now) {
			continue
		}
		out = append(out, copyOrder(o))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memOrderRepo) TxSignatureUsed(_ context.Context, txSignature string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, used := r.txIndex[txSignature]
	return used, nil
}

func (r *memOrderRepo) AttachTransfer(_ context.Context, orderID string, from domain.OrderStatus, ev domain.TransferEvidence) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[orderID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	if owner, used := r.txIndex[ev.TxSignature]; used && owner != orderID {
		return domain.ErrTxAlreadyUsed
	}
	if o.Status != from {
		return domain.ErrStatusConflict
	}
	o.Status = domain.StatusProcessing
	o.TxSignature = ev.TxSignature
	o.PaidAmount = ev.Amount
	o.SenderAddress = ev.Sender
	paidAt := ev.PaidAt
	o.PaidAt = &paidAt
	r.txIndex[ev.TxSignature] = orderID
	return nil
}

func (r *memOrderRepo) UpdateStatusIf(_ context.Context, orderID string, from, to domain.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[orderID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	if o.Status != from {
		return domain.ErrStatusConflict
	}
	o.Status = to
	return nil
}

func (r *memOrderRepo) MarkTokenGate(_ context.Context, orderID string, passed bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[orderID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	o.TokenGateChecked = true
	o.TokenGatePassed = passed
	return nil
}

func (r *memOrderRepo) ClaimDispatch(_ context.Context, orderID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[orderID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	if o.Status != domain.StatusProcessing || r.dispatched[orderID] {
		return domain.ErrStatusConflict
	}
	r.dispatched[orderID] = true
	return nil
}

func (r *memOrderRepo) MarkFulfilled(_ context.Context, orderID, cardID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[orderID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	if o.Status != domain.StatusProcessing || o.FulfilledAt != nil {
		return domain.ErrStatusConflict
	}
	now := time.Now()
	o.Status = domain.StatusFulfilled
	o.FulfilledCardID = cardID
	o.FulfilledAt = &now
	return nil
}

func (r *memOrderRepo) MarkFailed(_ context.Context, orderID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[orderID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	if !isLive(o.Status) {
		return domain.ErrStatusConflict
	}
	o.Status = domain.StatusFailed
	return nil
}

type memCardRepo struct {
	mu    sync.Mutex
	cards map[string]*domain.Card
}

func newMemCardRepo() *memCardRepo {
	return &memCardRepo{cards: make(map[string]*domain.Card)}
}

func (r *memCardRepo) CreateCard(_ context.Context, card *domain.Card) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *card
	r.cards[card.ID] = &c
	return nil
}

func (r *memCardRepo) GetCardByID(_ context.Context, cardID string) (*domain.Card, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.cards[cardID]
	if !ok {
		return nil, domain.ErrCardNotFound
	}
	cc := *c
	return &cc, nil
}

func (r *memCardRepo) FindActiveCardByUserID(_ context.Context, userID string) (*domain.Card, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.cards {
		if c.UserID == userID && c.Status == domain.CardStatusActive {
			cc := *c
			return &cc, nil
		}
	}
	return nil, domain.ErrCardNotFound
}

func (r *memCardRepo) AddBalance(_ context.Context, cardID string, delta float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.cards[cardID]
	if !ok {
		return domain.ErrCardNotFound
	}
	c.Balance += delta
	return nil
}

func (r *memCardRepo) UpdateCardStatus(_ context.Context, cardID string, status domain.CardStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.cards[cardID]
	if !ok {
		return domain.ErrCardNotFound
	}
	c.Status = status
	return nil
}

type memLedgerRepo struct {
	mu      sync.Mutex
	entries []*domain.LedgerEntry
}

func (r *memLedgerRepo) Record(_ context.Context, entry *domain.LedgerEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e := *entry
	r.entries = append(r.entries, &e)
	return nil
}

func (r *memLedgerRepo) ListByUserID(_ context.Context, userID string, limit int) ([]*domain.LedgerEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.LedgerEntry
	for _, e := range r.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type stubChain struct {
	transfers []domain.Transfer
	listErr   error

	verifyCheck *domain.TransferCheck
	verifyErr   error
}

func (s *stubChain) ListIncomingTransfers(context.Context, string, int) ([]domain.Transfer, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.transfers, nil
}

func (s *stubChain) VerifyTransfer(context.Context, string, string, float64) (*domain.TransferCheck, error) {
	if s.verifyErr != nil {
		return nil, s.verifyErr
	}
	return s.verifyCheck, nil
}

type stubGate struct {
	check *domain.TokenBalanceCheck
	err   error

	mu    sync.Mutex
	calls int
}

func (s *stubGate) CheckBalance(context.Context, string) (*domain.TokenBalanceCheck, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return s.check, nil
}

func (s *stubGate) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type stubRateProvider struct {
	rate float64
	err  error
}

func (s *stubRateProvider) GetRate(context.Context, string) (float64, error) {
	if s.err != nil {
		return 0, s.err
	}
	return s.rate, nil
}

func (s *stubRateProvider) GetName() string { return "stub" }

func (s *stubRateProvider) IsHealthy(context.Context) bool { return s.err == nil }

// stubIssuer counts issuing calls; the count is the exactly-once assertion.
type stubIssuer struct {
	mu          sync.Mutex
	createCalls int
	topUpCalls  int

	createErr error
	topUpErr  error
	netRate   float64
}

func (s *stubIssuer) CreateCard(context.Context, *domain.CreateCardRequest) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return "", s.createErr
	}
	s.createCalls++
	return "issuer-card-1", nil
}

func (s *stubIssuer) TopUpCard(_ context.Context, _ string, amount float64) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.topUpErr != nil {
		return 0, s.topUpErr
	}
	s.topUpCalls++
	rate := s.netRate
	if rate == 0 {
		rate = 1
	}
	return amount * rate, nil
}

func (s *stubIssuer) CreateCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createCalls
}

func (s *stubIssuer) TopUpCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.topUpCalls
}

func (s *stubIssuer) FreezeCard(context.Context, string) error { return nil }

func (s *stubIssuer) UnfreezeCard(context.Context, string) error { return nil }

func (s *stubIssuer) GetCard(context.Context, string) (*domain.IssuedCard, error) {
	return &domain.IssuedCard{}, nil
}

type stubPublisher struct {
	mu     sync.Mutex
	events []publisher.OrderEvent
}

func (s *stubPublisher) PublishOrder(_ string, event publisher.OrderEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}
