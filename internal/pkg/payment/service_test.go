package payment

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/rachitpednekar/cloudshare/app/models"
)

type fakeGateway struct {
	sessions     map[string]*CheckoutSession
	intents      map[string]*PaymentIntent
	createdCount int
	sessionErr   error
	intentErr    error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		sessions: make(map[string]*CheckoutSession),
		intents:  make(map[string]*PaymentIntent),
	}
}

func (g *fakeGateway) addPayment(sessionID, intentID, status string) {
	g.sessions[sessionID] = &CheckoutSession{ID: sessionID, PaymentIntentID: intentID}
	g.intents[intentID] = &PaymentIntent{ID: intentID, Status: status}
}

func (g *fakeGateway) CreateCheckoutSession(_ context.Context, _ CheckoutParams) (*CheckoutSession, error) {
	g.createdCount++
	sess := &CheckoutSession{ID: "cs_new", URL: "https://checkout.example.com/cs_new"}
	g.sessions[sess.ID] = sess
	return sess, nil
}

func (g *fakeGateway) GetCheckoutSession(_ context.Context, id string) (*CheckoutSession, error) {
	if g.sessionErr != nil {
		return nil, g.sessionErr
	}
	if sess, ok := g.sessions[id]; ok {
		return sess, nil
	}
	return nil, errors.New("no such session")
}

func (g *fakeGateway) GetPaymentIntent(_ context.Context, id string) (*PaymentIntent, error) {
	if g.intentErr != nil {
		return nil, g.intentErr
	}
	if intent, ok := g.intents[id]; ok {
		return intent, nil
	}
	return nil, errors.New("no such payment intent")
}

type fakeCreditsStore struct {
	entries  map[string]*models.UserCredits
	addCalls int
}

func newFakeCreditsStore() *fakeCreditsStore {
	return &fakeCreditsStore{entries: make(map[string]*models.UserCredits)}
}

func (s *fakeCreditsStore) GetByClerkID(clerkID string) (*models.UserCredits, error) {
	if e, ok := s.entries[clerkID]; ok {
		return e, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *fakeCreditsStore) InitZeroBalance(clerkID string) (*models.UserCredits, error) {
	if e, ok := s.entries[clerkID]; ok {
		return e, nil
	}
	e := &models.UserCredits{ClerkID: clerkID, Credits: 0, Plan: models.PlanBasic}
	s.entries[clerkID] = e
	return e, nil
}

func (s *fakeCreditsStore) AddCredits(clerkID string, amount int, plan string) (*models.UserCredits, error) {
	s.addCalls++
	e, _ := s.InitZeroBalance(clerkID)
	e.Credits += amount
	e.Plan = plan
	return e, nil
}

type fakeTransactionStore struct {
	byOrderID map[string]*models.PaymentTransaction
}

func newFakeTransactionStore() *fakeTransactionStore {
	return &fakeTransactionStore{byOrderID: make(map[string]*models.PaymentTransaction)}
}

func (s *fakeTransactionStore) Create(tx *models.PaymentTransaction) error {
	s.byOrderID[tx.OrderID] = tx
	return nil
}

func (s *fakeTransactionStore) GetByOrderID(orderID string) (*models.PaymentTransaction, error) {
	if tx, ok := s.byOrderID[orderID]; ok {
		return tx, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *fakeTransactionStore) ListSuccessfulByClerkID(clerkID string) ([]models.PaymentTransaction, error) {
	var out []models.PaymentTransaction
	for _, tx := range s.byOrderID {
		if tx.ClerkID == clerkID && tx.Status == models.TransactionStatusSuccess {
			out = append(out, *tx)
		}
	}
	return out, nil
}

func (s *fakeTransactionStore) MarkTerminal(orderID, status, paymentID string, creditsAdded int) (bool, error) {
	tx, ok := s.byOrderID[orderID]
	if !ok || tx.Status != models.TransactionStatusPending {
		return false, nil
	}
	tx.Status = status
	tx.PaymentID = paymentID
	tx.CreditsAdded = creditsAdded
	return true, nil
}

func newTestService() (*Service, *fakeGateway, *fakeCreditsStore, *fakeTransactionStore) {
	gateway := newFakeGateway()
	credits := newFakeCreditsStore()
	transactions := newFakeTransactionStore()
	return NewService(gateway, credits, transactions, zerolog.Nop()), gateway, credits, transactions
}

func pendingTransaction(clerkID, orderID, planID string) *models.PaymentTransaction {
	return &models.PaymentTransaction{
		ClerkID: clerkID,
		OrderID: orderID,
		PlanID:  planID,
		Status:  models.TransactionStatusPending,
	}
}

func TestCreateOrderPersistsPendingTransaction(t *testing.T) {
	svc, gateway, _, transactions := newTestService()

	order, err := svc.CreateOrder(context.Background(), "u_1", OrderRequest{
		PlanID:   "premium",
		Amount:   999,
		Currency: "usd",
		Email:    "a@x.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "cs_new", order.OrderID)
	assert.Equal(t, 1, gateway.createdCount)

	tx, err := transactions.GetByOrderID("cs_new")
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusPending, tx.Status)
	assert.Equal(t, "u_1", tx.ClerkID)
	assert.Equal(t, "premium", tx.PlanID)
}

func TestCreateOrderRequiresIdentity(t *testing.T) {
	svc, _, _, _ := newTestService()
	_, err := svc.CreateOrder(context.Background(), "  ", OrderRequest{PlanID: "premium"})
	assert.Error(t, err)
}

func TestReconcileSucceededPremium(t *testing.T) {
	svc, gateway, credits, transactions := newTestService()
	gateway.addPayment("cs_1", "pi_1", PaymentIntentStatusSucceeded)
	require.NoError(t, transactions.Create(pendingTransaction("u_1", "cs_1", "premium")))

	result := svc.Reconcile(context.Background(), "cs_1", "premium", "u_1")

	assert.True(t, result.Success)
	assert.Equal(t, 500, result.Credits)

	entry, err := credits.GetByClerkID("u_1")
	require.NoError(t, err)
	assert.Equal(t, 500, entry.Credits)
	assert.Equal(t, models.PlanPremium, entry.Plan)

	tx, err := transactions.GetByOrderID("cs_1")
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusSuccess, tx.Status)
	assert.Equal(t, "pi_1", tx.PaymentID)
	assert.Equal(t, 500, tx.CreditsAdded)
}

func TestReconcileUnknownPlan(t *testing.T) {
	svc, gateway, credits, transactions := newTestService()
	gateway.addPayment("cs_1", "pi_1", PaymentIntentStatusSucceeded)
	require.NoError(t, transactions.Create(pendingTransaction("u_1", "cs_1", "gold")))

	result := svc.Reconcile(context.Background(), "cs_1", "gold", "u_1")

	assert.False(t, result.Success)
	assert.Equal(t, "Invalid plan selected", result.Message)
	assert.Equal(t, 0, credits.addCalls)

	tx, err := transactions.GetByOrderID("cs_1")
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusFailed, tx.Status)
}

func TestReconcilePaymentNotSucceeded(t *testing.T) {
	svc, gateway, credits, transactions := newTestService()
	gateway.addPayment("cs_1", "pi_1", "requires_payment_method")
	require.NoError(t, transactions.Create(pendingTransaction("u_1", "cs_1", "premium")))

	result := svc.Reconcile(context.Background(), "cs_1", "premium", "u_1")

	assert.False(t, result.Success)
	assert.Equal(t, "Payment not successful", result.Message)
	assert.Equal(t, 0, credits.addCalls)

	tx, err := transactions.GetByOrderID("cs_1")
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusFailed, tx.Status)
}

func TestReconcileIsIdempotent(t *testing.T) {
	svc, gateway, credits, transactions := newTestService()
	gateway.addPayment("cs_1", "pi_1", PaymentIntentStatusSucceeded)
	require.NoError(t, transactions.Create(pendingTransaction("u_1", "cs_1", "ultimate")))

	first := svc.Reconcile(context.Background(), "cs_1", "ultimate", "u_1")
	second := svc.Reconcile(context.Background(), "cs_1", "ultimate", "u_1")

	assert.True(t, first.Success)
	assert.True(t, second.Success)
	assert.Equal(t, "Payment already processed", second.Message)

	// Exactly one credit addition regardless of how often the client retries.
	assert.Equal(t, 1, credits.addCalls)
	entry, err := credits.GetByClerkID("u_1")
	require.NoError(t, err)
	assert.Equal(t, 5000, entry.Credits)
	assert.Equal(t, 5000, second.Credits)
}

func TestReconcileAfterFailureStaysFailed(t *testing.T) {
	svc, gateway, credits, transactions := newTestService()
	gateway.addPayment("cs_1", "pi_1", PaymentIntentStatusSucceeded)
	require.NoError(t, transactions.Create(pendingTransaction("u_1", "cs_1", "gold")))

	// First pass settles FAILED via the unknown plan.
	first := svc.Reconcile(context.Background(), "cs_1", "gold", "u_1")
	assert.False(t, first.Success)

	// A retry with a corrected plan id must not resurrect the transaction.
	second := svc.Reconcile(context.Background(), "cs_1", "premium", "u_1")
	assert.False(t, second.Success)
	assert.Equal(t, "Payment already processed", second.Message)
	assert.Equal(t, 0, credits.addCalls)
}

func TestReconcileSessionLookupFailure(t *testing.T) {
	svc, gateway, _, _ := newTestService()
	gateway.sessionErr = errors.New("stripe unavailable")

	result := svc.Reconcile(context.Background(), "cs_1", "premium", "u_1")
	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "Error verifying payment")
}
