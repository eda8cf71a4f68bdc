package payment

import (
	"context"
	"errors"
	"strings"

	"github.com/rachitpednekar/cloudshare/app/models"
	"github.com/rachitpednekar/cloudshare/app/repository"
	"github.com/rs/zerolog"
)

// Result is what reconciliation reports back to the caller. Failures carry a
// human-readable message and are never a process error.
type Result struct {
	Success bool   `json:"success"`
	Credits int    `json:"credits"`
	Message string `json:"message"`
}

// OrderRequest describes a purchase the client wants to open.
type OrderRequest struct {
	PlanID   string
	Amount   int64
	Currency string
	Credits  int
	Email    string
	Name     string
}

// Order is the outcome of opening a checkout session.
type Order struct {
	OrderID     string `json:"order_id"`
	CheckoutURL string `json:"checkout_url"`
}

// Service reconciles externally confirmed payments into the credit ledger.
// The transaction store's conditional status update is the idempotency
// anchor: credits are added only after winning the PENDING-to-terminal
// transition, so duplicate or racing reconciliations credit at most once.
type Service struct {
	gateway      Gateway
	credits      repository.CreditsRepository
	transactions repository.TransactionRepository
	log          zerolog.Logger
}

// NewService creates a payment service with injected collaborators.
func NewService(gateway Gateway, credits repository.CreditsRepository, transactions repository.TransactionRepository, log zerolog.Logger) *Service {
	return &Service{
		gateway:      gateway,
		credits:      credits,
		transactions: transactions,
		log:          log,
	}
}

// CreateOrder opens a checkout session and records a PENDING transaction
// keyed by the session id.
func (s *Service) CreateOrder(ctx context.Context, clerkID string, req OrderRequest) (*Order, error) {
	if strings.TrimSpace(clerkID) == "" {
		return nil, errors.New("clerk id is required")
	}

	sess, err := s.gateway.CreateCheckoutSession(ctx, CheckoutParams{
		PlanID:        req.PlanID,
		Amount:        req.Amount,
		Currency:      req.Currency,
		Credits:       req.Credits,
		CustomerEmail: req.Email,
		SuccessURL:    successURL,
		CancelURL:     cancelURL,
	})
	if err != nil {
		s.log.Error().Err(err).Str("clerk_id", clerkID).Msg("checkout session creation failed")
		return nil, err
	}

	tx := &models.PaymentTransaction{
		ClerkID:   clerkID,
		OrderID:   sess.ID,
		PlanID:    req.PlanID,
		Amount:    req.Amount,
		Currency:  req.Currency,
		Status:    models.TransactionStatusPending,
		UserEmail: req.Email,
		UserName:  req.Name,
	}
	if err := s.transactions.Create(tx); err != nil {
		s.log.Error().Err(err).Str("order_id", sess.ID).Msg("pending transaction persist failed")
		return nil, err
	}

	return &Order{OrderID: sess.ID, CheckoutURL: sess.URL}, nil
}

const (
	successURL = "https://getcloudshare.vercel.app/subscription?session_id={CHECKOUT_SESSION_ID}"
	cancelURL  = "https://getcloudshare.vercel.app/subscription"
)

// Reconcile confirms a checkout session with the processor and settles the
// matching transaction exactly once.
func (s *Service) Reconcile(ctx context.Context, sessionID, planID, clerkID string) Result {
	sess, err := s.gateway.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		s.log.Error().Err(err).Str("session_id", sessionID).Msg("checkout session lookup failed")
		return Result{Success: false, Message: "Error verifying payment: session lookup failed"}
	}

	intent, err := s.gateway.GetPaymentIntent(ctx, sess.PaymentIntentID)
	if err != nil {
		s.log.Error().Err(err).Str("session_id", sessionID).Msg("payment intent lookup failed")
		return Result{Success: false, Message: "Error verifying payment: payment status unavailable"}
	}

	if intent.Status != PaymentIntentStatusSucceeded {
		s.settleFailed(sess.ID, intent.ID)
		return Result{Success: false, Message: "Payment not successful"}
	}

	creditsToAdd, plan := CreditsForPlan(planID)
	if creditsToAdd == 0 {
		s.settleFailed(sess.ID, intent.ID)
		return Result{Success: false, Message: "Invalid plan selected"}
	}

	applied, err := s.transactions.MarkTerminal(sess.ID, models.TransactionStatusSuccess, intent.ID, creditsToAdd)
	if err != nil {
		s.log.Error().Err(err).Str("order_id", sess.ID).Msg("transaction settlement failed")
		return Result{Success: false, Message: "Error verifying payment: transaction update failed"}
	}
	if !applied {
		// The transaction already reached a terminal state; a retry or a
		// racing call settled it first. Report the existing outcome without
		// touching the ledger again.
		return s.alreadySettled(sess.ID, clerkID)
	}

	entry, err := s.credits.AddCredits(clerkID, creditsToAdd, plan)
	if err != nil {
		// Transaction is SUCCESS but the ledger write failed. Surfaced as a
		// failure so the discrepancy is visible for manual repair.
		s.log.Error().Err(err).Str("order_id", sess.ID).Str("clerk_id", clerkID).
			Msg("credit addition failed after transaction settlement")
		return Result{Success: false, Message: "Error verifying payment: credit update failed"}
	}

	s.log.Info().Str("order_id", sess.ID).Str("clerk_id", clerkID).
		Int("credits_added", creditsToAdd).Str("plan", plan).
		Msg("payment reconciled")
	return Result{Success: true, Credits: entry.Credits, Message: "Payment verified and credits added successfully"}
}

func (s *Service) settleFailed(orderID, paymentID string) {
	if _, err := s.transactions.MarkTerminal(orderID, models.TransactionStatusFailed, paymentID, 0); err != nil {
		s.log.Error().Err(err).Str("order_id", orderID).Msg("failed-transaction settlement failed")
	}
}

func (s *Service) alreadySettled(orderID, clerkID string) Result {
	tx, err := s.transactions.GetByOrderID(orderID)
	if err != nil {
		s.log.Error().Err(err).Str("order_id", orderID).Msg("settled transaction lookup failed")
		return Result{Success: false, Message: "Error verifying payment: transaction lookup failed"}
	}
	if tx.Status != models.TransactionStatusSuccess {
		return Result{Success: false, Message: "Payment already processed"}
	}

	balance := 0
	if entry, err := s.credits.GetByClerkID(clerkID); err == nil {
		balance = entry.Credits
	}
	return Result{Success: true, Credits: balance, Message: "Payment already processed"}
}
