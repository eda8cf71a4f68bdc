package controllers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/rachitpednekar/cloudshare/app/repository"
	"github.com/rachitpednekar/cloudshare/internal/pkg/cache"
	"github.com/rachitpednekar/cloudshare/internal/pkg/env"
	"github.com/rachitpednekar/cloudshare/internal/pkg/payment"
)

// CreateOrderRequest opens a checkout session for a credit purchase.
type CreateOrderRequest struct {
	PlanID   string `json:"planId" validate:"required"`
	Amount   int64  `json:"amount" validate:"required,gt=0"`
	Currency string `json:"currency" validate:"required,len=3"`
	Credits  int    `json:"credits" validate:"gte=0"`
}

// PaymentVerificationRequest asks the backend to reconcile a checkout
// session. The processor-specific order id, payment id and signature fields
// the legacy client sent are intentionally gone: the processor lookup is the
// source of truth, so client-supplied copies had nothing to verify against.
type PaymentVerificationRequest struct {
	SessionID string `json:"sessionId" validate:"required"`
	PlanID    string `json:"planId" validate:"required"`
}

func newPaymentService() (*payment.Service, error) {
	gateway, err := payment.NewStripeGateway(env.GetEnv("STRIPE_SECRET_KEY", ""))
	if err != nil {
		return nil, err
	}
	repos := repository.GetGlobalFactory()
	return payment.NewService(gateway, repos.GetCreditsRepository(), repos.GetTransactionRepository(), log.Logger), nil
}

// HandleCreateOrder opens a Stripe checkout session and records the PENDING
// transaction it will settle against.
func HandleCreateOrder(c *fiber.Ctx) error {
	userCtx, ok := requireIdentity(c)
	if !ok {
		return nil
	}

	var req CreateOrderRequest
	if !parseAndValidate(c, &req) {
		return nil
	}

	svc, err := newPaymentService()
	if err != nil {
		log.Error().Err(err).Msg("payment service unavailable")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "An error occurred while creating your payment session.",
		})
	}

	profile, err := repository.GetGlobalFactory().GetProfileRepository().GetByClerkID(userCtx.ClerkID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Profile not found",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	order, err := svc.CreateOrder(ctx, userCtx.ClerkID, payment.OrderRequest{
		PlanID:   req.PlanID,
		Amount:   req.Amount,
		Currency: req.Currency,
		Credits:  req.Credits,
		Email:    profile.Email,
		Name:     profile.FirstName + " " + profile.LastName,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "An error occurred while creating your payment session.",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success":      true,
		"checkout_url": order.CheckoutURL,
		"order_id":     order.OrderID,
		"message":      "Checkout session created successfully.",
	})
}

// HandleVerifyPayment runs reconciliation for a checkout session. A business
// failure (wrong plan, unpaid session) is a 200 with success=false; only
// infrastructure problems surface as 5xx.
func HandleVerifyPayment(c *fiber.Ctx) error {
	userCtx, ok := requireIdentity(c)
	if !ok {
		return nil
	}

	var req PaymentVerificationRequest
	if !parseAndValidate(c, &req) {
		return nil
	}

	svc, err := newPaymentService()
	if err != nil {
		log.Error().Err(err).Msg("payment service unavailable")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Payment verification is temporarily unavailable.",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	result := svc.Reconcile(ctx, req.SessionID, req.PlanID, userCtx.ClerkID)
	if result.Success {
		// Ledger changed (or was confirmed); drop the stale cached balance.
		if err := cache.InvalidateCreditBalance(userCtx.ClerkID); err != nil {
			log.Warn().Err(err).Str("clerk_id", userCtx.ClerkID).Msg("credit cache invalidation failed")
		}
	}

	return c.Status(fiber.StatusOK).JSON(result)
}
