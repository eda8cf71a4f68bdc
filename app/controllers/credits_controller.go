package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/rachitpednekar/cloudshare/app/repository"
	"github.com/rachitpednekar/cloudshare/internal/pkg/cache"
)

// HandleGetUserCredits returns the authenticated user's credit balance and
// plan tier, served from the Redis cache when fresh.
func HandleGetUserCredits(c *fiber.Ctx) error {
	userCtx, ok := requireIdentity(c)
	if !ok {
		return nil
	}

	if credits, plan, err := cache.GetCreditBalance(userCtx.ClerkID); err == nil {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"credits": credits, "plan": plan})
	}

	entry, err := repository.GetGlobalFactory().GetCreditsRepository().GetByClerkID(userCtx.ClerkID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "No credit ledger entry"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load credits"})
	}

	if err := cache.SetCreditBalance(userCtx.ClerkID, entry.Credits, entry.Plan); err != nil {
		log.Warn().Err(err).Str("clerk_id", userCtx.ClerkID).Msg("credit cache write failed")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"credits": entry.Credits, "plan": entry.Plan})
}
