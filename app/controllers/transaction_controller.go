package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/rachitpednekar/cloudshare/app/repository"
)

// HandleGetTransactions lists the authenticated user's settled purchases,
// newest first.
func HandleGetTransactions(c *fiber.Ctx) error {
	userCtx, ok := requireIdentity(c)
	if !ok {
		return nil
	}

	txs, err := repository.GetGlobalFactory().GetTransactionRepository().ListSuccessfulByClerkID(userCtx.ClerkID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load transactions"})
	}

	return c.Status(fiber.StatusOK).JSON(txs)
}
