package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/rachitpednekar/cloudshare/app/repository"
)

// HandleGetProfile returns the authenticated user's profile.
func HandleGetProfile(c *fiber.Ctx) error {
	userCtx, ok := requireIdentity(c)
	if !ok {
		return nil
	}

	profile, err := repository.GetGlobalFactory().GetProfileRepository().GetByClerkID(userCtx.ClerkID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Profile not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load profile"})
	}

	return c.Status(fiber.StatusOK).JSON(profile)
}
