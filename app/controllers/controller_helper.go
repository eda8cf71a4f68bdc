package controllers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/rachitpednekar/cloudshare/internal/pkg/usercontext"
)

var validate = validator.New()

// requireIdentity returns the verified identity or writes a 403. The auth
// gate already rejects unauthenticated requests on protected routes; this
// keeps handlers safe if one is ever mounted outside the gate.
func requireIdentity(c *fiber.Ctx) (usercontext.UserContext, bool) {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsAuthenticated {
		_ = c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error":   "forbidden",
			"message": "Missing or invalid authentication",
		})
		return userCtx, false
	}
	return userCtx, true
}

func parseAndValidate(c *fiber.Ctx, out interface{}) bool {
	if err := c.BodyParser(out); err != nil {
		_ = c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "bad_request",
			"message": "Invalid request body",
		})
		return false
	}
	if err := validate.Struct(out); err != nil {
		_ = c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "validation_failed",
			"message": err.Error(),
		})
		return false
	}
	return true
}
