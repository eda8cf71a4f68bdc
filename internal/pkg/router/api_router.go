package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/rachitpednekar/cloudshare/app/controllers"
)

type ApiRouter struct {
}

// InstallRouter registers the HTTP surface. The auth gate is installed
// app-wide in main, so every route here except the webhook and health
// endpoints sees only verified requests.
func (h ApiRouter) InstallRouter(app *fiber.App) {
	app.Get("/health", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
	})

	webhooks := app.Group("/webhooks")
	webhooks.Post("/clerk", controllers.HandleClerkWebhook)

	payments := app.Group("/payments", limiter.New())
	payments.Post("/create-order", controllers.HandleCreateOrder)
	payments.Post("/verify", controllers.HandleVerifyPayment)

	users := app.Group("/users")
	users.Get("/credits", controllers.HandleGetUserCredits)

	app.Get("/transactions", controllers.HandleGetTransactions)
	app.Get("/profile", controllers.HandleGetProfile)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
