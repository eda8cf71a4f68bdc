package main

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	zlog "github.com/rs/zerolog/log"

	"github.com/rachitpednekar/cloudshare/app/repository"
	"github.com/rachitpednekar/cloudshare/internal/pkg/cache"
	"github.com/rachitpednekar/cloudshare/internal/pkg/clerk"
	"github.com/rachitpednekar/cloudshare/internal/pkg/database"
	"github.com/rachitpednekar/cloudshare/internal/pkg/env"
	"github.com/rachitpednekar/cloudshare/internal/pkg/middleware"
	"github.com/rachitpednekar/cloudshare/internal/pkg/router"
)

func main() {
	app := NewApplication()
	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "8080")))
	log.Fatal(err)
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()
	repository.InitializeFactory(database.GetDB())

	issuer := env.MustGetEnv("CLERK_ISSUER")
	jwksURL := env.GetEnv("CLERK_JWKS_URL", issuer+"/.well-known/jwks.json")
	verifier := clerk.NewVerifier(clerk.NewKeyCacheFromURL(jwksURL), issuer)

	app := fiber.New(fiber.Config{
		AppName: "CloudShare API",
	})

	// recovery and logging
	app.Use(recover.New(), logger.New())

	// Authentication gate runs before all business routing.
	app.Use(middleware.ClerkAuth(verifier, zlog.Logger))

	router.InstallRouter(app)

	return app
}
