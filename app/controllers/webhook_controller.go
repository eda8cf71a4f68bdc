package controllers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/rachitpednekar/cloudshare/app/models"
	"github.com/rachitpednekar/cloudshare/app/repository"
	"github.com/rachitpednekar/cloudshare/internal/pkg/clerk"
	"github.com/rachitpednekar/cloudshare/internal/pkg/env"
)

const webhookProviderClerk = "clerk"

// HandleClerkWebhook receives identity-lifecycle events from Clerk. The
// signature check runs on the raw body before anything interprets the
// payload; only authenticated deliveries reach the parser and dispatcher.
func HandleClerkWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)
	msgID := strings.TrimSpace(c.Get(clerk.WebhookHeaderID))
	timestamp := strings.TrimSpace(c.Get(clerk.WebhookHeaderTimestamp))
	signature := strings.TrimSpace(c.Get(clerk.WebhookHeaderSignature))
	secret := env.GetEnv("CLERK_WEBHOOK_SECRET", "")

	if err := clerk.VerifyWebhookSignature(rawBody, msgID, timestamp, signature, secret); err != nil {
		log.Warn().Str("svix_id", msgID).Msg("clerk webhook signature verification failed")
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "invalid_signature"})
	}

	// Signature passed, so a parse failure here is a format bug on an
	// authenticated payload, not an attack.
	event, err := clerk.ParseUserEvent(rawBody)
	if err != nil {
		log.Error().Err(err).Str("svix_id", msgID).Msg("clerk webhook payload unparseable")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "invalid_payload"})
	}

	repos := repository.GetGlobalFactory()
	events := repos.GetWebhookEventRepository()

	created, stored, err := events.CreateIfNotExists(&models.WebhookEvent{
		Provider:        webhookProviderClerk,
		ProviderEventID: msgID,
		EventType:       event.RawType,
		PayloadJSON:     string(rawBody),
		SignatureValid:  true,
	})
	if err != nil {
		log.Error().Err(err).Str("svix_id", msgID).Msg("webhook event persist failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "webhook_persist_failed"})
	}
	if !created {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "duplicate": true})
	}

	dispatcher := clerk.NewDispatcher(repos.GetProfileRepository(), repos.GetCreditsRepository(), log.Logger)
	if err := dispatcher.Dispatch(event); err != nil {
		_ = events.MarkProcessed(stored.ID, err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "event_processing_failed"})
	}
	_ = events.MarkProcessed(stored.ID, "")

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true})
}
