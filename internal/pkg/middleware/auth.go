package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/rachitpednekar/cloudshare/internal/pkg/clerk"
	"github.com/rachitpednekar/cloudshare/internal/pkg/usercontext"
)

// Paths containing any of these fragments bypass token verification:
// webhooks carry their own signature check, public/download/health routes
// are trusted at the transport layer.
var passthroughFragments = []string{"/webhooks", "/public", "/download", "/health"}

// rejectionReasons are the verifier errors whose message is safe to return
// to the caller. Anything else (key fetch failures etc.) gets a generic
// reason and full internal logging.
var rejectionReasons = []error{
	clerk.ErrMalformedToken,
	clerk.ErrMissingKeyID,
	clerk.ErrUnknownKey,
	clerk.ErrBadSignature,
	clerk.ErrIssuerMismatch,
	clerk.ErrTokenExpired,
}

// ClerkAuth is the per-request authentication gate. It runs before business
// routing, verifies the bearer token and attaches the verified subject to
// the request context, or rejects with 403. Stateless: no session, no token
// caching beyond the verifier's key cache.
func ClerkAuth(verifier *clerk.Verifier, log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Method() == fiber.MethodOptions {
			return c.Next()
		}
		if isPassthroughPath(c.Path()) {
			return c.Next()
		}

		authHeader := c.Get(fiber.HeaderAuthorization)
		token, ok := bearerToken(authHeader)
		if !ok {
			return forbidden(c, "Authorization header missing/invalid")
		}

		subject, err := verifier.Verify(c.UserContext(), token)
		if err != nil {
			reason := "token verification failed"
			if matched := knownRejection(err); matched != nil {
				reason = matched.Error()
			} else {
				log.Error().Err(err).Str("path", c.Path()).Msg("token verification failed internally")
			}
			return forbidden(c, reason)
		}

		usercontext.SetUserContext(c, usercontext.UserContext{
			ClerkID:         subject,
			IsAuthenticated: true,
		})
		return c.Next()
	}
}

func isPassthroughPath(path string) bool {
	for _, fragment := range passthroughFragments {
		if strings.Contains(path, fragment) {
			return true
		}
	}
	return false
}

func bearerToken(header string) (string, bool) {
	header = strings.TrimSpace(header)
	if len(header) < 7 || !strings.EqualFold(header[:7], "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(header[7:])
	return token, token != ""
}

func knownRejection(err error) error {
	for _, reason := range rejectionReasons {
		if errors.Is(err, reason) {
			return reason
		}
	}
	return nil
}

func forbidden(c *fiber.Ctx, reason string) error {
	return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
		"error":   "forbidden",
		"message": reason,
	})
}
