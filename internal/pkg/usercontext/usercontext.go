package usercontext

import "github.com/gofiber/fiber/v2"

// Shared Locals keys used across controllers and middlewares
const (
	KeyUserContext   = "USER_CONTEXT"
	KeyClerkID       = "clerk_id"
	KeyAuthenticated = "authenticated"
)

// UserContext is the verified identity attached to a request by the auth
// gate. Every authenticated principal carries the same fixed role; there is
// no finer-grained permission model.
type UserContext struct {
	ClerkID         string `json:"clerk_id"`
	IsAuthenticated bool   `json:"is_authenticated"`
}

// GetUserContext retrieves the user context from fiber context.
// Returns a default anonymous context if none is set.
func GetUserContext(c *fiber.Ctx) UserContext {
	if ctx := c.Locals(KeyUserContext); ctx != nil {
		if uc, ok := ctx.(UserContext); ok {
			return uc
		}
	}
	return UserContext{IsAuthenticated: false}
}

// SetUserContext attaches a verified identity to the request.
func SetUserContext(c *fiber.Ctx, uc UserContext) {
	c.Locals(KeyUserContext, uc)
	c.Locals(KeyClerkID, uc.ClerkID)
	c.Locals(KeyAuthenticated, uc.IsAuthenticated)
}

// IsAuthenticated checks if the current request carries a verified identity
func IsAuthenticated(c *fiber.Ctx) bool {
	return GetUserContext(c).IsAuthenticated
}

// GetClerkID returns the verified subject identifier, or empty string
func GetClerkID(c *fiber.Ctx) string {
	return GetUserContext(c).ClerkID
}
