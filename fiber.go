package session

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// FiberProtected is the fiber-native flavor of Protected for applications
// that mount handlers directly on a fiber.App instead of going through
// go-router.
func (rg *RouteGuard) FiberProtected(allowed ...UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		decision := rg.guard.Decide(rg.manager.Snapshot(), allowed)

		switch decision.Outcome {
		case OutcomeWait:
			c.Set("Retry-After", "1")
			return c.Status(http.StatusServiceUnavailable).JSON(fiber.Map{
				"error": ErrSessionBooting.Message,
			})

		case OutcomeRedirectLogin:
			return c.Redirect(decision.Target, fiberRedirectStatus(c))

		case OutcomeRedirectRoleHome:
			return c.Redirect(decision.Target, fiberRedirectStatus(c))

		default:
			return c.Next()
		}
	}
}

func fiberRedirectStatus(c *fiber.Ctx) int {
	if c.Method() == fiber.MethodGet {
		return http.StatusFound
	}
	return http.StatusSeeOther
}
