package session

import (
	"net/http"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

// RejectedRouteCookie parks the originally requested URL before an
// unauthenticated visitor is bounced to login, so the login flow can send
// them back afterwards.
const RejectedRouteCookie = "rejected_route"

// RouteGuard adapts the pure Guard decision function to the go-router
// middleware chain. Decisions map to HTTP the same way the admin UIs do:
// wait renders a retryable 503, the two redirect outcomes become 302/303
// responses depending on the method.
type RouteGuard struct {
	manager *Manager
	guard   *Guard
	Logger  Logger
}

// NewRouteGuard validates the route table and returns a guard middleware
// factory bound to the manager.
func NewRouteGuard(manager *Manager, table RouteTable) (*RouteGuard, error) {
	guard, err := NewGuard(table)
	if err != nil {
		return nil, err
	}

	return &RouteGuard{
		manager: manager,
		guard:   guard,
		Logger:  defLogger{},
	}, nil
}

// Guard exposes the underlying decision function.
func (rg *RouteGuard) Guard() *Guard {
	return rg.guard
}

// Protected gates a route on session state. With no roles the route only
// requires an authenticated session.
func (rg *RouteGuard) Protected(allowed ...UserRole) router.MiddlewareFunc {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(c router.Context) error {
			decision := rg.guard.Decide(rg.manager.Snapshot(), allowed)

			switch decision.Outcome {
			case OutcomeWait:
				c.SetHeader("Retry-After", "1")
				return c.JSON(http.StatusServiceUnavailable, map[string]any{
					"error": ErrSessionBooting.Message,
				})

			case OutcomeRedirectLogin:
				rg.logDecision(c, ErrNotAuthenticated)
				rg.SetRedirect(c)
				return c.Redirect(decision.Target, redirectStatus(c))

			case OutcomeRedirectRoleHome:
				rg.logDecision(c, ErrRoleNotAllowed)
				return c.Redirect(decision.Target, redirectStatus(c))

			default:
				return next(c)
			}
		}
	}
}

// SetRedirect remembers the rejected route in a short-lived cookie.
func (rg *RouteGuard) SetRedirect(c router.Context) {
	rg.Logger.Info("Setting redirect cookie", "key", RejectedRouteCookie, "path", c.OriginalURL())

	c.Cookie(&router.Cookie{
		Name:     RejectedRouteCookie,
		Value:    c.OriginalURL(),
		Expires:  time.Now().Add(time.Minute * 5),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}

// GetRedirect pops the remembered route, falling back to the role home of
// the current session.
func (rg *RouteGuard) GetRedirect(c router.Context) string {
	r := c.Cookies(RejectedRouteCookie)
	if r == "" {
		role := UserRole("")
		if user := rg.manager.User(); user != nil {
			role = user.Role
		}
		return rg.guard.Table().HomeFor(role)
	}

	rg.cookieDel(c, RejectedRouteCookie)
	return r
}

func (rg *RouteGuard) cookieDel(c router.Context, name string) {
	c.Cookie(&router.Cookie{
		Name:     name,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour * (24 * 365)),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}

func (rg *RouteGuard) logDecision(c router.Context, err error) {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryAuth, "route guard rejection").
			WithCode(errors.CodeUnauthorized)
	}

	rg.Logger.Info(
		"Route guard rejection, redirecting",
		"error", richErr.Message,
		"text_code", richErr.TextCode,
		"path", c.OriginalURL(),
		"details", print.MaybePrettyJSON(richErr.Metadata),
	)
}

func redirectStatus(c router.Context) int {
	if c.Method() == string(router.GET) {
		return http.StatusFound
	}
	return http.StatusSeeOther
}
