package session

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

// Outcome is the guard's decision for a route.
type Outcome string

const (
	// OutcomeWait means boot reconciliation has not finished; render a
	// loading indicator and make no redirect decision.
	OutcomeWait Outcome = "wait"
	// OutcomeRender allows the route to render.
	OutcomeRender Outcome = "render"
	// OutcomeRedirectLogin sends the visitor to the login entry point.
	OutcomeRedirectLogin Outcome = "redirect_login"
	// OutcomeRedirectRoleHome sends an authenticated but unauthorized
	// visitor to their role's landing route.
	OutcomeRedirectRoleHome Outcome = "redirect_role_home"
)

// Decision is the guard output; Target carries the redirect route for the
// two redirect outcomes and is empty otherwise.
type Decision struct {
	Outcome Outcome
	Target  string
}

// RouteTable is the role-to-landing-route configuration the guard redirects
// with. Adding a role is a data change here, never a code change in the
// guard itself.
type RouteTable struct {
	Homes       map[UserRole]string
	LoginRoute  string
	DefaultHome string
}

// DefaultRouteTable returns the routes the back-office applications ship
// with.
func DefaultRouteTable() RouteTable {
	return RouteTable{
		Homes: map[UserRole]string{
			RoleAdmin:   "/admin",
			RoleOwner:   "/dashboard",
			RoleSeller:  "/ventas",
			RoleCashier: "/pagos",
		},
		LoginRoute:  DefaultLoginRoute,
		DefaultHome: DefaultRootRoute,
	}
}

// Validate checks the table is complete enough to make total decisions.
func (t RouteTable) Validate() error {
	if err := validation.ValidateStruct(&t,
		validation.Field(&t.LoginRoute, validation.Required),
		validation.Field(&t.DefaultHome, validation.Required),
	); err != nil {
		return err
	}

	for role, route := range t.Homes {
		if err := validation.Validate(route, validation.Required); err != nil {
			return validation.Errors{string(role): err}
		}
	}

	return nil
}

// HomeFor returns the landing route for a role, falling back to the
// default home for roles the table does not know.
func (t RouteTable) HomeFor(role UserRole) string {
	if route, ok := t.Homes[role]; ok {
		return route
	}
	return t.DefaultHome
}

// Guard decides route access from session state. It is a pure function of
// its inputs: every combination of loading, authenticated and allowed-roles
// yields exactly one outcome.
type Guard struct {
	table RouteTable
}

// NewGuard validates the route table and returns a guard.
func NewGuard(table RouteTable) (*Guard, error) {
	if err := table.Validate(); err != nil {
		return nil, err
	}
	return &Guard{table: table}, nil
}

// Table returns the guard's route table.
func (g *Guard) Table() RouteTable {
	return g.table
}

// Decide resolves route access for a session snapshot. An empty allowed
// list means the route only requires authentication.
func (g *Guard) Decide(snap Snapshot, allowed []UserRole) Decision {
	if snap.Loading {
		return Decision{Outcome: OutcomeWait}
	}

	if !snap.Authenticated {
		return Decision{Outcome: OutcomeRedirectLogin, Target: g.table.LoginRoute}
	}

	if len(allowed) == 0 {
		return Decision{Outcome: OutcomeRender}
	}

	role := UserRole("")
	if snap.User != nil {
		role = snap.User.Role
	}

	for _, candidate := range allowed {
		if role == candidate {
			return Decision{Outcome: OutcomeRender}
		}
	}

	return Decision{Outcome: OutcomeRedirectRoleHome, Target: g.table.HomeFor(role)}
}
