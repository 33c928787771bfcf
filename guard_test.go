package session_test

import (
	"testing"

	session "github.com/goliatone/go-session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGuard(t *testing.T) *session.Guard {
	t.Helper()
	guard, err := session.NewGuard(session.DefaultRouteTable())
	require.NoError(t, err)
	return guard
}

func TestGuardWaitWhileLoading(t *testing.T) {
	guard := newTestGuard(t)

	decision := guard.Decide(session.Snapshot{Loading: true}, nil)
	assert.Equal(t, session.OutcomeWait, decision.Outcome)
	assert.Empty(t, decision.Target)

	// loading outranks everything else in the snapshot
	decision = guard.Decide(session.Snapshot{
		Loading:       true,
		Authenticated: true,
		User:          &session.User{ID: "u1", Role: session.RoleAdmin},
	}, []session.UserRole{session.RoleAdmin})
	assert.Equal(t, session.OutcomeWait, decision.Outcome)
}

func TestGuardRedirectsAnonymousToLogin(t *testing.T) {
	guard := newTestGuard(t)

	decision := guard.Decide(session.Snapshot{}, nil)
	assert.Equal(t, session.OutcomeRedirectLogin, decision.Outcome)
	assert.Equal(t, session.DefaultLoginRoute, decision.Target)

	// role restrictions never change the anonymous outcome
	decision = guard.Decide(session.Snapshot{}, []session.UserRole{session.RoleAdmin})
	assert.Equal(t, session.OutcomeRedirectLogin, decision.Outcome)
}

func TestGuardRendersAuthOnlyRoutes(t *testing.T) {
	guard := newTestGuard(t)

	snap := session.Snapshot{
		Authenticated: true,
		User:          &session.User{ID: "u1", Role: session.RoleSeller},
	}

	decision := guard.Decide(snap, nil)
	assert.Equal(t, session.OutcomeRender, decision.Outcome)
}

func TestGuardRendersAllowedRole(t *testing.T) {
	guard := newTestGuard(t)

	snap := session.Snapshot{
		Authenticated: true,
		User:          &session.User{ID: "u1", Role: session.RoleCashier},
	}

	decision := guard.Decide(snap, []session.UserRole{session.RoleAdmin, session.RoleCashier})
	assert.Equal(t, session.OutcomeRender, decision.Outcome)
}

func TestGuardRedirectsDisallowedRoleHome(t *testing.T) {
	guard := newTestGuard(t)

	snap := session.Snapshot{
		Authenticated: true,
		User:          &session.User{ID: "u1", Role: session.RoleSeller},
	}

	decision := guard.Decide(snap, []session.UserRole{session.RoleAdmin})
	assert.Equal(t, session.OutcomeRedirectRoleHome, decision.Outcome)
	assert.Equal(t, "/ventas", decision.Target)
}

func TestGuardUnknownRoleFallsBackToDefaultHome(t *testing.T) {
	guard := newTestGuard(t)

	snap := session.Snapshot{
		Authenticated: true,
		User:          &session.User{ID: "u1", Role: "INTERN"},
	}

	decision := guard.Decide(snap, []session.UserRole{session.RoleAdmin})
	assert.Equal(t, session.OutcomeRedirectRoleHome, decision.Outcome)
	assert.Equal(t, session.DefaultRootRoute, decision.Target)
}

func TestGuardNilUserOnRestrictedRoute(t *testing.T) {
	guard := newTestGuard(t)

	// authenticated with no record should never panic; it redirects to the
	// default home like any unknown role
	snap := session.Snapshot{Authenticated: true}

	decision := guard.Decide(snap, []session.UserRole{session.RoleAdmin})
	assert.Equal(t, session.OutcomeRedirectRoleHome, decision.Outcome)
	assert.Equal(t, session.DefaultRootRoute, decision.Target)
}

func TestRouteTableHomeFor(t *testing.T) {
	table := session.DefaultRouteTable()

	assert.Equal(t, "/admin", table.HomeFor(session.RoleAdmin))
	assert.Equal(t, "/dashboard", table.HomeFor(session.RoleOwner))
	assert.Equal(t, "/ventas", table.HomeFor(session.RoleSeller))
	assert.Equal(t, "/pagos", table.HomeFor(session.RoleCashier))
	assert.Equal(t, session.DefaultRootRoute, table.HomeFor("UNKNOWN"))
}

func TestRouteTableValidate(t *testing.T) {
	t.Run("default table is valid", func(t *testing.T) {
		assert.NoError(t, session.DefaultRouteTable().Validate())
	})

	t.Run("missing login route", func(t *testing.T) {
		table := session.DefaultRouteTable()
		table.LoginRoute = ""
		assert.Error(t, table.Validate())
	})

	t.Run("missing default home", func(t *testing.T) {
		table := session.DefaultRouteTable()
		table.DefaultHome = ""
		assert.Error(t, table.Validate())
	})

	t.Run("empty home route", func(t *testing.T) {
		table := session.DefaultRouteTable()
		table.Homes[session.RoleAdmin] = ""
		assert.Error(t, table.Validate())
	})
}

func TestNewGuardRejectsInvalidTable(t *testing.T) {
	_, err := session.NewGuard(session.RouteTable{})
	assert.Error(t, err)
}
