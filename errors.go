package session

import (
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

// ErrNoIdentity is returned when a payload contains no identity-bearing
// record in any of the accepted envelope shapes.
var ErrNoIdentity = errors.New("no identity-bearing record found")

// ErrUserNotFound is the error we return when the backend has no record
// for the requested user id.
var ErrUserNotFound = errors.New("user not found")

// ErrSessionBooting signals that the manager has not finished its startup
// reconciliation; route handlers should wait, not redirect.
var ErrSessionBooting = goerrors.New("session is still booting", goerrors.CategoryInternal).
	WithTextCode("SESSION_BOOTING").
	WithCode(goerrors.CodeInternal)

// ErrNotAuthenticated is used by the route adapters when an unauthenticated
// request reaches a protected route.
var ErrNotAuthenticated = goerrors.New("no authenticated session", goerrors.CategoryAuth).
	WithTextCode("SESSION_NOT_AUTHENTICATED").
	WithCode(goerrors.CodeUnauthorized)

// ErrRoleNotAllowed is used by the route adapters when the session's role is
// not a member of a route's allowed roles.
var ErrRoleNotAllowed = goerrors.New("role not allowed for route", goerrors.CategoryAuthz).
	WithTextCode("SESSION_ROLE_NOT_ALLOWED").
	WithCode(goerrors.CodeForbidden)
