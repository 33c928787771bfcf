package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/goliatone/go-session/credstore"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

var _ CredentialStore = (*credstore.Store)(nil)

// CredentialStore persists the serialized {token, user} envelope across the
// two storage backends. credstore.Store is the default implementation.
type CredentialStore interface {
	Read(ctx context.Context) (*credstore.Envelope, error)
	Write(ctx context.Context, env credstore.Envelope) error
	RewriteUser(ctx context.Context, user json.RawMessage) error
	Clear(ctx context.Context) error
}

// UserResolver fetches the canonical, fully populated user record from the
// backend. The bearer token is forwarded verbatim, never inspected.
type UserResolver interface {
	Resolve(ctx context.Context, id, token string) (*User, error)
}

// UserResolverFunc adapts a function to the UserResolver interface.
type UserResolverFunc func(ctx context.Context, id, token string) (*User, error)

func (f UserResolverFunc) Resolve(ctx context.Context, id, token string) (*User, error) {
	if f == nil {
		return nil, nil
	}
	return f(ctx, id, token)
}

// Navigator receives the navigation side effects the manager emits after
// login and logout. Implementations bridge to whatever routing layer the
// application uses; the manager does not depend on a specific router.
type Navigator interface {
	Navigate(ctx context.Context, route string)
}

// NavigatorFunc adapts a function to the Navigator interface.
type NavigatorFunc func(ctx context.Context, route string)

func (f NavigatorFunc) Navigate(ctx context.Context, route string) {
	if f == nil {
		return
	}
	f(ctx, route)
}

type noopNavigator struct{}

func (noopNavigator) Navigate(context.Context, string) {}

func normalizeNavigator(n Navigator) Navigator {
	if n == nil {
		return noopNavigator{}
	}
	return n
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] SESSION "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] SESSION "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] SESSION "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] SESSION "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
