package session

import (
	"context"
)

var userCtxKey = &contextKey{"user"}
var snapshotCtxKey = &contextKey{"snapshot"}

type contextKey struct {
	name string
}

// WithContext sets the User in the given context
func WithContext(r context.Context, user *User) context.Context {
	return context.WithValue(r, userCtxKey, user)
}

// FromContext finds the user from the context.
func FromContext(ctx context.Context) (*User, bool) {
	raw, ok := ctx.Value(userCtxKey).(*User)
	return raw, ok
}

// WithSnapshotContext sets the session Snapshot in the given context
func WithSnapshotContext(r context.Context, snap Snapshot) context.Context {
	return context.WithValue(r, snapshotCtxKey, snap)
}

// SnapshotFromContext extracts the session Snapshot from the context
func SnapshotFromContext(ctx context.Context) (Snapshot, bool) {
	raw, ok := ctx.Value(snapshotCtxKey).(Snapshot)
	return raw, ok
}

// HasRole reports whether the context carries a user with the given role.
func HasRole(ctx context.Context, role UserRole) bool {
	user, ok := FromContext(ctx)
	if !ok || user == nil {
		return false
	}
	return user.Role == role
}
