package session

import (
	"context"
	"time"
)

// ActivityEventType enumerates supported activity categories.
type ActivityEventType string

const (
	ActivityEventBootRestored      ActivityEventType = "session.boot.restored"
	ActivityEventBootEmpty         ActivityEventType = "session.boot.empty"
	ActivityEventBootDiscarded     ActivityEventType = "session.boot.discarded"
	ActivityEventLogin             ActivityEventType = "session.login"
	ActivityEventLogout            ActivityEventType = "session.logout"
	ActivityEventUserUpdated       ActivityEventType = "session.user.updated"
	ActivityEventHydrationDegraded ActivityEventType = "session.hydration.degraded"
)

// ActivityEvent captures audit-friendly information about a lifecycle action.
type ActivityEvent struct {
	EventType  ActivityEventType
	ManagerID  string
	UserID     string
	Metadata   map[string]any
	OccurredAt time.Time
}

// ActivitySink consumes activity events for auditing/telemetry purposes.
// Sinks run best-effort: errors are logged, never propagated.
type ActivitySink interface {
	Record(ctx context.Context, event ActivityEvent) error
}

// ActivitySinkFunc adapts a function to the ActivitySink interface.
type ActivitySinkFunc func(ctx context.Context, event ActivityEvent) error

// Record implements ActivitySink.
func (f ActivitySinkFunc) Record(ctx context.Context, event ActivityEvent) error {
	if f == nil {
		return nil
	}
	return f(ctx, event)
}

type noopActivitySink struct{}

func (noopActivitySink) Record(context.Context, ActivityEvent) error {
	return nil
}

func normalizeActivitySink(s ActivitySink) ActivitySink {
	if s == nil {
		return noopActivitySink{}
	}
	return s
}
