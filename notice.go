package session

import (
	"sync"
	"time"
)

// DefaultNoticeTTL is how long a transient notice stays visible before the
// channel clears itself.
const DefaultNoticeTTL = 3 * time.Second

// Notice is a single-slot, auto-expiring message channel used to surface
// one-shot feedback after session transitions. Showing a new message before
// the previous one expires replaces it and restarts the timer; pending
// clears never stack.
type Notice struct {
	mu    sync.Mutex
	msg   string
	ttl   time.Duration
	gen   uint64
	timer *time.Timer
}

// NewNotice returns a notice channel with the given default TTL. A zero or
// negative TTL falls back to DefaultNoticeTTL.
func NewNotice(ttl time.Duration) *Notice {
	if ttl <= 0 {
		ttl = DefaultNoticeTTL
	}
	return &Notice{ttl: ttl}
}

// Show sets the message and schedules a clear after the default TTL.
func (n *Notice) Show(msg string) {
	n.ShowFor(msg, n.ttl)
}

// ShowFor sets the message and schedules exactly one clear after ttl.
func (n *Notice) ShowFor(msg string, ttl time.Duration) {
	if ttl <= 0 {
		ttl = n.ttl
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	n.msg = msg
	n.gen++
	if n.timer != nil {
		n.timer.Stop()
	}

	// The generation check keeps a timer that fired between Stop and the
	// callback acquiring the lock from clearing a newer message.
	gen := n.gen
	n.timer = time.AfterFunc(ttl, func() {
		n.expire(gen)
	})
}

// Clear cancels any pending timer and empties the slot immediately.
func (n *Notice) Clear() {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.gen++
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	n.msg = ""
}

// Message returns the current message, empty when inactive.
func (n *Notice) Message() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.msg
}

func (n *Notice) expire(gen uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.gen != gen {
		return
	}
	n.msg = ""
	n.timer = nil
}
