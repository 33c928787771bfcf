package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/goliatone/go-session/credstore"
	"github.com/google/uuid"
)

// State identifies where the manager is in its lifecycle. StateBooting is
// entered exactly once, at construction, and never again: login and logout
// move directly between the two settled states.
type State string

const (
	StateBooting         State = "booting"
	StateAuthenticated   State = "authenticated"
	StateUnauthenticated State = "unauthenticated"
)

const (
	// DefaultRootRoute is where the navigator is pointed after login.
	DefaultRootRoute = "/"
	// DefaultLoginRoute is where the navigator is pointed after logout.
	DefaultLoginRoute = "/login"
)

// Notice messages emitted after session transitions. These are
// informational; error display belongs to the calling screens.
const (
	NoticeSessionStarted = "session started"
	NoticeSessionEnded   = "session ended"
)

// DefaultHydrationTimeout bounds the user-detail fetch during boot and
// login. A stalled backend call degrades to the cached record instead of
// freezing the lifecycle in its loading state.
const DefaultHydrationTimeout = 10 * time.Second

// Snapshot is the read-only view of session state handed to UI consumers
// and to the route guard. This is the entire contract the rest of the
// application is permitted to depend on.
type Snapshot struct {
	Authenticated bool
	Loading       bool
	User          *User
	Token         string
	Notice        string
}

// Manager owns the in-memory session state and reconciles it with the
// credential store. No operation propagates storage or network errors to
// the caller: everything is absorbed and resolved to the nearest safe
// state, unauthenticated on irrecoverable corruption, degraded but
// authenticated on resolver failure.
type Manager struct {
	id               string
	store            CredentialStore
	resolver         UserResolver
	logger           Logger
	navigator        Navigator
	sink             ActivitySink
	now              func() time.Time
	hydrationTimeout time.Duration
	rootRoute        string
	loginRoute       string
	notice           *Notice

	mu    sync.RWMutex
	state State
	user  *User
	token string
}

// Option customizes manager construction.
type Option func(*Manager)

// WithLogger overrides the default logger.
func WithLogger(logger Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithNavigator sets the navigation side-effect target for login/logout.
func WithNavigator(nav Navigator) Option {
	return func(m *Manager) {
		m.navigator = normalizeNavigator(nav)
	}
}

// WithActivitySink sets the ActivitySink used to publish lifecycle events.
func WithActivitySink(sink ActivitySink) Option {
	return func(m *Manager) {
		m.sink = normalizeActivitySink(sink)
	}
}

// WithClock injects a custom clock (useful for tests).
func WithClock(clock func() time.Time) Option {
	return func(m *Manager) {
		if clock != nil {
			m.now = clock
		}
	}
}

// WithHydrationTimeout bounds every user-detail fetch. Zero or negative
// falls back to DefaultHydrationTimeout.
func WithHydrationTimeout(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.hydrationTimeout = d
		}
	}
}

// WithNoticeTTL sets how long transient notices stay visible.
func WithNoticeTTL(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.notice = NewNotice(d)
		}
	}
}

// WithRoutes overrides the navigation targets for login and logout.
func WithRoutes(root, login string) Option {
	return func(m *Manager) {
		if root != "" {
			m.rootRoute = root
		}
		if login != "" {
			m.loginRoute = login
		}
	}
}

// NewManager returns a manager in StateBooting. Call Boot once to
// reconcile against storage before consulting any accessor.
func NewManager(store CredentialStore, resolver UserResolver, opts ...Option) *Manager {
	m := &Manager{
		id:               uuid.NewString(),
		store:            store,
		resolver:         resolver,
		logger:           defLogger{},
		navigator:        noopNavigator{},
		sink:             noopActivitySink{},
		now:              time.Now,
		hydrationTimeout: DefaultHydrationTimeout,
		rootRoute:        DefaultRootRoute,
		loginRoute:       DefaultLoginRoute,
		notice:           NewNotice(DefaultNoticeTTL),
		state:            StateBooting,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}

	return m
}

// ID identifies this manager instance in logs and activity events.
func (m *Manager) ID() string {
	return m.id
}

// Boot reconciles in-memory state with the credential store. It runs the
// startup transition exactly once; calling it again after the manager has
// settled is a no-op. Boot always leaves Loading() false.
func (m *Manager) Boot(ctx context.Context) {
	m.mu.Lock()
	if m.state != StateBooting {
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()

	env, err := m.store.Read(ctx)
	if err != nil {
		m.logger.Warn("boot: credential read failed: %v", err)
		m.settleUnauthenticated(ctx, ActivityEventBootDiscarded, map[string]any{"reason": "storage read failed"})
		return
	}

	if env == nil || env.Token == "" {
		m.settleUnauthenticated(ctx, ActivityEventBootEmpty, nil)
		return
	}

	base, err := DecodeUser(env.User)
	if err != nil {
		// a corrupt envelope is never trusted
		m.logger.Warn("boot: discarding stored credentials: %v", err)
		m.settleUnauthenticated(ctx, ActivityEventBootDiscarded, map[string]any{"reason": "corrupt user payload"})
		return
	}

	user := m.hydrate(ctx, base, env.Token)

	m.mu.Lock()
	m.state = StateAuthenticated
	m.token = env.Token
	m.user = user
	m.mu.Unlock()

	m.record(ctx, ActivityEventBootRestored, user.ID, nil)
}

// LoginOption customizes a single login call.
type LoginOption func(*loginOptions)

type loginOptions struct {
	skipUserDetail bool
}

// WithSkipUserDetail suppresses the user-detail hydration call for this
// login; the provided record is used as-is.
func WithSkipUserDetail() LoginOption {
	return func(o *loginOptions) {
		o.skipUserDetail = true
	}
}

// Login persists the credentials and flips the session to authenticated.
// Storage is written before hydration so a crash mid-hydration still
// leaves a recoverable session; when hydration succeeds the stored copy is
// rewritten with the canonical record.
func (m *Manager) Login(ctx context.Context, token string, user *User, opts ...LoginOption) {
	options := &loginOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(options)
		}
	}

	if user == nil {
		user = &User{}
	}
	user = user.Clone()

	m.persist(ctx, token, user)

	if !options.skipUserDetail && user.HasID() && !user.Bypass {
		if hydrated := m.hydrate(ctx, user, token); hydrated != user {
			user = hydrated
			m.persist(ctx, token, user)
		}
	}

	m.mu.Lock()
	m.state = StateAuthenticated
	m.token = token
	m.user = user
	m.mu.Unlock()

	m.notice.Show(NoticeSessionStarted)
	m.record(ctx, ActivityEventLogin, user.ID, nil)
	m.navigator.Navigate(ctx, m.rootRoute)
}

// Logout resets the in-memory session and clears both storage backends.
// It is idempotent: repeated calls settle in the same terminal state and
// clear storage every time.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.Lock()
	userID := ""
	if m.user != nil {
		userID = m.user.ID
	}
	m.state = StateUnauthenticated
	m.user = nil
	m.token = ""
	m.mu.Unlock()

	if err := m.store.Clear(ctx); err != nil {
		m.logger.Warn("logout: credential clear failed: %v", err)
	}

	m.notice.Show(NoticeSessionEnded)
	m.record(ctx, ActivityEventLogout, userID, nil)
	m.navigator.Navigate(ctx, m.loginRoute)
}

// UpdateUser replaces the in-memory record and rewrites it to whichever
// backend currently holds the live token. Authentication state and token
// are untouched; profile edits must not force a re-login.
func (m *Manager) UpdateUser(ctx context.Context, user *User) {
	if user == nil {
		return
	}
	clone := user.Clone()

	m.mu.Lock()
	m.user = clone
	m.mu.Unlock()

	payload, err := json.Marshal(clone)
	if err != nil {
		m.logger.Error("update user: marshal failed: %v", err)
		return
	}

	if err := m.store.RewriteUser(ctx, payload); err != nil {
		m.logger.Warn("update user: storage rewrite failed: %v", err)
	}

	m.record(ctx, ActivityEventUserUpdated, clone.ID, nil)
}

// IsAuthenticated reports whether the session holds an identity.
func (m *Manager) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state == StateAuthenticated
}

// Loading is true only during the startup reconciliation window.
func (m *Manager) Loading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state == StateBooting
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// User returns a copy of the current record, nil when unauthenticated.
func (m *Manager) User() *User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user.Clone()
}

// Token returns the opaque bearer credential, empty when unauthenticated.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

// Notice returns the current transient notice, empty when inactive.
func (m *Manager) Notice() string {
	return m.notice.Message()
}

// Snapshot returns the full read-only view UI consumers bind to.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return Snapshot{
		Authenticated: m.state == StateAuthenticated,
		Loading:       m.state == StateBooting,
		User:          m.user.Clone(),
		Token:         m.token,
		Notice:        m.notice.Message(),
	}
}

// hydrate fetches the canonical record for base. Backend truth supersedes
// cached truth when available; every failure path returns base unchanged
// so the session degrades instead of dropping.
func (m *Manager) hydrate(ctx context.Context, base *User, token string) *User {
	if m.resolver == nil || !base.HasID() || base.Bypass {
		return base
	}

	hctx, cancel := context.WithTimeout(ctx, m.hydrationTimeout)
	defer cancel()

	resolved, err := m.resolver.Resolve(hctx, base.ID, token)
	if err != nil {
		m.logger.Warn("hydration failed for user %s: %v", base.ID, err)
		m.record(ctx, ActivityEventHydrationDegraded, base.ID, map[string]any{"error": err.Error()})
		return base
	}

	if !resolved.HasID() {
		m.record(ctx, ActivityEventHydrationDegraded, base.ID, map[string]any{"reason": "empty record"})
		return base
	}

	resolved.NormalizePhone()
	return resolved
}

func (m *Manager) persist(ctx context.Context, token string, user *User) {
	payload, err := json.Marshal(user)
	if err != nil {
		m.logger.Error("persist: marshal failed: %v", err)
		return
	}

	if err := m.store.Write(ctx, credstore.Envelope{Token: token, User: payload}); err != nil {
		m.logger.Warn("persist: credential write failed: %v", err)
	}
}

func (m *Manager) settleUnauthenticated(ctx context.Context, event ActivityEventType, meta map[string]any) {
	if err := m.store.Clear(ctx); err != nil {
		m.logger.Warn("boot: credential clear failed: %v", err)
	}

	m.mu.Lock()
	m.state = StateUnauthenticated
	m.user = nil
	m.token = ""
	m.mu.Unlock()

	m.record(ctx, event, "", meta)
}

func (m *Manager) record(ctx context.Context, typ ActivityEventType, userID string, meta map[string]any) {
	event := ActivityEvent{
		EventType:  typ,
		ManagerID:  m.id,
		UserID:     userID,
		Metadata:   meta,
		OccurredAt: m.now(),
	}

	if err := m.sink.Record(ctx, event); err != nil {
		m.logger.Warn("activity sink error: %v", err)
	}
}
