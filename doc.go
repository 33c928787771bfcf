// Package session owns the client session lifecycle for the back-office
// applications: how an authenticated identity is established, persisted,
// rehydrated on startup, and torn down, and how route access is gated on
// that identity's role.
//
// Lifecycle:
//   - A Manager starts in StateBooting and reconciles its in-memory state
//     against the credential store exactly once via Boot. A stored envelope
//     is re-validated against the backend (hydration) when possible, and
//     kept as-is when the backend is unreachable so a session is never
//     dropped because of a failed refresh call.
//   - Login persists credentials before hydration so a crash mid-hydration
//     still leaves a recoverable session. Logout resets memory and clears
//     every storage backend, and is safe to call repeatedly.
//
// Storage:
//   - The credstore subpackage abstracts two key-value backends, one durable
//     and one session-scoped. Reads converge both backends onto the durable
//     one; see credstore.Store for the migration rules.
//
// Authorization:
//   - Guard is a pure decision function over a session Snapshot and a route's
//     allowed roles. RouteGuard adapts it to go-router and fiber handler
//     chains, mapping decisions to redirects the same way the admin UIs do.
package session
