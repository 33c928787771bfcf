// Package credstore persists the serialized {token, user} credential
// envelope across two key-value backends: a durable one that survives
// restarts and a session-scoped one that does not. Reads converge both
// backends onto the durable one, which is the canonical resting place; the
// session-scoped backend exists for migration of legacy sessions only.
package credstore

import (
	"context"
	"encoding/json"
	"errors"
)

// Storage keys. These two are the only state the session core persists.
const (
	KeyToken = "token"
	KeyUser  = "user"
)

// ErrKeyNotFound is returned by backends when a key holds no value.
var ErrKeyNotFound = errors.New("credstore: key not found")

// Backend is the minimal key-value contract a storage backend must meet.
// Values are opaque strings; the backend never interprets them.
type Backend interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Envelope is the serialized credential pair. User is opaque JSON the
// store round-trips untouched; only the session manager parses it.
type Envelope struct {
	Token string
	User  json.RawMessage
}

// Location identifies which backend holds the live envelope. After any
// Read at most one backend is populated.
type Location string

const (
	LocationAbsent  Location = "absent"
	LocationSession Location = "session"
	LocationDurable Location = "durable"
)

// Store composes the durable and session-scoped backends behind the
// single-envelope contract the session manager consumes.
type Store struct {
	durable Backend
	scoped  Backend
}

// New returns a store over the two backends. A nil scoped backend falls
// back to an in-process MemoryBackend, which matches session-scoped
// semantics for a single process.
func New(durable, scoped Backend) *Store {
	if scoped == nil {
		scoped = NewMemoryBackend()
	}
	return &Store{durable: durable, scoped: scoped}
}

// Locate probes which backend currently holds a live token. It performs no
// migration, so tests can pin down each reconcile starting state.
func (s *Store) Locate(ctx context.Context) (Location, error) {
	if ok, err := s.holdsToken(ctx, s.durable); err != nil {
		return LocationAbsent, err
	} else if ok {
		return LocationDurable, nil
	}

	if ok, err := s.holdsToken(ctx, s.scoped); err != nil {
		return LocationAbsent, err
	} else if ok {
		return LocationSession, nil
	}

	return LocationAbsent, nil
}

// Read returns the live envelope, durable backend first. An envelope found
// in session-scoped storage is migrated into durable storage and then
// erased from the session backend, so storage converges on a single
// canonical location without ever losing a live session. When both
// backends are populated (only possible transiently) the session copy is
// the one migrated, and wins. Absent is (nil, nil).
func (s *Store) Read(ctx context.Context) (*Envelope, error) {
	durable, err := s.readFrom(ctx, s.durable)
	if err != nil {
		return nil, err
	}

	scoped, err := s.readFrom(ctx, s.scoped)
	if err != nil {
		if durable != nil {
			return durable, nil
		}
		return nil, err
	}

	if scoped == nil {
		return durable, nil
	}

	// Erase the session copy only once the durable write landed; a failed
	// migration must never cost us the live session.
	if err := s.writeTo(ctx, s.durable, *scoped); err == nil {
		s.eraseFrom(ctx, s.scoped)
	}

	return scoped, nil
}

// Write persists the envelope to durable storage. All writes after a
// successful login target durable storage; the session backend is
// migration-only.
func (s *Store) Write(ctx context.Context, env Envelope) error {
	return s.writeTo(ctx, s.durable, env)
}

// RewriteUser replaces the stored user payload in whichever backend holds
// the live token, durable preferred. With no live token anywhere it is a
// no-op.
func (s *Store) RewriteUser(ctx context.Context, user json.RawMessage) error {
	loc, err := s.Locate(ctx)
	if err != nil {
		return err
	}

	switch loc {
	case LocationDurable:
		return s.durable.Set(ctx, KeyUser, string(user))
	case LocationSession:
		return s.scoped.Set(ctx, KeyUser, string(user))
	default:
		return nil
	}
}

// Clear empties both backends unconditionally. Failures are collected, not
// short-circuited: logout must attempt every location every time.
func (s *Store) Clear(ctx context.Context) error {
	return errors.Join(
		s.eraseFrom(ctx, s.durable),
		s.eraseFrom(ctx, s.scoped),
	)
}

func (s *Store) holdsToken(ctx context.Context, b Backend) (bool, error) {
	token, err := b.Get(ctx, KeyToken)
	if errors.Is(err, ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return token != "", nil
}

func (s *Store) readFrom(ctx context.Context, b Backend) (*Envelope, error) {
	token, err := b.Get(ctx, KeyToken)
	if errors.Is(err, ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, nil
	}

	env := &Envelope{Token: token}

	user, err := b.Get(ctx, KeyUser)
	if err != nil && !errors.Is(err, ErrKeyNotFound) {
		return nil, err
	}
	if user != "" {
		env.User = json.RawMessage(user)
	}

	return env, nil
}

func (s *Store) writeTo(ctx context.Context, b Backend, env Envelope) error {
	if err := b.Set(ctx, KeyToken, env.Token); err != nil {
		return err
	}
	return b.Set(ctx, KeyUser, string(env.User))
}

func (s *Store) eraseFrom(ctx context.Context, b Backend) error {
	return errors.Join(
		ignoreNotFound(b.Delete(ctx, KeyToken)),
		ignoreNotFound(b.Delete(ctx, KeyUser)),
	)
}

func ignoreNotFound(err error) error {
	if errors.Is(err, ErrKeyNotFound) {
		return nil
	}
	return err
}
