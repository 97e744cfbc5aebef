// Package session holds the bearer token used to authenticate API calls.
//
// A Session moves between two states. It starts Anonymous unless a token
// was persisted by an earlier run, becomes Authenticated through SetToken,
// and returns to Anonymous through ClearToken. Nothing else changes the
// state: there is no expiry handling and no refresh.
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/urbanflow/client/internal/storage"
)

// TokenKey is the fixed storage key the bearer token is persisted under.
const TokenKey = "auth_token"

type State string

const (
	StateAnonymous     State = "anonymous"
	StateAuthenticated State = "authenticated"
)

type Session struct {
	lock  sync.RWMutex
	store storage.Store

	// writeLock serializes token changes so memory and the store are
	// updated in the same order.
	writeLock sync.Mutex

	token string

	// generation changes whenever the token changes, letting callers detect
	// that a response belongs to a session that no longer exists.
	generation uint64
}

// New creates a session backed by store, restoring any persisted token.
func New(ctx context.Context, store storage.Store) (*Session, error) {

	if store == nil {
		return nil, fmt.Errorf("session requires a store")
	}

	token, ok, err := store.Get(ctx, TokenKey)
	if err != nil {
		return nil, fmt.Errorf("failed to restore session: %w", err)
	}

	s := &Session{
		store: store,
	}

	if ok && len(token) > 0 {
		logrus.Debugln("Restored persisted session token")
		s.token = token
	}

	return s, nil
}

// NewEphemeral creates a session that is never written to disk.
func NewEphemeral() *Session {
	return &Session{
		store: storage.NewMemoryStore(),
	}
}

func (s *Session) Token() string {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.token
}

func (s *Session) Generation() uint64 {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.generation
}

// Snapshot returns the token and generation as a consistent pair.
func (s *Session) Snapshot() (string, uint64) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.token, s.generation
}

func (s *Session) State() State {
	if s.IsAuthenticated() {
		return StateAuthenticated
	}
	return StateAnonymous
}

func (s *Session) IsAuthenticated() bool {
	return len(s.Token()) > 0
}

// SetToken stores token in memory and in durable storage. The token is not
// validated. If persisting fails the in-memory token is still updated and
// the error is returned.
func (s *Session) SetToken(ctx context.Context, token string) error {

	s.writeLock.Lock()
	defer s.writeLock.Unlock()

	s.lock.Lock()
	if s.token != token {
		s.token = token
		s.generation++
	}
	s.lock.Unlock()

	if err := s.store.Set(ctx, TokenKey, token); err != nil {
		logrus.WithError(err).Errorln("Failed to persist session token")
		return fmt.Errorf("failed to persist session token: %w", err)
	}

	return nil
}

// ClearToken removes the token from memory and durable storage. Clearing an
// anonymous session is a no-op apart from the storage delete.
func (s *Session) ClearToken(ctx context.Context) error {

	s.writeLock.Lock()
	defer s.writeLock.Unlock()

	s.lock.Lock()
	if len(s.token) > 0 {
		s.token = ""
		s.generation++
	}
	s.lock.Unlock()

	if err := s.store.Delete(ctx, TokenKey); err != nil {
		logrus.WithError(err).Errorln("Failed to remove persisted session token")
		return fmt.Errorf("failed to remove session token: %w", err)
	}

	return nil
}

// Close releases the underlying store.
func (s *Session) Close() error {
	return s.store.Close()
}
