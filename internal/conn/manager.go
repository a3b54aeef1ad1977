// Package conn tracks the lifecycle of one backend connection. Managers are
// plain values owned by the composition root; nothing here is a package
// global.
package conn

import (
	"context"
	"sync"

	pkgerrors "github.com/stockroomhq/stockroom-backend/pkg/errors"
)

// State is the connection lifecycle phase.
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
	StateError        State = "error"
)

// DialFunc establishes the backend connection for the supplied config.
type DialFunc func(ctx context.Context, cfg any) error

// CloseFunc releases the backend connection.
type CloseFunc func(ctx context.Context) error

// Manager drives one backend through disconnected → connecting → connected,
// parking in error when a dial fails. Safe for concurrent use.
type Manager struct {
	backend string
	dial    DialFunc
	close   CloseFunc

	// connectMu serializes Connect/Disconnect so at most one dial runs at a
	// time; mu guards the snapshot fields readers query.
	connectMu sync.Mutex
	mu        sync.RWMutex
	state     State
	cfg       any
	lastErr   error
}

// Option tweaks manager construction.
type Option func(*Manager)

// WithCloser registers the release hook Disconnect calls.
func WithCloser(close CloseFunc) Option {
	return func(m *Manager) {
		m.close = close
	}
}

// New builds a disconnected manager for the named backend.
func New(backend string, dial DialFunc, opts ...Option) *Manager {
	m := &Manager{
		backend: backend,
		dial:    dial,
		state:   StateDisconnected,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Backend names the backend this manager drives.
func (m *Manager) Backend() string {
	return m.backend
}

// Connect dials the backend with the given config. It reports whether the
// manager ended up connected; an already-connected manager succeeds without
// redialing. A failed dial parks the manager in the error state until Reset
// or a successful retry.
func (m *Manager) Connect(ctx context.Context, cfg any) (bool, error) {
	m.connectMu.Lock()
	defer m.connectMu.Unlock()

	m.mu.Lock()
	if m.state == StateConnected {
		m.mu.Unlock()
		return true, nil
	}
	m.state = StateConnecting
	m.cfg = cfg
	m.lastErr = nil
	m.mu.Unlock()

	err := m.dial(ctx, cfg)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		wrapped := pkgerrors.Wrap(pkgerrors.CodeConnection, err, "connecting to "+m.backend+" backend")
		m.state = StateError
		m.lastErr = wrapped
		return false, wrapped
	}
	m.state = StateConnected
	return true, nil
}

// Disconnect releases the connection. It only acts from the connected state;
// any other state is a successful no-op.
func (m *Manager) Disconnect(ctx context.Context) error {
	m.connectMu.Lock()
	defer m.connectMu.Unlock()

	m.mu.Lock()
	if m.state != StateConnected {
		m.mu.Unlock()
		return nil
	}
	m.mu.Unlock()

	var err error
	if m.close != nil {
		err = m.close(ctx)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		wrapped := pkgerrors.Wrap(pkgerrors.CodeConnection, err, "disconnecting "+m.backend+" backend")
		m.state = StateError
		m.lastErr = wrapped
		return wrapped
	}
	m.state = StateDisconnected
	return nil
}

// Reset forces the manager back to disconnected and clears its config and
// last error. It never releases resources; callers wanting a clean close use
// Disconnect.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = StateDisconnected
	m.cfg = nil
	m.lastErr = nil
}

// State returns the current lifecycle phase.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// LastError returns the error from the most recent failed transition.
func (m *Manager) LastError() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastErr
}

// Config returns the config supplied to the most recent Connect.
func (m *Manager) Config() any {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg
}
