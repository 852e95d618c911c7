// Package session gives each storefront visitor their own cart. Carts are
// single-owner state machines, so the manager serializes all access to a
// session's cart and mirrors every change into the snapshot store.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/pescastur/storefront/internal/domain/cart"
)

// state is one live session: a cart plus the lock that makes concurrent
// requests from the same session safe.
type state struct {
	mu         sync.Mutex
	cart       *cart.Cart
	lastAccess time.Time
}

// Manager owns the active carts, one per session ID. Sessions are created
// lazily on first access and rehydrated from the snapshot store when the
// process has restarted since the cart was last touched.
type Manager struct {
	store   Store
	maxIdle time.Duration

	mu       sync.Mutex
	sessions map[string]*state

	now func() time.Time
}

// NewManager creates a Manager backed by the given snapshot store.
// In-memory sessions idle longer than maxIdle are evicted by the janitor;
// their snapshots stay in the store until its own TTL expires.
func NewManager(store Store, maxIdle time.Duration) *Manager {
	return &Manager{
		store:    store,
		maxIdle:  maxIdle,
		sessions: make(map[string]*state),
		now:      time.Now,
	}
}

// NewID returns a fresh session identifier.
func (m *Manager) NewID() string {
	return uuid.New().String()
}

// With runs fn with exclusive access to the session's cart, then writes
// the resulting snapshot to the store. The snapshot write failing does not
// undo fn; the error is returned so callers can log it.
func (m *Manager) With(ctx context.Context, sessionID string, fn func(c *cart.Cart) error) error {
	st, err := m.acquire(ctx, sessionID)
	if err != nil {
		return err
	}
	defer st.mu.Unlock()

	if err := fn(st.cart); err != nil {
		return err
	}

	if err := m.store.Save(ctx, sessionID, st.cart.Items()); err != nil {
		return errors.Wrap(err, "save cart snapshot")
	}
	return nil
}

// View runs fn with exclusive access to the session's cart without
// snapshotting afterward. Use it for read-only operations.
func (m *Manager) View(ctx context.Context, sessionID string, fn func(c *cart.Cart) error) error {
	st, err := m.acquire(ctx, sessionID)
	if err != nil {
		return err
	}
	defer st.mu.Unlock()
	return fn(st.cart)
}

// acquire returns the locked state for a session, creating and
// rehydrating it first when needed. The caller must unlock st.mu.
func (m *Manager) acquire(ctx context.Context, sessionID string) (*state, error) {
	m.mu.Lock()
	st, ok := m.sessions[sessionID]
	if !ok {
		st = &state{cart: cart.New()}
		m.sessions[sessionID] = st
	}
	st.lastAccess = m.now()
	m.mu.Unlock()

	st.mu.Lock()
	if !ok {
		items, found, err := m.store.Load(ctx, sessionID)
		if err != nil {
			st.mu.Unlock()
			return nil, errors.Wrap(err, "load cart snapshot")
		}
		if found {
			st.cart.Restore(items)
		}
	}
	return st, nil
}

// Start launches the idle-session janitor. It stops when ctx is done.
func (m *Manager) Start(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.evictIdle()
			}
		}
	}()
}

func (m *Manager) evictIdle() {
	cutoff := m.now().Add(-m.maxIdle)
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, st := range m.sessions {
		if st.lastAccess.Before(cutoff) {
			delete(m.sessions, id)
		}
	}
}

// Len returns the number of live in-memory sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
