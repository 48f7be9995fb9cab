// Package lock implements the per-table collaboration lock protocol.
// Locks are exclusive, time-bounded and live only in process memory:
// a restart implicitly releases everything, which is exactly the
// semantics the collaboration protocol wants for crashed sessions.
package lock

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/wedding-seating-engine/internal/model"
)

// ErrHeldByOther is returned when a table's lock is owned by a
// different live session.  Use HolderOf to recover the holder for
// display.  Lock contention is an expected, frequent condition; it is
// surfaced to the UI, not logged as a failure.
var ErrHeldByOther = errors.New("table lock held by another session")

// HeldError wraps ErrHeldByOther with the identity of the holder so
// handlers can tell the blocked collaborator who is editing.
type HeldError struct {
	Holder model.Lock
}

func (e *HeldError) Error() string {
	return fmt.Sprintf("table lock held by %s", e.Holder.HolderName)
}

// Unwrap makes errors.Is(err, ErrHeldByOther) work on HeldError.
func (e *HeldError) Unwrap() error { return ErrHeldByOther }

// Session identifies a connected collaborator.
type Session struct {
	ID   string
	Name string
}

// Manager owns the lock table for a single seating plan.  It is safe
// for concurrent use and deliberately independent of the plan's
// mutation loop: lock status checks and the expiry sweep must not have
// to queue behind the very edits they guard.
type Manager struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	locks   map[string]*model.Lock // keyed by table id
	onEvent func(model.LockEvent)  // optional; invoked outside mu
}

// NewManager builds a Manager with the given lock TTL.  onEvent, when
// non-nil, receives a notification for every grant, release and
// expiry; it must not call back into the Manager.
func NewManager(ttl time.Duration, onEvent func(model.LockEvent)) *Manager {
	return &Manager{
		ttl:     ttl,
		now:     time.Now,
		locks:   make(map[string]*model.Lock),
		onEvent: onEvent,
	}
}

// SetClock overrides the time source.  Tests use this to force expiry
// without sleeping.
func (m *Manager) SetClock(now func() time.Time) { m.now = now }

// Ensure grants or refreshes the lock on tableID for the session.  It
// is idempotent for the current holder: repeated calls extend the TTL,
// which is how continued edit activity keeps a lock alive.  When the
// table is locked by another session whose lock has not lapsed, a
// *HeldError is returned and the existing lock is untouched.
func (m *Manager) Ensure(tableID string, s Session) (model.Lock, error) {
	m.mu.Lock()
	now := m.now()
	cur, ok := m.locks[tableID]
	if ok && cur.HolderID != s.ID && cur.ExpiresAt.After(now) {
		held := *cur
		m.mu.Unlock()
		return model.Lock{}, &HeldError{Holder: held}
	}
	acquired := now
	if ok && cur.HolderID == s.ID {
		acquired = cur.AcquiredAt // refresh keeps the original grant time
	}
	lk := &model.Lock{
		TableID:    tableID,
		HolderID:   s.ID,
		HolderName: s.Name,
		AcquiredAt: acquired,
		ExpiresAt:  now.Add(m.ttl),
	}
	m.locks[tableID] = lk
	granted := *lk
	fresh := !ok || cur.HolderID != s.ID
	m.mu.Unlock()

	if fresh {
		m.emit(model.LockEvent{
			Kind:       model.LockAcquired,
			TableID:    tableID,
			HolderID:   s.ID,
			HolderName: s.Name,
		})
	}
	return granted, nil
}

// HolderOf returns the live lock on tableID, if any.  Expired locks
// are reported as absent even before the sweep collects them.
func (m *Manager) HolderOf(tableID string) (model.Lock, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	lk, ok := m.locks[tableID]
	if !ok || !lk.ExpiresAt.After(m.now()) {
		return model.Lock{}, false
	}
	return *lk, true
}

// HeldByOther reports whether tableID is locked by a live session
// other than sessionID.
func (m *Manager) HeldByOther(tableID, sessionID string) (model.Lock, bool) {
	lk, ok := m.HolderOf(tableID)
	if !ok || lk.HolderID == sessionID {
		return model.Lock{}, false
	}
	return lk, true
}

// Release drops the lock on tableID when held by sessionID.  Releasing
// a lock one does not hold is a no-op.
func (m *Manager) Release(tableID, sessionID string) {
	m.mu.Lock()
	lk, ok := m.locks[tableID]
	if !ok || lk.HolderID != sessionID {
		m.mu.Unlock()
		return
	}
	delete(m.locks, tableID)
	released := *lk
	m.mu.Unlock()
	m.emit(model.LockEvent{
		Kind:       model.LockReleased,
		TableID:    released.TableID,
		HolderID:   released.HolderID,
		HolderName: released.HolderName,
	})
}

// ReleaseExcept drops every lock held by sessionID other than the
// tables listed in keep.  Sessions call this when switching focus so
// they never accumulate locks on tables they stopped editing.
func (m *Manager) ReleaseExcept(sessionID string, keep ...string) {
	keepSet := make(map[string]struct{}, len(keep))
	for _, id := range keep {
		keepSet[id] = struct{}{}
	}
	m.mu.Lock()
	var released []model.Lock
	for id, lk := range m.locks {
		if lk.HolderID != sessionID {
			continue
		}
		if _, kept := keepSet[id]; kept {
			continue
		}
		delete(m.locks, id)
		released = append(released, *lk)
	}
	m.mu.Unlock()
	for _, lk := range released {
		m.emit(model.LockEvent{
			Kind:       model.LockReleased,
			TableID:    lk.TableID,
			HolderID:   lk.HolderID,
			HolderName: lk.HolderName,
		})
	}
}

// ReleaseSession drops every lock the session holds.  Called on
// disconnect; the expiry sweep covers sessions that vanish without
// saying goodbye.
func (m *Manager) ReleaseSession(sessionID string) {
	m.ReleaseExcept(sessionID)
}

// Sweep releases every lock whose TTL elapsed without a refresh and
// returns how many were collected.  Each expiry emits a lock event so
// other sessions' UIs unblock.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	now := m.now()
	var expired []model.Lock
	for id, lk := range m.locks {
		if !lk.ExpiresAt.After(now) {
			delete(m.locks, id)
			expired = append(expired, *lk)
		}
	}
	m.mu.Unlock()
	for _, lk := range expired {
		m.emit(model.LockEvent{
			Kind:       model.LockExpired,
			TableID:    lk.TableID,
			HolderID:   lk.HolderID,
			HolderName: lk.HolderName,
		})
	}
	return len(expired)
}

// Run sweeps at the given interval until ctx is cancelled.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}

// List returns the live locks ordered by table id.
func (m *Manager) List() []model.Lock {
	m.mu.Lock()
	now := m.now()
	out := make([]model.Lock, 0, len(m.locks))
	for _, lk := range m.locks {
		if lk.ExpiresAt.After(now) {
			out = append(out, *lk)
		}
	}
	m.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].TableID < out[j].TableID })
	return out
}

func (m *Manager) emit(ev model.LockEvent) {
	if m.onEvent != nil {
		m.onEvent(ev)
	}
}
