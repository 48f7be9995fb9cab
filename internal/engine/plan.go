package engine

import (
	"context"
	"sort"
	"time"

	"github.com/iliyamo/wedding-seating-engine/internal/lock"
	"github.com/iliyamo/wedding-seating-engine/internal/model"
)

// Pusher receives outbound assignment changes destined for the Guest
// List collaborator.  Pushes are fire-and-forget from the engine's
// point of view: the local mutation has already committed by the time
// the push is scheduled and is never rolled back on push failure.
type Pusher interface {
	SchedulePush(p model.AssignmentPush)
}

// Config carries the engine tunables.  Zero values fall back to the
// defaults the planner UI was built around.
type Config struct {
	CanvasWidth        float64       // plan canvas width, default 1800
	CanvasHeight       float64       // plan canvas height, default 1200
	CollisionTolerance float64       // overlap slack before a conflict, default 2
	HistoryCap         int           // bounded undo depth, default 100
	LockTTL            time.Duration // table lock TTL, default 30s
}

func (c Config) withDefaults() Config {
	if c.CanvasWidth <= 0 {
		c.CanvasWidth = 1800
	}
	if c.CanvasHeight <= 0 {
		c.CanvasHeight = 1200
	}
	if c.CollisionTolerance <= 0 {
		c.CollisionTolerance = 2
	}
	if c.HistoryCap <= 0 {
		c.HistoryCap = 100
	}
	if c.LockTTL <= 0 {
		c.LockTTL = 30 * time.Second
	}
	return c
}

// seatRef locates the single seat a guest occupies.
type seatRef struct {
	TableID   string
	SeatIndex int
}

// Plan is the canonical in-memory seating state for one wedding.  A
// single run-loop goroutine owns the spatial model and the history
// stacks; every mutation and every consistent read executes as a
// closure on that loop, so operations from concurrent sessions are
// serialized without data races.  The lock table is the one piece of
// state deliberately outside the loop: lock checks and the expiry
// sweep must not queue behind the edits they guard.
type Plan struct {
	weddingID string
	cfg       Config

	locks  *lock.Manager
	hub    *Hub
	pusher Pusher

	ops  chan func()
	done chan struct{}

	// Owned by the run loop.
	areas  map[string]*model.Area
	tables map[string]*model.Table
	seatOf map[string]seatRef
	hist   *historyStack
}

// NewPlan builds a plan and starts its run loop.  pusher may be nil in
// tests that do not care about reconciliation traffic.
func NewPlan(weddingID string, cfg Config, pusher Pusher) *Plan {
	cfg = cfg.withDefaults()
	p := &Plan{
		weddingID: weddingID,
		cfg:       cfg,
		hub:       NewHub(),
		pusher:    pusher,
		ops:       make(chan func(), 64),
		done:      make(chan struct{}),
		areas:     make(map[string]*model.Area),
		tables:    make(map[string]*model.Table),
		seatOf:    make(map[string]seatRef),
		hist:      newHistoryStack(cfg.HistoryCap),
	}
	p.locks = lock.NewManager(cfg.LockTTL, func(ev model.LockEvent) {
		lv := ev
		p.hub.Publish(model.Event{Kind: "lock", Lock: &lv})
	})
	go p.run()
	return p
}

// WeddingID returns the wedding this plan belongs to.
func (p *Plan) WeddingID() string { return p.weddingID }

// Locks exposes the plan's collaboration lock manager.
func (p *Plan) Locks() *lock.Manager { return p.locks }

// Events exposes the plan's subscription hub.
func (p *Plan) Events() *Hub { return p.hub }

// Close stops the run loop.  Pending operations already queued still
// execute; later calls fail with ErrPlanClosed.
func (p *Plan) Close() {
	select {
	case <-p.done:
	default:
		close(p.done)
	}
}

func (p *Plan) run() {
	for {
		select {
		case fn := <-p.ops:
			fn()
		case <-p.done:
			// Drain whatever was queued before the close.
			for {
				select {
				case fn := <-p.ops:
					fn()
				default:
					return
				}
			}
		}
	}
}

// do executes fn on the run loop and waits for its result.
func (p *Plan) do(ctx context.Context, fn func() error) error {
	res := make(chan error, 1)
	select {
	case p.ops <- func() { res <- fn() }:
	case <-p.done:
		return ErrPlanClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-res:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// view runs a read-only closure on the loop.  Closures must copy what
// they return; nothing owned by the loop may escape.
func (p *Plan) view(ctx context.Context, fn func()) error {
	return p.do(ctx, func() error { fn(); return nil })
}

// ---- low-level state helpers (run-loop only) ----

// bindSeat writes a (guest, seat) binding, bumps the table version and
// fans out the change.  Callers have already validated the target.
func (p *Plan) bindSeat(guestID, tableID string, seatIndex int) {
	t := p.tables[tableID]
	seat := t.SeatAt(seatIndex)
	seat.GuestID = guestID
	p.seatOf[guestID] = seatRef{TableID: tableID, SeatIndex: seatIndex}
	t.Version++
	p.emitAssignment(guestID, t, seatIndex)
}

// freeGuestSeat clears a guest's binding if any and reports whether a
// seat was actually freed.
func (p *Plan) freeGuestSeat(guestID string) (seatRef, bool) {
	ref, ok := p.seatOf[guestID]
	if !ok {
		return seatRef{}, false
	}
	delete(p.seatOf, guestID)
	if t, ok := p.tables[ref.TableID]; ok {
		if seat := t.SeatAt(ref.SeatIndex); seat != nil && seat.GuestID == guestID {
			seat.GuestID = ""
			t.Version++
		}
	}
	p.emitAssignment(guestID, nil, 0)
	return ref, true
}

// emitAssignment publishes the binding change and schedules the
// reconciler push.  A nil table means the guest was unassigned.
func (p *Plan) emitAssignment(guestID string, t *model.Table, seatIndex int) {
	ev := model.AssignmentEvent{WeddingID: p.weddingID, GuestID: guestID}
	push := model.AssignmentPush{WeddingID: p.weddingID, GuestID: guestID}
	if t != nil {
		ev.TableID = t.ID
		ev.SeatIndex = seatIndex
		push.Assignment = &model.GuestAssignment{
			GuestID:   guestID,
			TableID:   t.ID,
			TableName: t.Name,
			SeatIndex: seatIndex,
		}
	}
	p.hub.Publish(model.Event{Kind: "assignment", Assignment: &ev})
	if p.pusher != nil {
		p.pusher.SchedulePush(push)
	}
}

// checkTableEditable enforces the pin flag and the collaboration lock
// for geometry edits issued by a session.
func (p *Plan) checkTableEditable(t *model.Table, session lock.Session) error {
	if t.Pinned {
		return ErrTablePinned
	}
	if held, other := p.locks.HeldByOther(t.ID, session.ID); other {
		return &lock.HeldError{Holder: held}
	}
	return nil
}

// ---- query surface ----

// Areas returns the plan's areas ordered by z then id.
func (p *Plan) Areas(ctx context.Context) ([]*model.Area, error) {
	var out []*model.Area
	err := p.view(ctx, func() {
		out = make([]*model.Area, 0, len(p.areas))
		for _, a := range p.areas {
			out = append(out, a.Clone())
		}
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Z != out[j].Z {
			return out[i].Z < out[j].Z
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Tables returns deep copies of every table, ordered by id.
func (p *Plan) Tables(ctx context.Context) ([]*model.Table, error) {
	var out []*model.Table
	err := p.view(ctx, func() {
		out = make([]*model.Table, 0, len(p.tables))
		for _, t := range p.tables {
			out = append(out, t.Clone())
		}
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Table returns a deep copy of one table.
func (p *Plan) Table(ctx context.Context, tableID string) (*model.Table, error) {
	var out *model.Table
	err := p.do(ctx, func() error {
		t, ok := p.tables[tableID]
		if !ok {
			return ErrNotFound
		}
		out = t.Clone()
		return nil
	})
	return out, err
}

// Seats returns the seat slots of one table.
func (p *Plan) Seats(ctx context.Context, tableID string) ([]model.Seat, error) {
	t, err := p.Table(ctx, tableID)
	if err != nil {
		return nil, err
	}
	return t.Seats, nil
}

// Assignments returns the current guest→seat bindings keyed by guest.
func (p *Plan) Assignments(ctx context.Context) (map[string]model.GuestAssignment, error) {
	out := make(map[string]model.GuestAssignment)
	err := p.view(ctx, func() {
		for guestID, ref := range p.seatOf {
			t, ok := p.tables[ref.TableID]
			if !ok {
				continue
			}
			out[guestID] = model.GuestAssignment{
				GuestID:   guestID,
				TableID:   t.ID,
				TableName: t.Name,
				SeatIndex: ref.SeatIndex,
			}
		}
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CanUndo and CanRedo report history availability to every session.
func (p *Plan) CanUndo(ctx context.Context) (bool, error) {
	var ok bool
	err := p.view(ctx, func() { ok = p.hist.canUndo() })
	return ok, err
}

func (p *Plan) CanRedo(ctx context.Context) (bool, error) {
	var ok bool
	err := p.view(ctx, func() { ok = p.hist.canRedo() })
	return ok, err
}

// Undo reverses the causally last mutation on the plan, regardless of
// which session issued it.  Returns false when history is empty.
func (p *Plan) Undo(ctx context.Context) (bool, error) {
	var ok bool
	err := p.view(ctx, func() { ok = p.hist.popUndo() })
	return ok, err
}

// Redo re-applies the most recently undone mutation.
func (p *Plan) Redo(ctx context.Context) (bool, error) {
	var ok bool
	err := p.view(ctx, func() { ok = p.hist.popRedo() })
	return ok, err
}

// Snapshot captures the full plan state as a deep copy.
func (p *Plan) Snapshot(ctx context.Context, name string) (*model.PlanSnapshot, error) {
	snap := &model.PlanSnapshot{Name: name, WeddingID: p.weddingID, SavedAt: time.Now().UTC()}
	err := p.view(ctx, func() {
		for _, a := range p.areas {
			snap.Areas = append(snap.Areas, a.Clone())
		}
		for _, t := range p.tables {
			snap.Tables = append(snap.Tables, t.Clone())
		}
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(snap.Areas, func(i, j int) bool { return snap.Areas[i].ID < snap.Areas[j].ID })
	sort.Slice(snap.Tables, func(i, j int) bool { return snap.Tables[i].ID < snap.Tables[j].ID })
	return snap, nil
}

// Restore replaces the plan state with the snapshot.  The snapshot is
// validated up front; on ErrSnapshotCorrupt nothing changes.  Both
// history stacks are cleared, and a push is scheduled for every guest
// whose binding differs from before so the Guest List converges on the
// restored state.
func (p *Plan) Restore(ctx context.Context, snap *model.PlanSnapshot) error {
	if err := validateSnapshot(snap); err != nil {
		return err
	}
	return p.do(ctx, func() error {
		before := make(map[string]seatRef, len(p.seatOf))
		for g, ref := range p.seatOf {
			before[g] = ref
		}

		p.areas = make(map[string]*model.Area, len(snap.Areas))
		for _, a := range snap.Areas {
			cp := a.Clone()
			cp.WeddingID = p.weddingID
			p.areas[cp.ID] = cp
		}
		p.tables = make(map[string]*model.Table, len(snap.Tables))
		p.seatOf = make(map[string]seatRef)
		for _, t := range snap.Tables {
			cp := t.Clone()
			p.tables[cp.ID] = cp
			for i := range cp.Seats {
				if g := cp.Seats[i].GuestID; g != "" {
					p.seatOf[g] = seatRef{TableID: cp.ID, SeatIndex: i}
				}
			}
		}
		p.hist.clear()

		// Converge the Guest List on the restored bindings.
		for g, ref := range p.seatOf {
			if before[g] != ref {
				t := p.tables[ref.TableID]
				p.emitAssignment(g, t, ref.SeatIndex)
			}
			delete(before, g)
		}
		for g := range before {
			p.emitAssignment(g, nil, 0)
		}
		return nil
	})
}

// validateSnapshot rejects snapshots whose internal references are
// inconsistent before any state is replaced.
func validateSnapshot(snap *model.PlanSnapshot) error {
	if snap == nil {
		return ErrSnapshotCorrupt
	}
	areaIDs := make(map[string]struct{}, len(snap.Areas))
	for _, a := range snap.Areas {
		if a == nil || a.ID == "" || a.Bounds.Width <= 0 || a.Bounds.Height <= 0 {
			return ErrSnapshotCorrupt
		}
		if _, dup := areaIDs[a.ID]; dup {
			return ErrSnapshotCorrupt
		}
		areaIDs[a.ID] = struct{}{}
	}
	seen := make(map[string]struct{})
	guests := make(map[string]struct{})
	for _, t := range snap.Tables {
		if t == nil || t.ID == "" || t.Capacity <= 0 || len(t.Seats) != t.Capacity {
			return ErrSnapshotCorrupt
		}
		if _, ok := areaIDs[t.AreaID]; !ok {
			return ErrSnapshotCorrupt
		}
		if _, dup := seen[t.ID]; dup {
			return ErrSnapshotCorrupt
		}
		seen[t.ID] = struct{}{}
		for i, s := range t.Seats {
			if s.Index != i {
				return ErrSnapshotCorrupt
			}
			if s.GuestID == "" {
				continue
			}
			if _, dup := guests[s.GuestID]; dup {
				return ErrSnapshotCorrupt // one guest on two seats
			}
			guests[s.GuestID] = struct{}{}
		}
	}
	return nil
}
