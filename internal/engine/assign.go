package engine

import (
	"context"

	"github.com/iliyamo/wedding-seating-engine/internal/lock"
)

// Assignment operations.  This file is the only place a (guest, seat)
// binding is created or removed, which is what keeps the injectivity
// invariant checkable in one spot: a seat holds at most one guest and
// a guest occupies at most one seat, always.

// AssignGuestToSeat binds a guest to a specific seat.  A guest already
// seated elsewhere is relocated atomically: concurrent reassignment by
// two sessions serializes on the destination table's lock plus the
// plan's mutation loop, so the second assign either fails with the
// lock error or observes and replaces the first binding.
func (p *Plan) AssignGuestToSeat(ctx context.Context, session lock.Session, guestID, tableID string, seatIndex int) error {
	if guestID == "" {
		return ErrNotFound
	}
	return p.do(ctx, func() error {
		return p.placeGuest(session, guestID, tableID, seatIndex, "assign guest")
	})
}

// UnassignGuest frees a guest's seat.  Idempotent: unassigning a guest
// who is not seated succeeds without recording history.
func (p *Plan) UnassignGuest(ctx context.Context, session lock.Session, guestID string) error {
	return p.do(ctx, func() error {
		ref, seated := p.seatOf[guestID]
		if !seated {
			return nil
		}
		apply := func() { p.freeGuestSeat(guestID) }
		revert := func() {
			if t, ok := p.tables[ref.TableID]; ok {
				if s := t.SeatAt(ref.SeatIndex); s != nil && s.GuestID == "" {
					p.bindSeat(guestID, ref.TableID, ref.SeatIndex)
				}
			}
		}
		apply()
		p.hist.push(historyEntry{label: "unassign guest", undo: revert, redo: apply})
		return nil
	})
}

// MoveGuest relocates a guest to a new seat as one undoable unit.  The
// unassign-then-assign pair runs inside a single serialized closure:
// when the assign half fails the original binding is untouched, so the
// move is atomic from the user's perspective.
func (p *Plan) MoveGuest(ctx context.Context, session lock.Session, guestID, newTableID string, newSeatIndex int) error {
	if guestID == "" {
		return ErrNotFound
	}
	return p.do(ctx, func() error {
		return p.placeGuest(session, guestID, newTableID, newSeatIndex, "move guest")
	})
}

// placeGuest is the validate-and-bind core behind assign and move.
// It runs inside the mutation loop and records one history entry
// labelled for the calling operation.  Fullness is measured against
// enabled seats: disabling a seat shrinks the table without
// renumbering the rest.
func (p *Plan) placeGuest(session lock.Session, guestID, tableID string, seatIndex int, label string) error {
	t, ok := p.tables[tableID]
	if !ok {
		return ErrNotFound
	}
	seat := t.SeatAt(seatIndex)
	if seat == nil {
		return ErrNotFound
	}
	if held, other := p.locks.HeldByOther(tableID, session.ID); other {
		return &lock.HeldError{Holder: held}
	}
	if seat.GuestID == guestID {
		return nil // already exactly here
	}
	if t.AssignedCount() >= t.EnabledSeatCount() {
		return ErrTableFull
	}
	if !seat.Enabled {
		return ErrSeatDisabled
	}
	if seat.GuestID != "" {
		return ErrSeatOccupied
	}

	prev, hadPrev := p.seatOf[guestID]
	apply := func() {
		if hadPrev {
			p.freeGuestSeat(guestID)
		}
		p.bindSeat(guestID, tableID, seatIndex)
	}
	revert := func() {
		p.freeGuestSeat(guestID)
		if hadPrev {
			if pt, ok := p.tables[prev.TableID]; ok {
				if s := pt.SeatAt(prev.SeatIndex); s != nil && s.GuestID == "" {
					p.bindSeat(guestID, prev.TableID, prev.SeatIndex)
				}
			}
		}
	}
	apply()
	p.hist.push(historyEntry{label: label, undo: revert, redo: apply})
	return nil
}
