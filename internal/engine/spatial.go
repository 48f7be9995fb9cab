package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/wedding-seating-engine/internal/lock"
	"github.com/iliyamo/wedding-seating-engine/internal/model"
)

// AddAreaParams describes a new layout zone.
type AddAreaParams struct {
	Name   string
	Kind   model.AreaKind
	Bounds model.Rect
	Z      int
}

// AddArea creates a ceremony or banquet zone on the canvas.
func (p *Plan) AddArea(ctx context.Context, params AddAreaParams) (*model.Area, error) {
	if params.Bounds.Width <= 0 || params.Bounds.Height <= 0 {
		return nil, ErrInvalidGeometry
	}
	canvas := model.Rect{Width: p.cfg.CanvasWidth, Height: p.cfg.CanvasHeight}
	if !canvas.Contains(params.Bounds) {
		return nil, ErrInvalidGeometry
	}
	if params.Kind != model.AreaCeremony && params.Kind != model.AreaBanquet {
		return nil, ErrInvalidGeometry
	}
	area := &model.Area{
		ID:        uuid.NewString(),
		WeddingID: p.weddingID,
		Name:      params.Name,
		Kind:      params.Kind,
		Bounds:    params.Bounds,
		Z:         params.Z,
		CreatedAt: time.Now().UTC(),
	}
	err := p.do(ctx, func() error {
		p.areas[area.ID] = area
		saved := area.Clone()
		p.hist.push(historyEntry{
			label: "add area",
			undo:  func() { delete(p.areas, saved.ID) },
			redo:  func() { p.areas[saved.ID] = saved.Clone() },
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return area.Clone(), nil
}

// DeleteArea removes an area and cascades to every table it contains.
// Guests freed by the cascade are pushed to the Guest List as
// unassigned.  The whole cascade is one undoable unit.
func (p *Plan) DeleteArea(ctx context.Context, areaID string) error {
	return p.do(ctx, func() error {
		area, ok := p.areas[areaID]
		if !ok {
			return ErrNotFound
		}
		savedArea := area.Clone()
		var savedTables []*model.Table
		for _, t := range p.tables {
			if t.AreaID == areaID {
				savedTables = append(savedTables, t.Clone())
			}
		}

		removeAll := func() {
			for _, st := range savedTables {
				p.dropTable(st.ID)
			}
			delete(p.areas, areaID)
		}
		restoreAll := func() {
			p.areas[areaID] = savedArea.Clone()
			for _, st := range savedTables {
				p.insertTable(st.Clone())
			}
		}
		removeAll()
		p.hist.push(historyEntry{label: "delete area", undo: restoreAll, redo: removeAll})
		return nil
	})
}

// AddTableParams describes a new table.  Capacity defaults to 8 and
// shape to round when unset.
type AddTableParams struct {
	AreaID   string
	Name     string
	Shape    model.TableShape
	X, Y     float64
	Width    float64
	Height   float64
	Capacity int
}

// AddTable creates a table inside an area.  The table must lie fully
// inside the area's bounds.
func (p *Plan) AddTable(ctx context.Context, params AddTableParams) (*model.Table, error) {
	if params.Capacity <= 0 {
		params.Capacity = 8
	}
	if params.Shape == "" {
		params.Shape = model.ShapeRound
	}
	if params.Shape == model.ShapeRound {
		if params.Width <= 0 {
			params.Width = 80
		}
		params.Height = params.Width
	}
	if params.Width <= 0 || params.Height <= 0 {
		return nil, ErrInvalidGeometry
	}

	t := &model.Table{
		ID:       uuid.NewString(),
		AreaID:   params.AreaID,
		Name:     params.Name,
		Shape:    params.Shape,
		X:        params.X,
		Y:        params.Y,
		Width:    params.Width,
		Height:   params.Height,
		Capacity: params.Capacity,
		Seats:    model.NewSeats(params.Capacity),
	}
	err := p.do(ctx, func() error {
		area, ok := p.areas[params.AreaID]
		if !ok {
			return ErrNotFound
		}
		if !area.Bounds.Contains(t.Bounds()) {
			return ErrInvalidGeometry
		}
		if t.Name == "" {
			t.Name = fmt.Sprintf("Table %d", p.tablesInArea(params.AreaID)+1)
		}
		p.insertTable(t)
		saved := t.Clone()
		p.hist.push(historyEntry{
			label: "add table",
			undo:  func() { p.dropTable(saved.ID) },
			redo:  func() { p.insertTable(saved.Clone()) },
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return t.Clone(), nil
}

// DuplicateTable copies a table's geometry and capacity with fresh,
// empty seats, offset slightly so the copy is visible.  The copy is
// clamped into the area when the offset would push it outside.
func (p *Plan) DuplicateTable(ctx context.Context, tableID string) (*model.Table, error) {
	var out *model.Table
	err := p.do(ctx, func() error {
		src, ok := p.tables[tableID]
		if !ok {
			return ErrNotFound
		}
		area := p.areas[src.AreaID]
		cp := src.Clone()
		cp.ID = uuid.NewString()
		cp.Name = src.Name + " (copy)"
		cp.Pinned = false
		cp.Version = 0
		cp.Seats = model.NewSeats(cp.Capacity)
		cp.X += 20
		cp.Y += 20
		if area != nil {
			clampIntoRect(cp, area.Bounds)
		}
		p.insertTable(cp)
		saved := cp.Clone()
		p.hist.push(historyEntry{
			label: "duplicate table",
			undo:  func() { p.dropTable(saved.ID) },
			redo:  func() { p.insertTable(saved.Clone()) },
		})
		out = cp.Clone()
		return nil
	})
	return out, err
}

// MoveTable translates a table by (dx, dy).  Rejected when the table
// is pinned, locked by another session, or would leave its area.
func (p *Plan) MoveTable(ctx context.Context, session lock.Session, tableID string, dx, dy float64) error {
	return p.do(ctx, func() error {
		t, ok := p.tables[tableID]
		if !ok {
			return ErrNotFound
		}
		if err := p.checkTableEditable(t, session); err != nil {
			return err
		}
		area := p.areas[t.AreaID]
		next := t.Bounds()
		next.X += dx
		next.Y += dy
		if area != nil && !area.Bounds.Contains(next) {
			return ErrInvalidGeometry
		}
		fromX, fromY := t.X, t.Y
		apply := func(x, y float64) func() {
			return func() {
				if cur, ok := p.tables[tableID]; ok {
					cur.X, cur.Y = x, y
					cur.Version++
				}
			}
		}
		apply(next.X, next.Y)()
		p.hist.push(historyEntry{
			label: "move table",
			undo:  apply(fromX, fromY),
			redo:  apply(next.X, next.Y),
		})
		return nil
	})
}

// ResizeTable changes a table's dimensions.  Round tables keep a
// square bounding box, so width acts as the diameter.
func (p *Plan) ResizeTable(ctx context.Context, session lock.Session, tableID string, width, height float64) error {
	return p.do(ctx, func() error {
		t, ok := p.tables[tableID]
		if !ok {
			return ErrNotFound
		}
		if err := p.checkTableEditable(t, session); err != nil {
			return err
		}
		if t.Shape == model.ShapeRound {
			height = width
		}
		if width <= 0 || height <= 0 {
			return ErrInvalidGeometry
		}
		area := p.areas[t.AreaID]
		next := model.Rect{X: t.X, Y: t.Y, Width: width, Height: height}
		if area != nil && !area.Bounds.Contains(next) {
			return ErrInvalidGeometry
		}
		fromW, fromH := t.Width, t.Height
		apply := func(w, h float64) func() {
			return func() {
				if cur, ok := p.tables[tableID]; ok {
					cur.Width, cur.Height = w, h
					cur.Version++
				}
			}
		}
		apply(width, height)()
		p.hist.push(historyEntry{
			label: "resize table",
			undo:  apply(fromW, fromH),
			redo:  apply(width, height),
		})
		return nil
	})
}

// SetTableCapacity grows or shrinks a table's seat count.  Shrinking
// below an occupied seat frees that guest as part of the same undoable
// unit, with the usual reconciler push.
func (p *Plan) SetTableCapacity(ctx context.Context, session lock.Session, tableID string, capacity int) error {
	if capacity <= 0 {
		return ErrInvalidGeometry
	}
	return p.do(ctx, func() error {
		t, ok := p.tables[tableID]
		if !ok {
			return ErrNotFound
		}
		if held, other := p.locks.HeldByOther(tableID, session.ID); other {
			return &lock.HeldError{Holder: held}
		}
		before := t.Clone()

		apply := func() {
			cur, ok := p.tables[tableID]
			if !ok {
				return
			}
			if capacity < len(cur.Seats) {
				for i := capacity; i < len(cur.Seats); i++ {
					if g := cur.Seats[i].GuestID; g != "" {
						cur.Seats[i].GuestID = ""
						delete(p.seatOf, g)
						p.emitAssignment(g, nil, 0)
					}
				}
				cur.Seats = cur.Seats[:capacity]
			} else {
				for i := len(cur.Seats); i < capacity; i++ {
					cur.Seats = append(cur.Seats, model.Seat{Index: i, Enabled: true})
				}
			}
			cur.Capacity = capacity
			cur.Version++
		}
		revert := func() {
			cur, ok := p.tables[tableID]
			if !ok {
				return
			}
			restored := before.Clone()
			restored.Version = cur.Version + 1
			p.tables[tableID] = restored
			for i := range restored.Seats {
				if g := restored.Seats[i].GuestID; g != "" {
					p.seatOf[g] = seatRef{TableID: tableID, SeatIndex: i}
					p.emitAssignment(g, restored, i)
				}
			}
		}
		apply()
		p.hist.push(historyEntry{label: "change capacity", undo: revert, redo: apply})
		return nil
	})
}

// RenameTable updates the display name.  Renames propagate to the
// Guest List, whose assignment projection denormalizes the table name.
func (p *Plan) RenameTable(ctx context.Context, session lock.Session, tableID, name string) error {
	return p.do(ctx, func() error {
		t, ok := p.tables[tableID]
		if !ok {
			return ErrNotFound
		}
		if held, other := p.locks.HeldByOther(tableID, session.ID); other {
			return &lock.HeldError{Holder: held}
		}
		from := t.Name
		apply := func(n string) func() {
			return func() {
				cur, ok := p.tables[tableID]
				if !ok {
					return
				}
				cur.Name = n
				cur.Version++
				for i := range cur.Seats {
					if g := cur.Seats[i].GuestID; g != "" {
						p.emitAssignment(g, cur, i)
					}
				}
			}
		}
		apply(name)()
		p.hist.push(historyEntry{label: "rename table", undo: apply(from), redo: apply(name)})
		return nil
	})
}

// SetTablePinned toggles the planner pin that freezes a table's
// geometry against accidental drags.
func (p *Plan) SetTablePinned(ctx context.Context, session lock.Session, tableID string, pinned bool) error {
	return p.do(ctx, func() error {
		t, ok := p.tables[tableID]
		if !ok {
			return ErrNotFound
		}
		if held, other := p.locks.HeldByOther(tableID, session.ID); other {
			return &lock.HeldError{Holder: held}
		}
		from := t.Pinned
		apply := func(v bool) func() {
			return func() {
				if cur, ok := p.tables[tableID]; ok {
					cur.Pinned = v
					cur.Version++
				}
			}
		}
		apply(pinned)()
		p.hist.push(historyEntry{label: "pin table", undo: apply(from), redo: apply(pinned)})
		return nil
	})
}

// DeleteTable removes a table.  Every assigned guest is freed and
// pushed to the Guest List as unassigned; geometry and all freed
// bindings form a single atomic history entry, so one undo restores
// the table and re-seats all its guests.
func (p *Plan) DeleteTable(ctx context.Context, session lock.Session, tableID string) error {
	return p.do(ctx, func() error {
		t, ok := p.tables[tableID]
		if !ok {
			return ErrNotFound
		}
		if held, other := p.locks.HeldByOther(tableID, session.ID); other {
			return &lock.HeldError{Holder: held}
		}
		saved := t.Clone()
		remove := func() { p.dropTable(tableID) }
		restore := func() { p.insertTable(saved.Clone()) }
		remove()
		p.hist.push(historyEntry{label: "delete table", undo: restore, redo: remove})
		return nil
	})
}

// ToggleSeatEnabled flips a single seat's enabled flag.  Disabling an
// occupied seat frees its guest in the same undoable unit.
func (p *Plan) ToggleSeatEnabled(ctx context.Context, session lock.Session, tableID string, seatIndex int) error {
	return p.do(ctx, func() error {
		t, ok := p.tables[tableID]
		if !ok {
			return ErrNotFound
		}
		if held, other := p.locks.HeldByOther(tableID, session.ID); other {
			return &lock.HeldError{Holder: held}
		}
		seat := t.SeatAt(seatIndex)
		if seat == nil {
			return ErrNotFound
		}
		wasEnabled := seat.Enabled
		freedGuest := ""
		if wasEnabled && seat.GuestID != "" {
			freedGuest = seat.GuestID
		}

		apply := func() {
			cur, ok := p.tables[tableID]
			if !ok {
				return
			}
			s := cur.SeatAt(seatIndex)
			if s == nil {
				return
			}
			s.Enabled = !wasEnabled
			if freedGuest != "" {
				s.GuestID = ""
				delete(p.seatOf, freedGuest)
				p.emitAssignment(freedGuest, nil, 0)
			}
			cur.Version++
		}
		revert := func() {
			cur, ok := p.tables[tableID]
			if !ok {
				return
			}
			s := cur.SeatAt(seatIndex)
			if s == nil {
				return
			}
			s.Enabled = wasEnabled
			if freedGuest != "" {
				s.GuestID = freedGuest
				p.seatOf[freedGuest] = seatRef{TableID: tableID, SeatIndex: seatIndex}
				p.emitAssignment(freedGuest, cur, seatIndex)
			}
			cur.Version++
		}
		apply()
		p.hist.push(historyEntry{label: "toggle seat", undo: revert, redo: apply})
		return nil
	})
}

// FreeGuest removes a guest's binding in response to an external guest
// deletion.  The freeing is recorded as an undoable entry so a planner
// can restore the layout if the deletion was a mistake upstream.
func (p *Plan) FreeGuest(ctx context.Context, guestID string) error {
	return p.do(ctx, func() error {
		ref, ok := p.seatOf[guestID]
		if !ok {
			return nil // nothing seated; idempotent
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
		p.hist.push(historyEntry{label: "guest removed", undo: revert, redo: apply})
		return nil
	})
}

// ---- run-loop helpers shared by commands and history closures ----

// insertTable registers a table and rebinds any guests its seats hold.
func (p *Plan) insertTable(t *model.Table) {
	p.tables[t.ID] = t
	for i := range t.Seats {
		if g := t.Seats[i].GuestID; g != "" {
			p.seatOf[g] = seatRef{TableID: t.ID, SeatIndex: i}
			p.emitAssignment(g, t, i)
		}
	}
}

// dropTable removes a table and frees every guest seated at it.
func (p *Plan) dropTable(tableID string) {
	t, ok := p.tables[tableID]
	if !ok {
		return
	}
	for i := range t.Seats {
		if g := t.Seats[i].GuestID; g != "" {
			delete(p.seatOf, g)
			p.emitAssignment(g, nil, 0)
		}
	}
	delete(p.tables, tableID)
}

func (p *Plan) tablesInArea(areaID string) int {
	n := 0
	for _, t := range p.tables {
		if t.AreaID == areaID {
			n++
		}
	}
	return n
}

// clampIntoRect shifts t as little as possible so it lies inside r.
func clampIntoRect(t *model.Table, r model.Rect) {
	if t.X < r.X {
		t.X = r.X
	}
	if t.Y < r.Y {
		t.Y = r.Y
	}
	if t.X+t.Width > r.X+r.Width {
		t.X = r.X + r.Width - t.Width
	}
	if t.Y+t.Height > r.Y+r.Height {
		t.Y = r.Y + r.Height - t.Height
	}
}
