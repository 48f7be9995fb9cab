package model

// TableShape enumerates the supported table geometries.  Round tables
// are positioned by their bounding square; Width and Height are both
// the diameter.
type TableShape string

const (
	ShapeRound       TableShape = "round"
	ShapeRectangular TableShape = "rectangular"
)

// Seat is an individual assignable slot within a table.  Seats are
// addressed by their index, 0..capacity-1.  GuestID is empty when the
// seat is free.  A disabled seat keeps its index but refuses
// assignments (used to block broken or reserved chairs).
type Seat struct {
	Index   int    `json:"index"`
	Enabled bool   `json:"enabled"`
	GuestID string `json:"guest_id,omitempty"`
}

// Table is a seating unit with fixed geometry inside an area.  The
// Version counter increments on every mutation and backs optimistic
// conflict checks independent of the collaboration lock protocol.
//
// Fields:
//  ID       – unique identifier (UUID).
//  AreaID   – owning area.
//  Name     – display name ("Mesa 4", "Head table", ...).
//  Shape    – round or rectangular.
//  X, Y     – top-left corner of the bounding box on the canvas.
//  Width    – horizontal extent (diameter for round tables).
//  Height   – vertical extent (diameter for round tables).
//  Capacity – number of seats; len(Seats) always equals Capacity.
//  Pinned   – planner-set flag that refuses move/resize until cleared.
//  Version  – monotonic mutation counter.
//  Seats    – the seat slots, indexed 0..Capacity-1.
type Table struct {
	ID       string     `json:"id"`
	AreaID   string     `json:"area_id"`
	Name     string     `json:"name"`
	Shape    TableShape `json:"shape"`
	X        float64    `json:"x"`
	Y        float64    `json:"y"`
	Width    float64    `json:"width"`
	Height   float64    `json:"height"`
	Capacity int        `json:"capacity"`
	Pinned   bool       `json:"pinned"`
	Version  uint64     `json:"version"`
	Seats    []Seat     `json:"seats"`
}

// Bounds returns the table's bounding box.
func (t *Table) Bounds() Rect {
	return Rect{X: t.X, Y: t.Y, Width: t.Width, Height: t.Height}
}

// AssignedCount returns the number of seats currently bound to a guest.
func (t *Table) AssignedCount() int {
	n := 0
	for i := range t.Seats {
		if t.Seats[i].GuestID != "" {
			n++
		}
	}
	return n
}

// EnabledSeatCount returns the number of usable seats.  Disabled
// seats shrink the table without renumbering the remaining seats.
func (t *Table) EnabledSeatCount() int {
	n := 0
	for i := range t.Seats {
		if t.Seats[i].Enabled {
			n++
		}
	}
	return n
}

// SeatAt returns the seat with the given index, or nil when the index
// is out of range.
func (t *Table) SeatAt(index int) *Seat {
	if index < 0 || index >= len(t.Seats) {
		return nil
	}
	return &t.Seats[index]
}

// Clone returns a deep copy of the table including its seats.
func (t *Table) Clone() *Table {
	cp := *t
	cp.Seats = make([]Seat, len(t.Seats))
	copy(cp.Seats, t.Seats)
	return &cp
}

// NewSeats builds a fresh, enabled seat slice for the given capacity.
func NewSeats(capacity int) []Seat {
	seats := make([]Seat, capacity)
	for i := range seats {
		seats[i] = Seat{Index: i, Enabled: true}
	}
	return seats
}
