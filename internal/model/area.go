package model

import "time"

// AreaKind distinguishes the two zone types a wedding layout uses.
// Ceremony areas hold grids of single-occupant seats while banquet
// areas hold round or rectangular dining tables.
type AreaKind string

const (
	AreaCeremony AreaKind = "ceremony"
	AreaBanquet  AreaKind = "banquet"
)

// Rect is an axis-aligned rectangle in plan coordinates.  X and Y
// locate the top-left corner; Width and Height extend right and down.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Overlap reports how much r and o intersect along each axis.  Both
// values are positive only when the rectangles actually overlap.
func (r Rect) Overlap(o Rect) (dx, dy float64) {
	dx = min(r.X+r.Width, o.X+o.Width) - max(r.X, o.X)
	dy = min(r.Y+r.Height, o.Y+o.Height) - max(r.Y, o.Y)
	return dx, dy
}

// Contains reports whether o lies entirely inside r.
func (r Rect) Contains(o Rect) bool {
	return o.X >= r.X && o.Y >= r.Y &&
		o.X+o.Width <= r.X+r.Width && o.Y+o.Height <= r.Y+r.Height
}

// Area is a named ceremony or banquet zone on the plan canvas.  Areas
// own tables; deleting an area cascades to everything it contains.
//
// Fields:
//  ID        – unique identifier (UUID).
//  WeddingID – the wedding plan this area belongs to.
//  Name      – display name shown in the planner UI.
//  Kind      – ceremony or banquet.
//  Bounds    – position and size of the zone on the canvas.
//  Z         – stacking order; higher values draw on top.
//  CreatedAt – timestamp when the area was created.
type Area struct {
	ID        string    `json:"id"`
	WeddingID string    `json:"wedding_id"`
	Name      string    `json:"name"`
	Kind      AreaKind  `json:"kind"`
	Bounds    Rect      `json:"bounds"`
	Z         int       `json:"z"`
	CreatedAt time.Time `json:"created_at"`
}

// Clone returns a deep copy of the area.
func (a *Area) Clone() *Area {
	cp := *a
	return &cp
}
