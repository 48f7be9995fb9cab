// Package engine implements the seating plan engine: the in-memory
// spatial model of areas, tables and seats, the assignment and
// conflict rules, deterministic layout generation, and the shared
// undo/redo history.  One Plan exists per wedding; all mutations on a
// plan are serialized through its run loop.
package engine

import "errors"

// Sentinel errors returned by plan operations.  Handlers translate
// these into HTTP statuses with errors.Is; SeatOccupied, TableFull and
// lock contention are expected user-facing conditions, not failures.
var (
	// ErrNotFound is returned when an area, table, seat or guest id
	// does not reference anything in the plan.
	ErrNotFound = errors.New("not found")

	// ErrInvalidGeometry is returned when bounds are non-positive or
	// an element would land outside its container.
	ErrInvalidGeometry = errors.New("invalid geometry")

	// ErrSeatOccupied is returned when assigning to a seat already
	// bound to a different guest.  There is no silent overwrite.
	ErrSeatOccupied = errors.New("seat already occupied")

	// ErrSeatDisabled is returned when assigning to a disabled seat.
	ErrSeatDisabled = errors.New("seat is disabled")

	// ErrTableFull is returned when every enabled seat of a table is
	// already taken.
	ErrTableFull = errors.New("table is full")

	// ErrTablePinned is returned when moving or resizing a table whose
	// position was pinned by a planner.
	ErrTablePinned = errors.New("table is pinned")

	// ErrAreaTooSmall is returned when a generated layout does not fit
	// inside the target area's bounds.
	ErrAreaTooSmall = errors.New("area too small for requested layout")

	// ErrSnapshotCorrupt is returned when a snapshot cannot be decoded
	// or fails validation.  The in-memory state is left untouched.
	ErrSnapshotCorrupt = errors.New("snapshot corrupt")

	// ErrPlanClosed is returned when an operation reaches a plan whose
	// run loop has been shut down.
	ErrPlanClosed = errors.New("plan closed")
)
