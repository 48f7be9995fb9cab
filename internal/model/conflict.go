package model

// ConflictKind distinguishes the two advisory conflict detections.
type ConflictKind string

const (
	ConflictOverlap  ConflictKind = "overlap"
	ConflictCapacity ConflictKind = "capacity"
)

// Conflict is a transient detection result, recomputed on every
// mutation and never stored.  Overlap conflicts reference the two
// colliding tables; capacity conflicts reference the single
// over-booked table.
//
// Fields:
//  Kind     – overlap or capacity.
//  TableIDs – one id for capacity conflicts, two for overlaps.
//  Assigned – assigned seat count (capacity conflicts only).
//  Capacity – usable (enabled) seat count (capacity conflicts only).
type Conflict struct {
	Kind     ConflictKind `json:"kind"`
	TableIDs []string     `json:"table_ids"`
	Assigned int          `json:"assigned,omitempty"`
	Capacity int          `json:"capacity,omitempty"`
}
