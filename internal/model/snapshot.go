package model

import "time"

// PlanSnapshot is a named, restorable serialization of the full plan
// state.  Snapshots capture areas and tables (seats included) but not
// locks or history: locks are session-scoped and a restored state is
// not undoable past its own boundary.
type PlanSnapshot struct {
	Name      string    `json:"name"`
	WeddingID string    `json:"wedding_id"`
	SavedAt   time.Time `json:"saved_at"`
	Areas     []*Area   `json:"areas"`
	Tables    []*Table  `json:"tables"`
}

// AssignmentEvent notifies subscribers that a seat binding changed.
// GuestID with an empty TableID means the guest was unassigned.
type AssignmentEvent struct {
	WeddingID string `json:"wedding_id"`
	GuestID   string `json:"guest_id"`
	TableID   string `json:"table_id,omitempty"`
	SeatIndex int    `json:"seat_index"`
}

// Event is the tagged union streamed to UI subscribers.  Exactly one
// of Lock and Assignment is set, matching Kind.
type Event struct {
	Kind       string           `json:"kind"` // "lock" or "assignment"
	Lock       *LockEvent       `json:"lock,omitempty"`
	Assignment *AssignmentEvent `json:"assignment,omitempty"`
}
