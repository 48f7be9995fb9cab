// Package queue defines message payloads exchanged over the message broker.
package queue

// AssignmentChangedEvent is published whenever a seat binding changes,
// so other collaborator processes (notifications, analytics, the admin
// app) can react without querying the seating service.  An empty
// TableID signals the guest was unseated.
type AssignmentChangedEvent struct {
	WeddingID string `json:"wedding_id"`
	GuestID   string `json:"guest_id"`
	TableID   string `json:"table_id,omitempty"`
	TableName string `json:"table_name,omitempty"`
	SeatIndex int    `json:"seat_index"`
	ChangedAt string `json:"changed_at"`
}

// LockChangedEvent mirrors the in-process lock events onto the broker
// for collaborator processes that render presence.
type LockChangedEvent struct {
	WeddingID  string `json:"wedding_id"`
	Kind       string `json:"kind"` // lock-acquired | lock-released | lock-expired
	TableID    string `json:"table_id"`
	HolderID   string `json:"holder_id"`
	HolderName string `json:"holder_name"`
}

// GuestDeletedEvent arrives from the Guest List module when a guest is
// removed; the seating engine frees the guest's seat in response.
type GuestDeletedEvent struct {
	WeddingID string `json:"wedding_id"`
	GuestID   string `json:"guest_id"`
	DeletedAt string `json:"deleted_at"`
}
