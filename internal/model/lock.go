package model

import "time"

// Lock is an exclusive, time-bounded edit permission on a table held
// by one collaborator session.  Locks live only in process memory;
// after a restart every table is considered unlocked.
//
// Fields:
//  TableID    – the locked table.
//  HolderID   – session id of the collaborator holding the lock.
//  HolderName – display name of the holder, surfaced on contention.
//  AcquiredAt – when the lock was first granted.
//  ExpiresAt  – when the lock lapses unless refreshed.
type Lock struct {
	TableID    string    `json:"table_id"`
	HolderID   string    `json:"holder_id"`
	HolderName string    `json:"holder_name"`
	AcquiredAt time.Time `json:"acquired_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// LockEventKind enumerates the lock lifecycle notifications pushed to
// collaborator UIs.
type LockEventKind string

const (
	LockAcquired LockEventKind = "lock-acquired"
	LockReleased LockEventKind = "lock-released"
	LockExpired  LockEventKind = "lock-expired"
)

// LockEvent notifies subscribers that a table's lock state changed.
type LockEvent struct {
	Kind       LockEventKind `json:"kind"`
	TableID    string        `json:"table_id"`
	HolderID   string        `json:"holder_id"`
	HolderName string        `json:"holder_name"`
}
