// Package guestlist is the seating engine's narrow interface to the
// Guest List collaborator.  The engine never touches guest CRUD; it
// reads guest records and writes the assignment projection, which the
// Guest List treats as denormalized display data.
package guestlist

import (
	"context"
	"errors"

	"github.com/iliyamo/wedding-seating-engine/internal/model"
)

// ErrGuestNotFound is returned when a guest id references no record.
var ErrGuestNotFound = errors.New("guest not found")

// Client is the consumed contract.  UpdateGuestAssignment with a nil
// assignment clears the guest's projection (guest was unseated).
type Client interface {
	// GetGuest fetches one guest record.
	GetGuest(ctx context.Context, weddingID, guestID string) (model.Guest, error)

	// ListGuests returns every guest of a wedding.
	ListGuests(ctx context.Context, weddingID string) ([]model.Guest, error)

	// ListAssignments returns the Guest List's current view of seat
	// assignments for a wedding.
	ListAssignments(ctx context.Context, weddingID string) ([]model.GuestAssignment, error)

	// UpdateGuestAssignment overwrites one guest's assignment
	// projection, or clears it when assignment is nil.
	UpdateGuestAssignment(ctx context.Context, weddingID, guestID string, assignment *model.GuestAssignment) error
}
