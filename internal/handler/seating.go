package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/wedding-seating-engine/internal/engine"
	"github.com/iliyamo/wedding-seating-engine/internal/guestlist"
	"github.com/iliyamo/wedding-seating-engine/internal/lock"
	"github.com/iliyamo/wedding-seating-engine/internal/middleware"
	"github.com/iliyamo/wedding-seating-engine/internal/reconciler"
	"github.com/iliyamo/wedding-seating-engine/internal/snapshot"
)

// SeatingHandler groups the dependencies for the seating plan surface.
// All methods assume session authentication has already run; the
// collaborator identity is pulled from the request context and drives
// the lock protocol.
type SeatingHandler struct {
	Plans      *engine.Registry
	Guests     guestlist.Client
	Reconciler *reconciler.Reconciler
	Snapshots  *snapshot.Store
}

// NewSeatingHandler constructs a SeatingHandler.  All dependencies
// must be non-nil.
func NewSeatingHandler(plans *engine.Registry, guests guestlist.Client, rec *reconciler.Reconciler, snaps *snapshot.Store) *SeatingHandler {
	if plans == nil || guests == nil || rec == nil || snaps == nil {
		panic("nil dependency passed to NewSeatingHandler")
	}
	return &SeatingHandler{Plans: plans, Guests: guests, Reconciler: rec, Snapshots: snaps}
}

// plan resolves the wedding's plan from the :id path parameter.
func (h *SeatingHandler) plan(c echo.Context) (*engine.Plan, error) {
	weddingID := c.Param("id")
	if weddingID == "" {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "missing wedding id")
	}
	return h.Plans.Get(weddingID), nil
}

// seatIndexParam parses the :seatIndex path parameter.
func seatIndexParam(c echo.Context) (int, bool) {
	idx, err := strconv.Atoi(c.Param("seatIndex"))
	if err != nil || idx < 0 {
		return 0, false
	}
	return idx, true
}

// session builds the lock session for the current collaborator.
func session(c echo.Context) lock.Session {
	return lock.Session{ID: middleware.SessionID(c), Name: middleware.SessionName(c)}
}

// respondErr translates engine errors into the HTTP vocabulary the UI
// expects.  Lock contention gets 423 Locked with the holder's identity
// so the UI can show who is editing; occupied/full/pinned are plain
// conflicts, and corrupt snapshots map to 422 because the request was
// well-formed but the stored document is not.
func respondErr(c echo.Context, err error) error {
	var held *lock.HeldError
	switch {
	case errors.As(err, &held):
		return c.JSON(http.StatusLocked, echo.Map{
			"error":       "table locked",
			"holder_id":   held.Holder.HolderID,
			"holder_name": held.Holder.HolderName,
			"expires_at":  held.Holder.ExpiresAt,
		})
	case errors.Is(err, engine.ErrNotFound),
		errors.Is(err, guestlist.ErrGuestNotFound),
		errors.Is(err, snapshot.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, engine.ErrInvalidGeometry),
		errors.Is(err, engine.ErrAreaTooSmall):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, engine.ErrSeatOccupied),
		errors.Is(err, engine.ErrSeatDisabled),
		errors.Is(err, engine.ErrTableFull),
		errors.Is(err, engine.ErrTablePinned):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, engine.ErrSnapshotCorrupt),
		errors.Is(err, snapshot.ErrCorrupt):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error()})
	case errors.Is(err, snapshot.ErrUnavailable):
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": err.Error()})
	case errors.Is(err, reconciler.ErrSyncPushFailed):
		return c.JSON(http.StatusBadGateway, echo.Map{"error": err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
