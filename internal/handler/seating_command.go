package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/wedding-seating-engine/internal/engine"
	"github.com/iliyamo/wedding-seating-engine/internal/model"
)

// createAreaReq is the JSON body accepted by CreateArea.
type createAreaReq struct {
	Name   string  `json:"name"`
	Kind   string  `json:"kind"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Z      int     `json:"z"`
}

// CreateArea handles POST /v1/weddings/:id/seating/areas.
func (h *SeatingHandler) CreateArea(c echo.Context) error {
	p, err := h.plan(c)
	if err != nil {
		return err
	}
	var req createAreaReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	area, err := p.AddArea(c.Request().Context(), engine.AddAreaParams{
		Name:   req.Name,
		Kind:   model.AreaKind(req.Kind),
		Bounds: model.Rect{X: req.X, Y: req.Y, Width: req.Width, Height: req.Height},
		Z:      req.Z,
	})
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusCreated, area)
}

// DeleteArea handles DELETE /v1/weddings/:id/seating/areas/:areaID.
// Tables inside the area go with it; one undo brings everything back.
func (h *SeatingHandler) DeleteArea(c echo.Context) error {
	p, err := h.plan(c)
	if err != nil {
		return err
	}
	if err := p.DeleteArea(c.Request().Context(), c.Param("areaID")); err != nil {
		return respondErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// createTableReq is the JSON body accepted by CreateTable.
type createTableReq struct {
	AreaID   string  `json:"area_id"`
	Name     string  `json:"name"`
	Shape    string  `json:"shape"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Capacity int     `json:"capacity"`
}

// CreateTable handles POST /v1/weddings/:id/seating/tables.
func (h *SeatingHandler) CreateTable(c echo.Context) error {
	p, err := h.plan(c)
	if err != nil {
		return err
	}
	var req createTableReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	table, err := p.AddTable(c.Request().Context(), engine.AddTableParams{
		AreaID:   req.AreaID,
		Name:     req.Name,
		Shape:    model.TableShape(req.Shape),
		X:        req.X,
		Y:        req.Y,
		Width:    req.Width,
		Height:   req.Height,
		Capacity: req.Capacity,
	})
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusCreated, table)
}

// DuplicateTable handles POST /v1/weddings/:id/seating/tables/:tableID/duplicate.
func (h *SeatingHandler) DuplicateTable(c echo.Context) error {
	p, err := h.plan(c)
	if err != nil {
		return err
	}
	table, err := p.DuplicateTable(c.Request().Context(), c.Param("tableID"))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusCreated, table)
}

// MoveTable handles POST /v1/weddings/:id/seating/tables/:tableID/move.
func (h *SeatingHandler) MoveTable(c echo.Context) error {
	p, err := h.plan(c)
	if err != nil {
		return err
	}
	var req struct {
		DX float64 `json:"dx"`
		DY float64 `json:"dy"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := p.MoveTable(c.Request().Context(), session(c), c.Param("tableID"), req.DX, req.DY); err != nil {
		return respondErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ResizeTable handles POST /v1/weddings/:id/seating/tables/:tableID/resize.
func (h *SeatingHandler) ResizeTable(c echo.Context) error {
	p, err := h.plan(c)
	if err != nil {
		return err
	}
	var req struct {
		Width  float64 `json:"width"`
		Height float64 `json:"height"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := p.ResizeTable(c.Request().Context(), session(c), c.Param("tableID"), req.Width, req.Height); err != nil {
		return respondErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// SetTableCapacity handles PUT /v1/weddings/:id/seating/tables/:tableID/capacity.
// Shrinking a table unseats the guests on the truncated seats.
func (h *SeatingHandler) SetTableCapacity(c echo.Context) error {
	p, err := h.plan(c)
	if err != nil {
		return err
	}
	var req struct {
		Capacity int `json:"capacity"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := p.SetTableCapacity(c.Request().Context(), session(c), c.Param("tableID"), req.Capacity); err != nil {
		return respondErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// RenameTable handles PUT /v1/weddings/:id/seating/tables/:tableID/name.
func (h *SeatingHandler) RenameTable(c echo.Context) error {
	p, err := h.plan(c)
	if err != nil {
		return err
	}
	var req struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := p.RenameTable(c.Request().Context(), session(c), c.Param("tableID"), req.Name); err != nil {
		return respondErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// SetTablePinned handles PUT /v1/weddings/:id/seating/tables/:tableID/pinned.
func (h *SeatingHandler) SetTablePinned(c echo.Context) error {
	p, err := h.plan(c)
	if err != nil {
		return err
	}
	var req struct {
		Pinned bool `json:"pinned"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := p.SetTablePinned(c.Request().Context(), session(c), c.Param("tableID"), req.Pinned); err != nil {
		return respondErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteTable handles DELETE /v1/weddings/:id/seating/tables/:tableID.
func (h *SeatingHandler) DeleteTable(c echo.Context) error {
	p, err := h.plan(c)
	if err != nil {
		return err
	}
	if err := p.DeleteTable(c.Request().Context(), session(c), c.Param("tableID")); err != nil {
		return respondErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ToggleSeatEnabled handles POST /v1/weddings/:id/seating/tables/:tableID/seats/:seatIndex/toggle.
func (h *SeatingHandler) ToggleSeatEnabled(c echo.Context) error {
	p, err := h.plan(c)
	if err != nil {
		return err
	}
	idx, ok := seatIndexParam(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid seat index"})
	}
	if err := p.ToggleSeatEnabled(c.Request().Context(), session(c), c.Param("tableID"), idx); err != nil {
		return respondErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// assignReq is the JSON body accepted by AssignGuest and MoveGuest.
type assignReq struct {
	GuestID   string `json:"guest_id"`
	TableID   string `json:"table_id"`
	SeatIndex int    `json:"seat_index"`
}

// AssignGuest handles POST /v1/weddings/:id/seating/assignments.  A
// guest already seated elsewhere is relocated in the same step.
func (h *SeatingHandler) AssignGuest(c echo.Context) error {
	p, err := h.plan(c)
	if err != nil {
		return err
	}
	var req assignReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	ctx := c.Request().Context()
	if _, err := h.Guests.GetGuest(ctx, p.WeddingID(), req.GuestID); err != nil {
		return respondErr(c, err)
	}
	if err := p.AssignGuestToSeat(ctx, session(c), req.GuestID, req.TableID, req.SeatIndex); err != nil {
		return respondErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// UnassignGuest handles DELETE /v1/weddings/:id/seating/assignments/:guestID.
func (h *SeatingHandler) UnassignGuest(c echo.Context) error {
	p, err := h.plan(c)
	if err != nil {
		return err
	}
	if err := p.UnassignGuest(c.Request().Context(), session(c), c.Param("guestID")); err != nil {
		return respondErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// MoveGuest handles POST /v1/weddings/:id/seating/assignments/move.
func (h *SeatingHandler) MoveGuest(c echo.Context) error {
	p, err := h.plan(c)
	if err != nil {
		return err
	}
	var req assignReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	ctx := c.Request().Context()
	if _, err := h.Guests.GetGuest(ctx, p.WeddingID(), req.GuestID); err != nil {
		return respondErr(c, err)
	}
	if err := p.MoveGuest(ctx, session(c), req.GuestID, req.TableID, req.SeatIndex); err != nil {
		return respondErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Undo handles POST /v1/weddings/:id/seating/undo.
func (h *SeatingHandler) Undo(c echo.Context) error {
	p, err := h.plan(c)
	if err != nil {
		return err
	}
	done, err := p.Undo(c.Request().Context())
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"undone": done})
}

// Redo handles POST /v1/weddings/:id/seating/redo.
func (h *SeatingHandler) Redo(c echo.Context) error {
	p, err := h.plan(c)
	if err != nil {
		return err
	}
	done, err := p.Redo(c.Request().Context())
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"redone": done})
}

// EnsureLock handles POST /v1/weddings/:id/seating/locks/:tableID.
// First grant and refresh look the same to the caller; the UI polls
// this while a table stays selected.
func (h *SeatingHandler) EnsureLock(c echo.Context) error {
	p, err := h.plan(c)
	if err != nil {
		return err
	}
	lk, err := p.Locks().Ensure(c.Param("tableID"), session(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, lk)
}

// ReleaseLocks handles DELETE /v1/weddings/:id/seating/locks.  The
// session's locks are dropped except the table ids listed in keep, so
// switching selection is a single call.
func (h *SeatingHandler) ReleaseLocks(c echo.Context) error {
	p, err := h.plan(c)
	if err != nil {
		return err
	}
	var req struct {
		Keep []string `json:"keep"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	p.Locks().ReleaseExcept(session(c).ID, req.Keep...)
	return c.NoContent(http.StatusNoContent)
}

// Reconcile handles POST /v1/weddings/:id/seating/reconcile: a manual
// sweep that forces the Guest List projection back in line with the
// plan.  Returns how many rows were corrected.
func (h *SeatingHandler) Reconcile(c echo.Context) error {
	p, err := h.plan(c)
	if err != nil {
		return err
	}
	changed, err := h.Reconciler.Reconcile(c.Request().Context(), p)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"changed": changed})
}
