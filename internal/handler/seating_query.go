package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// GetAreas handles GET /v1/weddings/:id/seating/areas.
func (h *SeatingHandler) GetAreas(c echo.Context) error {
	p, err := h.plan(c)
	if err != nil {
		return err
	}
	areas, err := p.Areas(c.Request().Context())
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"areas": areas})
}

// GetTables handles GET /v1/weddings/:id/seating/tables.
func (h *SeatingHandler) GetTables(c echo.Context) error {
	p, err := h.plan(c)
	if err != nil {
		return err
	}
	tables, err := p.Tables(c.Request().Context())
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"tables": tables})
}

// GetSeats handles GET /v1/weddings/:id/seating/tables/:tableID/seats.
func (h *SeatingHandler) GetSeats(c echo.Context) error {
	p, err := h.plan(c)
	if err != nil {
		return err
	}
	seats, err := p.Seats(c.Request().Context(), c.Param("tableID"))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"seats": seats})
}

// GetConflicts handles GET /v1/weddings/:id/seating/conflicts.  The
// result is advisory; the UI renders it as banners, nothing blocks.
func (h *SeatingHandler) GetConflicts(c echo.Context) error {
	p, err := h.plan(c)
	if err != nil {
		return err
	}
	conflicts, err := p.DetectCollisions(c.Request().Context())
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"conflicts": conflicts})
}

// GetLocks handles GET /v1/weddings/:id/seating/locks, exposing which
// collaborator is editing which table.
func (h *SeatingHandler) GetLocks(c echo.Context) error {
	p, err := h.plan(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"locks": p.Locks().List()})
}

// GetHistoryStatus handles GET /v1/weddings/:id/seating/history: the
// shared can-undo/can-redo flags every session's toolbar shows.
func (h *SeatingHandler) GetHistoryStatus(c echo.Context) error {
	p, err := h.plan(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	canUndo, err := p.CanUndo(ctx)
	if err != nil {
		return respondErr(c, err)
	}
	canRedo, err := p.CanRedo(ctx)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"can_undo": canUndo, "can_redo": canRedo})
}
