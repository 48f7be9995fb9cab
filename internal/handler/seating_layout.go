package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/wedding-seating-engine/internal/engine"
)

// GenerateSeatGrid handles POST /v1/weddings/:id/seating/areas/:areaID/grid.
// Existing tables in the area are replaced; a single undo restores them.
func (h *SeatingHandler) GenerateSeatGrid(c echo.Context) error {
	p, err := h.plan(c)
	if err != nil {
		return err
	}
	var req struct {
		Rows   int `json:"rows"`
		PerRow int `json:"per_row"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	tables, err := p.GenerateSeatGrid(c.Request().Context(), c.Param("areaID"), req.Rows, req.PerRow)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"tables": tables})
}

// GenerateBanquetLayout handles POST /v1/weddings/:id/seating/areas/:areaID/banquet.
// When guest_count is omitted the current Guest List headcount is used.
func (h *SeatingHandler) GenerateBanquetLayout(c echo.Context) error {
	p, err := h.plan(c)
	if err != nil {
		return err
	}
	var req struct {
		GuestCount int `json:"guest_count"`
		TableSize  int `json:"table_size"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	ctx := c.Request().Context()
	if req.GuestCount <= 0 {
		guests, err := h.Guests.ListGuests(ctx, p.WeddingID())
		if err != nil {
			return respondErr(c, err)
		}
		req.GuestCount = len(guests)
	}
	tables, err := p.GenerateBanquetLayout(ctx, c.Param("areaID"), req.GuestCount, req.TableSize)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"tables": tables})
}

// AutoAssign handles POST /v1/weddings/:id/seating/auto-assign.  The
// Guest List is fetched fresh so newly added guests are picked up, and
// the whole batch lands as one undoable step.
func (h *SeatingHandler) AutoAssign(c echo.Context) error {
	p, err := h.plan(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	guests, err := h.Guests.ListGuests(ctx, p.WeddingID())
	if err != nil {
		return respondErr(c, err)
	}
	result, err := p.AutoAssignGuests(ctx, session(c), guests, engine.DefaultStrategy)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// FixTablePosition handles POST /v1/weddings/:id/seating/tables/:tableID/fix-position.
func (h *SeatingHandler) FixTablePosition(c echo.Context) error {
	p, err := h.plan(c)
	if err != nil {
		return err
	}
	if err := p.FixTablePosition(c.Request().Context(), session(c), c.Param("tableID")); err != nil {
		return respondErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
